package client

import (
	"bufio"
	"context"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"recsort/common"
	extsort "recsort/external_sort"
	"recsort/helpers"
	"recsort/record"
	"recsort/stats"
)

const PROGRESS_BUFFER = 16

type SortRequest struct {
	Input        string
	Output       string
	Key          record.SortKey
	ChunkRecords int
	TempDir      string
	SkipHeader   bool
	OnMalformed  extsort.MalformedPolicy
	Top          int
}

type TopRequest struct {
	Sorted      string
	Input       string
	Key         record.SortKey
	N           int
	SkipHeader  bool
	OnMalformed extsort.MalformedPolicy
}

type SweepRequest struct {
	TempDir   string
	OlderThan time.Duration
}

type Client interface {
	Sort(ctx context.Context, req SortRequest) (*extsort.Result, error)
	Top(ctx context.Context, req TopRequest) ([]*record.Record, error)
	Sweep(req SweepRequest) ([]string, error)
}

/**
* ClientImpl is the orchestration glue around the sorter: it opens the input,
* runs the sort on a background goroutine while the calling goroutine logs
* progress, and prints results as plain lines.
 */
type ClientImpl struct {
	out    io.Writer
	logger logrus.FieldLogger
	board  stats.StatsBoard
}

func NewClient(out io.Writer, logger logrus.FieldLogger, board stats.StatsBoard) Client {
	return &ClientImpl{out: out, logger: logger, board: board}
}

func (c *ClientImpl) Sort(ctx context.Context, req SortRequest) (*extsort.Result, error) {
	// creating the temp dir is the caller's job, not the sorter's
	if err := helpers.CreatePaths(req.TempDir); err != nil {
		return nil, common.NewFileError("mkdir", req.TempDir, err)
	}
	input, estimated, err := openInput(req.Input, req.SkipHeader)
	if err != nil {
		return nil, err
	}
	defer input.Close()
	extsort.CheckDiskSpace(req.Input, req.TempDir, c.logger)

	progressCh := make(chan int, PROGRESS_BUFFER)
	sorter, err := extsort.NewExtSort(extsort.Options{
		TempDir:        req.TempDir,
		ChunkRecords:   req.ChunkRecords,
		Key:            req.Key,
		OnMalformed:    req.OnMalformed,
		EstimatedLines: estimated,
		Progress:       extsort.ChannelProgress(progressCh),
		Logger:         c.logger,
		Stats:          c.board,
	})
	if err != nil {
		return nil, err
	}

	var result *extsort.Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(progressCh)
		var err error
		result, err = sorter.SortReader(gctx, input, req.Input, req.Output)
		return err
	})
	g.Go(func() error {
		c.watchProgress(progressCh)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	printResult(c.out, result)
	printStats(c.out, c.board.GetAll())
	if req.Top > 0 {
		top, err := extsort.TopN(result.Output, req.Top)
		if err != nil {
			return nil, err
		}
		printRecords(c.out, req.Key, top)
	}
	return result, nil
}

func (c *ClientImpl) Top(ctx context.Context, req TopRequest) ([]*record.Record, error) {
	switch {
	case req.Sorted != "" && req.Input != "":
		return nil, errors.New(helpers.AMBIGUOUS_TOP_SOURCE_ERROR_MSG)
	case req.Sorted != "":
		top, err := extsort.TopN(req.Sorted, req.N)
		if err != nil {
			return nil, err
		}
		printRecords(c.out, req.Key, top)
		return top, nil
	case req.Input == "":
		return nil, errors.New(helpers.MISSING_TOP_SOURCE_ERROR_MSG)
	}

	input, _, err := openInput(req.Input, req.SkipHeader)
	if err != nil {
		return nil, err
	}
	defer input.Close()

	// only the key and malformed policy matter for a single-pass ranking
	opts := extsort.DefaultOptions(os.TempDir())
	opts.Key = req.Key
	opts.OnMalformed = req.OnMalformed
	opts.Logger = c.logger
	ranker, err := extsort.NewExtSort(opts)
	if err != nil {
		return nil, err
	}
	top, skipped, err := ranker.TopFromStream(ctx, input, req.Input, req.N)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		c.logger.WithFields(logrus.Fields{"Skipped": skipped}).Warn("Malformed lines were skipped")
	}
	printRecords(c.out, req.Key, top)
	return top, nil
}

func (c *ClientImpl) Sweep(req SweepRequest) ([]string, error) {
	return extsort.SweepStale(req.TempDir, req.OlderThan, c.logger)
}

func (c *ClientImpl) watchProgress(progressCh <-chan int) {
	for percent := range progressCh {
		entry := c.logger.WithFields(logrus.Fields{"Percent": percent})
		if percent%10 == 0 {
			entry.Info("Sorting")
		} else {
			entry.Debug("Sorting")
		}
	}
}

type inputFile struct {
	*bufio.Reader
	file *os.File
}

func (f *inputFile) Close() error {
	return f.file.Close()
}

// openInput opens path, optionally consuming a header line, and estimates
// how many data lines follow.
func openInput(path string, skipHeader bool) (*inputFile, int64, error) {
	estimated, err := extsort.EstimateLines(path)
	if err != nil {
		return nil, 0, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, common.NewFileError("open", path, err)
	}
	input := &inputFile{Reader: bufio.NewReaderSize(file, common.IO_BUFFER_SIZE), file: file}
	if skipHeader {
		if _, err := input.ReadString('\n'); err != nil && err != io.EOF {
			file.Close()
			return nil, 0, common.NewFileError("read", path, err)
		}
		estimated = max(estimated-1, 0)
	}
	return input, estimated, nil
}
