package extsort

import (
	"bufio"
	"container/heap"
	"context"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"recsort/common"
	"recsort/record"
	"recsort/stats"
)

type Merger interface {
	// Merge writes the k-way merge of chunks to outputPath and returns the
	// number of records written. The chunk files are removed on every exit
	// path; the output file is removed when the merge fails.
	Merge(ctx context.Context, chunks []ChunkFile, outputPath string) (int64, error)
	// MergeManifest merges the chunk set recorded in a manifest file.
	MergeManifest(ctx context.Context, manifestPath, outputPath string) (int64, error)
}

type MergerImpl struct {
	key      record.SortKey
	compare  record.Comparator
	progress *progressTracker
	logger   logrus.FieldLogger
	stats    stats.StatsBoard
}

func NewMerger(opts Options, progress *progressTracker) Merger {
	opts = opts.withDefaults()
	if progress == nil {
		progress = newProgressTracker(nil)
	}
	return &MergerImpl{
		key:      opts.Key,
		compare:  opts.Key.Comparator(),
		progress: progress,
		logger:   opts.Logger,
		stats:    opts.Stats,
	}
}

/** A cursor is the head record of one open chunk. */
type cursor struct {
	chunk   ChunkFile
	index   int
	file    *os.File
	scanner *bufio.Scanner
	head    *record.Record
	read    int64
}

// advance loads the next record of the chunk into head. At the end of the
// chunk head is nil and the file is closed.
func (c *cursor) advance() error {
	if c.scanner.Scan() {
		r, err := record.Parse(c.scanner.Text())
		if err != nil {
			return common.NewFileError("decode", c.chunk.Path, err)
		}
		c.head = r
		c.read++
		return nil
	}
	if err := c.scanner.Err(); err != nil {
		return common.NewFileError("read", c.chunk.Path, err)
	}
	c.head = nil
	err := c.close()
	if c.read != c.chunk.Records {
		return common.NewFileError("verify", c.chunk.Path, errors.Errorf("expected %d records, read %d", c.chunk.Records, c.read))
	}
	return err
}

func (c *cursor) close() error {
	if c.file == nil {
		return nil
	}
	err := c.file.Close()
	c.file = nil
	if err != nil {
		return common.NewFileError("close", c.chunk.Path, err)
	}
	return nil
}

/**
* mergeHeap holds at most one cursor per open chunk. Ties on the sort key go
* to the lower chunk index, which keeps the merge stable: chunks are cut
* from the input in order and each chunk is stable sorted.
 */
type mergeHeap struct {
	cursors []*cursor
	compare record.Comparator
}

func (h *mergeHeap) Len() int { return len(h.cursors) }

func (h *mergeHeap) Less(i, j int) bool {
	a, b := h.cursors[i], h.cursors[j]
	if c := h.compare(a.head, b.head); c != 0 {
		return c < 0
	}
	return a.index < b.index
}

func (h *mergeHeap) Swap(i, j int) {
	h.cursors[i], h.cursors[j] = h.cursors[j], h.cursors[i]
}

func (h *mergeHeap) Push(x interface{}) {
	h.cursors = append(h.cursors, x.(*cursor))
}

func (h *mergeHeap) Pop() interface{} {
	old := h.cursors
	n := len(old)
	c := old[n-1]
	old[n-1] = nil
	h.cursors = old[:n-1]
	return c
}

func (m *MergerImpl) MergeManifest(ctx context.Context, manifestPath, outputPath string) (int64, error) {
	manifest, err := ReadManifest(manifestPath)
	if err != nil {
		return 0, err
	}
	if manifest.Key != m.key {
		// the chunks are ordered by a different comparator; merging them would
		// produce garbage, but they are still ours to delete
		err := common.NewConfigError("sort key", "manifest was chunked by "+string(manifest.Key)+", merger uses "+string(m.key))
		return 0, flatten(multierror.Append(err, removeFiles(manifest.Paths())))
	}
	return m.Merge(ctx, manifest.Chunks, outputPath)
}

func (m *MergerImpl) Merge(ctx context.Context, chunks []ChunkFile, outputPath string) (merged int64, err error) {
	var total int64
	paths := make([]string, len(chunks))
	for i, c := range chunks {
		total += c.Records
		paths[i] = c.Path
	}
	h := &mergeHeap{cursors: make([]*cursor, 0, len(chunks)), compare: m.compare}
	var open []*cursor

	defer func() {
		var result *multierror.Error
		if err != nil {
			result = multierror.Append(result, err)
		}
		for _, c := range open {
			if cerr := c.close(); cerr != nil {
				result = multierror.Append(result, cerr)
			}
		}
		if rmErr := removeFiles(paths); rmErr != nil {
			result = multierror.Append(result, rmErr)
		}
		if result.ErrorOrNil() != nil {
			if rmErr := os.Remove(outputPath); rmErr != nil && !os.IsNotExist(rmErr) {
				m.logger.WithFields(logrus.Fields{"File": outputPath, "ErrorMsg": rmErr.Error()}).Error("Error removing partial output")
			}
			merged = 0
			err = flatten(result)
		}
	}()

	m.logger.WithFields(logrus.Fields{"Chunks": len(chunks), "Records": total, "Output": outputPath}).Info("Merging chunks")

	out, err := os.OpenFile(outputPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, common.NewFileError("create", outputPath, err)
	}
	defer func() {
		if out == nil {
			return
		}
		if cerr := out.Close(); cerr != nil && err == nil {
			err = common.NewFileError("close", outputPath, cerr)
		}
	}()

	for i, chunk := range chunks {
		file, err := os.Open(chunk.Path)
		if err != nil {
			return 0, common.NewFileError("open", chunk.Path, err)
		}
		scanner := bufio.NewScanner(file)
		scanner.Buffer(make([]byte, common.IO_BUFFER_SIZE), bufio.MaxScanTokenSize*16)
		c := &cursor{chunk: chunk, index: i, file: file, scanner: scanner}
		open = append(open, c)
		if err := c.advance(); err != nil {
			return 0, err
		}
		if c.head != nil {
			h.cursors = append(h.cursors, c)
		}
	}
	heap.Init(h)

	w := bufio.NewWriterSize(out, common.IO_BUFFER_SIZE)
	var unreported int64
	for h.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		top := h.cursors[0]
		if _, err := w.WriteString(record.Serialize(top.head)); err != nil {
			return 0, common.NewFileError("write", outputPath, err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return 0, common.NewFileError("write", outputPath, err)
		}
		merged++
		unreported++

		if err := top.advance(); err != nil {
			return 0, err
		}
		if top.head == nil {
			heap.Pop(h)
		} else {
			heap.Fix(h, 0)
		}

		if unreported == common.PROGRESS_INTERVAL {
			m.progress.merging(merged, total)
			m.stats.AddMerged(unreported)
			unreported = 0
		}
	}
	m.stats.AddMerged(unreported)

	if err := w.Flush(); err != nil {
		return 0, common.NewFileError("write", outputPath, err)
	}
	if err := out.Sync(); err != nil {
		return 0, common.NewFileError("sync", outputPath, err)
	}
	cerr := out.Close()
	out = nil
	if cerr != nil {
		return 0, common.NewFileError("close", outputPath, cerr)
	}

	m.logger.WithFields(logrus.Fields{"Records": merged, "Output": outputPath}).Info("Merge done")
	return merged, nil
}

// flatten returns the single wrapped error when there is only one, so
// callers can keep using errors.As on the concrete type.
func flatten(result *multierror.Error) error {
	if result == nil {
		return nil
	}
	if len(result.Errors) == 1 {
		return result.Errors[0]
	}
	return result
}
