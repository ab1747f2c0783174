package extsort

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"recsort/common"
	"recsort/helpers"
	"recsort/record"
	"recsort/stats"
)

// Result summarizes a completed sort.
type Result struct {
	Session string
	Output  string
	Records int64
	Chunks  int
	Skipped int64
}

type ExtSort interface {
	// Sort sorts the record file at inputPath into outputPath.
	Sort(ctx context.Context, inputPath, outputPath string) (*Result, error)
	// SortReader sorts an input stream; name is only used in errors and logs.
	SortReader(ctx context.Context, input io.Reader, name, outputPath string) (*Result, error)
	// TopFromStream ranks unsorted input in a single pass with an n-sized
	// heap, without writing any file. It also reports skipped lines.
	TopFromStream(ctx context.Context, input io.Reader, name string, n int) ([]*record.Record, int64, error)
}

type ExtSortImpl struct {
	opts Options
}

func NewExtSort(opts Options) (ExtSort, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	opts.Stats.Start()
	return &ExtSortImpl{opts: opts}, nil
}

func (es *ExtSortImpl) Sort(ctx context.Context, inputPath, outputPath string) (*Result, error) {
	file, err := os.Open(inputPath)
	if err != nil {
		return nil, common.NewFileError("open", inputPath, err)
	}
	defer file.Close()

	opts := es.opts
	if opts.EstimatedLines == 0 {
		if opts.EstimatedLines, err = EstimateLines(inputPath); err != nil {
			return nil, err
		}
	}
	CheckDiskSpace(inputPath, opts.TempDir, opts.Logger)

	return (&ExtSortImpl{opts: opts}).SortReader(ctx, file, inputPath, outputPath)
}

/**
* SortReader runs the two phases back to back:
* 1. chunk the input into sorted runs and record them in a manifest
* 2. merge the manifest's runs into a temp file next to outputPath
* The temp file is renamed over outputPath only once the merge succeeded.
 */
func (es *ExtSortImpl) SortReader(ctx context.Context, input io.Reader, name, outputPath string) (*Result, error) {
	opts := es.opts
	session := helpers.NewSessionID()
	logger := opts.Logger.WithFields(logrus.Fields{"Session": session, "Key": opts.Key})
	opts.Logger = logger
	progress := newProgressTracker(opts.Progress)
	progress.report(0)

	logger.WithFields(logrus.Fields{"Input": name, "ChunkRecords": opts.ChunkRecords}).Info("External Sort")

	chunkinator := NewChunkinator(session, opts, progress)
	chunks, err := chunkinator.Chunk(ctx, input, name)
	if err != nil {
		return nil, err
	}

	manifestPath := filepath.Join(opts.TempDir, common.TEMP_PREFIX+session+common.MANIFEST_EXT)
	manifest := &Manifest{Session: session, Key: opts.Key, Chunks: chunks}
	if err := WriteManifest(manifestPath, manifest); err != nil {
		paths := append(manifest.Paths(), manifestPath)
		return nil, flatten(multierror.Append(err, removeFiles(paths)))
	}
	defer func() {
		if err := removeFiles([]string{manifestPath}); err != nil {
			logger.WithFields(logrus.Fields{"ErrorMsg": err.Error()}).Error("Error removing manifest")
		}
	}()

	tempOutput := filepath.Join(filepath.Dir(outputPath), common.TEMP_PREFIX+session+common.TEMP_OUTPUT_EXT)
	merged, err := NewMerger(opts, progress).MergeManifest(ctx, manifestPath, tempOutput)
	if err != nil {
		return nil, err
	}
	if err := os.Rename(tempOutput, outputPath); err != nil {
		if rmErr := os.Remove(tempOutput); rmErr != nil && !os.IsNotExist(rmErr) {
			logger.WithFields(logrus.Fields{"File": tempOutput, "ErrorMsg": rmErr.Error()}).Error("Error removing temp output")
		}
		return nil, common.NewFileError("rename", outputPath, err)
	}
	progress.finish()

	return &Result{
		Session: session,
		Output:  outputPath,
		Records: merged,
		Chunks:  len(chunks),
		Skipped: chunkinator.Skipped(),
	}, nil
}

func (es *ExtSortImpl) TopFromStream(ctx context.Context, input io.Reader, name string, n int) ([]*record.Record, int64, error) {
	return rankStream(ctx, input, name, n, es.opts)
}

// CheckDiskSpace warns when tempDir cannot hold a full copy of the input,
// which is roughly what the chunk files of one sort take up.
func CheckDiskSpace(inputPath, tempDir string, logger logrus.FieldLogger) {
	size, err := helpers.FileSize(inputPath)
	if err != nil {
		return
	}
	free, err := stats.FreeSpace(tempDir)
	if err != nil {
		logger.WithFields(logrus.Fields{"ErrorMsg": err.Error()}).Debug("Could not determine free space")
		return
	}
	if uint64(size) > free {
		logger.WithFields(logrus.Fields{
			"TempDir":    tempDir,
			"FreeBytes":  free,
			"InputBytes": size,
		}).Warn("Temp dir may not have enough free space for the chunk files")
	}
}
