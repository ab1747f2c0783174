package extsort

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/sirupsen/logrus"

	"recsort/common"
	"recsort/record"
	"recsort/stats"
)

// ChunkFile is one sorted run on disk.
type ChunkFile struct {
	Path    string
	Records int64
}

type Chunkinator interface {
	// Chunk consumes input and returns the sorted chunk files written for it.
	// On error every chunk file created so far has been removed.
	Chunk(ctx context.Context, input io.Reader, inputName string) ([]ChunkFile, error)
	// Skipped is the number of malformed lines dropped under SkipMalformed.
	Skipped() int64
}

/**
* ChunkinatorImpl buffers up to maxRecords parsed records, stable sorts them
* and flushes each buffer to its own file named after the session. The serial
* counter belongs to this instance, so two sorts never share file names.
 */
type ChunkinatorImpl struct {
	tempDir        string
	session        string
	maxRecords     int
	compare        record.Comparator
	policy         MalformedPolicy
	estimatedLines int64
	progress       *progressTracker
	logger         logrus.FieldLogger
	stats          stats.StatsBoard

	serial  int
	buffer  []*record.Record
	chunks  []ChunkFile
	created []string
	skipped int64
}

func NewChunkinator(session string, opts Options, progress *progressTracker) Chunkinator {
	opts = opts.withDefaults()
	if progress == nil {
		progress = newProgressTracker(nil)
	}
	return &ChunkinatorImpl{
		tempDir:        opts.TempDir,
		session:        session,
		maxRecords:     opts.ChunkRecords,
		compare:        opts.Key.Comparator(),
		policy:         opts.OnMalformed,
		estimatedLines: opts.EstimatedLines,
		progress:       progress,
		logger:         opts.Logger,
		stats:          opts.Stats,
		buffer:         make([]*record.Record, 0, max(0, min(opts.ChunkRecords, common.PROGRESS_INTERVAL*64))),
	}
}

func (c *ChunkinatorImpl) Skipped() int64 {
	return c.skipped
}

func (c *ChunkinatorImpl) Chunk(ctx context.Context, input io.Reader, inputName string) ([]ChunkFile, error) {
	if c.maxRecords <= 0 {
		return nil, common.NewConfigError("memory bound", fmt.Sprintf("chunk records must be at least 1, got %d", c.maxRecords))
	}
	chunks, err := c.chunk(ctx, input, inputName)
	if err != nil {
		if rmErr := removeFiles(c.created); rmErr != nil {
			c.logger.WithFields(logrus.Fields{"ErrorMsg": rmErr.Error()}).Error("Error removing chunk files of failed run")
		}
		c.created = nil
		return nil, err
	}
	return chunks, nil
}

func (c *ChunkinatorImpl) chunk(ctx context.Context, input io.Reader, inputName string) ([]ChunkFile, error) {
	lines := newLineReader(input)
	var read, unreported, skippedUnreported int64
	for {
		line, tooLong, err := lines.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, common.NewFileError("read", inputName, err)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if line == "" && !tooLong {
			continue
		}

		r, err := lines.parse(line, tooLong)
		if err != nil {
			if c.policy != SkipMalformed {
				return nil, err
			}
			c.logger.WithFields(logrus.Fields{"Line": lines.number, "Input": inputName, "Reason": malformedReason(err)}).Warn("Skipping malformed line")
			c.skipped++
			skippedUnreported++
			continue
		}

		c.buffer = append(c.buffer, r)
		read++
		unreported++
		if len(c.buffer) == c.maxRecords {
			if err := c.flush(); err != nil {
				return nil, err
			}
		}
		if unreported == common.PROGRESS_INTERVAL {
			c.progress.chunking(read, c.estimatedLines)
			c.stats.AddRead(unreported)
			unreported = 0
		}
	}

	if len(c.buffer) > 0 {
		if err := c.flush(); err != nil {
			return nil, err
		}
	}
	c.stats.AddRead(unreported)
	c.stats.AddSkipped(skippedUnreported)
	c.progress.chunked()
	return c.chunks, nil
}

// flush sorts the buffer and writes it to a fresh chunk file.
func (c *ChunkinatorImpl) flush() error {
	slices.SortStableFunc(c.buffer, c.compare)

	path := filepath.Join(c.tempDir, fmt.Sprintf("%s%s-%d%s", common.TEMP_PREFIX, c.session, c.serial, common.CHUNK_EXT))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return common.NewFileError("create", path, err)
	}
	c.created = append(c.created, path)
	c.serial++

	if err := writeRecords(file, c.buffer); err != nil {
		file.Close()
		return common.NewFileError("write", path, err)
	}
	if err := file.Close(); err != nil {
		return common.NewFileError("close", path, err)
	}

	c.chunks = append(c.chunks, ChunkFile{Path: path, Records: int64(len(c.buffer))})
	c.stats.AddChunk()
	c.logger.WithFields(logrus.Fields{"Chunk": path, "Records": len(c.buffer)}).Debug("Chunk flushed")

	clear(c.buffer)
	c.buffer = c.buffer[:0]
	return nil
}

func writeRecords(w io.Writer, records []*record.Record) error {
	bw := bufio.NewWriterSize(w, common.IO_BUFFER_SIZE)
	for _, r := range records {
		if _, err := bw.WriteString(record.Serialize(r)); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func malformedReason(err error) string {
	var fe *common.FormatError
	if errors.As(err, &fe) {
		return fe.Reason
	}
	return err.Error()
}
