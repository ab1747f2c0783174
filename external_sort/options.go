package extsort

import (
	"strconv"

	"github.com/sirupsen/logrus"

	"recsort/common"
	"recsort/helpers"
	"recsort/record"
	"recsort/stats"
)

// MalformedPolicy decides what happens to a line the record codec rejects.
type MalformedPolicy int

const (
	// AbortOnMalformed fails the whole sort on the first malformed line.
	AbortOnMalformed MalformedPolicy = iota
	// SkipMalformed logs the line at warn level and continues.
	SkipMalformed
)

func (p MalformedPolicy) String() string {
	switch p {
	case AbortOnMalformed:
		return "abort"
	case SkipMalformed:
		return "skip"
	}
	return "MalformedPolicy(" + strconv.Itoa(int(p)) + ")"
}

type Options struct {
	// TempDir holds the chunk files. It must exist before a sort starts.
	TempDir string
	// ChunkRecords is the memory bound M: records buffered before a flush.
	ChunkRecords int
	Key          record.SortKey
	OnMalformed  MalformedPolicy
	// EstimatedLines is the progress denominator for the chunking phase.
	// Sort fills it in from the input file when zero.
	EstimatedLines int64
	Progress       ProgressFunc
	Logger         logrus.FieldLogger
	// Stats receives run counters. NewExtSort starts the board; stopping it
	// is left to the caller, after the last sort using it has returned.
	Stats stats.StatsBoard
}

// DefaultOptions sorts by volume with the default memory bound.
func DefaultOptions(tempDir string) Options {
	return Options{
		TempDir:      tempDir,
		ChunkRecords: common.DEFAULT_CHUNK_RECORDS,
		Key:          record.VOLUME,
	}
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	if o.Stats == nil {
		o.Stats = stats.NewNopBoard()
	}
	return o
}

func (o Options) validate() error {
	if o.ChunkRecords <= 0 {
		return common.NewConfigError("memory bound", "chunk records must be at least 1, got "+strconv.Itoa(o.ChunkRecords))
	}
	if !o.Key.Valid() {
		return common.NewConfigError("sort key", "unsupported key "+strconv.Quote(string(o.Key)))
	}
	if o.OnMalformed != AbortOnMalformed && o.OnMalformed != SkipMalformed {
		return common.NewConfigError("malformed policy", o.OnMalformed.String())
	}
	if o.TempDir == "" {
		return common.NewConfigError("temp dir", "not set")
	}
	if !helpers.IsDir(o.TempDir) {
		return common.NewConfigError("temp dir", o.TempDir+" does not exist or is not a directory")
	}
	return nil
}
