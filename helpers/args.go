package helpers

import (
	"time"

	"github.com/jessevdk/go-flags"
)

// sub-commands
const SORT_CMD = "sort"
const TOP_CMD = "top"
const SWEEP_CMD = "sweep"

const CHUNK_RECORDS_FLAG = "chunk-records"

// Error messages
const MISSING_TOP_SOURCE_ERROR_MSG = "Specify either --sorted <file> or --input <file> for top"
const AMBIGUOUS_TOP_SOURCE_ERROR_MSG = "Use only one of --sorted and --input for top"

type GlobalArgs struct {
	Config      string `long:"config" description:"YAML file with default settings"`
	LogLevel    string `long:"log-level" description:"logrus level (debug, info, warn, error)"`
	LogFormat   string `long:"log-format" choice:"text" choice:"json" description:"log output format"`
	Quiet       bool   `short:"q" long:"quiet" description:"do not print the title banner"`
	MetricsFile string `long:"metrics-file" description:"write run counters to this file in prometheus text format"`
}

type SortArgs struct {
	Input         string `short:"i" long:"input" required:"true" description:"unsorted record file"`
	Output        string `short:"o" long:"output" required:"true" description:"sorted output file"`
	Key           string `short:"k" long:"key" description:"field to sort by"`
	ChunkRecords  int    `long:"chunk-records" description:"maximum records held in memory per chunk"`
	TempDir       string `long:"temp-dir" description:"directory for intermediate chunk files"`
	SkipHeader    bool   `long:"skip-header" description:"ignore the first input line"`
	SkipMalformed bool   `long:"skip-malformed" description:"log and skip malformed lines instead of aborting"`
	Top           int    `long:"top" description:"print the first N records of the sorted output"`
}

type TopArgs struct {
	Sorted        string `long:"sorted" description:"file already sorted by the wanted key"`
	Input         string `short:"i" long:"input" description:"unsorted record file, ranked in a single pass"`
	Key           string `short:"k" long:"key" description:"field to rank by (with --input)"`
	N             int    `short:"n" long:"n" default:"10" description:"number of records"`
	SkipHeader    bool   `long:"skip-header" description:"ignore the first input line"`
	SkipMalformed bool   `long:"skip-malformed" description:"log and skip malformed lines instead of aborting"`
}

type SweepArgs struct {
	TempDir   string        `long:"temp-dir" description:"directory to clean"`
	OlderThan time.Duration `long:"older-than" default:"24h" description:"only remove files older than this"`
}

type Args struct {
	Global GlobalArgs
	Sort   SortArgs
	Top    TopArgs
	Sweep  SweepArgs

	Command string
	// ChunkRecordsSet is true when --chunk-records was given explicitly,
	// so that an explicit 0 still reaches validation.
	ChunkRecordsSet bool
}

func ParseArgs(argv []string) (*Args, error) {
	args := &Args{}
	parser := flags.NewParser(&args.Global, flags.Default)
	sortCmd, err := parser.AddCommand(SORT_CMD, "Sort a record file", "Sort a record file by one field using bounded memory.", &args.Sort)
	if err != nil {
		return nil, err
	}
	if _, err := parser.AddCommand(TOP_CMD, "Print the top N records", "Print the first N records of a sorted file, or rank an unsorted file in one pass.", &args.Top); err != nil {
		return nil, err
	}
	if _, err := parser.AddCommand(SWEEP_CMD, "Remove stale temp files", "Remove chunk, manifest and temp output files left by crashed runs.", &args.Sweep); err != nil {
		return nil, err
	}

	if _, err := parser.ParseArgs(argv); err != nil {
		return nil, err
	}
	args.Command = parser.Active.Name
	if opt := sortCmd.FindOptionByLongName(CHUNK_RECORDS_FLAG); opt != nil {
		args.ChunkRecordsSet = opt.IsSet()
	}
	return args, nil
}

// IsHelp reports whether err is go-flags' response to --help.
func IsHelp(err error) bool {
	if fe, ok := err.(*flags.Error); ok {
		return fe.Type == flags.ErrHelp
	}
	return false
}
