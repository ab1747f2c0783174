package client

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"recsort/common"
	"recsort/config"
	extsort "recsort/external_sort"
	"recsort/helpers"
	"recsort/record"
	"recsort/stats"
)

/**
 * Init resolves flags against the config file defaults and runs the selected
 * command. Flags win over the config file; a missing sort key is asked for
 * interactively when stdin is a terminal.
 */
func Init(ctx context.Context, args *helpers.Args, cfg *config.Config, out io.Writer, logger logrus.FieldLogger) error {
	registry := prometheus.NewRegistry()
	board := stats.NewStatsBoard(registry)
	board.Start()
	defer board.Stop()

	client := NewClient(out, logger, board)
	err := run(ctx, client, NewPrompter(), args, cfg)

	if args.Global.MetricsFile != "" {
		if werr := prometheus.WriteToTextfile(args.Global.MetricsFile, registry); werr != nil {
			logger.WithFields(logrus.Fields{"ErrorMsg": werr.Error(), "File": args.Global.MetricsFile}).Error("Error writing metrics file")
		}
	}
	return err
}

func run(ctx context.Context, client Client, prompter Prompter, args *helpers.Args, cfg *config.Config) error {
	switch args.Command {
	case helpers.SORT_CMD:
		req, err := sortRequest(args, cfg, prompter)
		if err != nil {
			return err
		}
		_, err = client.Sort(ctx, req)
		return err
	case helpers.TOP_CMD:
		req, err := topRequest(args, cfg, prompter)
		if err != nil {
			return err
		}
		_, err = client.Top(ctx, req)
		return err
	case helpers.SWEEP_CMD:
		req := SweepRequest{TempDir: args.Sweep.TempDir, OlderThan: args.Sweep.OlderThan}
		if req.TempDir == "" {
			req.TempDir = cfg.TempDir
		}
		_, err := client.Sweep(req)
		return err
	}
	return errors.Errorf("unknown command %q", args.Command)
}

func sortRequest(args *helpers.Args, cfg *config.Config, prompter Prompter) (SortRequest, error) {
	a := args.Sort
	key, err := resolveKey(a.Key, cfg, prompter)
	if err != nil {
		return SortRequest{}, err
	}
	req := SortRequest{
		Input:        a.Input,
		Output:       a.Output,
		Key:          key,
		ChunkRecords: cfg.ChunkRecords,
		TempDir:      cfg.TempDir,
		SkipHeader:   a.SkipHeader,
		OnMalformed:  malformedPolicy(a.SkipMalformed || cfg.SkipMalformed),
		Top:          a.Top,
	}
	if args.ChunkRecordsSet {
		req.ChunkRecords = a.ChunkRecords
	}
	if a.TempDir != "" {
		req.TempDir = a.TempDir
	}
	return req, nil
}

func topRequest(args *helpers.Args, cfg *config.Config, prompter Prompter) (TopRequest, error) {
	a := args.Top
	req := TopRequest{
		Sorted:      a.Sorted,
		Input:       a.Input,
		N:           a.N,
		SkipHeader:  a.SkipHeader,
		OnMalformed: malformedPolicy(a.SkipMalformed || cfg.SkipMalformed),
	}
	if a.Input != "" {
		key, err := resolveKey(a.Key, cfg, prompter)
		if err != nil {
			return TopRequest{}, err
		}
		req.Key = key
	} else if a.Key != "" {
		// only used to label the output; the sorted file's order is trusted
		key, err := record.ParseSortKey(a.Key)
		if err != nil {
			return TopRequest{}, err
		}
		req.Key = key
	}
	return req, nil
}

func resolveKey(flagKey string, cfg *config.Config, prompter Prompter) (record.SortKey, error) {
	switch {
	case flagKey != "":
		return record.ParseSortKey(flagKey)
	case cfg.Key != "":
		return record.ParseSortKey(cfg.Key)
	case prompter != nil && helpers.IsInteractive():
		return prompter.SelectSortKey()
	}
	return "", common.NewConfigError("sort key", "not set; pass --key or set key in the config file")
}

func malformedPolicy(skip bool) extsort.MalformedPolicy {
	if skip {
		return extsort.SkipMalformed
	}
	return extsort.AbortOnMalformed
}
