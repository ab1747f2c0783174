package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"recsort/client"
	"recsort/common"
	"recsort/config"
	h "recsort/helpers"
)

const TITLE = "RECSORT"

func main() {
	args, err := h.ParseArgs(os.Args[1:])
	if err != nil {
		if h.IsHelp(err) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	cfg, err := config.Load(args.Global.Config)
	if err != nil {
		logrus.Fatalln(err.Error())
	}
	logger := newLogger(args.Global, cfg)

	if !args.Global.Quiet {
		h.PrintTitle(TITLE)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := client.Init(ctx, args, cfg, os.Stdout, logger); err != nil {
		logger.WithFields(logrus.Fields{"ErrorMsg": err.Error()}).Error("Command failed")
		stop()
		os.Exit(exitCode(err))
	}
}

func newLogger(global h.GlobalArgs, cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	level := cfg.LogLevel
	if global.LogLevel != "" {
		level = global.LogLevel
	}
	if lvl, err := logrus.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	} else {
		fmt.Fprintln(os.Stderr, "unknown log level "+level+", using info")
	}

	format := cfg.LogFormat
	if global.LogFormat != "" {
		format = global.LogFormat
	}
	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}

// exitCode separates bad invocations from runtime failures.
func exitCode(err error) int {
	var ce *common.ConfigError
	var fe *common.FormatError
	switch {
	case errors.As(err, &ce):
		return 2
	case errors.As(err, &fe):
		return 3
	}
	return 1
}
