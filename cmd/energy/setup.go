package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"energycli/internal/app"
	"energycli/internal/config"
	"energycli/internal/files"
	"energycli/internal/infrastructure"
)

// environment is what every command needs after configuration is resolved.
type environment struct {
	cfg       *config.Config
	paths     *config.Paths
	logger    *slog.Logger
	telemetry *infrastructure.OTelProviders
}

func newFlagSet(name string, stderr io.Writer) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFile := fs.String("config", "", "path to a YAML configuration file")
	return fs, configFile
}

// parseFlags reports whether the command should stop, and with which code.
func parseFlags(fs *flag.FlagSet, args []string) (int, bool) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK, true
		}
		return exitUsage, true
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(fs.Output(), "unexpected arguments: %v\n", fs.Args())
		return exitUsage, true
	}
	return exitOK, false
}

// isSet reports whether the flag was given on the command line. Flags that
// were not given leave the configured value alone.
func isSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// setup loads configuration, applies flag overrides, then starts logging and
// telemetry.
func setup(configFile string, override func(*config.Config)) (*environment, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if override != nil {
		override(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}

	paths, err := config.NewPaths(cfg)
	if err != nil {
		return nil, err
	}
	if paths.LogFile != "" {
		cfg.Logging.FilePath = paths.LogFile
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, err
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	paths.LogPathResolution(logger)

	telemetry, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return nil, err
	}

	return &environment{
		cfg:       cfg,
		paths:     paths,
		logger:    logger,
		telemetry: telemetry,
	}, nil
}

// close flushes telemetry.
func (e *environment) close(ctx context.Context) {
	if err := e.telemetry.Shutdown(context.WithoutCancel(ctx)); err != nil {
		e.logger.WarnContext(ctx, "telemetry shutdown failed", slog.String("error", err.Error()))
	}
}

// summaryPath returns the -file/-out flag value when given, otherwise the
// configured summary location.
func (e *environment) summaryPath(flagValue string) string {
	if flagValue == "" {
		return e.paths.SummaryFile
	}
	if abs, err := filepath.Abs(flagValue); err == nil {
		return abs
	}
	return flagValue
}

// openStore opens the configured storage backend at path. The returned func
// releases it.
func (e *environment) openStore(ctx context.Context, path string) (files.Store, func(), error) {
	store, err := app.OpenStore(ctx, e.cfg, path, e.logger)
	if err != nil {
		return nil, nil, err
	}
	release := func() {
		if c, ok := store.(io.Closer); ok {
			if err := c.Close(); err != nil {
				e.logger.WarnContext(ctx, "store close failed", slog.String("error", err.Error()))
			}
		}
	}
	return store, release, nil
}
