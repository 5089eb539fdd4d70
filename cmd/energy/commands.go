package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"energycli/internal/app"
	"energycli/internal/config"
	"energycli/internal/exporter"
	"energycli/internal/files"
	"energycli/internal/infrastructure"
	"energycli/internal/services"
	"energycli/internal/websocket"
)

func runFetch(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs, configFile := newFlagSet("fetch", stderr)
	years := fs.Int("years", config.DefaultWindowYears, "number of most recent years to summarise")
	entity := fs.String("entity", config.DefaultEntity, "ISO 3166-1 alpha-3 code of the entity")
	source := fs.String("source", config.SourceOWID, "row source: owid, ember or file")
	input := fs.String("input", "", "local OWID-format CSV (implies -source file)")
	out := fs.String("out", "", "summary file to write (default from config)")
	shareMode := fs.String("share-mode", "unified", "share computation: unified or legacy")
	if code, done := parseFlags(fs, args); done {
		return code
	}

	env, err := setup(*configFile, func(cfg *config.Config) {
		if isSet(fs, "years") {
			cfg.Summary.Years = *years
		}
		if isSet(fs, "entity") {
			cfg.Source.Entity = strings.ToUpper(*entity)
		}
		if isSet(fs, "input") {
			cfg.Source.InputFile = *input
			cfg.Source.Kind = config.SourceFile
		}
		if isSet(fs, "source") {
			cfg.Source.Kind = *source
		}
		if isSet(fs, "share-mode") {
			cfg.Summary.ShareMode = *shareMode
		}
	})
	if err != nil {
		fmt.Fprintf(stderr, "fetch: %v\n", err)
		return exitError
	}
	defer env.close(ctx)

	ctx = infrastructure.ContextWithTraceID(ctx)
	store, release, err := env.openStore(ctx, env.summaryPath(*out))
	if err != nil {
		fmt.Fprintf(stderr, "fetch: %v\n", err)
		return exitError
	}
	defer release()

	publisher, err := app.NewPublisher(env.cfg, env.logger)
	if err != nil {
		fmt.Fprintf(stderr, "fetch: %v\n", err)
		return exitError
	}
	defer publisher.Close()

	pipeline, err := app.NewPipeline(env.cfg, store, env.telemetry, env.logger,
		app.WithPublisher(publisher, env.cfg, store.Location()))
	if err != nil {
		fmt.Fprintf(stderr, "fetch: %v\n", err)
		return exitError
	}

	result, err := pipeline.Run(ctx, env.cfg.Summary.Years)
	if err != nil {
		fmt.Fprintf(stderr, "fetch failed: %v\n", err)
		return exitError
	}

	env.logger.InfoContext(ctx, "summary saved",
		slog.String("location", store.Location()),
		slog.Int("entries", len(result.Summary)),
		slog.Any("years", result.Summary.Years()),
		slog.Bool("announced", result.Announced))
	fmt.Fprintln(stdout, store.Location())
	return exitOK
}

func runQuery(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs, configFile := newFlagSet("query", stderr)
	file := fs.String("file", "", "summary file to read (default from config)")
	year := fs.Int("year", 0, "print only this year")
	if code, done := parseFlags(fs, args); done {
		return code
	}

	env, err := setup(*configFile, nil)
	if err != nil {
		fmt.Fprintf(stderr, "query: %v\n", err)
		return exitError
	}
	defer env.close(ctx)

	ctx = infrastructure.ContextWithTraceID(ctx)
	store, release, err := env.openStore(ctx, env.summaryPath(*file))
	if err != nil {
		fmt.Fprintf(stderr, "query: %v\n", err)
		return exitError
	}
	defer release()

	svc, err := services.LoadSummaryService(ctx, store, env.telemetry.Metrics, env.logger)
	if err != nil {
		reportLoadError(stderr, "query", store.Location(), err)
		return exitError
	}

	var v interface{}
	if isSet(fs, "year") {
		entry, ok := svc.QueryYear(ctx, *year)
		if !ok {
			fmt.Fprintf(stdout, "No data for year %d\n", *year)
			return exitOK
		}
		v = entry
	} else {
		v = svc.QueryAll(ctx)
	}

	if err := writeJSON(stdout, v); err != nil {
		fmt.Fprintf(stderr, "query: %v\n", err)
		return exitError
	}
	return exitOK
}

func runExport(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs, configFile := newFlagSet("export", stderr)
	file := fs.String("file", "", "summary file to read (default from config)")
	formatName := fs.String("format", string(exporter.FormatCSV), "output format: csv or xlsx")
	out := fs.String("out", "", "output file (default: exports directory)")
	if code, done := parseFlags(fs, args); done {
		return code
	}

	format, err := exporter.ParseFormat(*formatName)
	if err != nil {
		fmt.Fprintf(stderr, "export: %v\n", err)
		return exitUsage
	}

	env, err := setup(*configFile, nil)
	if err != nil {
		fmt.Fprintf(stderr, "export: %v\n", err)
		return exitError
	}
	defer env.close(ctx)

	ctx = infrastructure.ContextWithTraceID(ctx)
	path := env.summaryPath(*file)
	store, release, err := env.openStore(ctx, path)
	if err != nil {
		fmt.Fprintf(stderr, "export: %v\n", err)
		return exitError
	}
	defer release()

	summary, err := store.Load(ctx)
	if err != nil {
		reportLoadError(stderr, "export", store.Location(), err)
		return exitError
	}

	target := *out
	if target == "" {
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		target = filepath.Join(env.paths.ExportsDir, base+format.Extension())
	}

	if err := exporter.Export(format, target, summary, env.logger); err != nil {
		fmt.Fprintf(stderr, "export failed: %v\n", err)
		return exitError
	}
	fmt.Fprintln(stdout, target)
	return exitOK
}

func runServe(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs, configFile := newFlagSet("serve", stderr)
	file := fs.String("file", "", "summary file to serve (default from config)")
	port := fs.Int("port", 8080, "listen port")
	if code, done := parseFlags(fs, args); done {
		return code
	}

	env, err := setup(*configFile, func(cfg *config.Config) {
		if isSet(fs, "port") {
			cfg.Server.Port = *port
		}
	})
	if err != nil {
		fmt.Fprintf(stderr, "serve: %v\n", err)
		return exitError
	}
	defer env.close(ctx)

	store, release, err := env.openStore(ctx, env.summaryPath(*file))
	if err != nil {
		fmt.Fprintf(stderr, "serve: %v\n", err)
		return exitError
	}
	defer release()

	svc, err := services.LoadSummaryService(ctx, store, env.telemetry.Metrics, env.logger)
	if err != nil {
		if !errors.Is(err, files.ErrMissingSource) {
			reportLoadError(stderr, "serve", store.Location(), err)
			return exitError
		}
		env.logger.WarnContext(ctx, "serving without a summary",
			slog.String("location", store.Location()))
		svc = services.NewEmptySummaryService(env.telemetry.Metrics, env.logger)
	}

	hub := websocket.NewHub(env.logger)
	hub.Start()
	pipeline, err := app.NewPipeline(env.cfg, store, env.telemetry, env.logger,
		app.WithObserver(websocket.ProgressObserver(hub)))
	if err != nil {
		hub.Stop()
		fmt.Fprintf(stderr, "serve: %v\n", err)
		return exitError
	}
	refresh := services.NewRefreshService(pipeline, svc, env.cfg.Summary.Years, env.logger)

	application := app.NewApplication(env.cfg, svc, env.telemetry, env.logger,
		app.WithHub(hub), app.WithRefresh(refresh))
	fmt.Fprintf(stdout, "listening on http://localhost:%d\n", env.cfg.Server.Port)
	if err := application.Run(ctx); err != nil {
		fmt.Fprintf(stderr, "serve: %v\n", err)
		return exitError
	}
	return exitOK
}

func reportLoadError(stderr io.Writer, cmd, path string, err error) {
	if errors.Is(err, files.ErrMissingSource) {
		fmt.Fprintf(stderr, "summary file not found: %s\n", path)
		return
	}
	fmt.Fprintf(stderr, "%s: %v\n", cmd, err)
}

func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
