package app

import (
	"context"
	"log/slog"

	"energycli/internal/config"
	"energycli/internal/dataprocessing"
	apperrors "energycli/internal/errors"
	"energycli/internal/files"
	"energycli/internal/infrastructure"
	"energycli/internal/operations"
	"energycli/internal/publish"
	"energycli/internal/sources"
)

func storeMetadata(cfg *config.Config) files.Metadata {
	return files.Metadata{
		Entity:    cfg.Source.Entity,
		Window:    cfg.Summary.Years,
		ShareMode: cfg.Summary.ShareMode,
	}
}

// NewStore opens the summary blob at path with the configured compression
// and provenance metadata.
func NewStore(cfg *config.Config, path string, logger *slog.Logger) *files.FileStore {
	return files.NewFileStore(files.FileStoreOptions{
		Path:     path,
		Compress: cfg.Storage.Compress,
		Metadata: storeMetadata(cfg),
	}, logger)
}

// OpenStore opens the configured storage backend. path is only used by the
// file backend. A returned store that implements io.Closer must be closed.
func OpenStore(ctx context.Context, cfg *config.Config, path string, logger *slog.Logger) (files.Store, error) {
	switch cfg.Storage.Backend {
	case config.StorageMySQL:
		return files.OpenMySQLStore(ctx, cfg.Storage.DSN, storeMetadata(cfg), logger)
	case config.StorageFile, "":
		return NewStore(cfg, path, logger), nil
	default:
		return nil, apperrors.NewConfigError("unsupported storage backend "+cfg.Storage.Backend, nil)
	}
}

// NewPublisher builds the announcement publisher for cfg.
func NewPublisher(cfg *config.Config, logger *slog.Logger) (publish.Publisher, error) {
	return publish.New(publish.Config{
		Kind:     cfg.Publish.Kind,
		Brokers:  cfg.Publish.Brokers,
		Topic:    cfg.Publish.Topic,
		ClientID: cfg.Publish.ClientID,
		QoS:      byte(cfg.Publish.QoS),
		Timeout:  cfg.Publish.Timeout,
	}, logger)
}

// PipelineOption adds optional collaborators to a pipeline.
type PipelineOption func(*operations.Dependencies)

// WithPublisher announces each persisted summary through p; location is
// reported as the blob location.
func WithPublisher(p publish.Publisher, cfg *config.Config, location string) PipelineOption {
	return func(deps *operations.Dependencies) {
		if _, nop := p.(publish.NopPublisher); nop {
			return
		}
		deps.Publisher = p
		deps.Announcement = publish.Announcement{
			Entity:    cfg.Source.Entity,
			ShareMode: cfg.Summary.ShareMode,
			Location:  location,
		}
	}
}

// WithObserver reports step transitions to o.
func WithObserver(o operations.Observer) PipelineOption {
	return func(deps *operations.Dependencies) {
		deps.Observer = o
	}
}

// NewPipeline builds the ingest, build and persist pipeline for cfg.
func NewPipeline(cfg *config.Config, store files.Store, telemetry *infrastructure.OTelProviders, logger *slog.Logger, opts ...PipelineOption) (*operations.Pipeline, error) {
	shareMode, err := dataprocessing.ParseShareMode(cfg.Summary.ShareMode)
	if err != nil {
		return nil, apperrors.NewConfigError("invalid share mode", err)
	}

	source, err := sources.New(cfg.Source, logger)
	if err != nil {
		return nil, err
	}

	logger.Debug("pipeline configured",
		slog.String("source", source.Name()),
		slog.String("entity", cfg.Source.Entity),
		slog.Int("window", cfg.Summary.Years),
		slog.String("share_mode", string(shareMode)))

	deps := operations.Dependencies{
		Source:     source,
		Normalizer: dataprocessing.NewNormalizer(logger, dataprocessing.OWIDFieldMapping()),
		Builder:    dataprocessing.NewBuilder(logger, dataprocessing.BuilderConfig{ShareMode: shareMode}),
		Store:      store,
		Telemetry:  telemetry,
		Logger:     logger,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	return operations.NewPipeline(deps)
}
