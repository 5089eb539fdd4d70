package sources

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"energycli/internal/config"
	apperrors "energycli/internal/errors"
	"energycli/pkg/contracts/domain"
)

// RowFunc receives one row. Returning an error stops the stream.
type RowFunc func(domain.RawRow) error

// RowSource produces the raw rows of a dataset.
type RowSource interface {
	// Name identifies the source in logs and metrics.
	Name() string
	// Stream calls fn for each row in source order until the data ends, ctx
	// is cancelled or fn fails.
	Stream(ctx context.Context, fn RowFunc) error
}

// userAgent is sent with every outbound request.
const userAgent = config.AppName + "-summary-client/" + config.AppVersion

// New builds the row source selected by cfg.Kind.
func New(cfg config.SourceConfig, logger *slog.Logger) (RowSource, error) {
	client := &http.Client{Timeout: cfg.Timeout}

	switch cfg.Kind {
	case config.SourceOWID:
		return NewCSVSource(client, cfg.URL, cfg.Entity, logger), nil
	case config.SourceFile:
		return NewFileSource(cfg.InputFile, cfg.Entity, logger), nil
	case config.SourceEmber:
		return NewEmberSource(client, EmberOptions{
			BaseURL:   cfg.Ember.BaseURL,
			APIKey:    cfg.Ember.APIKey,
			Entity:    cfg.Entity,
			StartYear: cfg.Ember.StartYear,
		}, logger), nil
	default:
		return nil, apperrors.NewConfigError(fmt.Sprintf("unknown source kind %q", cfg.Kind), nil)
	}
}
