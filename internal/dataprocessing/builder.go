package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"energycli/pkg/contracts/domain"
)

// ShareMode selects how the non-renewable share is derived when the
// renewable share is absent.
type ShareMode string

const (
	// ShareModeUnified leaves nonRenewable absent whenever renewable is absent.
	ShareModeUnified ShareMode = "unified"
	// ShareModeLegacy derives nonRenewable whenever total is present, counting
	// an absent renewable share as zero. A zero total yields nonRenewable = 1.
	ShareModeLegacy ShareMode = "legacy"
)

// ParseShareMode accepts "unified" or "legacy", case-insensitively. Empty
// selects unified.
func ParseShareMode(s string) (ShareMode, error) {
	switch ShareMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ShareModeUnified:
		return ShareModeUnified, nil
	case ShareModeLegacy:
		return ShareModeLegacy, nil
	default:
		return "", fmt.Errorf("unknown share mode %q", s)
	}
}

// BuilderConfig holds configuration options for the Builder.
type BuilderConfig struct {
	ShareMode ShareMode
}

// Builder derives the windowed summary from normalized records.
type Builder struct {
	logger    *slog.Logger
	shareMode ShareMode
}

// NewBuilder creates a summary builder. An empty share mode means unified.
func NewBuilder(logger *slog.Logger, config BuilderConfig) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	if config.ShareMode == "" {
		config.ShareMode = ShareModeUnified
	}
	return &Builder{
		logger:    logger.With(slog.String("component", "summary_builder")),
		shareMode: config.ShareMode,
	}
}

// ShareMode reports the configured share mode.
func (b *Builder) ShareMode() ShareMode {
	return b.shareMode
}

// Build orders records newest first, keeps at most window of them and
// computes the share for each. Records with an absent year sort after every
// valid year, in input order. The input slice is not modified. A window of
// zero or less yields an empty summary.
func (b *Builder) Build(ctx context.Context, records []domain.YearRecord, window int) domain.Summary {
	if window <= 0 || len(records) == 0 {
		b.logger.DebugContext(ctx, "empty summary",
			slog.Int("records", len(records)),
			slog.Int("window", window))
		return domain.Summary{}
	}

	sorted := make([]domain.YearRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, c := sorted[i].Year, sorted[j].Year
		if a.Valid != c.Valid {
			return a.Valid
		}
		return a.Valid && a.Int > c.Int
	})

	if len(sorted) > window {
		sorted = sorted[:window]
	}

	summary := make(domain.Summary, 0, len(sorted))
	for _, rec := range sorted {
		summary = append(summary, domain.SummaryEntry{
			Year:       rec.Year,
			Generation: rec.Generation,
			Share:      b.Share(rec.Generation),
			Capacity:   domain.Capacity{},
		})
	}

	b.logger.DebugContext(ctx, "summary built",
		slog.Int("records", len(records)),
		slog.Int("window", window),
		slog.Int("entries", len(summary)),
		slog.String("share_mode", string(b.shareMode)))

	return summary
}

// Share computes the renewable and non-renewable fractions of total
// generation.
func (b *Builder) Share(g domain.GenerationMix) domain.Share {
	var share domain.Share

	if g.Total.Valid && g.Total.Float64 != 0 {
		share.Renewable = domain.Float(g.RenewableSum() / g.Total.Float64)
	}

	switch b.shareMode {
	case ShareModeLegacy:
		if g.Total.Valid {
			share.NonRenewable = domain.Float(1 - share.Renewable.OrZero())
		}
	default:
		if share.Renewable.Valid {
			share.NonRenewable = domain.Float(1 - share.Renewable.Float64)
		}
	}

	return share
}
