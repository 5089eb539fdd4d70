package operations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"energycli/internal/dataprocessing"
	"energycli/internal/files"
	"energycli/internal/publish"
	"energycli/internal/sources"
	"energycli/pkg/contracts/domain"
)

// Step IDs
const (
	StepIngest   = "ingest"
	StepBuild    = "build"
	StepPersist  = "persist"
	StepAnnounce = "announce"
)

// rowBuffer bounds how far the source may run ahead of the normalizer.
const rowBuffer = 256

// IngestStep streams rows from a source and normalizes them as they arrive.
type IngestStep struct {
	BaseStep
	source     sources.RowSource
	normalizer *dataprocessing.Normalizer
	logger     *slog.Logger
}

// NewIngestStep creates the ingest step.
func NewIngestStep(source sources.RowSource, normalizer *dataprocessing.Normalizer, logger *slog.Logger) *IngestStep {
	return &IngestStep{
		BaseStep:   NewBaseStep(StepIngest, "Ingest rows"),
		source:     source,
		normalizer: normalizer,
		logger:     logger,
	}
}

// Execute runs the source as producer and the normalizer as consumer. All
// rows are consumed before it returns. A source error is returned as is.
func (s *IngestStep) Execute(ctx context.Context, state *OperationState) error {
	g, gctx := errgroup.WithContext(ctx)
	rows := make(chan domain.RawRow, rowBuffer)

	g.Go(func() error {
		defer close(rows)
		return s.source.Stream(gctx, func(row domain.RawRow) error {
			select {
			case rows <- row:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	})

	var records []domain.YearRecord
	g.Go(func() error {
		for row := range rows {
			records = append(records, s.normalizer.NormalizeRow(row))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	state.RowsIngested = len(records)
	state.Records = s.normalizer.DedupeYears(ctx, records)

	s.logger.InfoContext(ctx, "rows ingested",
		slog.String("source", s.source.Name()),
		slog.Int("rows", state.RowsIngested),
		slog.Int("records", len(state.Records)))
	return nil
}

// BuildStep derives the windowed summary.
type BuildStep struct {
	BaseStep
	builder *dataprocessing.Builder
}

// NewBuildStep creates the build step.
func NewBuildStep(builder *dataprocessing.Builder) *BuildStep {
	return &BuildStep{
		BaseStep: NewBaseStep(StepBuild, "Build summary"),
		builder:  builder,
	}
}

// Execute implements Step.
func (s *BuildStep) Execute(ctx context.Context, state *OperationState) error {
	state.Summary = s.builder.Build(ctx, state.Records, state.Window)
	return nil
}

// PersistStep saves the summary to the store.
type PersistStep struct {
	BaseStep
	store files.Store
}

// NewPersistStep creates the persist step.
func NewPersistStep(store files.Store) *PersistStep {
	return &PersistStep{
		BaseStep: NewBaseStep(StepPersist, "Persist summary"),
		store:    store,
	}
}

// Execute implements Step.
func (s *PersistStep) Execute(ctx context.Context, state *OperationState) error {
	if state.Summary == nil {
		return fmt.Errorf("no summary to persist")
	}
	if err := s.store.Save(ctx, state.Summary); err != nil {
		return err
	}
	state.Persisted = true
	return nil
}

// AnnounceStep tells subscribers a new summary was persisted. Delivery is
// best effort: the summary is already on disk, so a failed announcement is
// logged and the run still succeeds.
type AnnounceStep struct {
	BaseStep
	publisher publish.Publisher
	template  publish.Announcement
	logger    *slog.Logger
}

// NewAnnounceStep creates the announce step.
func NewAnnounceStep(publisher publish.Publisher, template publish.Announcement, logger *slog.Logger) *AnnounceStep {
	return &AnnounceStep{
		BaseStep:  NewBaseStep(StepAnnounce, "Announce summary"),
		publisher: publisher,
		template:  template,
		logger:    logger,
	}
}

// Execute implements Step.
func (s *AnnounceStep) Execute(ctx context.Context, state *OperationState) error {
	if !state.Persisted {
		return fmt.Errorf("summary was not persisted")
	}

	a := s.template
	a.Type = publish.EventSummaryPersisted
	a.RunID = state.RunID
	a.Window = state.Window
	a.Entries = len(state.Summary)
	a.Years = state.Summary.Years()
	a.GeneratedAt = time.Now().UTC()

	if err := s.publisher.Publish(ctx, a); err != nil {
		s.logger.WarnContext(ctx, "summary announcement failed",
			slog.String("error", err.Error()))
		return nil
	}
	state.Announced = true
	return nil
}
