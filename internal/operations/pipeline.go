package operations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"energycli/internal/dataprocessing"
	"energycli/internal/files"
	"energycli/internal/infrastructure"
	"energycli/internal/publish"
	"energycli/internal/sources"
	"energycli/pkg/contracts/domain"
)

// Dependencies are the collaborators of a Pipeline.
type Dependencies struct {
	Source     sources.RowSource
	Normalizer *dataprocessing.Normalizer
	Builder    *dataprocessing.Builder
	Store      files.Store
	Telemetry  *infrastructure.OTelProviders
	Logger     *slog.Logger

	// Publisher, when set, adds an announce step after persist.
	Publisher publish.Publisher
	// Announcement supplies the fields of each announcement the run
	// cannot know, such as entity and blob location.
	Announcement publish.Announcement
	// Observer, when set, receives every step transition.
	Observer Observer
}

// Result summarises a finished run.
type Result struct {
	RunID        string
	RowsIngested int
	Records      int
	Summary      domain.Summary
	Duration     time.Duration
	Announced    bool
	Steps        []*StepState
}

// Pipeline runs ingest, build and persist in order.
type Pipeline struct {
	steps      []Step
	sourceName string
	tracer     trace.Tracer
	metrics    *infrastructure.PipelineMetrics
	observer   Observer
	logger     *slog.Logger
}

// NewPipeline wires ingest, build and persist, plus announce when a
// publisher is given.
func NewPipeline(deps Dependencies) (*Pipeline, error) {
	if deps.Source == nil || deps.Store == nil {
		return nil, fmt.Errorf("pipeline needs a source and a store")
	}
	if deps.Logger == nil {
		deps.Logger = infrastructure.GetLogger()
	}
	if deps.Normalizer == nil {
		deps.Normalizer = dataprocessing.NewNormalizer(deps.Logger, dataprocessing.OWIDFieldMapping())
	}
	if deps.Builder == nil {
		deps.Builder = dataprocessing.NewBuilder(deps.Logger, dataprocessing.BuilderConfig{})
	}
	if deps.Telemetry == nil {
		deps.Telemetry = infrastructure.NoopProviders(deps.Logger)
	}

	logger := infrastructure.WithComponent(deps.Logger, "pipeline")
	steps := []Step{
		NewIngestStep(deps.Source, deps.Normalizer, logger),
		NewBuildStep(deps.Builder),
		NewPersistStep(deps.Store),
	}
	if deps.Publisher != nil {
		steps = append(steps, NewAnnounceStep(deps.Publisher, deps.Announcement, logger))
	}

	return &Pipeline{
		steps:      steps,
		sourceName: deps.Source.Name(),
		tracer:     deps.Telemetry.Tracer,
		metrics:    deps.Telemetry.Metrics,
		observer:   deps.Observer,
		logger:     logger,
	}, nil
}

// Run recomputes the summary over the last window years and persists it.
// The error of the failing step is returned unwrapped; later steps are
// skipped, so nothing is persisted after a failure.
func (p *Pipeline) Run(ctx context.Context, window int) (*Result, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	runID := infrastructure.GetTraceID(ctx)
	start := time.Now()

	ctx, span := p.tracer.Start(ctx, "pipeline.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("pipeline.run_id", runID),
			attribute.String("pipeline.source", p.sourceName),
			attribute.Int("pipeline.window", window),
		),
	)
	defer span.End()

	p.logger.InfoContext(ctx, "pipeline started",
		slog.String("source", p.sourceName),
		slog.Int("window", window))

	state := NewOperationState(runID, window)
	err := p.execute(ctx, state)
	duration := time.Since(start)

	p.metrics.RecordPipelineRun(ctx, p.sourceName, state.RowsIngested, duration, err)
	span.SetAttributes(
		attribute.Int("pipeline.rows_ingested", state.RowsIngested),
		attribute.Int("pipeline.entries", len(state.Summary)),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.logger.ErrorContext(ctx, "pipeline failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", duration))
		return nil, err
	}

	span.SetStatus(codes.Ok, "pipeline completed")
	p.logger.InfoContext(ctx, "pipeline completed",
		slog.Int("rows", state.RowsIngested),
		slog.Int("entries", len(state.Summary)),
		slog.Duration("duration", duration))

	return &Result{
		RunID:        runID,
		RowsIngested: state.RowsIngested,
		Records:      len(state.Records),
		Summary:      state.Summary,
		Duration:     duration,
		Announced:    state.Announced,
		Steps:        state.Steps,
	}, nil
}

func (p *Pipeline) execute(ctx context.Context, state *OperationState) error {
	for i, step := range p.steps {
		st := state.step(step)

		if err := ctx.Err(); err != nil {
			st.Fail(err)
			p.notify(ctx, state, i, st)
			p.skipRemaining(ctx, state, i+1, "run cancelled")
			return err
		}

		stepCtx, span := p.tracer.Start(ctx, "pipeline.step."+step.ID(),
			trace.WithAttributes(attribute.String("step.id", step.ID())))
		st.Start()
		p.notify(ctx, state, i, st)

		err := step.Execute(stepCtx, state)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "step failed")
			span.End()
			st.Fail(err)
			p.notify(ctx, state, i, st)
			p.logger.ErrorContext(ctx, "step failed",
				slog.String("step", step.ID()),
				slog.String("error", err.Error()))
			p.skipRemaining(ctx, state, i+1, fmt.Sprintf("%s failed", step.ID()))
			return err
		}

		span.End()
		st.Complete("")
		p.notify(ctx, state, i, st)
		p.logger.DebugContext(ctx, "step completed",
			slog.String("step", step.ID()),
			slog.Duration("duration", st.Duration()))
	}
	return nil
}

func (p *Pipeline) skipRemaining(ctx context.Context, state *OperationState, from int, reason string) {
	for i := from; i < len(p.steps); i++ {
		st := state.step(p.steps[i])
		st.Skip(reason)
		p.notify(ctx, state, i, st)
	}
}

func (p *Pipeline) notify(ctx context.Context, state *OperationState, index int, st *StepState) {
	if p.observer == nil {
		return
	}
	p.observer.OnProgress(ctx, st.Event(state.RunID, index, len(p.steps)))
}

// StepIDs lists the step IDs in run order.
func (p *Pipeline) StepIDs() []string {
	ids := make([]string, len(p.steps))
	for i, step := range p.steps {
		ids[i] = step.ID()
	}
	return ids
}
