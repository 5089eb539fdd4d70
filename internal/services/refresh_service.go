package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	apperrors "energycli/internal/errors"
	"energycli/internal/infrastructure"
	"energycli/internal/operations"
)

// Refresh states
const (
	RefreshIdle      = "idle"
	RefreshRunning   = "running"
	RefreshSucceeded = "succeeded"
	RefreshFailed    = "failed"
)

// Runner runs the fetch pipeline once.
type Runner interface {
	Run(ctx context.Context, window int) (*operations.Result, error)
}

// RefreshStatus describes the latest refresh.
type RefreshStatus struct {
	State      string     `json:"state"`
	RunID      string     `json:"run_id,omitempty"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Entries    int        `json:"entries,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// RefreshService reruns the pipeline in the background and swaps the
// result into the summary service. At most one run is in flight.
type RefreshService struct {
	runner  Runner
	summary *SummaryService
	window  int
	logger  *slog.Logger

	mu     sync.Mutex
	status RefreshStatus
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRefreshService creates an idle refresh service.
func NewRefreshService(runner Runner, summary *SummaryService, window int, logger *slog.Logger) *RefreshService {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &RefreshService{
		runner:  runner,
		summary: summary,
		window:  window,
		logger:  infrastructure.WithComponent(logger, "refresh_service"),
		status:  RefreshStatus{State: RefreshIdle},
	}
}

// Trigger starts a run detached from ctx's cancellation and returns its
// status. The run reuses the trace ID of ctx when it has one. It fails with
// ErrRefreshInProgress while another run is active.
func (r *RefreshService) Trigger(ctx context.Context) (RefreshStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status.State == RefreshRunning {
		return r.status, apperrors.ErrRefreshInProgress
	}

	runCtx := infrastructure.EnsureTraceID(context.WithoutCancel(ctx))
	runCtx, r.cancel = context.WithCancel(runCtx)

	now := time.Now().UTC()
	r.status = RefreshStatus{
		State:     RefreshRunning,
		RunID:     infrastructure.GetTraceID(runCtx),
		StartedAt: &now,
	}
	r.logger.InfoContext(runCtx, "refresh started", slog.Int("window", r.window))

	r.wg.Add(1)
	go r.run(runCtx)
	return r.status, nil
}

func (r *RefreshService) run(ctx context.Context) {
	defer r.wg.Done()

	result, err := r.runner.Run(ctx, r.window)
	if err == nil {
		r.summary.Replace(ctx, result.Summary)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	r.status.FinishedAt = &now
	if err != nil {
		r.status.State = RefreshFailed
		r.status.Error = err.Error()
		r.logger.ErrorContext(ctx, "refresh failed", slog.String("error", err.Error()))
		return
	}
	r.status.State = RefreshSucceeded
	r.status.Entries = len(result.Summary)
	r.logger.InfoContext(ctx, "refresh completed",
		slog.Int("entries", len(result.Summary)),
		slog.Duration("duration", result.Duration))
}

// Status returns the latest refresh status.
func (r *RefreshService) Status() RefreshStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Close cancels an in-flight run and waits for it to finish.
func (r *RefreshService) Close() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.mu.Unlock()
	r.wg.Wait()
}
