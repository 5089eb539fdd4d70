package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"energycli/internal/files"
	"energycli/internal/infrastructure"
	"energycli/pkg/contracts/domain"
)

// SummaryInfo describes the loaded summary.
type SummaryInfo struct {
	Entries  int       `json:"entries"`
	Years    []int     `json:"years"`
	LoadedAt time.Time `json:"loaded_at"`
}

// SummaryService serves queries over the loaded summary. Replace swaps the
// whole summary at once, so a query never sees a mix of two runs. It is
// safe for concurrent use.
type SummaryService struct {
	mu       sync.RWMutex
	summary  domain.Summary
	loaded   bool
	loadedAt time.Time
	metrics  *infrastructure.PipelineMetrics
	logger   *slog.Logger
}

// LoadSummaryService loads the summary from store. When nothing was
// persisted the returned error wraps files.ErrMissingSource.
func LoadSummaryService(ctx context.Context, store files.Store, metrics *infrastructure.PipelineMetrics, logger *slog.Logger) (*SummaryService, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	summary, err := store.Load(ctx)
	if err != nil {
		logger.WarnContext(ctx, "summary load failed", slog.String("error", err.Error()))
		return nil, err
	}

	svc := NewSummaryService(summary, metrics, logger)
	svc.logger.InfoContext(ctx, "summary loaded",
		slog.Int("entries", len(summary)))
	return svc, nil
}

// NewSummaryService wraps an already loaded summary. The service keeps its
// own copy.
func NewSummaryService(summary domain.Summary, metrics *infrastructure.PipelineMetrics, logger *slog.Logger) *SummaryService {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	owned := summary.Clone()
	if owned == nil {
		owned = domain.Summary{}
	}
	return &SummaryService{
		summary:  owned,
		loaded:   true,
		loadedAt: time.Now(),
		metrics:  metrics,
		logger:   infrastructure.WithComponent(logger, "summary_service"),
	}
}

// NewEmptySummaryService creates a service with no summary yet. It reports
// Loaded false until the first Replace.
func NewEmptySummaryService(metrics *infrastructure.PipelineMetrics, logger *slog.Logger) *SummaryService {
	svc := NewSummaryService(nil, metrics, logger)
	svc.loaded = false
	svc.loadedAt = time.Time{}
	return svc
}

// Loaded reports whether a summary has been loaded or built.
func (s *SummaryService) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// QueryAll returns the full summary. The caller owns the returned slice.
func (s *SummaryService) QueryAll(ctx context.Context) domain.Summary {
	s.metrics.RecordQuery(ctx, "all", true)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary.Clone()
}

// QueryYear returns the first entry for year. The boolean is false when the
// summary has no such year.
func (s *SummaryService) QueryYear(ctx context.Context, year int) (domain.SummaryEntry, bool) {
	s.mu.RLock()
	entry, ok := s.summary.Find(year)
	s.mu.RUnlock()

	s.metrics.RecordQuery(ctx, "year", ok)
	if !ok {
		s.logger.DebugContext(ctx, "year not in summary", slog.Int("year", year))
	}
	return entry, ok
}

// Info describes the loaded summary.
func (s *SummaryService) Info() SummaryInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SummaryInfo{
		Entries:  len(s.summary),
		Years:    s.summary.Years(),
		LoadedAt: s.loadedAt,
	}
}

// Replace swaps in a freshly built summary. The service keeps its own copy.
func (s *SummaryService) Replace(ctx context.Context, summary domain.Summary) {
	owned := summary.Clone()
	if owned == nil {
		owned = domain.Summary{}
	}

	s.mu.Lock()
	s.summary = owned
	s.loaded = true
	s.loadedAt = time.Now()
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "summary replaced", slog.Int("entries", len(owned)))
}
