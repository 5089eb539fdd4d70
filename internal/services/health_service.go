package services

import (
	"runtime"
	"time"

	"energycli/internal/config"
)

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Summary   *SummaryInfo           `json:"summary,omitempty"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
}

// HealthService provides health check functionality
type HealthService struct {
	summary   *SummaryService
	startTime time.Time
}

// NewHealthService creates a health service reporting on summary.
func NewHealthService(summary *SummaryService) *HealthService {
	return &HealthService{
		summary:   summary,
		startTime: time.Now(),
	}
}

// Check reports liveness and what summary is being served.
func (h *HealthService) Check() HealthStatus {
	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   config.AppVersion,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Runtime: map[string]interface{}{
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}

	if h.summary == nil || !h.summary.Loaded() {
		status.Status = "degraded"
		return status
	}
	info := h.summary.Info()
	status.Summary = &info
	return status
}
