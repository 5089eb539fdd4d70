package http

import (
	"context"

	"energycli/internal/services"
	"energycli/pkg/contracts/domain"
)

// SummaryServiceInterface defines the query operations the summary handler
// needs.
type SummaryServiceInterface interface {
	QueryAll(ctx context.Context) domain.Summary
	QueryYear(ctx context.Context, year int) (domain.SummaryEntry, bool)
	Info() services.SummaryInfo
	Loaded() bool
}

var _ SummaryServiceInterface = (*services.SummaryService)(nil)
