package http

import (
	"context"

	"energycli/internal/services"
)

// RefreshServiceInterface starts background pipeline runs.
type RefreshServiceInterface interface {
	Trigger(ctx context.Context) (services.RefreshStatus, error)
	Status() services.RefreshStatus
}

var _ RefreshServiceInterface = (*services.RefreshService)(nil)
