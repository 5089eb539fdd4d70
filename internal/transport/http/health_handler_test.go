package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energycli/internal/services"
	"energycli/internal/shared/testutil"
	"energycli/pkg/contracts"
)

func TestHealthHandler_HealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		summary    *services.SummaryService
		wantStatus int
		wantState  string
	}{
		{
			name:       "summary loaded",
			summary:    services.NewSummaryService(testutil.SampleSummary(), nil, nil),
			wantStatus: http.StatusOK,
			wantState:  "healthy",
		},
		{
			name:       "no summary",
			wantStatus: http.StatusServiceUnavailable,
			wantState:  "degraded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(services.NewHealthService(tt.summary))

			rec := doGet(http.HandlerFunc(h.HealthCheck), "/api/health")
			require.Equal(t, tt.wantStatus, rec.Code)

			var status services.HealthStatus
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
			assert.Equal(t, tt.wantState, status.Status)
		})
	}
}

func TestHealthHandler_Version(t *testing.T) {
	h := NewHealthHandler(services.NewHealthService(nil))

	rec := doGet(http.HandlerFunc(h.Version), "/api/version")
	require.Equal(t, http.StatusOK, rec.Code)

	var info contracts.VersionInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, contracts.Version, info.Version)
}
