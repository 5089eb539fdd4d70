package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "energycli/internal/errors"
	"energycli/internal/services"
	"energycli/internal/shared/testutil"
)

type stubRefresh struct {
	status services.RefreshStatus
	err    error
	calls  int
}

func (s *stubRefresh) Trigger(context.Context) (services.RefreshStatus, error) {
	s.calls++
	return s.status, s.err
}

func (s *stubRefresh) Status() services.RefreshStatus { return s.status }

func newRefreshRouter(t *testing.T, refresh *stubRefresh) chi.Router {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	errorHandler := apierrors.NewErrorHandler(logger, false)
	svc := services.NewSummaryService(testutil.SampleSummary(), nil, logger)
	handler := NewSummaryHandler(svc, logger, errorHandler).
		WithRefresh(NewRefreshHandler(refresh, errorHandler))

	r := chi.NewRouter()
	r.Mount("/api/v1/summary", handler.Routes())
	return r
}

func TestRefreshHandler_Trigger(t *testing.T) {
	started := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	refresh := &stubRefresh{status: services.RefreshStatus{State: services.RefreshRunning, RunID: "run-1", StartedAt: &started}}
	r := newRefreshRouter(t, refresh)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/summary/refresh", nil))

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 1, refresh.calls)
	var got services.RefreshStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, services.RefreshRunning, got.State)
	assert.Equal(t, "run-1", got.RunID)
}

func TestRefreshHandler_TriggerConflict(t *testing.T) {
	refresh := &stubRefresh{
		status: services.RefreshStatus{State: services.RefreshRunning, RunID: "run-1"},
		err:    apierrors.ErrRefreshInProgress,
	}
	r := newRefreshRouter(t, refresh)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/summary/refresh", nil))

	require.Equal(t, http.StatusConflict, rec.Code)
	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, apierrors.TypeConflict, problem["type"])
}

func TestRefreshHandler_Status(t *testing.T) {
	refresh := &stubRefresh{status: services.RefreshStatus{State: services.RefreshFailed, Error: "source unavailable"}}
	r := newRefreshRouter(t, refresh)

	rec := doGet(r, "/api/v1/summary/refresh")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"state":"failed","error":"source unavailable"}`, rec.Body.String())
	assert.Zero(t, refresh.calls)
}

func TestSummaryHandler_NoRefreshRoutesByDefault(t *testing.T) {
	r := newSummaryRouter(t, testutil.SampleSummary())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/summary/refresh", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
