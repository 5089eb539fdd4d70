package app

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energycli/internal/config"
	apperrors "energycli/internal/errors"
	"energycli/internal/infrastructure"
	customMiddleware "energycli/internal/middleware"
	"energycli/internal/services"
	"energycli/internal/shared/testutil"
)

func newTestApplication(t *testing.T, mutate func(*config.Config)) *Application {
	t.Helper()
	cfg := config.Default()
	cfg.Server.RateLimit.Enabled = false
	if mutate != nil {
		mutate(cfg)
	}
	logger := testLogger(t)
	summary := services.NewSummaryService(testutil.SampleSummary(), nil, logger)
	return NewApplication(cfg, summary, infrastructure.NoopProviders(logger), logger)
}

func serve(a *Application, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func problemType(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	s, _ := body["type"].(string)
	return s
}

func TestApplication_Routes(t *testing.T) {
	a := newTestApplication(t, nil)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantType   string
	}{
		{name: "summary", method: http.MethodGet, path: "/api/v1/summary", wantStatus: http.StatusOK},
		{name: "year", method: http.MethodGet, path: "/api/v1/summary/2022", wantStatus: http.StatusOK},
		{name: "absent year", method: http.MethodGet, path: "/api/v1/summary/1990",
			wantStatus: http.StatusNotFound, wantType: apperrors.TypeYearNotFound},
		{name: "health", method: http.MethodGet, path: "/api/health", wantStatus: http.StatusOK},
		{name: "version", method: http.MethodGet, path: "/api/version", wantStatus: http.StatusOK},
		{name: "unknown route", method: http.MethodGet, path: "/nope",
			wantStatus: http.StatusNotFound, wantType: apperrors.TypeNotFound},
		{name: "wrong method", method: http.MethodPost, path: "/api/v1/summary",
			wantStatus: http.StatusMethodNotAllowed, wantType: apperrors.TypeMethod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(a, tt.method, tt.path)
			require.Equal(t, tt.wantStatus, rec.Code)
			assert.NotEmpty(t, rec.Header().Get(customMiddleware.RequestIDHeader))
			assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
			if tt.wantType != "" {
				assert.Equal(t, tt.wantType, problemType(t, rec))
			}
		})
	}
}

func TestApplication_NoSummaryIsDegraded(t *testing.T) {
	cfg := config.Default()
	logger := testLogger(t)
	a := NewApplication(cfg, nil, nil, logger)

	assert.Equal(t, http.StatusServiceUnavailable, serve(a, http.MethodGet, "/api/health").Code)
	for _, path := range []string{"/api/v1/summary", "/api/v1/summary/2021", "/api/v1/summary/info"} {
		rec := serve(a, http.MethodGet, path)
		require.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Equal(t, apperrors.TypeDataNotFound, problemType(t, rec), path)
	}
	rec := serve(a, http.MethodGet, "/nope")
	assert.Equal(t, apperrors.TypeNotFound, problemType(t, rec))
}

func TestApplication_RateLimit(t *testing.T) {
	a := newTestApplication(t, func(cfg *config.Config) {
		cfg.Server.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 1}
	})

	assert.Equal(t, http.StatusOK, serve(a, http.MethodGet, "/api/health").Code)
	rec := serve(a, http.MethodGet, "/api/health")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, apperrors.TypeRateLimit, problemType(t, rec))
}

func TestApplication_MetricsEndpoint(t *testing.T) {
	logger := testLogger(t)
	providers, err := infrastructure.InitializeOTel(config.TelemetryConfig{
		Enabled:        true,
		TraceExporter:  "none",
		MetricExporter: "prometheus",
		SampleRatio:    1,
	}, logger)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	cfg := config.Default()
	cfg.Server.RateLimit.Enabled = false
	a := NewApplication(cfg, services.NewSummaryService(testutil.SampleSummary(), providers.Metrics, logger), providers, logger)

	require.Equal(t, http.StatusOK, serve(a, http.MethodGet, "/api/v1/summary/2021").Code)

	rec := serve(a, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "summary_queries")
	assert.Contains(t, rec.Body.String(), `http_route="/api/v1/summary/{year}"`)
}

func TestApplication_ServeAndShutdown(t *testing.T) {
	a := newTestApplication(t, func(cfg *config.Config) {
		cfg.Server.ShutdownTimeout = 5 * time.Second
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/api/v1/summary")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "2022")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}
