package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "energycli/internal/errors"
	"energycli/internal/services"
	"energycli/internal/shared/testutil"
	"energycli/pkg/contracts/domain"
)

func newSummaryRouter(t *testing.T, summary domain.Summary) chi.Router {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	svc := services.NewSummaryService(summary, nil, logger)
	handler := NewSummaryHandler(svc, logger, apierrors.NewErrorHandler(logger, false))

	r := chi.NewRouter()
	r.Mount("/api/v1/summary", handler.Routes())
	return r
}

func doGet(r http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestSummaryHandler_GetSummary(t *testing.T) {
	r := newSummaryRouter(t, testutil.SampleSummary())

	rec := doGet(r, "/api/v1/summary")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json"))

	var got domain.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, []int{2022, 2021}, got.Years())
	assert.InDelta(t, 0.25, got[0].Share.Renewable.Float64, 1e-9)
}

func TestSummaryHandler_GetSummaryEmpty(t *testing.T) {
	r := newSummaryRouter(t, domain.Summary{})

	rec := doGet(r, "/api/v1/summary")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestSummaryHandler_GetYear(t *testing.T) {
	r := newSummaryRouter(t, testutil.SampleSummary())

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantType   string
		wantDetail string
	}{
		{name: "present year", path: "/api/v1/summary/2021", wantStatus: http.StatusOK},
		{name: "absent year", path: "/api/v1/summary/1999", wantStatus: http.StatusNotFound,
			wantType: apierrors.TypeYearNotFound, wantDetail: "No data for year 1999"},
		{name: "non numeric year", path: "/api/v1/summary/abc", wantStatus: http.StatusBadRequest,
			wantType: apierrors.TypeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doGet(r, tt.path)
			require.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantStatus == http.StatusOK {
				var entry domain.SummaryEntry
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
				assert.Equal(t, domain.Int(2021), entry.Year)
				assert.InDelta(t, 0.15, entry.Share.Renewable.Float64, 1e-9)
				assert.InDelta(t, 0.85, entry.Share.NonRenewable.Float64, 1e-9)
				return
			}

			var problem map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
			assert.Equal(t, tt.wantType, problem["type"])
			assert.Equal(t, tt.path, problem["instance"])
			if tt.wantDetail != "" {
				assert.Equal(t, tt.wantDetail, problem["detail"])
			}
		})
	}
}

func TestSummaryHandler_GetInfo(t *testing.T) {
	r := newSummaryRouter(t, testutil.SampleSummary())

	rec := doGet(r, "/api/v1/summary/info")
	require.Equal(t, http.StatusOK, rec.Code)

	var info services.SummaryInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, 2, info.Entries)
	assert.Equal(t, []int{2022, 2021}, info.Years)
}

func TestSummaryHandler_AbsentFieldsAreNull(t *testing.T) {
	r := newSummaryRouter(t, testutil.SampleSummary())

	rec := doGet(r, "/api/v1/summary/2022")
	require.Equal(t, http.StatusOK, rec.Code)

	var entry struct {
		Generation map[string]interface{} `json:"generation"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
	coal, ok := entry.Generation["coal"]
	assert.True(t, ok)
	assert.Nil(t, coal)
}

func TestSummaryHandler_NotLoaded(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	svc := services.NewEmptySummaryService(nil, logger)
	handler := NewSummaryHandler(svc, logger, apierrors.NewErrorHandler(logger, false))
	r := chi.NewRouter()
	r.Mount("/api/v1/summary", handler.Routes())

	for _, path := range []string{"/api/v1/summary", "/api/v1/summary/info", "/api/v1/summary/2021"} {
		t.Run(path, func(t *testing.T) {
			rec := doGet(r, path)
			require.Equal(t, http.StatusNotFound, rec.Code)

			var problem map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
			assert.Equal(t, apierrors.TypeDataNotFound, problem["type"])
			assert.Equal(t, "DATA_NOT_FOUND", problem["error_code"])
		})
	}
}
