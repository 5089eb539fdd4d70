package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "energycli/internal/errors"
	"energycli/internal/middleware"
)

// SummaryHandler serves the summary query endpoints.
type SummaryHandler struct {
	service      SummaryServiceInterface
	refresh      *RefreshHandler
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewSummaryHandler creates a new summary handler with RFC 7807 error handling
func NewSummaryHandler(service SummaryServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *SummaryHandler {
	return &SummaryHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "summary_handler")),
		errorHandler: errorHandler,
	}
}

// WithRefresh adds the refresh endpoints to the summary routes.
func (h *SummaryHandler) WithRefresh(refresh *RefreshHandler) *SummaryHandler {
	h.refresh = refresh
	return h
}

// Routes returns the summary routes
func (h *SummaryHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	if h.refresh != nil {
		r.Post("/refresh", h.refresh.Trigger)
		r.Get("/refresh", h.refresh.Status)
	}

	r.Group(func(r chi.Router) {
		r.Use(h.requireSummary)
		r.Get("/", h.GetSummary)
		r.Get("/info", h.GetInfo)
		r.Get("/{year}", h.GetYear)
	})

	return r
}

// requireSummary answers DATA_NOT_FOUND until a summary has been loaded.
func (h *SummaryHandler) requireSummary(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.service.Loaded() {
			h.errorHandler.HandleError(w, r, apierrors.ErrDataNotFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetSummary handles GET /api/v1/summary
func (h *SummaryHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.QueryAll(r.Context()))
}

// GetInfo handles GET /api/v1/summary/info
func (h *SummaryHandler) GetInfo(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Info())
}

// GetYear handles GET /api/v1/summary/{year}
func (h *SummaryHandler) GetYear(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "year")
	year, err := strconv.Atoi(raw)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("year", "year must be an integer"))
		return
	}

	entry, ok := h.service.QueryYear(r.Context(), year)
	if !ok {
		h.logger.DebugContext(r.Context(), "year not found",
			slog.Int("year", year),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		h.errorHandler.HandleError(w, r, apierrors.YearNotFoundError(year))
		return
	}

	render.JSON(w, r, entry)
}
