package http

import (
	"net/http"

	"github.com/go-chi/render"

	apierrors "energycli/internal/errors"
)

// RefreshHandler serves the refresh endpoints.
type RefreshHandler struct {
	service      RefreshServiceInterface
	errorHandler *apierrors.ErrorHandler
}

// NewRefreshHandler creates a refresh handler.
func NewRefreshHandler(service RefreshServiceInterface, errorHandler *apierrors.ErrorHandler) *RefreshHandler {
	return &RefreshHandler{service: service, errorHandler: errorHandler}
}

// Trigger handles POST /api/v1/summary/refresh. Progress is streamed on /ws.
func (h *RefreshHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.Trigger(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, status)
}

// Status handles GET /api/v1/summary/refresh
func (h *RefreshHandler) Status(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Status())
}
