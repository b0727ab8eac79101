package stats

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"medfund/pkg/platform/httputil"
)

// Handler serves the platform statistics route.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler creates a stats Handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the stats route.
func (h *Handler) Register(r chi.Router) {
	r.Get("/stats", h.handlePlatformStats)
}

func (h *Handler) handlePlatformStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.PlatformStats(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "stats computation failed", "error", err.Error())
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}
