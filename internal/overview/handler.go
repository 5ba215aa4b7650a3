package overview

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"paylane/pkg/platform/httputil"
)

// Handler serves the admin dashboard snapshot.
type Handler struct {
	overview *Service
	logger   *slog.Logger
}

func NewHandler(overview *Service, logger *slog.Logger) *Handler {
	return &Handler{overview: overview, logger: logger}
}

func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/overview", h.handleSnapshot)
}

func (h *Handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.overview.Snapshot(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, snap)
}
