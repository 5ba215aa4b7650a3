package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"paylane/internal/eligibility"
	id "paylane/pkg/domain"
	"paylane/pkg/platform/httputil"
	"paylane/pkg/requestcontext"
)

// Service evaluates eligibility for one client.
type Service interface {
	Evaluate(ctx context.Context, clientID id.ClientID) (eligibility.Result, error)
}

type eligibilityResponse struct {
	Unlocked []id.Capability  `json:"unlocked"`
	Blockers []id.Requirement `json:"blockers"`
}

// Handler serves the eligibility read surface.
type Handler struct {
	eligibility Service
	logger      *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{eligibility: svc, logger: logger}
}

func (h *Handler) RegisterClient(r chi.Router) {
	r.Get("/me/eligibility", h.handleEvaluate)
}

func (h *Handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	result, err := h.eligibility.Evaluate(ctx, requestcontext.ClientID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	resp := eligibilityResponse{Blockers: result.Blockers}
	for _, capability := range []id.Capability{
		id.CapabilityRunPayroll,
		id.CapabilityScheduleAdvisory,
		id.CapabilityBookTaxSession,
		id.CapabilityBookStrategySession,
	} {
		if result.Unlocked[capability] {
			resp.Unlocked = append(resp.Unlocked, capability)
		}
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
