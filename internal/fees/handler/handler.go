package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"paylane/internal/fees"
	id "paylane/pkg/domain"
	"paylane/pkg/platform/httputil"
	"paylane/pkg/requestcontext"
)

type quoteRequest struct {
	Tiers []string        `json:"tiers"`
	Base  decimal.Decimal `json:"base"`
}

type quoteResponse struct {
	PerTier map[id.ServiceTier]string `json:"per_tier"`
	Total   string                    `json:"total"`
}

// Handler serves fee quotes. Quoting is pure arithmetic over the supplied
// tier set, so the endpoint needs no store.
type Handler struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

func (h *Handler) RegisterClient(r chi.Router) {
	r.Post("/fees/quote", h.handleQuote)
}

func (h *Handler) handleQuote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[quoteRequest](w, r, h.logger, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	tiers := make([]id.ServiceTier, 0, len(req.Tiers))
	for _, raw := range req.Tiers {
		tier, err := id.ParseServiceTier(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		tiers = append(tiers, tier)
	}

	breakdown, err := fees.Compute(tiers, req.Base)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	resp := quoteResponse{PerTier: make(map[id.ServiceTier]string, len(breakdown.PerTier)), Total: breakdown.Total.StringFixed(2)}
	for tier, fee := range breakdown.PerTier {
		resp.PerTier[tier] = fee.StringFixed(2)
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
