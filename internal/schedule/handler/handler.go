package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"paylane/internal/eligibility"
	"paylane/internal/schedule"
	"paylane/internal/schedule/service"
	id "paylane/pkg/domain"
	dErrors "paylane/pkg/domain-errors"
	"paylane/pkg/platform/httputil"
	"paylane/pkg/requestcontext"
)

// Service exposes payroll scheduling to the HTTP surface.
type Service interface {
	PreviewNext(ctx context.Context, rule schedule.Rule) (time.Time, error)
	ConfirmRun(ctx context.Context, clientID id.ClientID, rule schedule.Rule, base decimal.Decimal) (service.Confirmation, error)
}

type ruleRequest struct {
	Frequency  string `json:"frequency"`
	DayOfWeek  *int   `json:"day_of_week,omitempty"`
	DayOfMonth *int   `json:"day_of_month,omitempty"`
}

type confirmRequest struct {
	Rule ruleRequest     `json:"rule"`
	Base decimal.Decimal `json:"base"`
}

type previewResponse struct {
	RunDate string `json:"run_date"`
}

func (r ruleRequest) toRule() (schedule.Rule, error) {
	frequency, err := schedule.ParseFrequency(r.Frequency)
	if err != nil {
		return schedule.Rule{}, err
	}
	rule := schedule.Rule{Frequency: frequency, DayOfMonth: r.DayOfMonth}
	if r.DayOfWeek != nil {
		if *r.DayOfWeek < 0 || *r.DayOfWeek > 6 {
			return schedule.Rule{}, dErrors.New(dErrors.CodeInvalidScheduleRule, "day_of_week must be 0 through 6")
		}
		day := time.Weekday(*r.DayOfWeek)
		rule.DayOfWeek = &day
	}
	return rule, rule.Validate()
}

// Handler serves payroll schedule previews and run confirmations.
type Handler struct {
	schedule Service
	logger   *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{schedule: svc, logger: logger}
}

func (h *Handler) RegisterClient(r chi.Router) {
	r.Post("/me/payroll/preview", h.handlePreview)
	r.Post("/me/payroll/confirm", h.handleConfirm)
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[ruleRequest](w, r, h.logger, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	rule, err := req.toRule()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	runDate, err := h.schedule.PreviewNext(ctx, rule)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, previewResponse{RunDate: runDate.Format("2006-01-02")})
}

func (h *Handler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[confirmRequest](w, r, h.logger, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	rule, err := req.Rule.toRule()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	conf, err := h.schedule.ConfirmRun(ctx, requestcontext.ClientID(ctx), rule, req.Base)
	if err != nil {
		writeGateAware(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, conf)
}

// writeGateAware surfaces the ordered blocker list when the eligibility
// gate rejected the run.
func writeGateAware(w http.ResponseWriter, err error) {
	var unmet *eligibility.RequirementUnmetError
	if errors.As(err, &unmet) {
		httputil.WriteErrorDetails(w, err, map[string]any{"blockers": unmet.Blockers})
		return
	}
	httputil.WriteError(w, err)
}
