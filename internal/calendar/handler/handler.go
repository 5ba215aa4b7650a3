package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"paylane/internal/calendar"
	"paylane/internal/calendar/models"
	id "paylane/pkg/domain"
	dErrors "paylane/pkg/domain-errors"
	"paylane/pkg/platform/httputil"
	"paylane/pkg/requestcontext"
)

// Service exposes the availability calendar to the HTTP surface.
type Service interface {
	CreateFullDayWindow(ctx context.Context, date time.Time, reason string) (*models.BlackoutWindow, error)
	CreatePartialWindow(ctx context.Context, date time.Time, start, end models.TimeOfDay, reason string) (*models.BlackoutWindow, error)
	DeleteWindow(ctx context.Context, windowID id.WindowID) error
	ListWindows(ctx context.Context, year int, month time.Month) ([]*models.BlackoutWindow, error)
	MonthView(ctx context.Context, year int, month time.Month) ([]calendar.Day, error)
	ValidateSlot(ctx context.Context, date time.Time, timeOfDay *models.TimeOfDay) error
}

type createWindowRequest struct {
	Date    string  `json:"date"`
	FullDay bool    `json:"full_day"`
	Start   *string `json:"start,omitempty"`
	End     *string `json:"end,omitempty"`
	Reason  string  `json:"reason"`
}

type validateSlotRequest struct {
	Date  string  `json:"date"`
	Start *string `json:"start,omitempty"`
}

type validateSlotResponse struct {
	Valid bool `json:"valid"`
}

// Handler serves the month view to clients and window management to
// administrators.
type Handler struct {
	calendar Service
	logger   *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{calendar: svc, logger: logger}
}

func (h *Handler) RegisterClient(r chi.Router) {
	r.Get("/calendar/{year}/{month}", h.handleMonthView)
	r.Post("/calendar/validate-slot", h.handleValidateSlot)
}

func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/windows", h.handleCreateWindow)
	r.Get("/windows/{year}/{month}", h.handleListWindows)
	r.Delete("/windows/{windowID}", h.handleDeleteWindow)
}

func (h *Handler) handleMonthView(w http.ResponseWriter, r *http.Request) {
	year, month, ok := h.pathYearMonth(w, r)
	if !ok {
		return
	}
	days, err := h.calendar.MonthView(r.Context(), year, month)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, days)
}

func (h *Handler) handleValidateSlot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[validateSlotRequest](w, r, h.logger, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	date, start, err := parseSlot(req.Date, req.Start)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.calendar.ValidateSlot(ctx, date, start); err != nil {
		var conflict *calendar.ConflictError
		if errors.As(err, &conflict) {
			httputil.WriteErrorDetails(w, err, map[string]any{"window": conflict.Window})
			return
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, validateSlotResponse{Valid: true})
}

func (h *Handler) handleCreateWindow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[createWindowRequest](w, r, h.logger, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "date must be YYYY-MM-DD"))
		return
	}

	var window *models.BlackoutWindow
	if req.FullDay {
		window, err = h.calendar.CreateFullDayWindow(ctx, date, req.Reason)
	} else {
		if req.Start == nil || req.End == nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvariantViolation, "a partial window requires both start and end"))
			return
		}
		var start, end models.TimeOfDay
		if start, err = models.ParseTimeOfDay(*req.Start); err != nil {
			httputil.WriteError(w, err)
			return
		}
		if end, err = models.ParseTimeOfDay(*req.End); err != nil {
			httputil.WriteError(w, err)
			return
		}
		window, err = h.calendar.CreatePartialWindow(ctx, date, start, end, req.Reason)
	}
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, window)
}

func (h *Handler) handleListWindows(w http.ResponseWriter, r *http.Request) {
	year, month, ok := h.pathYearMonth(w, r)
	if !ok {
		return
	}
	windows, err := h.calendar.ListWindows(r.Context(), year, month)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, windows)
}

func (h *Handler) handleDeleteWindow(w http.ResponseWriter, r *http.Request) {
	windowID, err := id.ParseWindowID(chi.URLParam(r, "windowID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid window id"))
		return
	}
	if err := h.calendar.DeleteWindow(r.Context(), windowID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) pathYearMonth(w http.ResponseWriter, r *http.Request) (int, time.Month, bool) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1970 || year > 9999 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid year"))
		return 0, 0, false
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid month"))
		return 0, 0, false
	}
	return year, time.Month(month), true
}

func parseSlot(rawDate string, rawStart *string) (time.Time, *models.TimeOfDay, error) {
	date, err := time.Parse("2006-01-02", rawDate)
	if err != nil {
		return time.Time{}, nil, dErrors.New(dErrors.CodeBadRequest, "date must be YYYY-MM-DD")
	}
	if rawStart == nil {
		return date, nil, nil
	}
	start, err := models.ParseTimeOfDay(*rawStart)
	if err != nil {
		return time.Time{}, nil, err
	}
	return date, &start, nil
}
