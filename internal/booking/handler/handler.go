package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"paylane/internal/booking/models"
	"paylane/internal/booking/service"
	"paylane/internal/calendar"
	calmodels "paylane/internal/calendar/models"
	"paylane/internal/eligibility"
	id "paylane/pkg/domain"
	dErrors "paylane/pkg/domain-errors"
	"paylane/pkg/platform/httputil"
	"paylane/pkg/requestcontext"
)

// Service exposes the advisory session lifecycle to the HTTP surface.
type Service interface {
	Book(ctx context.Context, req service.BookRequest) (*models.AdvisorySession, error)
	Complete(ctx context.Context, sessionID id.SessionID) (*models.AdvisorySession, error)
	Cancel(ctx context.Context, sessionID id.SessionID) (*models.AdvisorySession, error)
	Get(ctx context.Context, sessionID id.SessionID) (service.SessionView, error)
	ListForClient(ctx context.Context, clientID id.ClientID) ([]service.SessionView, error)
}

type bookRequest struct {
	Kind            string  `json:"kind"`
	Date            string  `json:"date"`
	Start           *string `json:"start,omitempty"`
	DurationMinutes int     `json:"duration_minutes,omitempty"`
}

// Handler serves advisory session booking and lifecycle endpoints.
type Handler struct {
	sessions Service
	logger   *slog.Logger
}

func New(sessions Service, logger *slog.Logger) *Handler {
	return &Handler{sessions: sessions, logger: logger}
}

func (h *Handler) RegisterClient(r chi.Router) {
	r.Post("/me/sessions", h.handleBook)
	r.Get("/me/sessions", h.handleList)
	r.Get("/me/sessions/{sessionID}", h.handleGet)
	r.Post("/me/sessions/{sessionID}/complete", h.handleComplete)
	r.Post("/me/sessions/{sessionID}/cancel", h.handleCancel)
}

func (h *Handler) handleBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[bookRequest](w, r, h.logger, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	kind, err := models.ParseSessionKind(req.Kind)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "date must be YYYY-MM-DD"))
		return
	}
	var start *calmodels.TimeOfDay
	if req.Start != nil {
		tod, err := calmodels.ParseTimeOfDay(*req.Start)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		start = &tod
	}

	session, err := h.sessions.Book(ctx, service.BookRequest{
		ClientID:        requestcontext.ClientID(ctx),
		Kind:            kind,
		Date:            date,
		Start:           start,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		h.writeBookError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, session)
}

// writeBookError attaches the structured payload failed bookings carry:
// the blocker list on eligibility failures, the offending window on slot
// conflicts.
func (h *Handler) writeBookError(w http.ResponseWriter, r *http.Request, err error) {
	var unmet *eligibility.RequirementUnmetError
	if errors.As(err, &unmet) {
		httputil.WriteErrorDetails(w, err, map[string]any{"blockers": unmet.Blockers})
		return
	}
	var conflict *calendar.ConflictError
	if errors.As(err, &conflict) {
		httputil.WriteErrorDetails(w, err, map[string]any{"window": conflict.Window})
		return
	}
	h.logger.WarnContext(r.Context(), "booking rejected",
		"request_id", requestcontext.RequestID(r.Context()),
		"error", err,
	)
	httputil.WriteError(w, err)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	views, err := h.sessions.ListForClient(ctx, requestcontext.ClientID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, views)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.pathSessionID(w, r)
	if !ok {
		return
	}
	view, err := h.sessions.Get(r.Context(), sessionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.sessions.Complete)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.sessions.Cancel)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, op func(context.Context, id.SessionID) (*models.AdvisorySession, error)) {
	sessionID, ok := h.pathSessionID(w, r)
	if !ok {
		return
	}
	session, err := op(r.Context(), sessionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, session)
}

func (h *Handler) pathSessionID(w http.ResponseWriter, r *http.Request) (id.SessionID, bool) {
	sessionID, err := id.ParseSessionID(chi.URLParam(r, "sessionID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid session id"))
		return id.SessionID{}, false
	}
	return sessionID, true
}
