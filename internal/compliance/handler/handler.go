package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"paylane/internal/compliance/models"
	"paylane/internal/compliance/service"
	id "paylane/pkg/domain"
	dErrors "paylane/pkg/domain-errors"
	"paylane/pkg/platform/httputil"
	"paylane/pkg/requestcontext"
)

// Service exposes the compliance issue tracker to the HTTP surface.
type Service interface {
	Create(ctx context.Context, clientID id.ClientID, severity models.Severity, description string) (*models.ComplianceIssue, error)
	Acknowledge(ctx context.Context, issueID id.IssueID) (*models.ComplianceIssue, error)
	Escalate(ctx context.Context, issueID id.IssueID, to models.Severity) (*models.ComplianceIssue, error)
	Resolve(ctx context.Context, issueID id.IssueID) (*models.ComplianceIssue, error)
	Get(ctx context.Context, issueID id.IssueID) (service.IssueView, error)
	ListOpen(ctx context.Context, clientID id.ClientID) ([]service.IssueView, error)
}

type createIssueRequest struct {
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

type escalateRequest struct {
	Severity string `json:"severity"`
}

// Handler serves compliance endpoints. Issue management is an admin
// surface; clients get a read-only view of their own open issues.
type Handler struct {
	issues Service
	logger *slog.Logger
}

func New(issues Service, logger *slog.Logger) *Handler {
	return &Handler{issues: issues, logger: logger}
}

func (h *Handler) RegisterClient(r chi.Router) {
	r.Get("/me/issues", h.handleListOwn)
}

func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/clients/{clientID}/issues", h.handleCreate)
	r.Get("/issues", h.handleListOpen)
	r.Get("/issues/{issueID}", h.handleGet)
	r.Post("/issues/{issueID}/acknowledge", h.handleAcknowledge)
	r.Post("/issues/{issueID}/escalate", h.handleEscalate)
	r.Post("/issues/{issueID}/resolve", h.handleResolve)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	clientID, err := id.ParseClientID(chi.URLParam(r, "clientID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid client id"))
		return
	}
	req, ok := httputil.DecodeAndPrepare[createIssueRequest](w, r, h.logger, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	severity, err := models.ParseSeverity(req.Severity)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	issue, err := h.issues.Create(ctx, clientID, severity, req.Description)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, issue)
}

func (h *Handler) handleListOwn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	views, err := h.issues.ListOpen(ctx, requestcontext.ClientID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, views)
}

func (h *Handler) handleListOpen(w http.ResponseWriter, r *http.Request) {
	views, err := h.issues.ListOpen(r.Context(), id.ClientID{})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, views)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	issueID, ok := h.pathIssueID(w, r)
	if !ok {
		return
	}
	view, err := h.issues.Get(r.Context(), issueID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.issues.Acknowledge)
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.issues.Resolve)
}

func (h *Handler) handleEscalate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	issueID, ok := h.pathIssueID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[escalateRequest](w, r, h.logger, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	severity, err := models.ParseSeverity(req.Severity)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	issue, err := h.issues.Escalate(ctx, issueID, severity)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, issue)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, op func(context.Context, id.IssueID) (*models.ComplianceIssue, error)) {
	issueID, ok := h.pathIssueID(w, r)
	if !ok {
		return
	}
	issue, err := op(r.Context(), issueID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, issue)
}

func (h *Handler) pathIssueID(w http.ResponseWriter, r *http.Request) (id.IssueID, bool) {
	issueID, err := id.ParseIssueID(chi.URLParam(r, "issueID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid issue id"))
		return id.IssueID{}, false
	}
	return issueID, true
}
