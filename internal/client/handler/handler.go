package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"paylane/internal/client/models"
	id "paylane/pkg/domain"
	dErrors "paylane/pkg/domain-errors"
	"paylane/pkg/platform/httputil"
	"paylane/pkg/requestcontext"
)

// Service defines the client-aggregate operations the handler exposes.
type Service interface {
	CreateClient(ctx context.Context, companyName string) (*models.Client, error)
	GetClient(ctx context.Context, clientID id.ClientID) (*models.Client, error)
	ListClients(ctx context.Context) ([]*models.Client, error)
	AddMember(ctx context.Context, clientID id.ClientID, classification models.MemberClassification, compensation decimal.Decimal) (*models.Client, error)
	RemoveMember(ctx context.Context, clientID id.ClientID, memberID id.MemberID) (*models.Client, error)
	ActivateTier(ctx context.Context, clientID id.ClientID, tier id.ServiceTier) (*models.Client, error)
	DeactivateTier(ctx context.Context, clientID id.ClientID, tier id.ServiceTier) (*models.Client, error)
	LinkPaymentInstrument(ctx context.Context, clientID id.ClientID, last4 string) (*models.Client, error)
	SuspendClient(ctx context.Context, clientID id.ClientID) (*models.Client, error)
	ReactivateClient(ctx context.Context, clientID id.ClientID) (*models.Client, error)
}

type createClientRequest struct {
	CompanyName string `json:"company_name"`
}

type addMemberRequest struct {
	Classification string          `json:"classification"`
	Compensation   decimal.Decimal `json:"compensation"`
}

type tierRequest struct {
	Tier string `json:"tier"`
}

type paymentInstrumentRequest struct {
	Last4 string `json:"last4"`
}

// Handler serves the client-aggregate endpoints.
type Handler struct {
	clients Service
	logger  *slog.Logger
}

func New(clients Service, logger *slog.Logger) *Handler {
	return &Handler{clients: clients, logger: logger}
}

// RegisterClient mounts the self-service surface. The router is expected
// to carry the client auth middleware already.
func (h *Handler) RegisterClient(r chi.Router) {
	r.Get("/me", h.handleGetSelf)
	r.Post("/me/members", h.handleAddMember)
	r.Delete("/me/members/{memberID}", h.handleRemoveMember)
	r.Post("/me/tiers", h.handleActivateTier)
	r.Delete("/me/tiers/{tier}", h.handleDeactivateTier)
	r.Put("/me/payment-instrument", h.handleLinkPaymentInstrument)
}

// RegisterAdmin mounts the account-management surface behind the admin
// token middleware.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/clients", h.handleCreateClient)
	r.Get("/clients", h.handleListClients)
	r.Get("/clients/{clientID}", h.handleGetClient)
	r.Post("/clients/{clientID}/suspend", h.handleSuspend)
	r.Post("/clients/{clientID}/reactivate", h.handleReactivate)
}

func (h *Handler) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[createClientRequest](w, r, h.logger, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	client, err := h.clients.CreateClient(ctx, req.CompanyName)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, client)
}

func (h *Handler) handleListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.clients.ListClients(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, clients)
}

func (h *Handler) handleGetClient(w http.ResponseWriter, r *http.Request) {
	clientID, ok := h.pathClientID(w, r)
	if !ok {
		return
	}
	client, err := h.clients.GetClient(r.Context(), clientID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, client)
}

func (h *Handler) handleGetSelf(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	client, err := h.clients.GetClient(ctx, requestcontext.ClientID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, client)
}

func (h *Handler) handleAddMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[addMemberRequest](w, r, h.logger, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	classification, err := models.ParseMemberClassification(req.Classification)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	client, err := h.clients.AddMember(ctx, requestcontext.ClientID(ctx), classification, req.Compensation)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, client)
}

func (h *Handler) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	memberID, err := id.ParseMemberID(chi.URLParam(r, "memberID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	client, err := h.clients.RemoveMember(ctx, requestcontext.ClientID(ctx), memberID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, client)
}

func (h *Handler) handleActivateTier(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[tierRequest](w, r, h.logger, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	tier, err := id.ParseServiceTier(req.Tier)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	client, err := h.clients.ActivateTier(ctx, requestcontext.ClientID(ctx), tier)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, client)
}

func (h *Handler) handleDeactivateTier(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tier, err := id.ParseServiceTier(chi.URLParam(r, "tier"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	client, err := h.clients.DeactivateTier(ctx, requestcontext.ClientID(ctx), tier)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, client)
}

func (h *Handler) handleLinkPaymentInstrument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[paymentInstrumentRequest](w, r, h.logger, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	client, err := h.clients.LinkPaymentInstrument(ctx, requestcontext.ClientID(ctx), req.Last4)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, client)
}

func (h *Handler) handleSuspend(w http.ResponseWriter, r *http.Request) {
	h.adminTransition(w, r, h.clients.SuspendClient)
}

func (h *Handler) handleReactivate(w http.ResponseWriter, r *http.Request) {
	h.adminTransition(w, r, h.clients.ReactivateClient)
}

func (h *Handler) adminTransition(w http.ResponseWriter, r *http.Request, op func(context.Context, id.ClientID) (*models.Client, error)) {
	clientID, ok := h.pathClientID(w, r)
	if !ok {
		return
	}
	client, err := op(r.Context(), clientID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, client)
}

func (h *Handler) pathClientID(w http.ResponseWriter, r *http.Request) (id.ClientID, bool) {
	clientID, err := id.ParseClientID(chi.URLParam(r, "clientID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid client id"))
		return id.ClientID{}, false
	}
	return clientID, true
}
