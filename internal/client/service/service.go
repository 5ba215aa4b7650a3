package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	clientmetrics "paylane/internal/client/metrics"
	"paylane/internal/client/models"
	id "paylane/pkg/domain"
	dErrors "paylane/pkg/domain-errors"
	"paylane/pkg/platform/events"
	"paylane/pkg/platform/sentinel"
	"paylane/pkg/requestcontext"
)

// ClientStore persists the client aggregate. The Execute method holds the
// entity lock (mutex or FOR UPDATE) across validation and mutation.
type ClientStore interface {
	Create(ctx context.Context, client *models.Client) error
	FindByID(ctx context.Context, clientID id.ClientID) (*models.Client, error)
	List(ctx context.Context) ([]*models.Client, error)
	Execute(ctx context.Context, clientID id.ClientID, validate func(*models.Client) error, apply func(*models.Client)) (*models.Client, error)
}

// EventPublisher hands engine events to the notification collaborator.
type EventPublisher interface {
	Emit(ctx context.Context, event events.Event)
}

// Service orchestrates the client aggregate: roster changes, tier
// subscriptions, payment-instrument linkage, and soft status transitions.
type Service struct {
	clients   ClientStore
	publisher EventPublisher
	logger    *slog.Logger
	metrics   *clientmetrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithPublisher(publisher EventPublisher) Option {
	return func(s *Service) { s.publisher = publisher }
}

func WithMetrics(m *clientmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(clients ClientStore, opts ...Option) *Service {
	s := &Service{clients: clients, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateClient registers a new client account with an empty roster.
func (s *Service) CreateClient(ctx context.Context, companyName string) (*models.Client, error) {
	client, err := models.NewClient(id.ClientID(uuid.New()), companyName, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, dErrors.MessageOf(err))
		}
		return nil, err
	}
	if err := s.clients.Create(ctx, client); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create client")
	}
	if s.metrics != nil {
		s.metrics.ClientsCreated.Inc()
	}
	s.logger.InfoContext(ctx, "client created",
		"request_id", requestcontext.RequestID(ctx),
		"client_id", client.ID,
	)
	return client, nil
}

// GetClient returns one client aggregate.
func (s *Service) GetClient(ctx context.Context, clientID id.ClientID) (*models.Client, error) {
	client, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		return nil, wrapClientErr(err)
	}
	return client, nil
}

// ListClients returns all clients (admin surface only).
func (s *Service) ListClients(ctx context.Context) ([]*models.Client, error) {
	clients, err := s.clients.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list clients")
	}
	return clients, nil
}

// AddMember appends a roster entry. Compensation below zero is rejected;
// everything else about the member is opaque to the engine.
func (s *Service) AddMember(ctx context.Context, clientID id.ClientID, classification models.MemberClassification, compensation decimal.Decimal) (*models.Client, error) {
	if compensation.IsNegative() {
		return nil, dErrors.New(dErrors.CodeValidation, "compensation cannot be negative")
	}
	now := requestcontext.Now(ctx)
	member := models.Member{
		ID:             id.MemberID(uuid.New()),
		Classification: classification,
		Compensation:   compensation,
		AddedAt:        now,
	}
	client, err := s.clients.Execute(ctx, clientID,
		func(c *models.Client) error { return nil },
		func(c *models.Client) { c.AddMember(member, now) },
	)
	if err != nil {
		return nil, wrapClientErr(err)
	}
	return client, nil
}

// RemoveMember drops a roster entry.
func (s *Service) RemoveMember(ctx context.Context, clientID id.ClientID, memberID id.MemberID) (*models.Client, error) {
	now := requestcontext.Now(ctx)
	client, err := s.clients.Execute(ctx, clientID,
		func(c *models.Client) error {
			for _, m := range c.Members {
				if m.ID == memberID {
					return nil
				}
			}
			return dErrors.New(dErrors.CodeNotFound, "member not found")
		},
		func(c *models.Client) { _ = c.RemoveMember(memberID, now) },
	)
	if err != nil {
		return nil, wrapClientErr(err)
	}
	return client, nil
}

// ActivateTier starts a subscription with the default commitment window.
func (s *Service) ActivateTier(ctx context.Context, clientID id.ClientID, tier id.ServiceTier) (*models.Client, error) {
	now := requestcontext.Now(ctx)
	client, err := s.clients.Execute(ctx, clientID,
		func(c *models.Client) error { return c.CanActivateTier(tier) },
		func(c *models.Client) { c.ApplyTierActivation(tier, id.DefaultCommitmentMonths, now) },
	)
	if err != nil {
		return nil, wrapClientErr(err)
	}
	if s.metrics != nil {
		s.metrics.TierChanges.WithLabelValues(tier.String(), "activate").Inc()
	}
	s.emit(ctx, events.Event{Name: events.EventTierActivated, ClientID: clientID, Tier: tier.String()})
	return client, nil
}

// DeactivateTier ends a subscription once its commitment window has elapsed.
func (s *Service) DeactivateTier(ctx context.Context, clientID id.ClientID, tier id.ServiceTier) (*models.Client, error) {
	now := requestcontext.Now(ctx)
	client, err := s.clients.Execute(ctx, clientID,
		func(c *models.Client) error { return c.CanDeactivateTier(tier, now) },
		func(c *models.Client) { c.ApplyTierDeactivation(tier, now) },
	)
	if err != nil {
		return nil, wrapClientErr(err)
	}
	if s.metrics != nil {
		s.metrics.TierChanges.WithLabelValues(tier.String(), "deactivate").Inc()
	}
	s.emit(ctx, events.Event{Name: events.EventTierDeactivated, ClientID: clientID, Tier: tier.String()})
	return client, nil
}

// LinkPaymentInstrument records instrument presence and last-4 reference.
func (s *Service) LinkPaymentInstrument(ctx context.Context, clientID id.ClientID, last4 string) (*models.Client, error) {
	now := requestcontext.Now(ctx)
	client, err := s.clients.Execute(ctx, clientID,
		func(c *models.Client) error {
			probe := c.Clone()
			return probe.LinkPaymentInstrument(last4, now)
		},
		func(c *models.Client) { _ = c.LinkPaymentInstrument(last4, now) },
	)
	if err != nil {
		return nil, wrapClientErr(err)
	}
	return client, nil
}

// SuspendClient transitions a client to suspended (admin surface).
func (s *Service) SuspendClient(ctx context.Context, clientID id.ClientID) (*models.Client, error) {
	now := requestcontext.Now(ctx)
	client, err := s.clients.Execute(ctx, clientID,
		func(c *models.Client) error {
			if err := c.CanSuspend(); err != nil {
				return dErrors.New(dErrors.CodeConflict, "client is already suspended")
			}
			return nil
		},
		func(c *models.Client) { c.ApplySuspension(now) },
	)
	if err != nil {
		return nil, wrapClientErr(err)
	}
	return client, nil
}

// ReactivateClient transitions a suspended client back to active.
func (s *Service) ReactivateClient(ctx context.Context, clientID id.ClientID) (*models.Client, error) {
	now := requestcontext.Now(ctx)
	client, err := s.clients.Execute(ctx, clientID,
		func(c *models.Client) error {
			if err := c.CanReactivate(); err != nil {
				return dErrors.New(dErrors.CodeConflict, "client is already active")
			}
			return nil
		},
		func(c *models.Client) { c.ApplyReactivation(now) },
	)
	if err != nil {
		return nil, wrapClientErr(err)
	}
	return client, nil
}

func (s *Service) emit(ctx context.Context, event events.Event) {
	if s.publisher != nil {
		s.publisher.Emit(ctx, event)
	}
}

func wrapClientErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "client not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "client already exists")
	default:
		var de *dErrors.Error
		if errors.As(err, &de) {
			return err
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "client store failure")
	}
}
