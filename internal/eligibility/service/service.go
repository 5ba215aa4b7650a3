package service

import (
	"context"
	"errors"
	"log/slog"

	clientmodels "paylane/internal/client/models"
	"paylane/internal/eligibility"
	eligibilitymetrics "paylane/internal/eligibility/metrics"
	id "paylane/pkg/domain"
	dErrors "paylane/pkg/domain-errors"
	"paylane/pkg/platform/sentinel"
	"paylane/pkg/requestcontext"
)

// ClientReader is the slice of the client store this service needs.
type ClientReader interface {
	FindByID(ctx context.Context, clientID id.ClientID) (*clientmodels.Client, error)
}

// Service loads a fresh client snapshot and runs the pure evaluator over it.
// There is deliberately no caching layer: every call re-reads the aggregate
// so roster and subscription mutations take effect immediately.
type Service struct {
	clients ClientReader
	logger  *slog.Logger
	metrics *eligibilitymetrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *eligibilitymetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(clients ClientReader, opts ...Option) *Service {
	s := &Service{clients: clients, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SnapshotOf projects a client aggregate into the evaluator's input.
func SnapshotOf(client *clientmodels.Client) eligibility.Snapshot {
	return eligibility.Snapshot{
		RosterSize:        client.RosterSize(),
		ActiveTiers:       client.ActiveTiers(),
		PaymentInstrument: client.Payment.Present,
	}
}

// Evaluate returns the current capability set and blockers for a client.
func (s *Service) Evaluate(ctx context.Context, clientID id.ClientID) (eligibility.Result, error) {
	client, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		return eligibility.Result{}, wrapClientErr(err)
	}
	result := eligibility.Evaluate(SnapshotOf(client))
	if s.metrics != nil {
		s.metrics.Evaluations.Inc()
	}
	return result, nil
}

// Gate enforces a capability for a mutation path. Suspended clients are
// rejected outright; otherwise the capability must be unlocked.
func (s *Service) Gate(ctx context.Context, clientID id.ClientID, capability id.Capability) error {
	client, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		return wrapClientErr(err)
	}
	if !client.IsActive() {
		return dErrors.New(dErrors.CodeForbidden, "client account is suspended")
	}

	result := eligibility.Evaluate(SnapshotOf(client))
	if err := result.Require(capability); err != nil {
		if s.metrics != nil {
			s.metrics.GateDenied.WithLabelValues(capability.String()).Inc()
		}
		s.logger.InfoContext(ctx, "capability gate denied",
			"request_id", requestcontext.RequestID(ctx),
			"client_id", clientID,
			"capability", capability,
		)
		return err
	}
	return nil
}

func wrapClientErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "client not found")
	default:
		var de *dErrors.Error
		if errors.As(err, &de) {
			return err
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "client store failure")
	}
}
