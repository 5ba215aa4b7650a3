package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	clientmodels "paylane/internal/client/models"
	"paylane/internal/fees"
	"paylane/internal/payment"
	"paylane/internal/schedule"
	schedmetrics "paylane/internal/schedule/metrics"
	id "paylane/pkg/domain"
	dErrors "paylane/pkg/domain-errors"
	"paylane/pkg/platform/events"
	"paylane/pkg/requestcontext"
)

// ClientReader loads the client aggregate behind a run confirmation.
type ClientReader interface {
	GetClient(ctx context.Context, clientID id.ClientID) (*clientmodels.Client, error)
}

// EligibilityGate decides whether the client may run payroll right now.
type EligibilityGate interface {
	Gate(ctx context.Context, clientID id.ClientID, capability id.Capability) error
}

// EventPublisher hands engine events to the notification collaborator.
type EventPublisher interface {
	Emit(ctx context.Context, event events.Event)
}

// Confirmation is the result of a confirmed payroll run.
type Confirmation struct {
	RunDate     time.Time       `json:"run_date"`
	NextRunDate time.Time       `json:"next_run_date"`
	Breakdown   fees.Breakdown  `json:"fees"`
	Receipt     payment.Receipt `json:"receipt"`
}

// Service computes payroll run dates and confirms runs: gate, schedule,
// fee breakdown, charge, event, in that order. A failure at any step
// leaves no trace of the run.
type Service struct {
	clients   ClientReader
	gate      EligibilityGate
	charger   payment.Charger
	publisher EventPublisher
	logger    *slog.Logger
	metrics   *schedmetrics.Metrics
	minLead   int
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithPublisher(publisher EventPublisher) Option {
	return func(s *Service) { s.publisher = publisher }
}

func WithMetrics(m *schedmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(clients ClientReader, gate EligibilityGate, charger payment.Charger, minLeadDays int, opts ...Option) *Service {
	s := &Service{clients: clients, gate: gate, charger: charger, minLead: minLeadDays, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PreviewNext computes the next run date for a rule without confirming
// anything. No eligibility gate; previews are harmless.
func (s *Service) PreviewNext(ctx context.Context, rule schedule.Rule) (time.Time, error) {
	return schedule.NextOccurrence(rule, s.minLead, requestcontext.Now(ctx))
}

// ConfirmRun schedules the client's next payroll run. The eligibility
// gate runs first, then the rule resolves to a concrete date, fees are
// broken down, and the payment collaborator is charged for the total.
func (s *Service) ConfirmRun(ctx context.Context, clientID id.ClientID, rule schedule.Rule, base decimal.Decimal) (Confirmation, error) {
	if err := s.gate.Gate(ctx, clientID, id.CapabilityRunPayroll); err != nil {
		return Confirmation{}, err
	}

	client, err := s.clients.GetClient(ctx, clientID)
	if err != nil {
		return Confirmation{}, err
	}

	runDate, err := schedule.NextOccurrence(rule, s.minLead, requestcontext.Now(ctx))
	if err != nil {
		return Confirmation{}, err
	}
	nextRunDate, err := schedule.NextAfter(rule, runDate)
	if err != nil {
		return Confirmation{}, err
	}

	active := client.ActiveTiers()
	tiers := make([]id.ServiceTier, 0, len(active))
	for _, tier := range []id.ServiceTier{id.TierPayroll, id.TierTax, id.TierAdvisory} {
		if active[tier] {
			tiers = append(tiers, tier)
		}
	}
	breakdown, err := fees.Compute(tiers, base)
	if err != nil {
		return Confirmation{}, err
	}

	chargeStart := time.Now()
	receipt, err := s.charger.Charge(ctx, clientID, breakdown.Total)
	if s.metrics != nil {
		s.metrics.ChargeLatency.Observe(time.Since(chargeStart).Seconds())
	}
	if err != nil {
		return Confirmation{}, dErrors.Wrap(err, dErrors.CodeInternal, "payment charge failed")
	}

	if s.metrics != nil {
		s.metrics.RunsConfirmed.WithLabelValues(string(rule.Frequency)).Inc()
	}
	s.emit(ctx, events.Event{
		Name:     events.EventPayrollScheduled,
		ClientID: clientID,
		RunDate:  runDate.Format("2006-01-02"),
		Amount:   breakdown.Total.StringFixed(2),
	})
	s.logger.InfoContext(ctx, "payroll run confirmed",
		"request_id", requestcontext.RequestID(ctx),
		"client_id", clientID,
		"run_date", runDate.Format("2006-01-02"),
		"total", breakdown.Total.StringFixed(2),
	)

	return Confirmation{
		RunDate:     runDate,
		NextRunDate: nextRunDate,
		Breakdown:   breakdown,
		Receipt:     receipt,
	}, nil
}

func (s *Service) emit(ctx context.Context, event events.Event) {
	if s.publisher != nil {
		s.publisher.Emit(ctx, event)
	}
}
