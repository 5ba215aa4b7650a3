package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	bookingmetrics "paylane/internal/booking/metrics"
	"paylane/internal/booking/models"
	calmodels "paylane/internal/calendar/models"
	id "paylane/pkg/domain"
	dErrors "paylane/pkg/domain-errors"
	"paylane/pkg/platform/events"
	"paylane/pkg/platform/sentinel"
	"paylane/pkg/requestcontext"
)

// SessionStore persists advisory sessions.
type SessionStore interface {
	Create(ctx context.Context, session *models.AdvisorySession) error
	FindByID(ctx context.Context, sessionID id.SessionID) (*models.AdvisorySession, error)
	ListByClient(ctx context.Context, clientID id.ClientID) ([]*models.AdvisorySession, error)
	Execute(ctx context.Context, sessionID id.SessionID, validate func(*models.AdvisorySession) error, apply func(*models.AdvisorySession)) (*models.AdvisorySession, error)
}

// EligibilityGate decides whether the client holds a capability right now.
type EligibilityGate interface {
	Gate(ctx context.Context, clientID id.ClientID, capability id.Capability) error
}

// SlotValidator checks a proposed slot against the availability calendar.
type SlotValidator interface {
	ValidateSlot(ctx context.Context, date time.Time, timeOfDay *calmodels.TimeOfDay) error
}

// EventPublisher hands engine events to the notification collaborator.
type EventPublisher interface {
	Emit(ctx context.Context, event events.Event)
}

// BookRequest carries everything needed to book one advisory session.
type BookRequest struct {
	ClientID        id.ClientID
	Kind            models.SessionKind
	Date            time.Time
	Start           *calmodels.TimeOfDay
	DurationMinutes int
}

// SessionView pairs a session with its derived read-time status.
type SessionView struct {
	*models.AdvisorySession
	EffectiveStatus models.SessionStatus `json:"effective_status"`
}

// Service runs the advisory session lifecycle. Booking gates on
// eligibility and slot availability in the same call; completed and
// cancelled are terminal and never re-validate the slot.
type Service struct {
	sessions  SessionStore
	gate      EligibilityGate
	slots     SlotValidator
	publisher EventPublisher
	logger    *slog.Logger
	metrics   *bookingmetrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithPublisher(publisher EventPublisher) Option {
	return func(s *Service) { s.publisher = publisher }
}

func WithMetrics(m *bookingmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(sessions SessionStore, gate EligibilityGate, slots SlotValidator, opts ...Option) *Service {
	s := &Service{sessions: sessions, gate: gate, slots: slots, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Book creates a scheduled session after passing the eligibility gate and
// the slot validation. Both run inside this call; no booking exists unless
// both passed.
func (s *Service) Book(ctx context.Context, req BookRequest) (*models.AdvisorySession, error) {
	if req.DurationMinutes < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "duration cannot be negative")
	}
	if err := s.gate.Gate(ctx, req.ClientID, id.CapabilityScheduleAdvisory); err != nil {
		return nil, err
	}
	if err := s.gate.Gate(ctx, req.ClientID, req.Kind.Capability()); err != nil {
		return nil, err
	}
	if err := s.slots.ValidateSlot(ctx, req.Date, req.Start); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	session := &models.AdvisorySession{
		ID:              id.SessionID(uuid.New()),
		ClientID:        req.ClientID,
		Kind:            req.Kind,
		Date:            calmodels.DateOnly(req.Date),
		Start:           req.Start,
		DurationMinutes: req.DurationMinutes,
		Status:          models.StatusScheduled,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create session")
	}

	if s.metrics != nil {
		s.metrics.SessionsBooked.WithLabelValues(string(req.Kind)).Inc()
	}
	s.emit(ctx, events.Event{Name: events.EventSessionBooked, ClientID: req.ClientID, SessionID: session.ID})
	s.logger.InfoContext(ctx, "session booked",
		"request_id", requestcontext.RequestID(ctx),
		"session_id", session.ID,
		"client_id", req.ClientID,
		"kind", req.Kind,
	)
	return session, nil
}

// Complete moves a scheduled session to completed.
func (s *Service) Complete(ctx context.Context, sessionID id.SessionID) (*models.AdvisorySession, error) {
	return s.transition(ctx, sessionID, "complete",
		(*models.AdvisorySession).CanComplete,
		(*models.AdvisorySession).ApplyCompletion,
		events.EventSessionCompleted,
	)
}

// Cancel moves a scheduled session to cancelled.
func (s *Service) Cancel(ctx context.Context, sessionID id.SessionID) (*models.AdvisorySession, error) {
	return s.transition(ctx, sessionID, "cancel",
		(*models.AdvisorySession).CanCancel,
		(*models.AdvisorySession).ApplyCancellation,
		events.EventSessionCancelled,
	)
}

func (s *Service) transition(ctx context.Context, sessionID id.SessionID, action string, can func(*models.AdvisorySession) error, apply func(*models.AdvisorySession, time.Time), name events.Name) (*models.AdvisorySession, error) {
	now := requestcontext.Now(ctx)
	session, err := s.sessions.Execute(ctx, sessionID,
		func(sess *models.AdvisorySession) error { return can(sess) },
		func(sess *models.AdvisorySession) { apply(sess, now) },
	)
	if err != nil {
		return nil, wrapSessionErr(err)
	}
	if s.metrics != nil {
		s.metrics.Transitions.WithLabelValues(action).Inc()
	}
	s.emit(ctx, events.Event{Name: name, ClientID: session.ClientID, SessionID: session.ID})
	return session, nil
}

// Get returns one session with its derived status.
func (s *Service) Get(ctx context.Context, sessionID id.SessionID) (SessionView, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return SessionView{}, wrapSessionErr(err)
	}
	return SessionView{AdvisorySession: session, EffectiveStatus: session.EffectiveStatus(requestcontext.Now(ctx))}, nil
}

// ListForClient returns the client's sessions with derived statuses.
func (s *Service) ListForClient(ctx context.Context, clientID id.ClientID) ([]SessionView, error) {
	sessions, err := s.sessions.ListByClient(ctx, clientID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list sessions")
	}
	now := requestcontext.Now(ctx)
	views := make([]SessionView, 0, len(sessions))
	for _, session := range sessions {
		views = append(views, SessionView{AdvisorySession: session, EffectiveStatus: session.EffectiveStatus(now)})
	}
	return views, nil
}

func (s *Service) emit(ctx context.Context, event events.Event) {
	if s.publisher != nil {
		s.publisher.Emit(ctx, event)
	}
}

func wrapSessionErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "session not found")
	default:
		var de *dErrors.Error
		if errors.As(err, &de) {
			return err
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "session store failure")
	}
}
