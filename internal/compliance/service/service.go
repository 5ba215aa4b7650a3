package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	compmetrics "paylane/internal/compliance/metrics"
	"paylane/internal/compliance/models"
	id "paylane/pkg/domain"
	dErrors "paylane/pkg/domain-errors"
	"paylane/pkg/platform/events"
	"paylane/pkg/platform/sentinel"
	"paylane/pkg/requestcontext"
)

// IssueStore persists compliance issues.
type IssueStore interface {
	Create(ctx context.Context, issue *models.ComplianceIssue) error
	FindByID(ctx context.Context, issueID id.IssueID) (*models.ComplianceIssue, error)
	ListOpen(ctx context.Context, clientID id.ClientID) ([]*models.ComplianceIssue, error)
	Execute(ctx context.Context, issueID id.IssueID, validate func(*models.ComplianceIssue) error, apply func(*models.ComplianceIssue)) (*models.ComplianceIssue, error)
}

// EventPublisher hands engine events to the notification collaborator.
type EventPublisher interface {
	Emit(ctx context.Context, event events.Event)
}

// IssueView pairs an issue with its derived days-open figure.
type IssueView struct {
	*models.ComplianceIssue
	DaysOpen int `json:"days_open"`
}

// Service tracks compliance issues through open, acknowledged, and
// resolved, with severity only ever moving upward.
type Service struct {
	issues    IssueStore
	publisher EventPublisher
	logger    *slog.Logger
	metrics   *compmetrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithPublisher(publisher EventPublisher) Option {
	return func(s *Service) { s.publisher = publisher }
}

func WithMetrics(m *compmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(issues IssueStore, opts ...Option) *Service {
	s := &Service{issues: issues, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create opens a new issue against a client.
func (s *Service) Create(ctx context.Context, clientID id.ClientID, severity models.Severity, description string) (*models.ComplianceIssue, error) {
	issue, err := models.NewIssue(id.IssueID(uuid.New()), clientID, severity, description, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.issues.Create(ctx, issue); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create issue")
	}
	if s.metrics != nil {
		s.metrics.IssuesOpened.WithLabelValues(string(severity)).Inc()
	}
	s.logger.InfoContext(ctx, "compliance issue opened",
		"request_id", requestcontext.RequestID(ctx),
		"issue_id", issue.ID,
		"client_id", clientID,
		"severity", severity,
	)
	return issue, nil
}

// Acknowledge marks an open issue as seen.
func (s *Service) Acknowledge(ctx context.Context, issueID id.IssueID) (*models.ComplianceIssue, error) {
	now := requestcontext.Now(ctx)
	issue, err := s.issues.Execute(ctx, issueID,
		func(i *models.ComplianceIssue) error { return i.CanAcknowledge() },
		func(i *models.ComplianceIssue) { i.ApplyAcknowledgement(now) },
	)
	if err != nil {
		return nil, wrapIssueErr(err)
	}
	return issue, nil
}

// Escalate raises an issue's severity. Severity never decreases and
// never re-asserts its current level.
func (s *Service) Escalate(ctx context.Context, issueID id.IssueID, to models.Severity) (*models.ComplianceIssue, error) {
	now := requestcontext.Now(ctx)
	issue, err := s.issues.Execute(ctx, issueID,
		func(i *models.ComplianceIssue) error { return i.CanEscalate(to) },
		func(i *models.ComplianceIssue) { i.ApplyEscalation(to, now) },
	)
	if err != nil {
		return nil, wrapIssueErr(err)
	}
	if s.metrics != nil {
		s.metrics.Escalations.WithLabelValues(string(to)).Inc()
	}
	s.emit(ctx, events.Event{
		Name:     events.EventIssueEscalated,
		ClientID: issue.ClientID,
		IssueID:  issue.ID,
		Severity: string(to),
	})
	return issue, nil
}

// Resolve closes an issue from any non-resolved status.
func (s *Service) Resolve(ctx context.Context, issueID id.IssueID) (*models.ComplianceIssue, error) {
	now := requestcontext.Now(ctx)
	issue, err := s.issues.Execute(ctx, issueID,
		func(i *models.ComplianceIssue) error { return i.CanResolve() },
		func(i *models.ComplianceIssue) { i.ApplyResolution(now) },
	)
	if err != nil {
		return nil, wrapIssueErr(err)
	}
	if s.metrics != nil {
		s.metrics.Resolutions.Inc()
	}
	s.emit(ctx, events.Event{
		Name:     events.EventIssueResolved,
		ClientID: issue.ClientID,
		IssueID:  issue.ID,
		Severity: string(issue.Severity),
	})
	return issue, nil
}

// Get returns one issue with its derived days-open figure.
func (s *Service) Get(ctx context.Context, issueID id.IssueID) (IssueView, error) {
	issue, err := s.issues.FindByID(ctx, issueID)
	if err != nil {
		return IssueView{}, wrapIssueErr(err)
	}
	return IssueView{ComplianceIssue: issue, DaysOpen: issue.DaysOpen(requestcontext.Now(ctx))}, nil
}

// ListOpen returns non-resolved issues, optionally scoped to a client.
func (s *Service) ListOpen(ctx context.Context, clientID id.ClientID) ([]IssueView, error) {
	issues, err := s.issues.ListOpen(ctx, clientID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list issues")
	}
	now := requestcontext.Now(ctx)
	views := make([]IssueView, 0, len(issues))
	for _, issue := range issues {
		views = append(views, IssueView{ComplianceIssue: issue, DaysOpen: issue.DaysOpen(now)})
	}
	return views, nil
}

func (s *Service) emit(ctx context.Context, event events.Event) {
	if s.publisher != nil {
		s.publisher.Emit(ctx, event)
	}
}

func wrapIssueErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "issue not found")
	default:
		var de *dErrors.Error
		if errors.As(err, &de) {
			return err
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "issue store failure")
	}
}
