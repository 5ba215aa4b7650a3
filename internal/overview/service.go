// Package overview assembles the admin dashboard snapshot. It only reads;
// every figure is recomputed from the stores on each request.
package overview

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	bookingmodels "paylane/internal/booking/models"
	calmodels "paylane/internal/calendar/models"
	compmodels "paylane/internal/compliance/models"
	dErrors "paylane/pkg/domain-errors"
	"paylane/pkg/requestcontext"
)

// SessionLister exposes the booking store slice the overview needs.
type SessionLister interface {
	ListAll(ctx context.Context) ([]*bookingmodels.AdvisorySession, error)
}

// IssueLister exposes the compliance store slice the overview needs.
type IssueLister interface {
	ListAll(ctx context.Context) ([]*compmodels.ComplianceIssue, error)
}

// WindowLister exposes the calendar store slice the overview needs.
type WindowLister interface {
	ListBetween(ctx context.Context, from, to time.Time) ([]*calmodels.BlackoutWindow, error)
}

// Snapshot is the dashboard aggregate. Overdue is the usual derived
// read-time label, so two snapshots taken at different instants may
// disagree on it while agreeing on everything stored.
type Snapshot struct {
	OpenIssues         int `json:"open_issues"`
	AcknowledgedIssues int `json:"acknowledged_issues"`
	ScheduledSessions  int `json:"scheduled_sessions"`
	OverdueSessions    int `json:"overdue_sessions"`
	UpcomingWindows    int `json:"upcoming_windows"`
}

// Service gathers the snapshot concurrently across the three stores.
type Service struct {
	sessions SessionLister
	issues   IssueLister
	windows  WindowLister
	horizon  time.Duration
}

func New(sessions SessionLister, issues IssueLister, windows WindowLister) *Service {
	return &Service{sessions: sessions, issues: issues, windows: windows, horizon: 30 * 24 * time.Hour}
}

// Snapshot fans out one read per store and folds the results.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	now := requestcontext.Now(ctx)
	var snap Snapshot

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sessions, err := s.sessions.ListAll(gctx)
		if err != nil {
			return err
		}
		for _, session := range sessions {
			switch session.EffectiveStatus(now) {
			case bookingmodels.StatusScheduled:
				snap.ScheduledSessions++
			case bookingmodels.StatusOverdue:
				snap.OverdueSessions++
			}
		}
		return nil
	})
	g.Go(func() error {
		issues, err := s.issues.ListAll(gctx)
		if err != nil {
			return err
		}
		for _, issue := range issues {
			switch issue.Status {
			case compmodels.IssueOpen:
				snap.OpenIssues++
			case compmodels.IssueAcknowledged:
				snap.AcknowledgedIssues++
			}
		}
		return nil
	})
	g.Go(func() error {
		windows, err := s.windows.ListBetween(gctx, now, now.Add(s.horizon))
		if err != nil {
			return err
		}
		snap.UpcomingWindows = len(windows)
		return nil
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to assemble overview")
	}
	return snap, nil
}
