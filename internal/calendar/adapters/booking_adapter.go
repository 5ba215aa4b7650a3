package adapters

import (
	"context"
	"time"

	bookingmodels "paylane/internal/booking/models"
	"paylane/internal/calendar"
)

// BookingSessions adapts the booking store to the calendar's session
// source port so month grids can show booked slots without the calendar
// depending on booking internals.
type BookingSessions struct {
	store SessionLister
}

type SessionLister interface {
	ListBetween(ctx context.Context, from, to time.Time) ([]*bookingmodels.AdvisorySession, error)
}

func NewBookingSessions(store SessionLister) *BookingSessions {
	return &BookingSessions{store: store}
}

func (a *BookingSessions) SessionsBetween(ctx context.Context, from, to time.Time) ([]calendar.DaySession, error) {
	sessions, err := a.store.ListBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]calendar.DaySession, 0, len(sessions))
	for _, s := range sessions {
		if s.Status == bookingmodels.StatusCancelled {
			continue
		}
		out = append(out, calendar.DaySession{ID: s.ID, At: s.At()})
	}
	return out, nil
}
