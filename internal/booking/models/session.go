package models

import (
	"time"

	calmodels "paylane/internal/calendar/models"
	id "paylane/pkg/domain"
	dErrors "paylane/pkg/domain-errors"
)

// SessionKind is the advisory session type being booked.
type SessionKind string

const (
	KindTax      SessionKind = "tax"
	KindStrategy SessionKind = "strategy"
)

func ParseSessionKind(s string) (SessionKind, error) {
	switch SessionKind(s) {
	case KindTax, KindStrategy:
		return SessionKind(s), nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown session kind: "+s)
	}
}

// Capability returns the per-kind eligibility capability the booking
// must also hold.
func (k SessionKind) Capability() id.Capability {
	if k == KindTax {
		return id.CapabilityBookTaxSession
	}
	return id.CapabilityBookStrategySession
}

// SessionStatus is the stored lifecycle state. Overdue is never stored;
// see EffectiveStatus.
type SessionStatus string

const (
	StatusScheduled SessionStatus = "scheduled"
	StatusCompleted SessionStatus = "completed"
	StatusCancelled SessionStatus = "cancelled"

	// StatusOverdue only ever appears as a derived read-time label.
	StatusOverdue SessionStatus = "overdue"
)

// AdvisorySession is a booked advisory appointment. The slot is a
// calendar date plus an optional start time; duration is recorded for
// display but plays no part in conflict checks.
type AdvisorySession struct {
	ID              id.SessionID         `json:"id"`
	ClientID        id.ClientID          `json:"client_id"`
	Kind            SessionKind          `json:"kind"`
	Date            time.Time            `json:"date"`
	Start           *calmodels.TimeOfDay `json:"start,omitempty"`
	DurationMinutes int                  `json:"duration_minutes,omitempty"`
	Status          SessionStatus        `json:"status"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// At is the instant the session begins. Sessions without a start time
// begin at midnight of their date.
func (s *AdvisorySession) At() time.Time {
	at := calmodels.DateOnly(s.Date)
	if s.Start != nil {
		at = at.Add(time.Duration(*s.Start) * time.Minute)
	}
	return at
}

// EffectiveStatus derives the read-time label. A scheduled session whose
// start has passed reads as overdue; the stored status never changes.
func (s *AdvisorySession) EffectiveStatus(now time.Time) SessionStatus {
	if s.Status == StatusScheduled && s.At().Before(now) {
		return StatusOverdue
	}
	return s.Status
}

// CanComplete reports whether the session may transition to completed.
func (s *AdvisorySession) CanComplete() error {
	return s.canLeave("complete")
}

// CanCancel reports whether the session may transition to cancelled.
func (s *AdvisorySession) CanCancel() error {
	return s.canLeave("cancel")
}

func (s *AdvisorySession) canLeave(verb string) error {
	if s.Status != StatusScheduled {
		return dErrors.New(dErrors.CodeInvalidTransition,
			"cannot "+verb+" a "+string(s.Status)+" session")
	}
	return nil
}

// ApplyCompletion moves the session to its completed terminal state.
func (s *AdvisorySession) ApplyCompletion(now time.Time) {
	s.Status = StatusCompleted
	s.UpdatedAt = now
}

// ApplyCancellation moves the session to its cancelled terminal state.
func (s *AdvisorySession) ApplyCancellation(now time.Time) {
	s.Status = StatusCancelled
	s.UpdatedAt = now
}
