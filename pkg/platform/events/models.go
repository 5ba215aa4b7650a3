// Package events models the notification boundary. The engine emits plain
// data records describing what happened; delivery (email, webhook, broker)
// is entirely the notification collaborator's responsibility, expressed here
// as a Sink.
package events

import (
	"context"
	"time"

	id "paylane/pkg/domain"
)

// Name identifies an emitted event type.
type Name string

const (
	// Booking events
	EventSessionBooked    Name = "session_booked"
	EventSessionCompleted Name = "session_completed"
	EventSessionCancelled Name = "session_cancelled"

	// Payroll events
	EventPayrollScheduled Name = "payroll_scheduled"

	// Compliance events
	EventIssueEscalated Name = "issue_escalated"
	EventIssueResolved  Name = "issue_resolved"

	// Subscription events
	EventTierActivated   Name = "tier_activated"
	EventTierDeactivated Name = "tier_deactivated"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so sinks can fan out to email, webhooks, or a broker.
type Event struct {
	Name      Name        `json:"name"`
	Timestamp time.Time   `json:"timestamp"`
	ClientID  id.ClientID `json:"client_id"`
	RequestID string      `json:"request_id,omitempty"`
	Actor     string      `json:"actor,omitempty"`

	// Payload fields; populated per event type.
	SessionID id.SessionID `json:"session_id,omitempty"`
	IssueID   id.IssueID   `json:"issue_id,omitempty"`
	Tier      string       `json:"tier,omitempty"`
	Severity  string       `json:"severity,omitempty"`
	RunDate   string       `json:"run_date,omitempty"`
	Amount    string       `json:"amount,omitempty"`
	Reason    string       `json:"reason,omitempty"`
}

// Sink receives emitted events for delivery. Implementations must tolerate
// redelivery; the engine gives no ordering guarantee across clients.
type Sink interface {
	Deliver(ctx context.Context, event Event) error
}
