// Package publisher decouples event emission from delivery. Services emit
// into a buffered inbox and never block on the notification collaborator; a
// worker drains the inbox into the configured sink.
package publisher

import (
	"context"
	"log/slog"

	"paylane/pkg/platform/events"
	"paylane/pkg/requestcontext"
)

// Publisher enriches events from the request context and hands them to the
// worker inbox. Emission is fire-and-forget: a full inbox drops the event
// with a warning rather than stalling the request path.
type Publisher struct {
	inbox  chan<- events.Event
	logger *slog.Logger
}

func New(inbox chan<- events.Event, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{inbox: inbox, logger: logger}
}

// Emit stamps the event with request-scoped metadata and enqueues it.
func (p *Publisher) Emit(ctx context.Context, event events.Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.Actor == "" {
		event.Actor = requestcontext.Actor(ctx)
	}

	select {
	case p.inbox <- event:
	default:
		p.logger.WarnContext(ctx, "event inbox full, dropping event",
			"event", event.Name,
			"client_id", event.ClientID,
		)
	}
}
