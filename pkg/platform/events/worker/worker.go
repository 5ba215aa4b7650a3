// Package worker drains the event inbox into a sink. It keeps background
// delivery testable without wiring broker implementations into services.
package worker

import (
	"context"
	"log/slog"
	"time"

	"paylane/pkg/platform/events"
)

// drainTimeout bounds how long a stopping worker keeps delivering buffered
// events before giving up on the remainder.
const drainTimeout = 5 * time.Second

// Worker consumes events from a channel and delivers them. Delivery failures
// are logged and skipped; a notification outage must never wedge the inbox.
type Worker struct {
	sink   events.Sink
	inbox  <-chan events.Event
	logger *slog.Logger
}

func New(sink events.Sink, inbox <-chan events.Event, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{sink: sink, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain(ctx.Err())
			return ctx.Err()
		case event := <-w.inbox:
			w.deliver(ctx, event)
		}
	}
}

// drain delivers what is still buffered after the run context ends, bounded
// by drainTimeout so shutdown cannot hang on a dead sink.
func (w *Worker) drain(cause error) {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	for {
		select {
		case event := <-w.inbox:
			w.deliver(ctx, event)
		case <-ctx.Done():
			w.logger.Warn("event drain timed out", "cause", cause)
			return
		default:
			return
		}
	}
}

func (w *Worker) deliver(ctx context.Context, event events.Event) {
	if err := w.sink.Deliver(ctx, event); err != nil {
		w.logger.ErrorContext(ctx, "event delivery failed",
			"event", event.Name,
			"client_id", event.ClientID,
			"error", err,
		)
	}
}
