package publisher

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "paylane/pkg/domain"
	"paylane/pkg/platform/events"
	"paylane/pkg/requestcontext"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestEmitEnrichesFromContext(t *testing.T) {
	inbox := make(chan events.Event, 1)
	p := New(inbox, discardLogger())

	fixed := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), fixed)
	ctx = requestcontext.WithRequestID(ctx, "req-1")
	ctx = requestcontext.WithActor(ctx, "admin")

	clientID := id.ClientID(uuid.New())
	p.Emit(ctx, events.Event{Name: events.EventSessionBooked, ClientID: clientID})

	require.Len(t, inbox, 1)
	got := <-inbox
	assert.Equal(t, events.EventSessionBooked, got.Name)
	assert.Equal(t, clientID, got.ClientID)
	assert.Equal(t, fixed, got.Timestamp)
	assert.Equal(t, "req-1", got.RequestID)
	assert.Equal(t, "admin", got.Actor)
}

func TestEmitDropsWhenInboxFull(t *testing.T) {
	inbox := make(chan events.Event, 1)
	p := New(inbox, discardLogger())

	ctx := context.Background()
	p.Emit(ctx, events.Event{Name: events.EventIssueEscalated})
	// Second emit must not block even though the inbox is full.
	p.Emit(ctx, events.Event{Name: events.EventIssueResolved})

	require.Len(t, inbox, 1)
	assert.Equal(t, events.EventIssueEscalated, (<-inbox).Name)
}
