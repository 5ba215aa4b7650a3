package worker

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "paylane/pkg/domain"
	"paylane/pkg/platform/events"
	eventsmemory "paylane/pkg/platform/events/store/memory"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestRunDrainsBufferedEventsOnStop(t *testing.T) {
	sink := eventsmemory.NewInMemorySink()
	inbox := make(chan events.Event, 8)

	clientID := id.ClientID(uuid.New())
	names := []events.Name{events.EventSessionBooked, events.EventPayrollScheduled, events.EventIssueEscalated}
	for _, name := range names {
		inbox <- events.Event{Name: name, ClientID: clientID}
	}

	// Cancel before running: everything already buffered must still land.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := New(sink, inbox, discardLogger())
	err := w.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	delivered, err := sink.ListByClient(context.Background(), clientID)
	require.NoError(t, err)
	require.Len(t, delivered, len(names))
	for i, name := range names {
		assert.Equal(t, name, delivered[i].Name)
	}
	assert.Empty(t, inbox)
}
