package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paylane/internal/booking/models"
	"paylane/internal/booking/store"
	calmodels "paylane/internal/calendar/models"
	id "paylane/pkg/domain"
	dErrors "paylane/pkg/domain-errors"
	"paylane/pkg/platform/events"
	"paylane/pkg/testutil"
)

type openGate struct{}

func (openGate) Gate(context.Context, id.ClientID, id.Capability) error { return nil }

type closedGate struct{ err error }

func (g closedGate) Gate(context.Context, id.ClientID, id.Capability) error { return g.err }

type openSlots struct{}

func (openSlots) ValidateSlot(context.Context, time.Time, *calmodels.TimeOfDay) error { return nil }

type blockedSlots struct{ err error }

func (s blockedSlots) ValidateSlot(context.Context, time.Time, *calmodels.TimeOfDay) error {
	return s.err
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Emit(_ context.Context, event events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) names() []events.Name {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Name, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Name)
	}
	return out
}

func newService(t *testing.T, opts ...Option) (*Service, *recordingPublisher) {
	t.Helper()
	pub := &recordingPublisher{}
	opts = append([]Option{WithPublisher(pub)}, opts...)
	return New(store.NewInMemory(), openGate{}, openSlots{}, opts...), pub
}

func bookReq(clientID id.ClientID, day int, start string) BookRequest {
	req := BookRequest{
		ClientID:        clientID,
		Kind:            models.KindTax,
		Date:            time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
	}
	if start != "" {
		tod, _ := calmodels.ParseTimeOfDay(start)
		req.Start = &tod
	}
	return req
}

func TestBook(t *testing.T) {
	ctx := testutil.Context()
	clientID := id.ClientID(uuid.New())

	t.Run("books a scheduled session and emits the event", func(t *testing.T) {
		svc, pub := newService(t)
		session, err := svc.Book(ctx, bookReq(clientID, 10, "09:30"))
		require.NoError(t, err)
		assert.Equal(t, models.StatusScheduled, session.Status)
		assert.Equal(t, "09:30", session.Start.String())
		assert.Equal(t, []events.Name{events.EventSessionBooked}, pub.names())
	})

	t.Run("eligibility failure books nothing", func(t *testing.T) {
		st := store.NewInMemory()
		denied := dErrors.New(dErrors.CodeRequirementUnmet, "unmet requirement: headcount")
		svc := New(st, closedGate{err: denied}, openSlots{})
		_, err := svc.Book(ctx, bookReq(clientID, 10, "09:30"))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeRequirementUnmet))
		sessions, err := st.ListAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, sessions)
	})

	t.Run("slot conflict books nothing", func(t *testing.T) {
		st := store.NewInMemory()
		conflict := dErrors.New(dErrors.CodeConflict, "slot falls inside blackout")
		svc := New(st, openGate{}, blockedSlots{err: conflict})
		_, err := svc.Book(ctx, bookReq(clientID, 10, "09:30"))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
		sessions, err := st.ListAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, sessions)
	})

	t.Run("negative duration rejected before any gate", func(t *testing.T) {
		svc, _ := newService(t)
		req := bookReq(clientID, 10, "09:30")
		req.DurationMinutes = -15
		_, err := svc.Book(ctx, req)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestTransitions(t *testing.T) {
	ctx := testutil.Context()
	clientID := id.ClientID(uuid.New())

	t.Run("scheduled completes once", func(t *testing.T) {
		svc, pub := newService(t)
		session, err := svc.Book(ctx, bookReq(clientID, 10, "09:30"))
		require.NoError(t, err)

		done, err := svc.Complete(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, done.Status)
		assert.Equal(t, []events.Name{events.EventSessionBooked, events.EventSessionCompleted}, pub.names())

		_, err = svc.Cancel(ctx, session.ID)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	t.Run("cancelled is terminal", func(t *testing.T) {
		svc, _ := newService(t)
		session, err := svc.Book(ctx, bookReq(clientID, 10, "09:30"))
		require.NoError(t, err)

		_, err = svc.Cancel(ctx, session.ID)
		require.NoError(t, err)
		_, err = svc.Complete(ctx, session.ID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	t.Run("unknown session maps to not found", func(t *testing.T) {
		svc, _ := newService(t)
		_, err := svc.Complete(ctx, id.SessionID(uuid.New()))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestDerivedOverdue(t *testing.T) {
	clientID := id.ClientID(uuid.New())
	svc, _ := newService(t)

	booked, err := svc.Book(testutil.Context(), bookReq(clientID, 10, "09:30"))
	require.NoError(t, err)

	t.Run("future session reads scheduled", func(t *testing.T) {
		view, err := svc.Get(testutil.Context(), booked.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusScheduled, view.EffectiveStatus)
	})

	t.Run("past start derives overdue without touching stored status", func(t *testing.T) {
		later := testutil.ContextAt(time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC))
		for i := 0; i < 3; i++ {
			view, err := svc.Get(later, booked.ID)
			require.NoError(t, err)
			assert.Equal(t, models.StatusOverdue, view.EffectiveStatus)
			assert.Equal(t, models.StatusScheduled, view.Status)
		}
	})

	t.Run("overdue session can still complete", func(t *testing.T) {
		later := testutil.ContextAt(time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC))
		done, err := svc.Complete(later, booked.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, done.Status)
	})
}

func TestListForClient(t *testing.T) {
	ctx := testutil.Context()
	mine := id.ClientID(uuid.New())
	other := id.ClientID(uuid.New())
	svc, _ := newService(t)

	_, err := svc.Book(ctx, bookReq(mine, 12, "10:00"))
	require.NoError(t, err)
	_, err = svc.Book(ctx, bookReq(mine, 5, ""))
	require.NoError(t, err)
	_, err = svc.Book(ctx, bookReq(other, 8, "11:00"))
	require.NoError(t, err)

	views, err := svc.ListForClient(ctx, mine)
	require.NoError(t, err)
	require.Len(t, views, 2)
	// Ordered by start instant.
	assert.True(t, views[0].At().Before(views[1].At()))
	for _, v := range views {
		assert.Equal(t, mine, v.ClientID)
	}
}
