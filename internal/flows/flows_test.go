// Package flows exercises the engine end to end with in-memory wiring:
// onboarding, eligibility, payroll confirmation, and session booking.
package flows_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingmodels "paylane/internal/booking/models"
	bookingservice "paylane/internal/booking/service"
	bookingstore "paylane/internal/booking/store"
	calmodels "paylane/internal/calendar/models"
	calservice "paylane/internal/calendar/service"
	calstore "paylane/internal/calendar/store"
	clientmodels "paylane/internal/client/models"
	clientservice "paylane/internal/client/service"
	clientstore "paylane/internal/client/store"
	eligservice "paylane/internal/eligibility/service"
	"paylane/internal/payment"
	schedule "paylane/internal/schedule"
	schedservice "paylane/internal/schedule/service"
	id "paylane/pkg/domain"
	dErrors "paylane/pkg/domain-errors"
	"paylane/pkg/platform/events"
	eventspublisher "paylane/pkg/platform/events/publisher"
	eventsmemory "paylane/pkg/platform/events/store/memory"
	eventsworker "paylane/pkg/platform/events/worker"
	"paylane/pkg/testutil"
)

type engine struct {
	clients  *clientservice.Service
	elig     *eligservice.Service
	calendar *calservice.Service
	booking  *bookingservice.Service
	schedule *schedservice.Service
	sink     *eventsmemory.InMemorySink
}

type slotAdapter struct{ cal *calservice.Service }

func (a slotAdapter) ValidateSlot(ctx context.Context, date time.Time, tod *calmodels.TimeOfDay) error {
	return a.cal.ValidateSlot(ctx, date, tod)
}

func newEngine(t *testing.T) *engine {
	t.Helper()

	sink := eventsmemory.NewInMemorySink()
	inbox := make(chan events.Event, 64)
	publisher := eventspublisher.New(inbox, nil)
	worker := eventsworker.New(sink, inbox, nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = worker.Run(ctx) }()

	clientStore := clientstore.NewInMemory()
	clients := clientservice.New(clientStore, clientservice.WithPublisher(publisher))
	elig := eligservice.New(clientStore)
	calendar := calservice.New(calstore.NewInMemory())
	booking := bookingservice.New(bookingstore.NewInMemory(), elig, slotAdapter{calendar},
		bookingservice.WithPublisher(publisher))
	sched := schedservice.New(clients, elig, payment.NewStubCharger(), 3,
		schedservice.WithPublisher(publisher))

	return &engine{clients: clients, elig: elig, calendar: calendar, booking: booking, schedule: sched, sink: sink}
}

func (e *engine) sinkNames(t *testing.T) []events.Name {
	t.Helper()
	all, err := e.sink.ListAll(context.Background())
	require.NoError(t, err)
	names := make([]events.Name, 0, len(all))
	for _, ev := range all {
		names = append(names, ev.Name)
	}
	return names
}

func TestOnboardingToPayrollFlow(t *testing.T) {
	ctx := testutil.Context()
	e := newEngine(t)

	var client *clientmodels.Client

	testutil.Given(t, "a freshly onboarded client with a small roster", func(t *testing.T) {
		var err error
		client, err = e.clients.CreateClient(ctx, "Bluebird Bakery LLC")
		require.NoError(t, err)
		for i := 0; i < 3; i++ {
			_, err = e.clients.AddMember(ctx, client.ID, clientmodels.ClassificationEmployee, decimal.NewFromInt(48000))
			require.NoError(t, err)
		}
		_, err = e.clients.ActivateTier(ctx, client.ID, id.TierPayroll)
		require.NoError(t, err)
	})

	testutil.When(t, "eligibility is evaluated", func(t *testing.T) {
		result, err := e.elig.Evaluate(ctx, client.ID)
		require.NoError(t, err)
		assert.False(t, result.Unlocked[id.CapabilityRunPayroll])
		require.NotEmpty(t, result.Blockers)
		assert.Equal(t, id.RequirementHeadcount, result.Blockers[0])
		assert.Contains(t, result.Blockers, id.RequirementPaymentInstrument)
	})

	testutil.Then(t, "confirming a run is refused with the blockers", func(t *testing.T) {
		day := time.Friday
		_, err := e.schedule.ConfirmRun(ctx, client.ID, schedule.Rule{Frequency: schedule.FrequencyWeekly, DayOfWeek: &day}, decimal.NewFromInt(75000))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeRequirementUnmet))
	})

	testutil.When(t, "the roster reaches five and an instrument is linked", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			_, err := e.clients.AddMember(ctx, client.ID, clientmodels.ClassificationContractor, decimal.NewFromInt(61000))
			require.NoError(t, err)
		}
		_, err := e.clients.LinkPaymentInstrument(ctx, client.ID, "4242")
		require.NoError(t, err)
		_, err = e.clients.ActivateTier(ctx, client.ID, id.TierTax)
		require.NoError(t, err)
	})

	testutil.Then(t, "a weekly payroll run confirms with additive fees", func(t *testing.T) {
		day := time.Friday
		conf, err := e.schedule.ConfirmRun(ctx, client.ID, schedule.Rule{Frequency: schedule.FrequencyWeekly, DayOfWeek: &day}, decimal.NewFromInt(75000))
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC), conf.RunDate)
		assert.Equal(t, "3000.00", conf.Breakdown.Total.StringFixed(2))
		assert.NotEmpty(t, conf.Receipt.Reference)
	})

	testutil.Then(t, "a tax session books around a blackout window", func(t *testing.T) {
		start, err := calmodels.ParseTimeOfDay("09:00")
		require.NoError(t, err)
		end, err := calmodels.ParseTimeOfDay("12:00")
		require.NoError(t, err)
		_, err = e.calendar.CreatePartialWindow(ctx, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), start, end, "quarterly close")
		require.NoError(t, err)

		blocked, err := calmodels.ParseTimeOfDay("10:00")
		require.NoError(t, err)
		_, err = e.booking.Book(ctx, bookingservice.BookRequest{
			ClientID: client.ID,
			Kind:     bookingmodels.KindTax,
			Date:     time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			Start:    &blocked,
		})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))

		free, err := calmodels.ParseTimeOfDay("08:30")
		require.NoError(t, err)
		session, err := e.booking.Book(ctx, bookingservice.BookRequest{
			ClientID: client.ID,
			Kind:     bookingmodels.KindTax,
			Date:     time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			Start:    &free,
		})
		require.NoError(t, err)
		assert.Equal(t, bookingmodels.StatusScheduled, session.Status)
	})

	testutil.Then(t, "the notification sink saw the whole story", func(t *testing.T) {
		require.Eventually(t, func() bool {
			names := e.sinkNames(t)
			return contains(names, events.EventPayrollScheduled) && contains(names, events.EventSessionBooked)
		}, 2*time.Second, 10*time.Millisecond)
	})
}

func contains(names []events.Name, want events.Name) bool {
	for _, n := range names {
		if n == want {
			return true
		}
	}
	return false
}
