package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clientmodels "paylane/internal/client/models"
	"paylane/internal/payment"
	"paylane/internal/schedule"
	id "paylane/pkg/domain"
	dErrors "paylane/pkg/domain-errors"
	"paylane/pkg/platform/events"
	"paylane/pkg/testutil"
)

type staticClients struct{ client *clientmodels.Client }

func (s staticClients) GetClient(context.Context, id.ClientID) (*clientmodels.Client, error) {
	return s.client, nil
}

type openGate struct{}

func (openGate) Gate(context.Context, id.ClientID, id.Capability) error { return nil }

type closedGate struct{}

func (closedGate) Gate(context.Context, id.ClientID, id.Capability) error {
	return dErrors.New(dErrors.CodeRequirementUnmet, "unmet requirement: headcount")
}

type failingCharger struct{}

func (failingCharger) Charge(context.Context, id.ClientID, decimal.Decimal) (payment.Receipt, error) {
	return payment.Receipt{}, errors.New("card declined")
}

type recordingPublisher struct{ events []events.Event }

func (p *recordingPublisher) Emit(_ context.Context, event events.Event) {
	p.events = append(p.events, event)
}

func eligibleClient(t *testing.T) *clientmodels.Client {
	t.Helper()
	client, err := clientmodels.NewClient(id.ClientID(uuid.New()), "Acme Payroll Co", testutil.FrozenTime)
	require.NoError(t, err)
	client.ApplyTierActivation(id.TierPayroll, id.DefaultCommitmentMonths, testutil.FrozenTime)
	client.ApplyTierActivation(id.TierTax, id.DefaultCommitmentMonths, testutil.FrozenTime)
	return client
}

func weeklyRule(day time.Weekday) schedule.Rule {
	return schedule.Rule{Frequency: schedule.FrequencyWeekly, DayOfWeek: &day}
}

func TestConfirmRun(t *testing.T) {
	ctx := testutil.Context()
	base := decimal.NewFromInt(75000)

	t.Run("gates then schedules, prices, and charges", func(t *testing.T) {
		pub := &recordingPublisher{}
		svc := New(staticClients{eligibleClient(t)}, openGate{}, payment.NewStubCharger(), 3, WithPublisher(pub))

		conf, err := svc.ConfirmRun(ctx, id.ClientID(uuid.New()), weeklyRule(time.Friday), base)
		require.NoError(t, err)

		// FrozenTime is Saturday 2025-03-01; earliest is the 4th, so the
		// first Friday is the 7th and the following run a week later.
		assert.Equal(t, time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC), conf.RunDate)
		assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), conf.NextRunDate)
		assert.Equal(t, "3000.00", conf.Breakdown.Total.StringFixed(2))
		assert.NotEmpty(t, conf.Receipt.Reference)

		require.Len(t, pub.events, 1)
		assert.Equal(t, events.EventPayrollScheduled, pub.events[0].Name)
		assert.Equal(t, "2025-03-07", pub.events[0].RunDate)
		assert.Equal(t, "3000.00", pub.events[0].Amount)
	})

	t.Run("gate failure confirms nothing", func(t *testing.T) {
		pub := &recordingPublisher{}
		svc := New(staticClients{eligibleClient(t)}, closedGate{}, payment.NewStubCharger(), 3, WithPublisher(pub))

		_, err := svc.ConfirmRun(ctx, id.ClientID(uuid.New()), weeklyRule(time.Friday), base)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeRequirementUnmet))
		assert.Empty(t, pub.events)
	})

	t.Run("malformed rule fails before charging", func(t *testing.T) {
		pub := &recordingPublisher{}
		svc := New(staticClients{eligibleClient(t)}, openGate{}, failingCharger{}, 3, WithPublisher(pub))

		_, err := svc.ConfirmRun(ctx, id.ClientID(uuid.New()), schedule.Rule{Frequency: schedule.FrequencyWeekly}, base)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidScheduleRule))
		assert.Empty(t, pub.events)
	})

	t.Run("charge failure emits nothing", func(t *testing.T) {
		pub := &recordingPublisher{}
		svc := New(staticClients{eligibleClient(t)}, openGate{}, failingCharger{}, 3, WithPublisher(pub))

		_, err := svc.ConfirmRun(ctx, id.ClientID(uuid.New()), weeklyRule(time.Friday), base)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
		assert.Empty(t, pub.events)
	})
}

func TestPreviewNext(t *testing.T) {
	svc := New(staticClients{eligibleClient(t)}, openGate{}, payment.NewStubCharger(), 3)

	got, err := svc.PreviewNext(testutil.Context(), weeklyRule(time.Friday))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC), got)
}
