package eligibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "paylane/pkg/domain"
)

func allTiers() map[id.ServiceTier]bool {
	return map[id.ServiceTier]bool{
		id.TierPayroll:  true,
		id.TierTax:      true,
		id.TierAdvisory: true,
	}
}

// TestBlockerPriorityOrder validates the fixed ordering contract: the UI
// shows Blockers[0] as the primary message, so order is part of the API.
func TestBlockerPriorityOrder(t *testing.T) {
	t.Run("small roster without instrument reports headcount first", func(t *testing.T) {
		result := Evaluate(Snapshot{
			RosterSize:        3,
			ActiveTiers:       allTiers(),
			PaymentInstrument: false,
		})

		require.Equal(t,
			[]id.Requirement{id.RequirementHeadcount, id.RequirementPaymentInstrument},
			result.Blockers,
		)
		assert.False(t, result.Has(id.CapabilityRunPayroll))
		assert.False(t, result.Has(id.CapabilityScheduleAdvisory))
	})

	t.Run("headcount outranks every tier blocker", func(t *testing.T) {
		result := Evaluate(Snapshot{
			RosterSize:        1,
			ActiveTiers:       map[id.ServiceTier]bool{id.TierPayroll: true},
			PaymentInstrument: true,
		})

		require.NotEmpty(t, result.Blockers)
		assert.Equal(t, id.RequirementHeadcount, result.Blockers[0])
	})
}

func TestCapabilityUnlocking(t *testing.T) {
	tests := []struct {
		name     string
		snap     Snapshot
		unlocked []id.Capability
		locked   []id.Capability
	}{
		{
			name: "fully qualified client unlocks everything",
			snap: Snapshot{
				RosterSize:        12,
				ActiveTiers:       allTiers(),
				PaymentInstrument: true,
			},
			unlocked: []id.Capability{
				id.CapabilityRunPayroll,
				id.CapabilityScheduleAdvisory,
				id.CapabilityBookTaxSession,
				id.CapabilityBookStrategySession,
			},
		},
		{
			name: "payroll needs an instrument even with a full roster",
			snap: Snapshot{
				RosterSize:        8,
				ActiveTiers:       map[id.ServiceTier]bool{id.TierPayroll: true, id.TierTax: true},
				PaymentInstrument: false,
			},
			unlocked: []id.Capability{id.CapabilityScheduleAdvisory, id.CapabilityBookTaxSession},
			locked:   []id.Capability{id.CapabilityRunPayroll, id.CapabilityBookStrategySession},
		},
		{
			name: "advisory needs tax or advisory tier",
			snap: Snapshot{
				RosterSize:        8,
				ActiveTiers:       map[id.ServiceTier]bool{id.TierPayroll: true},
				PaymentInstrument: true,
			},
			unlocked: []id.Capability{id.CapabilityRunPayroll},
			locked:   []id.Capability{id.CapabilityScheduleAdvisory, id.CapabilityBookTaxSession, id.CapabilityBookStrategySession},
		},
		{
			name: "tax tier alone does not unlock strategy sessions",
			snap: Snapshot{
				RosterSize:        8,
				ActiveTiers:       map[id.ServiceTier]bool{id.TierPayroll: true, id.TierTax: true},
				PaymentInstrument: true,
			},
			unlocked: []id.Capability{id.CapabilityRunPayroll, id.CapabilityScheduleAdvisory, id.CapabilityBookTaxSession},
			locked:   []id.Capability{id.CapabilityBookStrategySession},
		},
		{
			name: "boundary roster of exactly five qualifies",
			snap: Snapshot{
				RosterSize:        5,
				ActiveTiers:       map[id.ServiceTier]bool{id.TierPayroll: true},
				PaymentInstrument: true,
			},
			unlocked: []id.Capability{id.CapabilityRunPayroll},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Evaluate(tt.snap)
			for _, c := range tt.unlocked {
				assert.True(t, result.Has(c), "expected %s unlocked", c)
			}
			for _, c := range tt.locked {
				assert.False(t, result.Has(c), "expected %s locked", c)
			}
		})
	}
}

func TestRequireCarriesOrderedBlockers(t *testing.T) {
	result := Evaluate(Snapshot{
		RosterSize:        2,
		ActiveTiers:       map[id.ServiceTier]bool{id.TierPayroll: true},
		PaymentInstrument: false,
	})

	err := result.Require(id.CapabilityRunPayroll)
	require.Error(t, err)

	var unmet *RequirementUnmetError
	require.ErrorAs(t, err, &unmet)
	require.Equal(t,
		[]id.Requirement{id.RequirementHeadcount, id.RequirementPaymentInstrument},
		unmet.Blockers,
	)
}

// TestEvaluationIsPure verifies re-evaluating the same snapshot yields the
// same result and mutating the result does not leak into later evaluations.
func TestEvaluationIsPure(t *testing.T) {
	snap := Snapshot{RosterSize: 6, ActiveTiers: allTiers(), PaymentInstrument: true}

	first := Evaluate(snap)
	first.Unlocked[id.CapabilityRunPayroll] = false

	second := Evaluate(snap)
	assert.True(t, second.Has(id.CapabilityRunPayroll))
}
