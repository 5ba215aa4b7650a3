package fees

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "paylane/pkg/domain"
	dErrors "paylane/pkg/domain-errors"
)

func TestComputeBreakdown(t *testing.T) {
	t.Run("payroll plus tax on 75000", func(t *testing.T) {
		b, err := Compute([]id.ServiceTier{id.TierPayroll, id.TierTax}, decimal.NewFromInt(75000))
		require.NoError(t, err)

		assert.True(t, b.PerTier[id.TierPayroll].Equal(decimal.RequireFromString("1500.00")))
		assert.True(t, b.PerTier[id.TierTax].Equal(decimal.RequireFromString("1500.00")))
		assert.True(t, b.Total.Equal(decimal.RequireFromString("3000.00")))
	})

	t.Run("all three tiers are additive, not compounded", func(t *testing.T) {
		b, err := Compute([]id.ServiceTier{id.TierPayroll, id.TierTax, id.TierAdvisory}, decimal.NewFromInt(100000))
		require.NoError(t, err)

		// 2% + 2% + 1% of the same base: 2000 + 2000 + 1000.
		assert.True(t, b.PerTier[id.TierAdvisory].Equal(decimal.NewFromInt(1000)))
		assert.True(t, b.Total.Equal(decimal.NewFromInt(5000)))
	})

	t.Run("sum of rounded, not round of sum", func(t *testing.T) {
		// 1% of 123.45 = 1.2345 -> 1.23; 2% = 2.469 -> 2.47.
		// Total must be 1.23 + 2.47 + 2.47 = 6.17 so displayed lines add up.
		b, err := Compute([]id.ServiceTier{id.TierPayroll, id.TierTax, id.TierAdvisory}, decimal.RequireFromString("123.45"))
		require.NoError(t, err)

		assert.True(t, b.PerTier[id.TierPayroll].Equal(decimal.RequireFromString("2.47")))
		assert.True(t, b.PerTier[id.TierTax].Equal(decimal.RequireFromString("2.47")))
		assert.True(t, b.PerTier[id.TierAdvisory].Equal(decimal.RequireFromString("1.23")))
		assert.True(t, b.Total.Equal(decimal.RequireFromString("6.17")))

		sum := decimal.Zero
		for _, fee := range b.PerTier {
			sum = sum.Add(fee)
		}
		assert.True(t, b.Total.Equal(sum))
	})

	t.Run("half-cent rounds up", func(t *testing.T) {
		// 2% of 100.25 = 2.005 -> 2.01 under round-half-up.
		b, err := Compute([]id.ServiceTier{id.TierPayroll}, decimal.RequireFromString("100.25"))
		require.NoError(t, err)
		assert.True(t, b.PerTier[id.TierPayroll].Equal(decimal.RequireFromString("2.01")))
	})

	t.Run("zero base yields zero fees", func(t *testing.T) {
		b, err := Compute([]id.ServiceTier{id.TierPayroll, id.TierAdvisory}, decimal.Zero)
		require.NoError(t, err)
		assert.True(t, b.Total.IsZero())
	})
}

func TestComputeRejections(t *testing.T) {
	t.Run("negative base", func(t *testing.T) {
		_, err := Compute([]id.ServiceTier{id.TierPayroll}, decimal.NewFromInt(-1))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("no tiers", func(t *testing.T) {
		_, err := Compute(nil, decimal.NewFromInt(1000))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("unknown tier", func(t *testing.T) {
		_, err := Compute([]id.ServiceTier{id.ServiceTier("concierge")}, decimal.NewFromInt(1000))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("duplicate tier", func(t *testing.T) {
		_, err := Compute([]id.ServiceTier{id.TierTax, id.TierTax}, decimal.NewFromInt(1000))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestSortedTiers(t *testing.T) {
	b, err := Compute([]id.ServiceTier{id.TierAdvisory, id.TierPayroll, id.TierTax}, decimal.NewFromInt(1000))
	require.NoError(t, err)
	assert.Equal(t, []id.ServiceTier{id.TierPayroll, id.TierTax, id.TierAdvisory}, b.SortedTiers())
}
