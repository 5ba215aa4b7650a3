// Package fees computes service fees across subscribed tiers. All money math
// uses decimals; floats never touch an amount.
package fees

import (
	"sort"

	"github.com/shopspring/decimal"

	id "paylane/pkg/domain"
	dErrors "paylane/pkg/domain-errors"
)

// tierRates are the fee percentages each tier applies to the base amount.
// Fees are additive over the same base, not compounded.
var tierRates = map[id.ServiceTier]decimal.Decimal{
	id.TierPayroll:  decimal.NewFromFloat(0.02),
	id.TierTax:      decimal.NewFromFloat(0.02),
	id.TierAdvisory: decimal.NewFromFloat(0.01),
}

// Breakdown itemizes the fee per tier plus the total. The total is the sum
// of the already-rounded per-tier fees (sum-of-rounded) so the displayed
// lines always add up to the displayed total.
type Breakdown struct {
	PerTier map[id.ServiceTier]decimal.Decimal
	Total   decimal.Decimal
}

// Compute calculates the fee breakdown for the selected tiers against a base
// amount. Each tier's fee is rounded half-up to the cent before summing.
// Whether payroll must be among the tiers is an eligibility rule enforced at
// the call site, not here.
func Compute(tiers []id.ServiceTier, base decimal.Decimal) (Breakdown, error) {
	if base.IsNegative() {
		return Breakdown{}, dErrors.New(dErrors.CodeValidation, "base amount cannot be negative")
	}
	if len(tiers) == 0 {
		return Breakdown{}, dErrors.New(dErrors.CodeValidation, "at least one tier is required")
	}

	b := Breakdown{
		PerTier: make(map[id.ServiceTier]decimal.Decimal, len(tiers)),
		Total:   decimal.Zero,
	}
	for _, tier := range tiers {
		rate, ok := tierRates[tier]
		if !ok {
			return Breakdown{}, dErrors.New(dErrors.CodeInvalidInput, "invalid tier: "+tier.String())
		}
		if _, dup := b.PerTier[tier]; dup {
			return Breakdown{}, dErrors.New(dErrors.CodeValidation, "duplicate tier: "+tier.String())
		}
		// Round half-up to the smallest currency unit. decimal.Round rounds
		// half away from zero, which is half-up for the non-negative amounts
		// allowed here.
		fee := base.Mul(rate).Round(2)
		b.PerTier[tier] = fee
		b.Total = b.Total.Add(fee)
	}
	return b, nil
}

// Rate exposes a tier's fee percentage for display surfaces.
func Rate(tier id.ServiceTier) (decimal.Decimal, bool) {
	rate, ok := tierRates[tier]
	return rate, ok
}

// SortedTiers returns the breakdown's tiers in stable display order.
func (b Breakdown) SortedTiers() []id.ServiceTier {
	out := make([]id.ServiceTier, 0, len(b.PerTier))
	for tier := range b.PerTier {
		out = append(out, tier)
	}
	sort.Slice(out, func(i, j int) bool { return displayRank(out[i]) < displayRank(out[j]) })
	return out
}

func displayRank(t id.ServiceTier) int {
	switch t {
	case id.TierPayroll:
		return 0
	case id.TierTax:
		return 1
	default:
		return 2
	}
}
