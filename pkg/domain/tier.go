package domain

import dErrors "paylane/pkg/domain-errors"

// ServiceTier is a selectable service subscription. Each tier carries its own
// fee percentage (owned by the fees package) and a commitment window during
// which an active subscription cannot be deactivated.
type ServiceTier string

const (
	TierPayroll  ServiceTier = "payroll"
	TierTax      ServiceTier = "tax"
	TierAdvisory ServiceTier = "advisory"
)

// DefaultCommitmentMonths is the minimum duration a newly activated tier
// stays locked in.
const DefaultCommitmentMonths = 6

var validTiers = map[ServiceTier]bool{
	TierPayroll:  true,
	TierTax:      true,
	TierAdvisory: true,
}

// ParseServiceTier constructs a ServiceTier from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParseServiceTier(s string) (ServiceTier, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "tier cannot be empty")
	}
	t := ServiceTier(s)
	if !validTiers[t] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid tier")
	}
	return t, nil
}

// IsValid checks if the tier is one of the supported enum values.
func (t ServiceTier) IsValid() bool {
	return validTiers[t]
}

func (t ServiceTier) String() string {
	return string(t)
}
