// Package eligibility decides which capabilities a client has unlocked.
// The rules were previously duplicated across dashboard surfaces; this is
// the single definition, including the blocker priority order.
package eligibility

import (
	id "paylane/pkg/domain"
	dErrors "paylane/pkg/domain-errors"
)

// Snapshot is the input to evaluation: the parts of the client aggregate the
// rules read. Callers build a fresh snapshot for every call; results are
// never cached across roster or subscription mutations.
type Snapshot struct {
	RosterSize        int
	ActiveTiers       map[id.ServiceTier]bool
	PaymentInstrument bool
}

// Result is the evaluation outcome: the unlocked capability set and the
// unmet requirements in fixed priority order.
type Result struct {
	Unlocked map[id.Capability]bool
	Blockers []id.Requirement
}

// Has reports whether the capability is unlocked.
func (r Result) Has(c id.Capability) bool {
	return r.Unlocked[c]
}

// Evaluate applies the eligibility rules to a snapshot.
// This is pure domain logic - no I/O, no side effects.
//
// Rule priority (blockers are reported in this order so the UI can show the
// single most important one first):
//  1. Roster headcount - blocks run_payroll and schedule_advisory
//  2. Payment instrument - blocks run_payroll
//  3. Advisory-capable tier (tax or advisory) - blocks schedule_advisory
//  4. Specific tier per session type - blocks book_tax_session /
//     book_strategy_session
func Evaluate(snap Snapshot) Result {
	result := Result{Unlocked: make(map[id.Capability]bool)}

	headcountOK := snap.RosterSize >= id.MinimumHeadcount
	paymentOK := snap.PaymentInstrument
	advisoryCapable := snap.ActiveTiers[id.TierTax] || snap.ActiveTiers[id.TierAdvisory]

	if !headcountOK {
		result.Blockers = append(result.Blockers, id.RequirementHeadcount)
	}
	if !paymentOK {
		result.Blockers = append(result.Blockers, id.RequirementPaymentInstrument)
	}
	if !advisoryCapable {
		result.Blockers = append(result.Blockers, id.RequirementAdvisoryCapableTier)
	}
	if !snap.ActiveTiers[id.TierTax] {
		result.Blockers = append(result.Blockers, id.RequirementTaxTier)
	}
	if !snap.ActiveTiers[id.TierAdvisory] {
		result.Blockers = append(result.Blockers, id.RequirementAdvisoryTier)
	}

	if headcountOK && paymentOK {
		result.Unlocked[id.CapabilityRunPayroll] = true
	}
	if headcountOK && advisoryCapable {
		result.Unlocked[id.CapabilityScheduleAdvisory] = true
		if snap.ActiveTiers[id.TierTax] {
			result.Unlocked[id.CapabilityBookTaxSession] = true
		}
		if snap.ActiveTiers[id.TierAdvisory] {
			result.Unlocked[id.CapabilityBookStrategySession] = true
		}
	}

	return result
}

// BlockersFor filters the full blocker list down to the requirements that
// actually gate one capability, preserving priority order.
func (r Result) BlockersFor(c id.Capability) []id.Requirement {
	relevant := map[id.Requirement]bool{}
	switch c {
	case id.CapabilityRunPayroll:
		relevant[id.RequirementHeadcount] = true
		relevant[id.RequirementPaymentInstrument] = true
	case id.CapabilityScheduleAdvisory:
		relevant[id.RequirementHeadcount] = true
		relevant[id.RequirementAdvisoryCapableTier] = true
	case id.CapabilityBookTaxSession:
		relevant[id.RequirementHeadcount] = true
		relevant[id.RequirementAdvisoryCapableTier] = true
		relevant[id.RequirementTaxTier] = true
	case id.CapabilityBookStrategySession:
		relevant[id.RequirementHeadcount] = true
		relevant[id.RequirementAdvisoryCapableTier] = true
		relevant[id.RequirementAdvisoryTier] = true
	}

	var out []id.Requirement
	for _, b := range r.Blockers {
		if relevant[b] {
			out = append(out, b)
		}
	}
	return out
}

// RequirementUnmetError is returned when a gated operation is attempted
// without the required capability. Blockers carry the ordered unmet
// requirements; hosts surface Blockers[0] as the primary message.
type RequirementUnmetError struct {
	Capability id.Capability
	Blockers   []id.Requirement
}

func (e *RequirementUnmetError) Error() string {
	return "requirement unmet for " + e.Capability.String()
}

func (e *RequirementUnmetError) Unwrap() error {
	msg := "eligibility requirements not met"
	if len(e.Blockers) > 0 {
		msg = "unmet requirement: " + e.Blockers[0].String()
	}
	return dErrors.New(dErrors.CodeRequirementUnmet, msg)
}

// Require returns a RequirementUnmetError unless the capability is unlocked.
func (r Result) Require(c id.Capability) error {
	if r.Has(c) {
		return nil
	}
	return &RequirementUnmetError{Capability: c, Blockers: r.BlockersFor(c)}
}
