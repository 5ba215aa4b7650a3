package domain

// Capability is an action a client account has unlocked. Capabilities are
// recomputed from the current client snapshot on every evaluation and are
// never cached across roster or subscription mutations.
type Capability string

const (
	// CapabilityRunPayroll allows scheduling and confirming payroll runs.
	CapabilityRunPayroll Capability = "run_payroll"
	// CapabilityScheduleAdvisory allows booking advisory sessions of any type.
	CapabilityScheduleAdvisory Capability = "schedule_advisory"
	// CapabilityBookTaxSession allows tax-specific advisory sessions.
	CapabilityBookTaxSession Capability = "book_tax_session"
	// CapabilityBookStrategySession allows strategy sessions under the
	// advisory tier.
	CapabilityBookStrategySession Capability = "book_strategy_session"
)

// Requirement names a single unmet eligibility rule. Blockers are always
// reported in a fixed priority order so the host UI can surface the first
// entry as the primary message.
type Requirement string

const (
	RequirementHeadcount           Requirement = "headcount"
	RequirementPaymentInstrument   Requirement = "payment_instrument"
	RequirementAdvisoryCapableTier Requirement = "advisory_capable_tier"
	RequirementTaxTier             Requirement = "tax_tier"
	RequirementAdvisoryTier        Requirement = "advisory_tier"
)

// MinimumHeadcount is the roster size floor below which payroll and advisory
// actions stay locked.
const MinimumHeadcount = 5

func (c Capability) String() string  { return string(c) }
func (r Requirement) String() string { return string(r) }
