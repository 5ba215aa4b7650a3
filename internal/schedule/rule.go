// Package schedule computes concrete calendar dates for recurring payroll
// runs: the next valid occurrence given a frequency rule and a minimum lead
// time, and the follow-on occurrence from a stored last-run date.
package schedule

import (
	"time"

	dErrors "paylane/pkg/domain-errors"
)

// Frequency is the recurrence cadence of a payroll schedule rule.
type Frequency string

const (
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
)

var validFrequencies = map[Frequency]bool{
	FrequencyWeekly:   true,
	FrequencyBiweekly: true,
	FrequencyMonthly:  true,
}

// ParseFrequency constructs a Frequency from external input.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(s)
	if !validFrequencies[f] {
		return "", dErrors.New(dErrors.CodeInvalidScheduleRule, "frequency must be weekly, biweekly, or monthly")
	}
	return f, nil
}

// LastDayOfMonth is the explicit day-of-month sentinel selecting the final
// calendar day of whatever month the occurrence lands in.
const LastDayOfMonth = -1

// Rule selects when payroll recurs. Weekly and biweekly rules carry a
// day-of-week; monthly rules carry a day-of-month (or the last-day
// sentinel). A rule missing the selector for its frequency is malformed and
// is rejected, never defaulted.
type Rule struct {
	Frequency  Frequency     `json:"frequency"`
	DayOfWeek  *time.Weekday `json:"day_of_week,omitempty"`
	DayOfMonth *int          `json:"day_of_month,omitempty"`
}

// Validate enforces the selector invariant for the rule's frequency.
func (r Rule) Validate() error {
	if !validFrequencies[r.Frequency] {
		return dErrors.New(dErrors.CodeInvalidScheduleRule, "frequency must be weekly, biweekly, or monthly")
	}
	switch r.Frequency {
	case FrequencyWeekly, FrequencyBiweekly:
		if r.DayOfWeek == nil {
			return dErrors.New(dErrors.CodeInvalidScheduleRule, "weekly rules require a day of week")
		}
		if *r.DayOfWeek < time.Sunday || *r.DayOfWeek > time.Saturday {
			return dErrors.New(dErrors.CodeInvalidScheduleRule, "day of week must be 0-6")
		}
		if r.DayOfMonth != nil {
			return dErrors.New(dErrors.CodeInvalidScheduleRule, "weekly rules cannot carry a day of month")
		}
	case FrequencyMonthly:
		if r.DayOfMonth == nil {
			return dErrors.New(dErrors.CodeInvalidScheduleRule, "monthly rules require a day of month")
		}
		if d := *r.DayOfMonth; d != LastDayOfMonth && (d < 1 || d > 31) {
			return dErrors.New(dErrors.CodeInvalidScheduleRule, "day of month must be 1-31 or the last-day sentinel")
		}
		if r.DayOfWeek != nil {
			return dErrors.New(dErrors.CodeInvalidScheduleRule, "monthly rules cannot carry a day of week")
		}
	}
	return nil
}
