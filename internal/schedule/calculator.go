package schedule

import "time"

// NextOccurrence computes the first valid run date for a rule: the earliest
// date on or after from + minLeadDays (calendar days, not business days)
// that matches the rule's selector.
//
// Biweekly rules behave exactly like weekly ones for the first occurrence;
// the fourteen-day stride only matters when advancing from a stored last run
// (see NextAfter).
//
// The result is always >= from + minLeadDays; the test suite verifies this
// property directly.
func NextOccurrence(rule Rule, minLeadDays int, from time.Time) (time.Time, error) {
	if err := rule.Validate(); err != nil {
		return time.Time{}, err
	}
	if minLeadDays < 0 {
		minLeadDays = 0
	}

	earliest := dateOnly(from).AddDate(0, 0, minLeadDays)

	switch rule.Frequency {
	case FrequencyWeekly, FrequencyBiweekly:
		d := earliest
		for d.Weekday() != *rule.DayOfWeek {
			d = d.AddDate(0, 0, 1)
		}
		return d, nil
	default: // monthly; Validate narrowed the set
		d := monthlyOn(earliest.Year(), earliest.Month(), *rule.DayOfMonth, earliest.Location())
		if d.Before(earliest) {
			next := time.Date(earliest.Year(), earliest.Month()+1, 1, 0, 0, 0, 0, earliest.Location())
			d = monthlyOn(next.Year(), next.Month(), *rule.DayOfMonth, earliest.Location())
		}
		return d, nil
	}
}

// NextAfter computes the occurrence following a stored last run date:
// weekly advances seven days, biweekly fourteen, monthly one month with the
// selector re-applied (so day 31 still clamps to shorter months).
func NextAfter(rule Rule, lastRun time.Time) (time.Time, error) {
	if err := rule.Validate(); err != nil {
		return time.Time{}, err
	}

	last := dateOnly(lastRun)
	switch rule.Frequency {
	case FrequencyWeekly:
		return last.AddDate(0, 0, 7), nil
	case FrequencyBiweekly:
		return last.AddDate(0, 0, 14), nil
	default:
		next := time.Date(last.Year(), last.Month()+1, 1, 0, 0, 0, 0, last.Location())
		return monthlyOn(next.Year(), next.Month(), *rule.DayOfMonth, last.Location()), nil
	}
}

// monthlyOn resolves a day-of-month selector inside one month, clamping
// overlong days (31 in April) and the last-day sentinel to the month's real
// final day.
func monthlyOn(year int, month time.Month, dayOfMonth int, loc *time.Location) time.Time {
	last := daysIn(year, month, loc)
	day := dayOfMonth
	if day == LastDayOfMonth || day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
