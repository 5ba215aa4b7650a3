package calendar

import (
	"fmt"
	"time"

	"paylane/internal/calendar/models"
	dErrors "paylane/pkg/domain-errors"
)

// ConflictError reports a proposed slot landing inside a blackout window.
// It unwraps to a coded conflict so transport layers map it uniformly.
type ConflictError struct {
	Window *models.BlackoutWindow
}

func (e *ConflictError) Error() string {
	if e.Window.FullDay {
		return fmt.Sprintf("date %s is fully blocked: %s", e.Window.Date.Format("2006-01-02"), e.Window.Reason)
	}
	return fmt.Sprintf("slot falls inside blackout %s-%s: %s", e.Window.Start, e.Window.End, e.Window.Reason)
}

func (e *ConflictError) Unwrap() error {
	return dErrors.New(dErrors.CodeConflict, e.Error())
}

// ValidateSlot checks a proposed booking slot against the blackout
// windows on its date. The past-date check runs before any conflict
// check, so a slot yesterday inside a blackout still reports past_date.
// A nil timeOfDay is a full-day proposal. Only the slot's start time is
// tested against windows; its duration does not extend the check.
func ValidateSlot(today, date time.Time, timeOfDay *models.TimeOfDay, windows []*models.BlackoutWindow) error {
	if models.DateOnly(date).Before(models.DateOnly(today)) {
		return dErrors.New(dErrors.CodePastDate, "slot date is in the past")
	}
	for _, w := range windows {
		if !w.AppliesTo(date) {
			continue
		}
		if w.Blocks(timeOfDay) {
			return &ConflictError{Window: w}
		}
	}
	return nil
}
