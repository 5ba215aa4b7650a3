package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	id "paylane/pkg/domain"
	dErrors "paylane/pkg/domain-errors"
)

// TimeOfDay is minutes since midnight. It marshals as "15:04" so API
// payloads and stored documents stay human-readable.
type TimeOfDay int

// ParseTimeOfDay parses an "HH:MM" clock string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "time must be HH:MM")
	}
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "time must be HH:MM")
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "time must be between 00:00 and 23:59")
	}
	return TimeOfDay(h*60 + m), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// BlackoutWindow is an administrator-defined no-booking period on one
// calendar date.
//
// Invariants:
//   - a full-day window carries no times
//   - a partial window carries both start and end, with start < end
type BlackoutWindow struct {
	ID      id.WindowID `json:"id"`
	Date    time.Time   `json:"date"`
	FullDay bool        `json:"full_day"`
	Start   *TimeOfDay  `json:"start,omitempty"`
	End     *TimeOfDay  `json:"end,omitempty"`
	Reason  string      `json:"reason"`
}

// NewFullDayWindow constructs a window blocking the whole date.
func NewFullDayWindow(windowID id.WindowID, date time.Time, reason string) (*BlackoutWindow, error) {
	w := &BlackoutWindow{
		ID:      windowID,
		Date:    DateOnly(date),
		FullDay: true,
		Reason:  strings.TrimSpace(reason),
	}
	return w, w.Validate()
}

// NewPartialWindow constructs a window blocking a time range on the date.
func NewPartialWindow(windowID id.WindowID, date time.Time, start, end TimeOfDay, reason string) (*BlackoutWindow, error) {
	w := &BlackoutWindow{
		ID:     windowID,
		Date:   DateOnly(date),
		Start:  &start,
		End:    &end,
		Reason: strings.TrimSpace(reason),
	}
	return w, w.Validate()
}

// Validate enforces the full-day/partial shape invariant.
func (w *BlackoutWindow) Validate() error {
	if w.FullDay {
		if w.Start != nil || w.End != nil {
			return dErrors.New(dErrors.CodeInvariantViolation, "a full-day window cannot carry times")
		}
		return nil
	}
	if w.Start == nil || w.End == nil {
		return dErrors.New(dErrors.CodeInvariantViolation, "a partial window requires both start and end")
	}
	if *w.Start >= *w.End {
		return dErrors.New(dErrors.CodeInvariantViolation, "window start must be before end")
	}
	return nil
}

// AppliesTo reports whether the window sits on the given calendar date.
func (w *BlackoutWindow) AppliesTo(date time.Time) bool {
	return w.Date.Equal(DateOnly(date))
}

// Blocks reports whether a proposed slot start time conflicts with this
// window. A nil time means a full-day proposal, which conflicts with any
// window on the date. Partial windows block times inside [start, end]
// inclusive.
func (w *BlackoutWindow) Blocks(timeOfDay *TimeOfDay) bool {
	if w.FullDay || timeOfDay == nil {
		return true
	}
	return *timeOfDay >= *w.Start && *timeOfDay <= *w.End
}

// DateOnly truncates a timestamp to its calendar date.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
