// Package calendar projects blackout windows and booked sessions onto a
// month grid and validates proposed booking slots against them.
package calendar

import (
	"time"

	"paylane/internal/calendar/models"
	id "paylane/pkg/domain"
)

// DaySession is the slice of a booked session the calendar cares about.
type DaySession struct {
	ID id.SessionID `json:"id"`
	At time.Time    `json:"at"`
}

// Day is one cell of the month grid.
type Day struct {
	Date     time.Time                `json:"date"`
	Windows  []*models.BlackoutWindow `json:"windows,omitempty"`
	Sessions []DaySession             `json:"sessions,omitempty"`
	// FullyBlocked is set when a full-day window covers the date.
	FullyBlocked bool `json:"fully_blocked"`
}

// GenerateMonth builds the grid for one calendar month. It is a pure
// projection: windows and sessions outside the month are ignored, days
// appear in order, and every day of the month appears exactly once.
func GenerateMonth(year int, month time.Month, windows []*models.BlackoutWindow, sessions []DaySession) []Day {
	// Day zero of the following month is the last day of this one.
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)

	days := make([]Day, 0, last.Day())
	for d := 1; d <= last.Day(); d++ {
		date := time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
		day := Day{Date: date}
		for _, w := range windows {
			if !w.AppliesTo(date) {
				continue
			}
			day.Windows = append(day.Windows, w)
			if w.FullDay {
				day.FullyBlocked = true
			}
		}
		for _, s := range sessions {
			if models.DateOnly(s.At.UTC()).Equal(date) {
				day.Sessions = append(day.Sessions, s)
			}
		}
		days = append(days, day)
	}
	return days
}

// OverlaySessions attaches booked sessions to their day cells, replacing
// whatever the cells already held. Cached grids carry only the window
// projection; sessions change with every booking, so they are re-applied
// on each read.
func OverlaySessions(days []Day, sessions []DaySession) []Day {
	for i := range days {
		days[i].Sessions = nil
		for _, s := range sessions {
			if models.DateOnly(s.At.UTC()).Equal(days[i].Date) {
				days[i].Sessions = append(days[i].Sessions, s)
			}
		}
	}
	return days
}
