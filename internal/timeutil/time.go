// Package timeutil implements the time model: minute-precision, local
// wall-clock arithmetic over the YYYY-MM-DDTHH:MM:SS / HH:MM persisted
// timestamp conventions used throughout the timeline core.
package timeutil

import (
	"fmt"
	"time"

	"github.com/willdone/timeline-core/internal/constants"
)

// Now returns the current local instant truncated to minute precision.
func Now() time.Time {
	return time.Now().Truncate(time.Minute)
}

// Parse parses a persisted "YYYY-MM-DDTHH:MM:SS" timestamp as local time.
func Parse(s string) (time.Time, error) {
	t, err := time.ParseInLocation(constants.DateTimeFormat, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}

// Format renders an instant in the persisted timestamp convention.
func Format(t time.Time) string {
	return t.Format(constants.DateTimeFormat)
}

// ParseClock parses an "HH:MM" daily-recurrence time.
func ParseClock(s string) (time.Time, error) {
	t, err := time.Parse(constants.ClockFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return t, nil
}

// FormatClock renders an "HH:MM" daily-recurrence time.
func FormatClock(t time.Time) string {
	return t.Format(constants.ClockFormat)
}

// MinutesBetween returns the signed number of minutes from a to b (b - a).
func MinutesBetween(a, b time.Time) int {
	return int(b.Sub(a) / time.Minute)
}

// AddMinutes returns t shifted by n signed minutes.
func AddMinutes(t time.Time, n int) time.Time {
	return t.Add(time.Duration(n) * time.Minute)
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// StartOfDay returns midnight of t's calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the first instant of the following calendar day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1)
}

// ProjectWindow projects an "HH:MM"-"HH:MM" daily-recurring window onto the
// calendar day containing anchor, returning the instant interval it denotes.
func ProjectWindow(anchor time.Time, startClock, endClock string) (time.Time, time.Time, error) {
	start, err := ParseClock(startClock)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := ParseClock(endClock)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	day := StartOfDay(anchor)
	return day.Add(time.Duration(start.Hour())*time.Hour + time.Duration(start.Minute())*time.Minute),
		day.Add(time.Duration(end.Hour())*time.Hour + time.Duration(end.Minute())*time.Minute),
		nil
}

// CrossesMidnight reports whether the half-open interval [start, start+durationMin)
// extends past the end of start's calendar day.
func CrossesMidnight(start time.Time, durationMin int) bool {
	end := AddMinutes(start, durationMin)
	return end.After(EndOfDay(start))
}
