package core

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates. Dates are kept as
// strings so that range queries compare lexicographically, exactly like
// the backend's date columns.
const DateLayout = "2006-01-02"

// MonthWindow is a half-open interval [Start, End) covering one calendar
// month in local time.
type MonthWindow struct {
	Start time.Time
	End   time.Time
}

// Today returns the current local date as a date string.
func Today() string { return FormatDate(time.Now()) }

// FormatDate renders t as a date string in local time.
func FormatDate(t time.Time) string { return t.Format(DateLayout) }

// ParseDate parses a date string at local noon. Noon keeps day arithmetic
// stable across DST transitions.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, time.Local), nil
}

// AddDays shifts a date string by delta days. Invalid input is returned
// unchanged.
func AddDays(date string, delta int) string {
	t, err := ParseDate(date)
	if err != nil {
		return date
	}
	return FormatDate(t.AddDate(0, 0, delta))
}

// MonthOf returns the first day of t's month at local midnight.
func MonthOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.Local)
}

// AddMonths moves a month cursor by delta whole months.
func AddMonths(month time.Time, delta int) time.Time {
	return time.Date(month.Year(), month.Month()+time.Month(delta), 1, 0, 0, 0, 0, time.Local)
}

// MonthLabel renders a month cursor for display, e.g. "March 2024".
func MonthLabel(month time.Time) string { return month.Format("January 2006") }

// WindowOf returns the calendar-month window containing the cursor.
func WindowOf(month time.Time) MonthWindow {
	start := MonthOf(month)
	return MonthWindow{Start: start, End: AddMonths(start, 1)}
}

// StartDate is the first day of the window as an inclusive date string.
func (w MonthWindow) StartDate() string { return FormatDate(w.Start) }

// EndDate is the last day of the window as an inclusive date string.
func (w MonthWindow) EndDate() string { return FormatDate(w.End.AddDate(0, 0, -1)) }

// Contains reports whether t falls inside the window.
func (w MonthWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// AtCurrentMonth reports whether the cursor has reached now's month.
// Forward month navigation is disabled once this is true.
func AtCurrentMonth(month, now time.Time) bool {
	return !month.Before(MonthOf(now))
}
