// Input parsing for form fields.
//
// Form inputs arrive as strings; blank or malformed values mean "absent",
// not zero. These helpers keep that distinction so optional numeric
// columns stay null instead of collapsing to 0.
package core

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// LocalTimeLayout is the format of datetime-local form inputs.
const LocalTimeLayout = "2006-01-02T15:04"

// ParseNumber converts a form value to a number. It accepts both dot and
// comma decimal separators and returns nil for blank or non-numeric input.
func ParseNumber(s string) *float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

// ParseCount converts a form value to a whole count, nil when absent or
// not a number. Fractional input is truncated.
func ParseCount(s string) *int {
	v := ParseNumber(s)
	if v == nil {
		return nil
	}
	n := int(*v)
	return &n
}

// ParseLocalTime parses a datetime-local form value in local time.
// Returns nil for blank or malformed input.
func ParseLocalTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.ParseInLocation(LocalTimeLayout, s, time.Local)
	if err != nil {
		return nil
	}
	return &t
}

// FormatLocalTime renders a timestamp back into the datetime-local form
// format, empty for the zero time.
func FormatLocalTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(LocalTimeLayout)
}

// FormatNumber renders an optional number for a form field, empty when
// absent.
func FormatNumber(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// FormatCount renders an optional count for a form field, empty when
// absent.
func FormatCount(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
