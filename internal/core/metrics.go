// Package core holds the domain model and the pure computation the rest of
// the application is built on: entity validation, derived shift metrics,
// calendar windows and the monthly aggregation.
package core

import (
	"math"
	"time"
)

// ShiftMetrics carries the three derived figures for a shift. A nil field
// means the figure is undefined for the current inputs.
type ShiftMetrics struct {
	Hours   *float64
	Mileage *float64
	Rate    *float64
}

// ElapsedHours returns the worked hours between start and end, rounded to
// 2 decimal places. The second return is false unless both timestamps are
// present and end is strictly after start.
func ElapsedHours(start time.Time, end *time.Time) (float64, bool) {
	if start.IsZero() || end == nil || end.IsZero() {
		return 0, false
	}
	d := end.Sub(start)
	if d <= 0 {
		return 0, false
	}
	return round2(d.Hours()), true
}

// TotalMileage returns end-start rounded to 1 decimal place. The second
// return is false unless both readings are present and end >= start.
func TotalMileage(start, end *float64) (float64, bool) {
	if start == nil || end == nil || *end < *start {
		return 0, false
	}
	return round1(*end - *start), true
}

// PayRate returns pay/hours rounded to 2 decimal places. The second return
// is false unless pay is present and hours is positive.
func PayRate(pay *float64, hours float64) (float64, bool) {
	if pay == nil || hours <= 0 {
		return 0, false
	}
	return round2(*pay / hours), true
}

// Metrics recomputes all derived figures from the shift's raw stored
// fields. Stale persisted values are never consulted.
func (s Shift) Metrics() ShiftMetrics {
	var m ShiftMetrics
	hours := 0.0
	if h, ok := ElapsedHours(s.StartTime, s.EndTime); ok {
		m.Hours = &h
		hours = h
	}
	if mi, ok := TotalMileage(s.StartMileage, s.EndMileage); ok {
		m.Mileage = &mi
	}
	if r, ok := PayRate(s.EstimatedPay, hours); ok {
		m.Rate = &r
	}
	return m
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round2(v float64) float64 { return math.Round(v*100) / 100 }
