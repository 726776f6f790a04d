package core

import (
	"testing"
	"time"
)

func fp(v float64) *float64 { return &v }

func tp(t time.Time) *time.Time { return &t }

func TestElapsedHours(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local)

	cases := []struct {
		name  string
		start time.Time
		end   *time.Time
		want  float64
		ok    bool
	}{
		{"eight hours", start, tp(start.Add(8 * time.Hour)), 8.00, true},
		{"rounded to 2dp", start, tp(start.Add(7*time.Hour + 50*time.Minute)), 7.83, true},
		{"end equals start", start, tp(start), 0, false},
		{"end before start", start, tp(start.Add(-time.Hour)), 0, false},
		{"missing end", start, nil, 0, false},
		{"missing start", time.Time{}, tp(start), 0, false},
	}
	for _, tc := range cases {
		got, ok := ElapsedHours(tc.start, tc.end)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("%s: got (%v, %v), want (%v, %v)", tc.name, got, ok, tc.want, tc.ok)
		}
	}
}

func TestElapsedHoursMatchesMillisecondFormula(t *testing.T) {
	start := time.Date(2024, 6, 10, 8, 15, 0, 0, time.Local)
	end := start.Add(3*time.Hour + 41*time.Minute)

	got, ok := ElapsedHours(start, tp(end))
	if !ok {
		t.Fatalf("expected defined hours")
	}
	ms := float64(end.Sub(start).Milliseconds())
	if want := round2(ms / 3600000); got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestTotalMileage(t *testing.T) {
	cases := []struct {
		name       string
		start, end *float64
		want       float64
		ok         bool
	}{
		{"simple", fp(100), fp(142.5), 42.5, true},
		{"rounded to 1dp", fp(0), fp(12.34), 12.3, true},
		{"equal readings", fp(50), fp(50), 0, true},
		{"end below start", fp(100), fp(99), 0, false},
		{"missing start", nil, fp(10), 0, false},
		{"missing end", fp(10), nil, 0, false},
	}
	for _, tc := range cases {
		got, ok := TotalMileage(tc.start, tc.end)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("%s: got (%v, %v), want (%v, %v)", tc.name, got, ok, tc.want, tc.ok)
		}
	}
}

func TestPayRate(t *testing.T) {
	if _, ok := PayRate(fp(80), 0); ok {
		t.Fatalf("rate must be undefined for zero hours")
	}
	if _, ok := PayRate(fp(80), -1); ok {
		t.Fatalf("rate must be undefined for negative hours")
	}
	if _, ok := PayRate(nil, 8); ok {
		t.Fatalf("rate must be undefined for missing pay")
	}
	got, ok := PayRate(fp(80), 8)
	if !ok || got != 10.00 {
		t.Fatalf("got (%v, %v), want (10, true)", got, ok)
	}
}

func TestPayRateScaleInvariant(t *testing.T) {
	for _, pay := range []float64{12.5, 80, 123.45} {
		for _, hours := range []float64{1, 7.5, 11.25} {
			a, _ := PayRate(&pay, hours)
			doubled := pay * 2
			b, _ := PayRate(&doubled, hours*2)
			if a != b {
				t.Fatalf("rate not scale-invariant: %v vs %v (pay=%v hours=%v)", a, b, pay, hours)
			}
		}
	}
}

func TestShiftMetrics(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local)
	s := Shift{
		StartTime:    start,
		EndTime:      tp(start.Add(8 * time.Hour)),
		StartMileage: fp(1000),
		EndMileage:   fp(1042.5),
		EstimatedPay: fp(80),
	}

	m := s.Metrics()
	if m.Hours == nil || *m.Hours != 8.00 {
		t.Fatalf("hours: got %v, want 8.00", m.Hours)
	}
	if m.Mileage == nil || *m.Mileage != 42.5 {
		t.Fatalf("mileage: got %v, want 42.5", m.Mileage)
	}
	if m.Rate == nil || *m.Rate != 10.00 {
		t.Fatalf("rate: got %v, want 10.00", m.Rate)
	}

	// Open shift: nothing derived from the end time.
	open := Shift{StartTime: start, EstimatedPay: fp(80)}
	om := open.Metrics()
	if om.Hours != nil || om.Rate != nil {
		t.Fatalf("open shift must have undefined hours and rate")
	}
}

func TestShiftNormalizedRecomputesTotalMileage(t *testing.T) {
	stale := 999.0
	s := Shift{StartMileage: fp(10), EndMileage: fp(30), TotalMileage: &stale}
	n := s.Normalized()
	if n.TotalMileage == nil || *n.TotalMileage != 20 {
		t.Fatalf("got %v, want 20", n.TotalMileage)
	}

	s = Shift{StartMileage: fp(30), EndMileage: fp(10), TotalMileage: &stale}
	if n := s.Normalized(); n.TotalMileage != nil {
		t.Fatalf("invalid readings must clear the total, got %v", *n.TotalMileage)
	}
}
