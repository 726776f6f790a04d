package core

import (
	"testing"
	"time"
)

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   string
		want *float64
	}{
		{"42.5", fp(42.5)},
		{"12,34", fp(12.34)},
		{" 7 ", fp(7)},
		{"-3", fp(-3)},
		{"", nil},
		{"   ", nil},
		{"abc", nil},
	}
	for _, tc := range cases {
		got := ParseNumber(tc.in)
		switch {
		case tc.want == nil && got != nil:
			t.Fatalf("%q: expected nil, got %v", tc.in, *got)
		case tc.want != nil && (got == nil || *got != *tc.want):
			t.Fatalf("%q: got %v, want %v", tc.in, got, *tc.want)
		}
	}
}

func TestParseCount(t *testing.T) {
	if got := ParseCount("14"); got == nil || *got != 14 {
		t.Fatalf("got %v", got)
	}
	if got := ParseCount(""); got != nil {
		t.Fatalf("blank count must be nil, got %v", *got)
	}
}

func TestParseLocalTimeRoundTrip(t *testing.T) {
	in := "2024-03-01T09:00"
	parsed := ParseLocalTime(in)
	if parsed == nil {
		t.Fatalf("expected a time")
	}
	if parsed.Hour() != 9 || parsed.Location() != time.Local {
		t.Fatalf("got %v", parsed)
	}
	if out := FormatLocalTime(*parsed); out != in {
		t.Fatalf("round trip: got %s, want %s", out, in)
	}

	if ParseLocalTime("") != nil || ParseLocalTime("not-a-time") != nil {
		t.Fatalf("invalid input must parse to nil")
	}
	if FormatLocalTime(time.Time{}) != "" {
		t.Fatalf("zero time must render empty")
	}
}
