package cli

import (
	"testing"
	"time"
)

func TestParseTimeFlag(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2026-08-31T18:00:00+03:00", time.Date(2026, 8, 31, 18, 0, 0, 0, time.FixedZone("", 3*3600))},
		{"2026-08-31T18:00:00", time.Date(2026, 8, 31, 18, 0, 0, 0, time.Local)},
		{"2026-08-31 18:00:00", time.Date(2026, 8, 31, 18, 0, 0, 0, time.Local)},
		{"2026-08-31 18:00", time.Date(2026, 8, 31, 18, 0, 0, 0, time.Local)},
		{"2026-08-31", time.Date(2026, 8, 31, 0, 0, 0, 0, time.Local)},
	}

	for _, tt := range tests {
		got, err := parseTimeFlag(tt.in)
		if err != nil {
			t.Errorf("parseTimeFlag(%q) failed: %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("parseTimeFlag(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseTimeFlagNow(t *testing.T) {
	for _, in := range []string{"", "now", "NOW", "  now  "} {
		before := time.Now()
		got, err := parseTimeFlag(in)
		if err != nil {
			t.Fatalf("parseTimeFlag(%q) failed: %v", in, err)
		}
		if got.Before(before) || time.Since(got) > time.Minute {
			t.Errorf("parseTimeFlag(%q) = %v, expected the current time", in, got)
		}
	}
}

func TestParseTimeFlagClock(t *testing.T) {
	got, err := parseTimeFlag("18:30:15")
	if err != nil {
		t.Fatal(err)
	}

	// a bare time of day resolves to today
	now := time.Now()
	want := time.Date(now.Year(), now.Month(), now.Day(), 18, 30, 15, 0, time.Local)
	if !got.Equal(want) {
		t.Errorf("parseTimeFlag(\"18:30:15\") = %v, want %v", got, want)
	}
}

func TestParseTimeFlagInvalid(t *testing.T) {
	for _, in := range []string{"yesterday", "31.8.2026", "2026-13-01"} {
		if _, err := parseTimeFlag(in); err == nil {
			t.Errorf("parseTimeFlag(%q) should fail", in)
		}
	}
}

func TestParseDurationFlag(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"1h30m", 90 * time.Minute},
		{"90s", 90 * time.Second},
		{"1:30:00", 90 * time.Minute},
		{"0:05:30.500", 5*time.Minute + 30*time.Second + 500*time.Millisecond},
		{"0:05:30,500", 5*time.Minute + 30*time.Second + 500*time.Millisecond},
		// two components are hours and minutes, not minutes and seconds
		{"1:30", 90 * time.Minute},
		{"90", 90 * time.Second},
		{"2.5", 2500 * time.Millisecond},
		{"2,5", 2500 * time.Millisecond},
	}

	for _, tt := range tests {
		got, err := parseDurationFlag(tt.in)
		if err != nil {
			t.Errorf("parseDurationFlag(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseDurationFlag(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseDurationFlagInvalid(t *testing.T) {
	for _, in := range []string{"", "-30s", "ninety", "1:2:3:4"} {
		if _, err := parseDurationFlag(in); err == nil {
			t.Errorf("parseDurationFlag(%q) should fail", in)
		}
	}
}
