package dates

import (
	"testing"
	"time"
)

var now = time.Date(2024, 6, 15, 14, 30, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParse_Relative(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"today", day(2024, 6, 15)},
		{"Yesterday", day(2024, 6, 14)},
		{"just now", day(2024, 6, 15)},
		{"3 hours ago", day(2024, 6, 15)},
		{"a day ago", day(2024, 6, 14)},
		{"5 days ago", day(2024, 6, 10)},
		{"2 weeks ago", day(2024, 6, 1)},
		{"a week ago", day(2024, 6, 8)},
		{"a month ago", day(2024, 5, 16)},
		{"2 months ago", day(2024, 4, 16)},
		{"a year ago", day(2023, 6, 16)},
		{"2 years ago", day(2022, 6, 16)},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := Parse(tt.raw, now)
			if !ok {
				t.Fatalf("expected %q to parse", tt.raw)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Parse(%q) = %s, want %s", tt.raw, got.Format(dayLayout), tt.want.Format(dayLayout))
			}
		})
	}
}

func TestParse_Absolute(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"2024-03-15", day(2024, 3, 15)},
		{"March 15, 2024", day(2024, 3, 15)},
		{"03/15/2024", day(2024, 3, 15)},
		{"Reviewed March 3, 2024", day(2024, 3, 3)},
		{"2024-03-15T22:10:00Z", day(2024, 3, 15)},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := Parse(tt.raw, now)
			if !ok {
				t.Fatalf("expected %q to parse", tt.raw)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Parse(%q) = %s, want %s", tt.raw, got.Format(dayLayout), tt.want.Format(dayLayout))
			}
		})
	}
}

func TestParse_FallsBackToToday(t *testing.T) {
	for _, raw := range []string{"", "   ", "sometime last summer"} {
		got, ok := Parse(raw, now)
		if ok {
			t.Errorf("expected %q not to parse", raw)
		}
		if !got.Equal(day(2024, 6, 15)) {
			t.Errorf("Parse(%q) = %s, want today", raw, got)
		}
	}
}

func TestParseRange(t *testing.T) {
	r, err := ParseRange("2024-01-01", "2024-03-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.String() != "2024-01-01..2024-03-31" {
		t.Errorf("unexpected range: %s", r)
	}

	if _, err := ParseRange("2024-03-31", "2024-01-01"); err == nil {
		t.Error("expected error for inverted range")
	}
	if _, err := ParseRange("01/01/2024", ""); err == nil {
		t.Error("expected error for non-ISO date")
	}

	open, err := ParseRange("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !open.IsOpen() || open.String() != "*..*" {
		t.Errorf("expected open range, got %s", open)
	}
}

func TestRange_Contains(t *testing.T) {
	r, _ := ParseRange("2024-01-01", "2024-03-31")

	tests := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"start inclusive", day(2024, 1, 1), true},
		{"end inclusive with time of day", time.Date(2024, 3, 31, 23, 59, 0, 0, time.UTC), true},
		{"inside", day(2024, 2, 14), true},
		{"before", day(2023, 12, 31), false},
		{"after", day(2024, 4, 1), false},
	}

	for _, tt := range tests {
		if got := r.Contains(tt.t); got != tt.want {
			t.Errorf("%s: Contains(%s) = %v, want %v", tt.name, tt.t, got, tt.want)
		}
	}

	startOnly, _ := ParseRange("2024-01-01", "")
	if !startOnly.Contains(day(2030, 1, 1)) {
		t.Error("expected open end to accept future dates")
	}
	if !startOnly.Contains(time.Time{}) {
		t.Error("unknown dates should never be filtered out")
	}
	if (Range{}).Contains(day(1999, 1, 1)) != true {
		t.Error("expected open range to accept any date")
	}
}
