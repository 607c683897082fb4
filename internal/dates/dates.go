// Package dates turns the date strings review sites print into calendar dates.
package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const (
	dayLayout = "2006-01-02"

	// Relative units use fixed lengths; "a month ago" is 30 days back.
	daysPerWeek  = 7
	daysPerMonth = 30
	daysPerYear  = 365
)

// relativePattern matches "3 weeks ago", "a month ago", "an hour ago"
var relativePattern = regexp.MustCompile(`^(\d+|a|an|one)\s+(second|minute|hour|day|week|month|year)s?\s+ago$`)

// prefixes some sites put before the date itself
var datePrefixes = []string{"reviewed ", "written ", "posted ", "visited ", "date of visit:", "updated "}

// Parse converts a raw date string to a UTC calendar date. Relative forms are
// resolved against now. Unparseable input yields now's date and ok=false.
func Parse(raw string, now time.Time) (time.Time, bool) {
	today := Truncate(now)

	trimmed := stripPrefixes(strings.TrimSpace(raw))
	if trimmed == "" {
		return today, false
	}

	s := strings.ToLower(trimmed)
	switch s {
	case "today", "just now", "now":
		return today, true
	case "yesterday":
		return today.AddDate(0, 0, -1), true
	}

	if t, ok := parseRelative(s, now); ok {
		return t, true
	}

	t, err := dateparse.ParseIn(trimmed, time.UTC)
	if err != nil {
		return today, false
	}
	return Truncate(t), true
}

// stripPrefixes removes a leading label such as "Reviewed " keeping the case
// of the remainder
func stripPrefixes(s string) string {
	for _, p := range datePrefixes {
		if len(s) >= len(p) && strings.EqualFold(s[:len(p)], p) {
			s = strings.TrimSpace(s[len(p):])
		}
	}
	return s
}

func parseRelative(s string, now time.Time) (time.Time, bool) {
	m := relativePattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}

	n := 1
	if v, err := strconv.Atoi(m[1]); err == nil {
		n = v
	}

	var days int
	switch m[2] {
	case "second", "minute", "hour":
		return Truncate(now), true
	case "day":
		days = n
	case "week":
		days = n * daysPerWeek
	case "month":
		days = n * daysPerMonth
	case "year":
		days = n * daysPerYear
	}
	return Truncate(now).AddDate(0, 0, -days), true
}

// Truncate drops the time of day and returns the UTC calendar date
func Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Range is an inclusive calendar-date window. Zero bounds are open.
type Range struct {
	Start time.Time
	End   time.Time
}

// ParseRange builds a range from YYYY-MM-DD bounds; empty strings leave that
// side open.
func ParseRange(start, end string) (Range, error) {
	var r Range
	if start != "" {
		t, err := time.Parse(dayLayout, strings.TrimSpace(start))
		if err != nil {
			return Range{}, fmt.Errorf("invalid start date %q: %w", start, err)
		}
		r.Start = t
	}
	if end != "" {
		t, err := time.Parse(dayLayout, strings.TrimSpace(end))
		if err != nil {
			return Range{}, fmt.Errorf("invalid end date %q: %w", end, err)
		}
		r.End = t
	}
	if !r.Start.IsZero() && !r.End.IsZero() && r.End.Before(r.Start) {
		return Range{}, fmt.Errorf("end date %s is before start date %s", end, start)
	}
	return r, nil
}

// Contains reports whether t's calendar date falls within the range. An
// unknown (zero) date is always kept.
func (r Range) Contains(t time.Time) bool {
	if t.IsZero() {
		return true
	}
	d := Truncate(t)
	if !r.Start.IsZero() && d.Before(Truncate(r.Start)) {
		return false
	}
	if !r.End.IsZero() && d.After(Truncate(r.End)) {
		return false
	}
	return true
}

// IsOpen reports whether neither bound is set
func (r Range) IsOpen() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

func (r Range) String() string {
	start, end := "*", "*"
	if !r.Start.IsZero() {
		start = r.Start.Format(dayLayout)
	}
	if !r.End.IsZero() {
		end = r.End.Format(dayLayout)
	}
	return start + ".." + end
}
