package scoring

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// FarFuture is the due date of tasks whose date is missing or unparseable.
// It puts them past every urgency window.
var FarFuture = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

// NormalizeDate parses a loosely formatted date ("2025-11-30", "Nov 30 2025",
// "11/30/2025", RFC 3339 ...) and returns midnight of that calendar day in
// loc. Strings without a zone are read in loc. Anything that does not parse
// yields FarFuture.
func NormalizeDate(s string, loc *time.Location) time.Time {
	d, err := ParseDate(s, loc)
	if err != nil {
		return FarFuture
	}
	return d
}

// ParseDate is NormalizeDate without the fallback.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	t, err := dateparse.ParseIn(s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}

// daysBetween returns the number of calendar days from one date to another.
// Seconds are used instead of time.Duration, which saturates at ~292 years
// and cannot span the distance to FarFuture.
func daysBetween(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int((b.Unix() - a.Unix()) / 86400)
}
