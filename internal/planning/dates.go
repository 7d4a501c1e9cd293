// Package planning holds the pure rules of the strategic plan: initiative
// status classification, KPI derivation, trend regression and the form-level
// business rules around them. Nothing here performs I/O or keeps state.
package planning

import (
	"strings"
	"time"
)

const (
	displayLayout = "2/1/2006" // also accepts zero padded input
	displayFormat = "02/01/2006"
	isoLayout     = "2006-01-02"
)

// ParseDisplayDate parses a DD/MM/YYYY date. Empty or malformed input
// reports false.
func ParseDisplayDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(displayLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseISODate parses a YYYY-MM-DD date.
func ParseISODate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(isoLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseDate accepts either boundary format.
func ParseDate(s string) (time.Time, bool) {
	if strings.Contains(s, "/") {
		return ParseDisplayDate(s)
	}
	return ParseISODate(s)
}

func FormatDisplayDate(t time.Time) string { return t.Format(displayFormat) }

func FormatISODate(t time.Time) string { return t.Format(isoLayout) }

// NormalizeDisplayDate rewrites a date given in either format as DD/MM/YYYY.
// Anything unparseable becomes the empty string.
func NormalizeDisplayDate(s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return ""
	}
	return FormatDisplayDate(t)
}

// DisplayToISO converts DD/MM/YYYY to the YYYY-MM-DD form used by date inputs.
func DisplayToISO(s string) string {
	t, ok := ParseDisplayDate(s)
	if !ok {
		return ""
	}
	return FormatISODate(t)
}

// DateOf drops the clock part of t, keeping its calendar date in t's location,
// and returns it as UTC midnight so it compares cleanly with parsed dates.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

const secondsPerDay = 24 * 60 * 60

// DaysBetween counts calendar days from a to b. It works on Unix seconds
// because time.Duration saturates for spans longer than about 292 years.
func DaysBetween(a, b time.Time) int {
	return int(DateOf(b).Unix()/secondsPerDay - DateOf(a).Unix()/secondsPerDay)
}
