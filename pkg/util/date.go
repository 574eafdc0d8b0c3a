package util

import (
	"strconv"
	"time"
)

// DayLayout is the naive calendar-date layout used in every persisted file.
const DayLayout = "2006-01-02"

// CalendarDate keeps the wall-clock date of t as written and re-expresses it at 00:00 UTC.
// Both sides of a date comparison must pass through it.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDay renders a calendar date as YYYY-MM-DD.
func FormatDay(t time.Time) string {
	return CalendarDate(t).Format(DayLayout)
}

// ParseDay parses YYYY-MM-DD, tolerating a trailing time or offset part
// (e.g. "2024-03-01 00:00:00-05:00"), and returns the normalized calendar date.
func ParseDay(s string) (time.Time, bool) {
	if len(s) < len(DayLayout) {
		return time.Time{}, false
	}
	t, err := time.Parse(DayLayout, s[:len(DayLayout)])
	if err != nil {
		return time.Time{}, false
	}
	return CalendarDate(t), true
}

// ParseTime tries RFC3339, RFC3339Nano, and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0), true
	}
	return time.Time{}, false
}

// YearEnd returns December 31st of the given year as a calendar date.
func YearEnd(year int) time.Time {
	return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
}
