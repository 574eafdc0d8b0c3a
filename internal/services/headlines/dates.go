package headlines

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"FinMerge/pkg/util"
)

// dateHint marks a text node that probably carries a publication date.
var dateHint = regexp.MustCompile(`\d{1,2}:\d{2}|\bago\b|(?i:yesterday|today)|Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec`)

var (
	relativeRe = regexp.MustCompile(`(?i)\b(\d+|an?)\s*(minute|min|hour|hr|day|week|month|year)s?\b.*\bago\b`)
	monthDayRe = regexp.MustCompile(`\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+\d{1,2},\s*\d{4}\b`)
	isoDayRe   = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	usDayRe    = regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`)
)

var unitDuration = map[string]time.Duration{
	"minute": time.Minute,
	"min":    time.Minute,
	"hour":   time.Hour,
	"hr":     time.Hour,
	"day":    24 * time.Hour,
	"week":   7 * 24 * time.Hour,
	"month":  30 * 24 * time.Hour,
	"year":   365 * 24 * time.Hour,
}

// HasDateHint reports whether s looks like it holds a date.
func HasDateHint(s string) bool { return dateHint.MatchString(s) }

// DateParser resolves scraped date strings against an injected clock.
type DateParser struct {
	now func() time.Time
}

func NewDateParser(now func() time.Time) *DateParser {
	if now == nil {
		now = time.Now
	}
	return &DateParser{now: now}
}

// Parse returns the calendar date s refers to. Relative phrases ("3 hours ago", "yesterday")
// are resolved against the clock; absolute dates may be embedded in longer text.
func (p *DateParser) Parse(s string) (time.Time, bool) {
	s = util.CollapseSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	lower := strings.ToLower(s)

	if m := relativeRe.FindStringSubmatch(s); m != nil {
		n := 1
		if v, err := strconv.Atoi(m[1]); err == nil {
			n = v
		}
		d := unitDuration[strings.ToLower(m[2])]
		return util.CalendarDate(p.now().Add(-time.Duration(n) * d)), true
	}

	if t, ok := parseAbsolute(s); ok {
		return t, true
	}

	switch {
	case strings.Contains(lower, "yesterday"):
		return util.CalendarDate(p.now().AddDate(0, 0, -1)), true
	case strings.Contains(lower, "today"):
		return util.CalendarDate(p.now()), true
	}
	return time.Time{}, false
}

func parseAbsolute(s string) (time.Time, bool) {
	if m := monthDayRe.FindString(s); m != "" {
		m = strings.Replace(m, ".", "", 1)
		m = strings.Join(strings.Fields(strings.Replace(m, ",", ", ", 1)), " ")
		for _, layout := range []string{"Jan 2, 2006", "January 2, 2006"} {
			if t, err := time.Parse(layout, m); err == nil {
				return t, true
			}
		}
	}
	if m := isoDayRe.FindString(s); m != "" {
		if t, err := time.Parse("2006-01-02", m); err == nil {
			return t, true
		}
	}
	if m := usDayRe.FindString(s); m != "" {
		if t, err := time.Parse("1/2/2006", m); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
