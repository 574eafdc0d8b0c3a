package headlines

import (
	"testing"
	"time"
)

func fixedClock() time.Time { return time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC) }

func TestDateParser(t *testing.T) {
	p := NewDateParser(fixedClock)

	cases := []struct {
		in   string
		want string
	}{
		{"2 hours ago", "2024-06-10"},
		{"15 minutes ago", "2024-06-10"},
		{"3 days ago", "2024-06-07"},
		{"1 week ago", "2024-06-03"},
		{"2 months ago", "2024-04-11"},
		{"1 year ago", "2023-06-11"},
		{"an hour ago", "2024-06-10"},
		{"yesterday", "2024-06-09"},
		{"Today", "2024-06-10"},
		{"Jan 5, 2024", "2024-01-05"},
		{"Jan 05, 2024", "2024-01-05"},
		{"January 15, 2023", "2023-01-15"},
		{"2023-11-20", "2023-11-20"},
		{"3/7/2022", "2022-03-07"},
		{"Posted Mar 5, 2024 at 10:00 AM", "2024-03-05"},
		{"Barron's 2023-11-20 09:30", "2023-11-20"},
	}
	for _, c := range cases {
		got, ok := p.Parse(c.in)
		if !ok {
			t.Fatalf("%q: expected a date", c.in)
		}
		if got.Format("2006-01-02") != c.want {
			t.Fatalf("%q: expected %s, got %s", c.in, c.want, got.Format("2006-01-02"))
		}
	}
}

func TestDateParserUnknown(t *testing.T) {
	p := NewDateParser(fixedClock)
	for _, in := range []string{"", "10:30 AM ET", "moments ago", "Reuters", "13/45/2020"} {
		if got, ok := p.Parse(in); ok {
			t.Fatalf("%q: expected unknown, got %v", in, got)
		}
	}
}

func TestHasDateHint(t *testing.T) {
	yes := []string{"10:30", "3 days ago", "Yesterday", "today", "Mar 5", "January"}
	no := []string{"Reuters", "Chicago", "Apple Inc.", "Barron's"}
	for _, s := range yes {
		if !HasDateHint(s) {
			t.Fatalf("%q: expected hint", s)
		}
	}
	for _, s := range no {
		if HasDateHint(s) {
			t.Fatalf("%q: expected no hint", s)
		}
	}
}
