package schema

import (
	"fmt"
	"strings"
	"time"
)

// ParseDate parses a YYYY-MM-DD key into midnight UTC of that calendar day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return t, nil
}

// FormatDate renders the calendar day of t as a measurement key.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// CivilDate drops the clock and zone of t, keeping the calendar day as seen in t's location.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns 23:59:59 of the calendar day of date in loc.
func EndOfDay(date time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, loc)
}

// DateRange returns every calendar day from start to end inclusive.
// It returns nil when start is after end.
func DateRange(start, end time.Time) []time.Time {
	start, end = CivilDate(start), CivilDate(end)
	if start.After(end) {
		return nil
	}
	var out []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

// MonthStart returns the first day of the month containing t.
func MonthStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// ShortCommit truncates a commit id to CommitIDLength characters.
func ShortCommit(commit string) string {
	commit = strings.TrimSpace(commit)
	if len(commit) > CommitIDLength {
		return commit[:CommitIDLength]
	}
	return commit
}
