package query

import (
	"strings"
	"time"
)

// Period is a named look-back window for the pushed qualifier.
type Period struct {
	Name string
	Days int
}

// periods is ordered from shortest to longest.
var periods = []Period{
	{Name: "1week", Days: 7},
	{Name: "2weeks", Days: 14},
	{Name: "1month", Days: 30},
	{Name: "3months", Days: 90},
	{Name: "6months", Days: 180},
	{Name: "1year", Days: 365},
	{Name: "2years", Days: 730},
	{Name: "5years", Days: 1825},
}

// Periods returns the named periods, shortest first.
func Periods() []Period {
	out := make([]Period, len(periods))
	copy(out, periods)
	return out
}

// PeriodNames returns the period names, shortest first.
func PeriodNames() []string {
	names := make([]string, 0, len(periods))
	for _, p := range periods {
		names = append(names, p.Name)
	}
	return names
}

// ParseSince resolves a since value to a calendar date.
//
// Accepted forms are a period name (case-insensitive), resolved relative to
// now, or an exact YYYY-MM-DD date.
func ParseSince(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidSince
	}

	lower := strings.ToLower(s)
	for _, p := range periods {
		if p.Name == lower {
			d := now.AddDate(0, 0, -p.Days)
			return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}

	date, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidSince
	}
	return date, nil
}
