// Package gameday maps wall-clock timestamps onto the tracked game's
// accounting day, which starts at 08:00 local time instead of midnight.
package gameday

import "time"

// StartHour is the hour at which a new game-day begins.
const StartHour = 8

// LabelLayout formats a game-day by the calendar date of its start.
const LabelLayout = "2006-01-02"

// Start returns the 08:00 instant that opens the game-day containing t,
// evaluated in loc. A nil loc means t's own location.
func Start(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	if t.Hour() < StartHour {
		y, m, d = t.AddDate(0, 0, -1).Date()
	}
	return time.Date(y, m, d, StartHour, 0, 0, 0, t.Location())
}

// End returns the exclusive end of the game-day opened at start.
// Calendar arithmetic keeps consecutive days contiguous across DST changes.
func End(start time.Time) time.Time {
	return start.AddDate(0, 0, 1)
}

// Range returns the half-open [start, end) bounds of t's game-day.
func Range(t time.Time, loc *time.Location) (time.Time, time.Time) {
	start := Start(t, loc)
	return start, End(start)
}

// Previous returns the start of the game-day immediately before the one opened at start.
func Previous(start time.Time) time.Time {
	return start.AddDate(0, 0, -1)
}

// Contains reports whether t falls in the game-day opened at start.
func Contains(start, t time.Time) bool {
	return !t.Before(start) && t.Before(End(start))
}

// Same reports whether a and b belong to the same game-day.
func Same(a, b time.Time, loc *time.Location) bool {
	return Start(a, loc).Equal(Start(b, loc))
}

// Label renders the game-day of t as its start date, e.g. "2024-03-09".
func Label(t time.Time, loc *time.Location) string {
	return Start(t, loc).Format(LabelLayout)
}

// Parse turns a "YYYY-MM-DD" label back into the start of that game-day.
func Parse(label string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	d, err := time.ParseInLocation(LabelLayout, label, loc)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), StartHour, 0, 0, 0, loc), nil
}
