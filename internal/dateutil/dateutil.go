// Package dateutil provides calendar-day arithmetic. All functions work on
// local wall-clock days; time-of-day and DST offsets never leak into results.
package dateutil

import "time"

// KeyLayout is the canonical YYYY-MM-DD form used for storage and equality.
const KeyLayout = "2006-01-02"

// Key returns the canonical key for the calendar day of t.
func Key(t time.Time) string {
	return t.Format(KeyLayout)
}

// ParseKey parses a canonical YYYY-MM-DD key into local midnight.
func ParseKey(key string) (time.Time, error) {
	return time.ParseInLocation(KeyLayout, key, time.Local)
}

// Midnight truncates t to the start of its calendar day.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// WeekStart returns the Sunday starting the week that contains t.
func WeekStart(t time.Time) time.Time {
	return Midnight(t).AddDate(0, 0, -int(t.Weekday()))
}

// DaysBetween returns whole calendar days from a to b, negative when b
// precedes a. The calculation goes through UTC so DST transitions between
// the two days cannot skew the count.
func DaysBetween(a, b time.Time) int {
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au).Hours() / 24)
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
