package domain

import (
	"time"

	"planbot/internal/dateutil"
)

type Recurrence string

const (
	RecurrenceNone     Recurrence = "none"
	RecurrenceDaily    Recurrence = "daily"
	RecurrenceWeekly   Recurrence = "weekly"
	RecurrenceBiweekly Recurrence = "biweekly"
	RecurrenceMonthly  Recurrence = "monthly"
	RecurrenceYearly   Recurrence = "yearly"
)

// ParseRecurrence maps user input to a recurrence kind.
func ParseRecurrence(s string) (Recurrence, bool) {
	switch Recurrence(s) {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly,
		RecurrenceBiweekly, RecurrenceMonthly, RecurrenceYearly:
		return Recurrence(s), true
	}
	return RecurrenceNone, false
}

func (r Recurrence) Valid() bool {
	_, ok := ParseRecurrence(string(r))
	return ok
}

// DefaultColor is the cell color used when an event has none set.
const DefaultColor = "#e0f7fa"

// Event is a recurring or one-off calendar entry. Date is the anchor day:
// the first possible occurrence. Exceptions holds canonical date keys on
// which an otherwise-matching occurrence is suppressed.
type Event struct {
	ID         int64
	Title      string
	Date       time.Time
	Recurrence Recurrence
	Time       string // optional "HH:MM", display only
	Color      string
	Exceptions []string
	CreatedAt  time.Time
}

// OccursOn reports whether the event is active on the given calendar day.
// No recurrence kind ever matches a day before the anchor. Monthly and
// yearly rules match on day-of-month equality only, so an anchor on the
// 31st simply skips months without a 31st.
func (e *Event) OccursOn(day time.Time) bool {
	diff := dateutil.DaysBetween(e.Date, day)
	if diff < 0 {
		return false
	}

	var match bool
	switch e.Recurrence {
	case RecurrenceDaily:
		match = true
	case RecurrenceWeekly:
		match = day.Weekday() == e.Date.Weekday()
	case RecurrenceBiweekly:
		match = day.Weekday() == e.Date.Weekday() && diff%14 == 0
	case RecurrenceMonthly:
		match = day.Day() == e.Date.Day()
	case RecurrenceYearly:
		match = day.Month() == e.Date.Month() && day.Day() == e.Date.Day()
	default:
		// RecurrenceNone and anything unrecognized: anchor day only.
		match = diff == 0
	}

	return match && !e.HasException(day)
}

// HasException reports whether the given day is suppressed for this event.
func (e *Event) HasException(day time.Time) bool {
	key := dateutil.Key(day)
	for _, x := range e.Exceptions {
		if x == key {
			return true
		}
	}
	return false
}

// AddException suppresses the given day. Adding the same day twice keeps a
// single entry.
func (e *Event) AddException(day time.Time) {
	if e.HasException(day) {
		return
	}
	e.Exceptions = append(e.Exceptions, dateutil.Key(day))
}

// Recurring reports whether the event has any recurrence beyond its anchor.
func (e *Event) Recurring() bool {
	return e.Recurrence != RecurrenceNone && e.Recurrence != ""
}

// CellText returns the calendar-cell label: "HH:MM - title" when a time of
// day is set, the bare title otherwise.
func (e *Event) CellText() string {
	if e.Time != "" {
		return e.Time + " - " + e.Title
	}
	return e.Title
}

// DisplayColor returns the event color, falling back to the default.
func (e *Event) DisplayColor() string {
	if e.Color == "" {
		return DefaultColor
	}
	return e.Color
}
