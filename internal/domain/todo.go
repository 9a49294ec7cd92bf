package domain

import (
	"time"

	"planbot/internal/dateutil"
)

// Todo is a task with optional scheduling. A todo without a due date never
// shows up on the calendar grid and can never be overdue.
type Todo struct {
	ID        int64
	Text      string
	Done      bool
	DueDate   *time.Time
	DueTime   string // optional "HH:MM"; empty means end-of-day cutoff
	CreatedAt time.Time
}

// DueAt returns the instant after which the todo counts as overdue. With no
// due time set, the cutoff is 23:59:59 of the due day. The second return is
// false when the todo has no due date at all.
func (t *Todo) DueAt() (time.Time, bool) {
	if t.DueDate == nil {
		return time.Time{}, false
	}
	day := dateutil.Midnight(*t.DueDate)
	if t.DueTime != "" {
		if tod, err := time.Parse("15:04", t.DueTime); err == nil {
			return day.Add(time.Duration(tod.Hour())*time.Hour + time.Duration(tod.Minute())*time.Minute), true
		}
	}
	return day.Add(24*time.Hour - time.Second), true
}

// Overdue reports whether the todo is past due relative to now. Never
// stored; recomputed on every render so it stays monotone as time advances.
func (t *Todo) Overdue(now time.Time) bool {
	if t.Done {
		return false
	}
	due, ok := t.DueAt()
	if !ok {
		return false
	}
	return now.After(due)
}

// DueOn reports whether the todo is due on the given calendar day.
func (t *Todo) DueOn(day time.Time) bool {
	return t.DueDate != nil && dateutil.SameDay(*t.DueDate, day)
}
