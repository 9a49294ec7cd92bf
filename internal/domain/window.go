package domain

import "time"

// WindowDays is the fixed span of the rendered grid: six full weeks.
const WindowDays = 42

// TodoItem pairs a todo with its overdue flag computed at render time.
type TodoItem struct {
	Todo    *Todo
	Overdue bool
}

// Day is one cell of the six-week grid.
type Day struct {
	Date   time.Time
	Key    string
	Today  bool
	Events []*Event
	Todos  []TodoItem
}

// Window is the derived 42-day view model. Days always holds exactly
// WindowDays consecutive cells starting on a Sunday.
type Window struct {
	Start time.Time
	End   time.Time
	Days  []Day
}

// Title returns the header text for the window span.
func (w *Window) Title() string {
	return w.Start.Format("Mon Jan 02 2006") + " - " + w.End.Format("Mon Jan 02 2006")
}
