package caldav

import "time"

// Calendar is a remote calendar discovered on the server.
type Calendar struct {
	Path        string
	DisplayName string
}

// Event is a remote VEVENT reduced to what the planner imports: a title and
// a start day, plus the time of day for timed events.
type Event struct {
	UID       string
	Summary   string
	StartTime time.Time
	AllDay    bool
}
