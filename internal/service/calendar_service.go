package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"planbot/internal/dateutil"
	"planbot/internal/domain"
	"planbot/internal/storage"
)

type CalendarService struct {
	storage *storage.Storage
	clock   Clock
}

func NewCalendarService(s *storage.Storage, clock Clock) *CalendarService {
	if clock == nil {
		clock = SystemClock()
	}
	return &CalendarService{storage: s, clock: clock}
}

// CreateEvent validates and stores a new event. The anchor date is the first
// possible occurrence.
func (s *CalendarService) CreateEvent(title string, date time.Time, rec domain.Recurrence, timeOfDay, color string) (*domain.Event, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("event title cannot be empty")
	}
	if date.IsZero() {
		return nil, errors.New("event date is required")
	}
	if rec == "" {
		rec = domain.RecurrenceNone
	}
	if !rec.Valid() {
		return nil, fmt.Errorf("unknown recurrence %q", rec)
	}
	if color == "" {
		color = domain.DefaultColor
	}

	event := &domain.Event{
		Title:      title,
		Date:       dateutil.Midnight(date),
		Recurrence: rec,
		Time:       timeOfDay,
		Color:      color,
	}

	if err := s.storage.CreateEvent(event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

// UpdateEvent mutates title, date, recurrence, time and color in place. An
// unknown id is a no-op so stale edits from the UI never surface as errors.
// Moving the anchor date does not remap existing exception dates; they stay
// keyed to the old calendar days.
func (s *CalendarService) UpdateEvent(id int64, title string, date time.Time, rec domain.Recurrence, timeOfDay, color string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return errors.New("event title cannot be empty")
	}
	if date.IsZero() {
		return errors.New("event date is required")
	}
	if rec == "" {
		rec = domain.RecurrenceNone
	}
	if !rec.Valid() {
		return fmt.Errorf("unknown recurrence %q", rec)
	}

	event, err := s.storage.GetEvent(id)
	if err != nil {
		return fmt.Errorf("get event: %w", err)
	}
	if event == nil {
		return nil
	}

	event.Title = title
	event.Date = dateutil.Midnight(date)
	event.Recurrence = rec
	event.Time = timeOfDay
	if color != "" {
		event.Color = color
	}

	if err := s.storage.UpdateEvent(event); err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return nil
}

// DeleteOccurrence removes a single occurrence on the given day. A one-off
// event is removed entirely; a recurring event gets the day added to its
// exception set. Unknown ids and duplicate exception days are no-ops.
func (s *CalendarService) DeleteOccurrence(id int64, day time.Time) error {
	event, err := s.storage.GetEvent(id)
	if err != nil {
		return fmt.Errorf("get event: %w", err)
	}
	if event == nil {
		return nil
	}

	if !event.Recurring() {
		return s.storage.DeleteEvent(id)
	}

	event.AddException(day)
	return s.storage.UpdateEventExceptions(event.ID, event.Exceptions)
}

// DeleteEvent removes the record and with it every occurrence.
func (s *CalendarService) DeleteEvent(id int64) error {
	return s.storage.DeleteEvent(id)
}

func (s *CalendarService) Get(id int64) (*domain.Event, error) {
	return s.storage.GetEvent(id)
}

func (s *CalendarService) List() ([]*domain.Event, error) {
	return s.storage.ListEvents()
}

// OccursOn answers a single-date query against the stored collection.
func (s *CalendarService) OccursOn(id int64, day time.Time) (bool, error) {
	event, err := s.storage.GetEvent(id)
	if err != nil {
		return false, fmt.Errorf("get event: %w", err)
	}
	if event == nil {
		return false, nil
	}
	return event.OccursOn(day), nil
}

// Collect is the pure occurrence projection for one day: events filtered
// through OccursOn in insertion order, todos due that day and not done, with
// overdue derived from now.
func Collect(events []*domain.Event, todos []*domain.Todo, day, now time.Time) ([]*domain.Event, []domain.TodoItem) {
	var dayEvents []*domain.Event
	for _, e := range events {
		if e.OccursOn(day) {
			dayEvents = append(dayEvents, e)
		}
	}

	var dayTodos []domain.TodoItem
	for _, t := range todos {
		if t.Done || !t.DueOn(day) {
			continue
		}
		dayTodos = append(dayTodos, domain.TodoItem{Todo: t, Overdue: t.Overdue(now)})
	}

	return dayEvents, dayTodos
}

// BuildWindow renders the six-week grid for the week containing anchor,
// loading both collections once and projecting them across all 42 days.
func (s *CalendarService) BuildWindow(anchor time.Time) (*domain.Window, error) {
	events, todos, err := s.storage.Load()
	if err != nil {
		return nil, err
	}
	return BuildWindow(anchor, events, todos, s.clock.Now()), nil
}

// BuildWindow expands the collections over exactly domain.WindowDays
// consecutive days starting at the Sunday of anchor's week.
func BuildWindow(anchor time.Time, events []*domain.Event, todos []*domain.Todo, now time.Time) *domain.Window {
	start := dateutil.WeekStart(anchor)
	w := &domain.Window{
		Start: start,
		End:   start.AddDate(0, 0, domain.WindowDays-1),
	}

	for i := 0; i < domain.WindowDays; i++ {
		day := start.AddDate(0, 0, i)
		cell := domain.Day{
			Date:  day,
			Key:   dateutil.Key(day),
			Today: dateutil.SameDay(day, now),
		}
		cell.Events, cell.Todos = Collect(events, todos, day, now)
		w.Days = append(w.Days, cell)
	}

	return w
}

// OccurrencesFor projects the stored collections onto a single day.
func (s *CalendarService) OccurrencesFor(day time.Time) ([]*domain.Event, []domain.TodoItem, error) {
	events, todos, err := s.storage.Load()
	if err != nil {
		return nil, nil, err
	}
	dayEvents, dayTodos := Collect(events, todos, day, s.clock.Now())
	return dayEvents, dayTodos, nil
}

var (
	dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeRe = regexp.MustCompile(`^\d{1,2}:\d{2}$`)
)

// ParseAddArgs parses "/addevent 2024-01-07 [17:30] [weekly] Title" format.
func (s *CalendarService) ParseAddArgs(args string) (date time.Time, timeOfDay string, rec domain.Recurrence, title string, err error) {
	rec = domain.RecurrenceNone

	parts := strings.Fields(args)
	if len(parts) < 2 {
		err = errors.New("format: /addevent YYYY-MM-DD [HH:MM] [daily|weekly|biweekly|monthly|yearly] Title")
		return
	}

	if !dateRe.MatchString(parts[0]) {
		err = errors.New("invalid date (use YYYY-MM-DD)")
		return
	}
	date, err = dateutil.ParseKey(parts[0])
	if err != nil {
		err = errors.New("invalid date (use YYYY-MM-DD)")
		return
	}
	parts = parts[1:]

	if len(parts) > 0 && timeRe.MatchString(parts[0]) {
		timeOfDay = parts[0]
		parts = parts[1:]
	}

	if len(parts) > 0 {
		if r, ok := domain.ParseRecurrence(strings.ToLower(parts[0])); ok {
			rec = r
			parts = parts[1:]
		}
	}

	title = strings.Join(parts, " ")
	if title == "" {
		err = errors.New("event title cannot be empty")
	}
	return
}

// FormatDay formats one day's occurrences for the bot.
func (s *CalendarService) FormatDay(day time.Time, events []*domain.Event, todos []domain.TodoItem) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<b>📅 %s</b>\n\n", day.Format("Mon Jan 02 2006")))

	if len(events) == 0 && len(todos) == 0 {
		sb.WriteString("Nothing scheduled")
		return sb.String()
	}

	for _, e := range events {
		sb.WriteString(fmt.Sprintf("🕐 %s\n", e.CellText()))
	}
	for _, t := range todos {
		mark := "⬜"
		text := t.Todo.Text
		if t.Overdue {
			mark = "⏰"
			text += " (overdue)"
		}
		sb.WriteString(fmt.Sprintf("%s %s\n", mark, text))
	}

	return sb.String()
}
