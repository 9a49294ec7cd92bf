package service

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"

	"planbot/internal/domain"
	"planbot/internal/storage"
)

// ExportService serializes the event collection as an iCalendar document so
// the grid can be carried into any other calendar client.
type ExportService struct {
	storage *storage.Storage
	clock   Clock
}

func NewExportService(s *storage.Storage, clock Clock) *ExportService {
	if clock == nil {
		clock = SystemClock()
	}
	return &ExportService{storage: s, clock: clock}
}

// Export encodes every stored event as a VEVENT. Recurrence maps onto RRULE
// (biweekly becomes WEEKLY with INTERVAL=2) and exception days onto EXDATE.
func (s *ExportService) Export() ([]byte, error) {
	events, err := s.storage.ListEvents()
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//planbot//calendar//EN")

	now := s.clock.Now().UTC()
	for _, e := range events {
		cal.Children = append(cal.Children, eventToVEvent(e, now))
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("encode calendar: %w", err)
	}
	return buf.Bytes(), nil
}

func eventToVEvent(e *domain.Event, stamp time.Time) *ical.Component {
	vevent := ical.NewEvent()
	vevent.Props.SetText(ical.PropUID, fmt.Sprintf("%d@planbot", e.ID))
	vevent.Props.SetText(ical.PropSummary, e.Title)
	vevent.Props.SetDateTime(ical.PropDateTimeStamp, stamp)

	if e.Time != "" {
		start := e.Date
		if tod, err := time.Parse("15:04", e.Time); err == nil {
			start = start.Add(time.Duration(tod.Hour())*time.Hour + time.Duration(tod.Minute())*time.Minute)
		}
		vevent.Props.SetDateTime(ical.PropDateTimeStart, start)
	} else {
		vevent.Props.SetDate(ical.PropDateTimeStart, e.Date)
	}

	if rule, ok := RecurrenceRule(e.Recurrence); ok {
		vevent.Props.SetText(ical.PropRecurrenceRule, rule.RRuleString())
	}

	for _, key := range e.Exceptions {
		prop := ical.NewProp(ical.PropExceptionDates)
		prop.SetValueType(ical.ValueDate)
		prop.Value = strings.ReplaceAll(key, "-", "")
		vevent.Props.Add(prop)
	}

	return vevent.Component
}

// RecurrenceRule maps a recurrence kind onto an RRULE option set. The second
// return is false for one-off events.
func RecurrenceRule(rec domain.Recurrence) (*rrule.ROption, bool) {
	switch rec {
	case domain.RecurrenceDaily:
		return &rrule.ROption{Freq: rrule.DAILY}, true
	case domain.RecurrenceWeekly:
		return &rrule.ROption{Freq: rrule.WEEKLY}, true
	case domain.RecurrenceBiweekly:
		return &rrule.ROption{Freq: rrule.WEEKLY, Interval: 2}, true
	case domain.RecurrenceMonthly:
		return &rrule.ROption{Freq: rrule.MONTHLY}, true
	case domain.RecurrenceYearly:
		return &rrule.ROption{Freq: rrule.YEARLY}, true
	}
	return nil, false
}
