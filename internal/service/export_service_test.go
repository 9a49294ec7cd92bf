package service

import (
	"strings"
	"testing"

	"planbot/internal/domain"
	"planbot/internal/storage"
)

func newTestExport(t *testing.T, clock Clock) (*ExportService, *storage.Storage) {
	t.Helper()
	store, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewExportService(store, clock), store
}

func TestExportEmptyCalendar(t *testing.T) {
	svc, _ := newTestExport(t, fixedClock{at("2024-01-10", "12:00:00")})

	out, err := svc.Export()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	ics := string(out)
	if !strings.Contains(ics, "BEGIN:VCALENDAR") || !strings.Contains(ics, "END:VCALENDAR") {
		t.Errorf("missing calendar envelope:\n%s", ics)
	}
	if !strings.Contains(ics, "PRODID:-//planbot//calendar//EN") {
		t.Errorf("missing PRODID:\n%s", ics)
	}
}

func TestExportOneOffEvent(t *testing.T) {
	svc, store := newTestExport(t, fixedClock{at("2024-01-10", "12:00:00")})

	store.CreateEvent(&domain.Event{
		Title:      "Dentist",
		Date:       day("2024-01-15"),
		Recurrence: domain.RecurrenceNone,
		Time:       "14:30",
	})

	out, err := svc.Export()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	ics := string(out)

	if !strings.Contains(ics, "BEGIN:VEVENT") {
		t.Fatalf("missing VEVENT:\n%s", ics)
	}
	if !strings.Contains(ics, "SUMMARY:Dentist") {
		t.Errorf("missing summary:\n%s", ics)
	}
	if !strings.Contains(ics, "@planbot") {
		t.Errorf("missing UID domain:\n%s", ics)
	}
	if strings.Contains(ics, "RRULE") {
		t.Errorf("one-off events must not carry an RRULE:\n%s", ics)
	}
	// Timed events get a DTSTART with a time component.
	if !strings.Contains(ics, "20240115T143000") {
		t.Errorf("missing timed DTSTART:\n%s", ics)
	}
}

func TestExportBiweeklyWithExceptions(t *testing.T) {
	svc, store := newTestExport(t, fixedClock{at("2024-01-10", "12:00:00")})

	store.CreateEvent(&domain.Event{
		Title:      "Standup",
		Date:       day("2024-01-10"),
		Recurrence: domain.RecurrenceBiweekly,
		Exceptions: []string{"2024-01-24"},
	})

	out, err := svc.Export()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	ics := string(out)

	if !strings.Contains(ics, "FREQ=WEEKLY") {
		t.Errorf("biweekly must map onto FREQ=WEEKLY:\n%s", ics)
	}
	if !strings.Contains(ics, "INTERVAL=2") {
		t.Errorf("biweekly must carry INTERVAL=2:\n%s", ics)
	}
	if !strings.Contains(ics, "EXDATE") || !strings.Contains(ics, "20240124") {
		t.Errorf("missing EXDATE for the suppressed day:\n%s", ics)
	}
	// All-day events export DTSTART as a bare date.
	if !strings.Contains(ics, "VALUE=DATE") {
		t.Errorf("all-day DTSTART must be a DATE value:\n%s", ics)
	}
}

func TestRecurrenceRuleMapping(t *testing.T) {
	tests := []struct {
		rec  domain.Recurrence
		want string
	}{
		{domain.RecurrenceDaily, "FREQ=DAILY"},
		{domain.RecurrenceWeekly, "FREQ=WEEKLY"},
		{domain.RecurrenceMonthly, "FREQ=MONTHLY"},
		{domain.RecurrenceYearly, "FREQ=YEARLY"},
	}
	for _, tc := range tests {
		rule, ok := RecurrenceRule(tc.rec)
		if !ok {
			t.Errorf("%s: expected a rule", tc.rec)
			continue
		}
		if got := rule.RRuleString(); !strings.Contains(got, tc.want) {
			t.Errorf("%s: rule = %q, want containing %q", tc.rec, got, tc.want)
		}
	}

	if _, ok := RecurrenceRule(domain.RecurrenceNone); ok {
		t.Error("one-off events must not map onto a rule")
	}
}
