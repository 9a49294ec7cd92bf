package domain

import (
	"testing"
	"time"
)

func day(key string) time.Time {
	t, err := time.ParseInLocation("2006-01-02", key, time.Local)
	if err != nil {
		panic(err)
	}
	return t
}

func TestOccursOnNone(t *testing.T) {
	e := &Event{Title: "dentist", Date: day("2024-01-07"), Recurrence: RecurrenceNone}

	if !e.OccursOn(day("2024-01-07")) {
		t.Error("one-off event must occur on its anchor day")
	}
	for _, k := range []string{"2024-01-06", "2024-01-08", "2024-01-14"} {
		if e.OccursOn(day(k)) {
			t.Errorf("one-off event must not occur on %s", k)
		}
	}
}

func TestOccursOnDaily(t *testing.T) {
	e := &Event{Title: "meds", Date: day("2024-01-07"), Recurrence: RecurrenceDaily}

	for _, k := range []string{"2024-01-07", "2024-01-08", "2024-03-15"} {
		if !e.OccursOn(day(k)) {
			t.Errorf("daily event must occur on %s", k)
		}
	}
	if e.OccursOn(day("2024-01-06")) {
		t.Error("daily event must not occur before its anchor")
	}
}

func TestOccursOnWeekly(t *testing.T) {
	// 2024-01-07 is a Sunday
	e := &Event{Title: "swim", Date: day("2024-01-07"), Recurrence: RecurrenceWeekly}

	tests := []struct {
		key  string
		want bool
	}{
		{"2024-01-07", true},
		{"2024-01-14", true},
		{"2024-01-21", true},
		{"2024-01-08", false}, // Monday
		{"2024-01-06", false}, // Saturday before anchor
		{"2023-12-31", false}, // right weekday, before anchor
	}
	for _, tt := range tests {
		if got := e.OccursOn(day(tt.key)); got != tt.want {
			t.Errorf("OccursOn(%s) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestOccursOnWeeklyWithException(t *testing.T) {
	e := &Event{Title: "swim", Date: day("2024-01-07"), Recurrence: RecurrenceWeekly}
	e.AddException(day("2024-01-14"))

	if e.OccursOn(day("2024-01-14")) {
		t.Error("excepted day must be suppressed")
	}
	if !e.OccursOn(day("2024-01-21")) {
		t.Error("exception must not affect other days")
	}
	if !e.OccursOn(day("2024-01-07")) {
		t.Error("exception must not affect the anchor")
	}
}

func TestOccursOnBiweekly(t *testing.T) {
	e := &Event{Title: "payday", Date: day("2024-01-10"), Recurrence: RecurrenceBiweekly}

	tests := []struct {
		key  string
		want bool
	}{
		{"2024-01-10", true},
		{"2024-01-24", true},  // 14 days later
		{"2024-02-07", true},  // 28 days later
		{"2024-01-17", false}, // same weekday, off cycle
		{"2024-01-23", false}, // 13 days, wrong weekday
		{"2023-12-27", false}, // on cycle, before anchor
	}
	for _, tt := range tests {
		if got := e.OccursOn(day(tt.key)); got != tt.want {
			t.Errorf("OccursOn(%s) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestOccursOnMonthly(t *testing.T) {
	e := &Event{Title: "rent", Date: day("2024-01-15"), Recurrence: RecurrenceMonthly}

	for _, k := range []string{"2024-01-15", "2024-02-15", "2024-12-15"} {
		if !e.OccursOn(day(k)) {
			t.Errorf("monthly event must occur on %s", k)
		}
	}
	for _, k := range []string{"2024-02-14", "2023-12-15"} {
		if e.OccursOn(day(k)) {
			t.Errorf("monthly event must not occur on %s", k)
		}
	}
}

func TestOccursOnMonthlySkipsShortMonths(t *testing.T) {
	// Anchored on the 31st: months without a 31st are skipped entirely,
	// never clamped to their last day.
	e := &Event{Title: "review", Date: day("2024-01-31"), Recurrence: RecurrenceMonthly}

	for _, k := range []string{"2024-01-31", "2024-03-31", "2024-05-31"} {
		if !e.OccursOn(day(k)) {
			t.Errorf("must occur on %s", k)
		}
	}
	for _, k := range []string{"2024-02-29", "2024-02-28", "2024-04-30"} {
		if e.OccursOn(day(k)) {
			t.Errorf("must not clamp onto %s", k)
		}
	}
}

func TestOccursOnYearly(t *testing.T) {
	e := &Event{Title: "birthday", Date: day("2024-03-05"), Recurrence: RecurrenceYearly}

	for _, k := range []string{"2024-03-05", "2025-03-05", "2030-03-05"} {
		if !e.OccursOn(day(k)) {
			t.Errorf("yearly event must occur on %s", k)
		}
	}
	for _, k := range []string{"2023-03-05", "2024-03-06", "2024-05-03"} {
		if e.OccursOn(day(k)) {
			t.Errorf("yearly event must not occur on %s", k)
		}
	}
}

func TestOccursOnYearlyLeapDay(t *testing.T) {
	// Feb 29 anchors only match leap years; other years are skipped.
	e := &Event{Title: "leap", Date: day("2024-02-29"), Recurrence: RecurrenceYearly}

	if !e.OccursOn(day("2028-02-29")) {
		t.Error("must occur on the next leap day")
	}
	if e.OccursOn(day("2025-02-28")) || e.OccursOn(day("2025-03-01")) {
		t.Error("must not match in non-leap years")
	}
}

func TestNoKindMatchesBeforeAnchor(t *testing.T) {
	kinds := []Recurrence{RecurrenceDaily, RecurrenceWeekly, RecurrenceBiweekly, RecurrenceMonthly, RecurrenceYearly}
	anchor := day("2024-06-15")
	for _, kind := range kinds {
		e := &Event{Title: "x", Date: anchor, Recurrence: kind}
		for d := anchor.AddDate(-1, 0, 0); d.Before(anchor); d = d.AddDate(0, 0, 11) {
			if e.OccursOn(d) {
				t.Errorf("%s matched %s before anchor", kind, d.Format("2006-01-02"))
			}
		}
	}
}

func TestAddExceptionIdempotent(t *testing.T) {
	e := &Event{Title: "swim", Date: day("2024-01-07"), Recurrence: RecurrenceWeekly}
	e.AddException(day("2024-01-14"))
	e.AddException(day("2024-01-14"))

	if len(e.Exceptions) != 1 {
		t.Errorf("exceptions = %v, want a single entry", e.Exceptions)
	}
}

func TestParseRecurrence(t *testing.T) {
	if _, ok := ParseRecurrence("biweekly"); !ok {
		t.Error("biweekly must parse")
	}
	if _, ok := ParseRecurrence("fortnightly"); ok {
		t.Error("unknown kinds must not parse")
	}
}

func TestCellText(t *testing.T) {
	e := &Event{Title: "swim", Time: "17:30"}
	if got := e.CellText(); got != "17:30 - swim" {
		t.Errorf("CellText = %q", got)
	}
	e.Time = ""
	if got := e.CellText(); got != "swim" {
		t.Errorf("CellText = %q", got)
	}
}

func TestDisplayColor(t *testing.T) {
	e := &Event{}
	if e.DisplayColor() != DefaultColor {
		t.Errorf("DisplayColor = %q, want default", e.DisplayColor())
	}
	e.Color = "#ffccbc"
	if e.DisplayColor() != "#ffccbc" {
		t.Errorf("DisplayColor = %q", e.DisplayColor())
	}
}
