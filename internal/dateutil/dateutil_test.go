package dateutil

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestKey(t *testing.T) {
	got := Key(time.Date(2024, time.January, 7, 23, 59, 0, 0, time.Local))
	if got != "2024-01-07" {
		t.Errorf("Key = %q, want 2024-01-07", got)
	}
}

func TestParseKeyRoundTrip(t *testing.T) {
	d, err := ParseKey("2024-02-29")
	if err != nil {
		t.Fatalf("ParseKey: %v", err)
	}
	if Key(d) != "2024-02-29" {
		t.Errorf("round trip = %q", Key(d))
	}
	if _, err := ParseKey("2024-13-01"); err == nil {
		t.Error("expected error for month 13")
	}
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		in   time.Time
		want string
	}{
		{date(2024, time.January, 7), "2024-01-07"},  // Sunday maps to itself
		{date(2024, time.January, 10), "2024-01-07"}, // Wednesday
		{date(2024, time.January, 13), "2024-01-07"}, // Saturday
		{date(2024, time.January, 1), "2023-12-31"},  // Monday crossing a year
	}
	for _, tt := range tests {
		got := WeekStart(tt.in)
		if Key(got) != tt.want {
			t.Errorf("WeekStart(%s) = %s, want %s", Key(tt.in), Key(got), tt.want)
		}
		if got.Weekday() != time.Sunday {
			t.Errorf("WeekStart(%s) is a %s", Key(tt.in), got.Weekday())
		}
	}
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		a, b time.Time
		want int
	}{
		{date(2024, time.January, 10), date(2024, time.January, 24), 14},
		{date(2024, time.January, 24), date(2024, time.January, 10), -14},
		{date(2024, time.January, 7), date(2024, time.January, 7), 0},
		{date(2024, time.February, 28), date(2024, time.March, 1), 2}, // leap year
		{date(2023, time.December, 31), date(2024, time.January, 1), 1},
	}
	for _, tt := range tests {
		if got := DaysBetween(tt.a, tt.b); got != tt.want {
			t.Errorf("DaysBetween(%s, %s) = %d, want %d", Key(tt.a), Key(tt.b), got, tt.want)
		}
	}
}

func TestDaysBetweenIgnoresTimeOfDay(t *testing.T) {
	a := time.Date(2024, time.January, 10, 23, 0, 0, 0, time.Local)
	b := time.Date(2024, time.January, 11, 1, 0, 0, 0, time.Local)
	if got := DaysBetween(a, b); got != 1 {
		t.Errorf("DaysBetween = %d, want 1", got)
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2024, time.January, 7, 0, 0, 1, 0, time.Local)
	b := time.Date(2024, time.January, 7, 23, 59, 0, 0, time.Local)
	if !SameDay(a, b) {
		t.Error("expected same day")
	}
	if SameDay(a, b.AddDate(0, 0, 1)) {
		t.Error("expected different days")
	}
}
