package badge

import (
	"errors"
	"testing"
	"time"

	"office-attendance/internal/tabular"
)

func TestParseLog(t *testing.T) {
	london, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	data := "User,Date/time,Where,Event\n" +
		"101 Doe; John,12/06/2024 09:10:00,Front Door,Valid Access\n" +
		"102 Roe; Jane,3/6/2024 8:05,Side Door,Valid Access\n" +
		"103 Poe; Max,not a date,Front Door,Valid Access\n" +
		",12/06/2024 10:00:00,Front Door,Valid Access\n"

	table, err := tabular.Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	events, stats, err := ParseLog(table, london)
	if err != nil {
		t.Fatalf("ParseLog failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if stats.UnparsableTimestamp != 1 || stats.EmptyActor != 1 || stats.Rows != 4 {
		t.Errorf("unexpected stats: %+v", stats)
	}

	first := events[0]
	if first.Timestamp.Day() != 12 || first.Timestamp.Month() != time.June {
		t.Errorf("expected day-first parse, got %v", first.Timestamp)
	}
	if first.Timestamp.Location() != london {
		t.Errorf("expected London location, got %v", first.Timestamp.Location())
	}
	if first.Door != "Front Door" || first.Kind != "Valid Access" {
		t.Errorf("unexpected door/kind: %+v", first)
	}
	want := time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)
	if !first.Date().Equal(want) {
		t.Errorf("Date() = %v, want %v", first.Date(), want)
	}

	second := events[1]
	if second.Timestamp.Day() != 3 || second.Timestamp.Month() != time.June || second.Timestamp.Hour() != 8 {
		t.Errorf("short layout parsed wrong: %v", second.Timestamp)
	}
}

func TestParseLog_MissingColumns(t *testing.T) {
	table, err := tabular.Parse([]byte("Name,When\nx,y\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	_, _, err = ParseLog(table, time.UTC)
	if !errors.Is(err, ErrMissingColumns) {
		t.Fatalf("expected ErrMissingColumns, got %v", err)
	}
}
