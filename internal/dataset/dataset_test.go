package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return p
}

func fixturePaths(t *testing.T) Paths {
	dir := t.TempDir()
	return Paths{
		BadgeLog: writeFixture(t, dir, "key_card_access.csv", "User,Date/time,Where,Event\n"+
			"101 Doe; John,12/06/2024 09:10:00,Front,Valid Access\n"+
			"101 Doe; John,12/06/2024 09:10:00,Front,Valid Access\n"+
			"Hindhaugh; Robert,12/06/2024 08:30:00,Front,Valid Access\n"+
			"Cleaner,12/06/2024 06:00:00,Back,Valid Access\n"+
			"102 Roe; Jane,bad,Front,Valid Access\n"),
		Roster: writeFixture(t, dir, "employee_info.csv",
			"Employee #,\"Last name, First name\",Hire Date,Location,Working Status,Status,Division\n"+
				"101,\"Doe, John\",01/01/2024,London UK,Hybrid,Active,Eng\n"),
		History: writeFixture(t, dir, "employment_status_history.csv",
			"\"Last name, First name\",Employment Status: Date,Employment Status\n"+
				"\"Doe, John\",01/01/2024,Full-Time\n"),
		Overrides: writeFixture(t, dir, "overrides.json",
			`{"identities":[{"name":"Hindhaugh; Robert","employee_id":849}],`+
				`"employees":[{"employee_id":849,"create":true,"name":"Hindhaugh, Robert","location":"London UK","working_status":"Hybrid","hire_date":"2021-01-01","full_time":true}]}`),
	}
}

func TestLoad(t *testing.T) {
	ds, err := Load(context.Background(), fixturePaths(t), Options{Location: time.UTC})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(ds.Events) != 2 {
		t.Fatalf("expected 2 resolved events, got %d", len(ds.Events))
	}
	if ds.Report.Duplicates != 1 {
		t.Errorf("expected 1 duplicate swipe, got %d", ds.Report.Duplicates)
	}
	if ds.Report.Badge.UnparsableTimestamp != 1 {
		t.Errorf("expected 1 unparsable timestamp, got %d", ds.Report.Badge.UnparsableTimestamp)
	}
	if ds.Report.Identity.Dropped != 1 || len(ds.Report.TopUnresolved) != 1 {
		t.Errorf("expected the cleaner to be dropped: %+v", ds.Report.Identity)
	}
	if ds.Pool.Len() != 2 {
		t.Errorf("expected roster employee plus backfilled override, got %d", ds.Pool.Len())
	}
	john, ok := ds.Pool.Get(101)
	if !ok || !john.FullTimeAsOf(time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected John full-time from history: %+v", john)
	}
	if !john.LastDayWorked.Equal(time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("active employee window should close at the last badge date, got %v", john.LastDayWorked)
	}
	if r := ds.Range(); !r.Start.Equal(r.End) {
		t.Errorf("expected single-day range, got %v", r)
	}
}

func TestLoad_MissingSources(t *testing.T) {
	p := fixturePaths(t)
	p.Roster = filepath.Join(t.TempDir(), "missing.csv")
	p.History = ""

	ds, err := Load(context.Background(), p, Options{})
	if err != nil {
		t.Fatalf("missing roster must not be fatal: %v", err)
	}
	if len(ds.Report.Warnings) < 2 {
		t.Errorf("expected warnings for roster and history, got %v", ds.Report.Warnings)
	}

	p.BadgeLog = filepath.Join(t.TempDir(), "missing.csv")
	if _, err := Load(context.Background(), p, Options{}); !errors.Is(err, ErrBadgeLogUnavailable) {
		t.Fatalf("expected ErrBadgeLogUnavailable, got %v", err)
	}
}
