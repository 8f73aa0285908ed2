package badge

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStore_AppendDeduplicatesAndSorts(t *testing.T) {
	base := time.Date(2024, 6, 12, 9, 0, 0, 0, time.UTC)
	late := Event{RawActor: "1 A", Timestamp: base.Add(time.Hour), Door: "Front"}
	early := Event{RawActor: "2 B", Timestamp: base, Door: "Front"}

	s := NewStore()
	if added := s.Append([]Event{late, early}); added != 2 {
		t.Fatalf("expected 2 added, got %d", added)
	}
	if added := s.Append([]Event{early}); added != 0 {
		t.Errorf("expected duplicate to be skipped, got %d added", added)
	}

	events := s.Events()
	if len(events) != 2 || events[0].RawActor != "2 B" {
		t.Fatalf("expected chronological order, got %+v", events)
	}
	if !s.Earliest().Equal(base) || !s.Latest().Equal(base.Add(time.Hour)) {
		t.Errorf("unexpected bounds %v..%v", s.Earliest(), s.Latest())
	}
}

func TestStore_InRange(t *testing.T) {
	s := NewStore()
	for d := 10; d <= 14; d++ {
		s.Append([]Event{{RawActor: "1 A", Timestamp: time.Date(2024, 6, d, 9, 0, 0, 0, time.UTC)}})
	}

	start := time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 13, 0, 0, 0, 0, time.UTC)
	if got := len(s.InRange(start, end)); got != 3 {
		t.Errorf("expected 3 events in range, got %d", got)
	}
	if got := len(s.InRange(start, time.Time{})); got != 4 {
		t.Errorf("expected 4 events with open end, got %d", got)
	}
}

func TestStore_SaveRoundTrip(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "badge-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	events := []Event{
		{RawActor: "101 Doe, John", Timestamp: time.Date(2024, 6, 12, 9, 10, 0, 0, time.UTC), Door: "Front", Kind: "Valid Access"},
		{RawActor: "102 Roe, Jane", Timestamp: time.Date(2024, 6, 12, 9, 30, 15, 0, time.UTC), Door: "Side", Kind: "Valid Access"},
	}

	s := NewStore()
	s.Append(events)
	path := filepath.Join(tmpDir, "out", "log.csv")
	if err := s.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, stats, err := LoadFile(path, time.UTC)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if stats.UnparsableTimestamp != 0 {
		t.Errorf("unexpected unparsable rows: %d", stats.UnparsableTimestamp)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 events, got %d", len(loaded))
	}

	s2 := NewStore()
	s2.Append(loaded)
	if added := s2.Append(events); added != 0 {
		t.Errorf("expected reloaded events to match originals, %d were new", added)
	}
}
