package badge

import (
	"sort"
	"sync"
	"time"

	"office-attendance/internal/tabular"

	"github.com/rs/zerolog/log"
)

// Store provides thread-safe, chronological, de-duplicated storage for badge events.
type Store struct {
	mu     sync.RWMutex
	events []Event
	seen   map[string]bool
}

// NewStore creates a new empty Store.
func NewStore() *Store {
	return &Store{seen: make(map[string]bool)}
}

// Append adds events, skipping duplicates, and returns how many were new.
func (s *Store) Append(events []Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	newCount := 0
	for _, e := range events {
		id := e.identity()
		if s.seen[id] {
			continue
		}
		s.seen[id] = true
		s.events = append(s.events, e)
		newCount++
	}

	if newCount == 0 {
		return 0
	}

	sort.SliceStable(s.events, func(i, j int) bool {
		if !s.events[i].Timestamp.Equal(s.events[j].Timestamp) {
			return s.events[i].Timestamp.Before(s.events[j].Timestamp)
		}
		return s.events[i].RawActor < s.events[j].RawActor
	})

	return newCount
}

// Events returns a copy of all stored events in chronological order.
func (s *Store) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// InRange returns events whose calendar date lies in [start, end].
// A zero end means unbounded.
func (s *Store) InRange(start, end time.Time) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []Event
	for _, e := range s.events {
		d := e.Date()
		if d.Before(start) {
			continue
		}
		if !end.IsZero() && d.After(end) {
			continue
		}
		result = append(result, e)
	}
	return result
}

// Earliest returns the timestamp of the oldest event.
func (s *Store) Earliest() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.events) == 0 {
		return time.Time{}
	}
	return s.events[0].Timestamp
}

// Latest returns the timestamp of the most recent event.
func (s *Store) Latest() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.events) == 0 {
		return time.Time{}
	}
	return s.events[len(s.events)-1].Timestamp
}

// Count returns the number of events in the store.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// Save writes the stored events to path in the source export format.
func (s *Store) Save(path string) error {
	events := s.Events()
	header, rows := Records(events)
	if err := tabular.WriteFile(path, header, rows); err != nil {
		return err
	}
	log.Info().Str("path", path).Int("count", len(events)).Msg("Badge log saved")
	return nil
}
