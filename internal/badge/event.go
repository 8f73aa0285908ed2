package badge

import (
	"fmt"
	"time"
)

// Event represents a single physical badge swipe.
type Event struct {
	// RawActor is the actor string exactly as exported (e.g. "123 Doe, John").
	RawActor string `json:"rawActor"`
	// EmployeeID is the canonical employee identifier; zero until resolved.
	EmployeeID int `json:"employeeId,omitempty"`
	// Timestamp is the local wall-clock time of the swipe.
	Timestamp time.Time `json:"ts"`
	// Door is the reader location ("Where" column).
	Door string `json:"door,omitempty"`
	// Kind is the access event kind ("Event" column), e.g. "Valid Access".
	Kind string `json:"kind,omitempty"`
}

// Date returns the calendar date of the swipe as a UTC midnight value.
func (e Event) Date() time.Time {
	y, m, d := e.Timestamp.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// identity computes a unique string identifier for an event to aid deduplication.
func (e Event) identity() string {
	return fmt.Sprintf("%s|%d|%s|%s",
		e.RawActor,
		e.Timestamp.Unix(),
		e.Door,
		e.Kind,
	)
}
