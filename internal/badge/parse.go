package badge

import (
	"errors"
	"fmt"
	"time"

	"office-attendance/internal/tabular"
)

// ErrMissingColumns is returned when the badge log lacks the actor or timestamp column.
var ErrMissingColumns = errors.New("badge log is missing required columns")

// Column aliases accepted in badge exports.
var (
	ActorColumns = []string{"User", "Actor", "Cardholder"}
	TimeColumns  = []string{"Date/time", "Datetime", "Timestamp"}
	DoorColumns  = []string{"Where", "Door", "Location"}
	KindColumns  = []string{"Event", "Event Type"}
)

// TimestampLayouts are tried in order; badge exports are day-first.
var TimestampLayouts = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// ExportLayout is the layout used when writing events back to CSV.
const ExportLayout = "02/01/2006 15:04:05"

// ParseStats counts rows excluded while parsing a badge log.
type ParseStats struct {
	Rows                int `json:"rows"`
	UnparsableTimestamp int `json:"unparsableTimestamps"`
	EmptyActor          int `json:"emptyActors"`
}

// ParseTimestamp parses a day-first badge timestamp in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range TimestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// ParseLog converts a badge export into events. Rows with an unparsable
// timestamp or an empty actor are skipped and counted.
func ParseLog(t *tabular.Table, loc *time.Location) ([]Event, ParseStats, error) {
	var stats ParseStats

	actorCol, okActor := t.Column(ActorColumns...)
	timeCol, okTime := t.Column(TimeColumns...)
	if !okActor || !okTime {
		return nil, stats, fmt.Errorf("%w: need %q and %q, have %v", ErrMissingColumns, ActorColumns[0], TimeColumns[0], t.Header)
	}
	doorCol, _ := t.Column(DoorColumns...)
	kindCol, _ := t.Column(KindColumns...)

	if loc == nil {
		loc = time.UTC
	}

	events := make([]Event, 0, t.Len())
	for _, row := range t.Rows {
		stats.Rows++
		actor := t.Value(row, actorCol)
		if actor == "" {
			stats.EmptyActor++
			continue
		}
		ts, err := ParseTimestamp(t.Value(row, timeCol), loc)
		if err != nil {
			stats.UnparsableTimestamp++
			continue
		}
		events = append(events, Event{
			RawActor:  actor,
			Timestamp: ts,
			Door:      t.Value(row, doorCol),
			Kind:      t.Value(row, kindCol),
		})
	}

	return events, stats, nil
}

// LoadFile reads and parses a badge export from disk.
func LoadFile(path string, loc *time.Location) ([]Event, ParseStats, error) {
	table, err := tabular.ReadFile(path)
	if err != nil {
		return nil, ParseStats{}, fmt.Errorf("failed to read badge log %s: %w", path, err)
	}
	return ParseLog(table, loc)
}

// Records renders events in the source export format.
func Records(events []Event) ([]string, [][]string) {
	header := []string{ActorColumns[0], TimeColumns[0], DoorColumns[0], KindColumns[0]}
	rows := make([][]string, 0, len(events))
	for _, e := range events {
		rows = append(rows, []string{e.RawActor, e.Timestamp.Format(ExportLayout), e.Door, e.Kind})
	}
	return header, rows
}
