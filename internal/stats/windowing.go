package stats

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidWindow is returned for windows whose start is after their end.
var ErrInvalidWindow = errors.New("invalid analysis window")

// Window is an inclusive range of calendar dates (UTC midnight values).
// The zero Window means "all loaded data".
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewWindow normalises start and end to calendar dates and validates them.
func NewWindow(start, end time.Time) (Window, error) {
	w := Window{Start: Day(start), End: Day(end)}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w, nil
}

// LastNDays returns the n-day window ending on end.
func LastNDays(end time.Time, n int) Window {
	if n < 1 {
		n = 1
	}
	end = Day(end)
	return Window{Start: end.AddDate(0, 0, -(n - 1)), End: end}
}

// ParseWindow parses YYYY-MM-DD bounds; an empty bound leaves that side open
// and is resolved against the data range by Clamp.
func ParseWindow(start, end string) (Window, error) {
	var w Window
	var err error
	if start != "" {
		if w.Start, err = time.Parse(time.DateOnly, start); err != nil {
			return Window{}, fmt.Errorf("%w: start %q: %v", ErrInvalidWindow, start, err)
		}
	}
	if end != "" {
		if w.End, err = time.Parse(time.DateOnly, end); err != nil {
			return Window{}, fmt.Errorf("%w: end %q: %v", ErrInvalidWindow, end, err)
		}
	}
	return w, w.Validate()
}

// Validate reports ErrInvalidWindow when both bounds are set and inverted.
func (w Window) Validate() error {
	if !w.Start.IsZero() && !w.End.IsZero() && w.Start.After(w.End) {
		return fmt.Errorf("%w: start %s is after end %s", ErrInvalidWindow,
			w.Start.Format(time.DateOnly), w.End.Format(time.DateOnly))
	}
	return nil
}

// Clamp fills open bounds from the data range.
func (w Window) Clamp(data Window) Window {
	if w.Start.IsZero() {
		w.Start = data.Start
	}
	if w.End.IsZero() {
		w.End = data.End
	}
	return w
}

// Contains reports whether date falls inside the window. Open bounds match.
func (w Window) Contains(date time.Time) bool {
	if !w.Start.IsZero() && date.Before(w.Start) {
		return false
	}
	if !w.End.IsZero() && date.After(w.End) {
		return false
	}
	return true
}

// DayCount returns the number of calendar days in the window.
func (w Window) DayCount() int {
	if w.Start.IsZero() || w.End.IsZero() {
		return 0
	}
	return int(w.End.Sub(w.Start).Hours()/24) + 1
}

// Subdivide returns the bucket start dates overlapping the window.
func (w Window) Subdivide(bucket string) []time.Time {
	if w.Start.IsZero() || w.End.IsZero() {
		return nil
	}
	var buckets []time.Time
	current := SnapToStart(w.Start, bucket)
	for !current.After(w.End) {
		buckets = append(buckets, current)
		switch bucket {
		case "month":
			current = current.AddDate(0, 1, 0)
		case "week":
			current = current.AddDate(0, 0, 7)
		default: // day
			current = current.AddDate(0, 0, 1)
		}
	}
	return buckets
}

func (w Window) String() string {
	return fmt.Sprintf("%s..%s", formatDate(w.Start), formatDate(w.End))
}

// Day truncates t to its calendar date as a UTC midnight value.
func Day(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekStart returns the Monday of the week containing t.
func WeekStart(t time.Time) time.Time {
	return SnapToStart(t, "week")
}

// SnapToStart normalizes a date to the beginning of its bucket.
func SnapToStart(t time.Time, bucket string) time.Time {
	if t.IsZero() {
		return t
	}
	switch bucket {
	case "month":
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	case "week":
		// Snap to Monday
		weekday := int(t.Weekday())
		if weekday == 0 {
			weekday = 7 // Sunday -> 7
		}
		return time.Date(t.Year(), t.Month(), t.Day()-(weekday-1), 0, 0, 0, 0, t.Location())
	default: // day
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}
}

// SnapToEnd normalizes a date to the last calendar day of its bucket.
func SnapToEnd(t time.Time, bucket string) time.Time {
	if t.IsZero() {
		return t
	}
	switch bucket {
	case "month":
		return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location())
	case "week":
		weekday := int(t.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		return time.Date(t.Year(), t.Month(), t.Day()+(7-weekday), 0, 0, 0, 0, t.Location())
	default: // day
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}
}

// BucketLabel returns a human-readable label for a bucket (e.g., "Jan 2024" or "2024-W01").
func BucketLabel(t time.Time, bucket string) string {
	switch bucket {
	case "month":
		return t.Format("Jan 2006")
	case "week":
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	default: // day
		return t.Format(time.DateOnly)
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "*"
	}
	return t.Format(time.DateOnly)
}
