package stats

import (
	"context"
	"fmt"
	"math"
	"testing"

	"office-attendance/internal/badge"
	"office-attendance/internal/roster"
)

func TestCalculateXmR(t *testing.T) {
	values := []float64{10, 12, 11, 13, 11}
	result := CalculateXmR(values)

	expectedAvg := 11.4
	if math.Abs(result.Average-expectedAvg) > 0.001 {
		t.Errorf("Expected average %v, got %v", expectedAvg, result.Average)
	}

	expectedAmR := 1.75
	if math.Abs(result.AmR-expectedAmR) > 0.001 {
		t.Errorf("Expected AmR %v, got %v", expectedAmR, result.AmR)
	}

	expectedUNPL := 16.055
	if math.Abs(result.UNPL-expectedUNPL) > 0.001 {
		t.Errorf("Expected UNPL %v, got %v", expectedUNPL, result.UNPL)
	}

	if len(result.Signals) != 0 {
		t.Errorf("Expected 0 signals, got %v", len(result.Signals))
	}
}

func TestXmRSignals(t *testing.T) {
	values := []float64{10, 11, 10, 11, 10, 11, 10, 11, 10, 11, 100}
	result := CalculateXmR(values)
	foundOutlier := false
	for _, s := range result.Signals {
		if s.Type == "outlier" && s.Index == 10 {
			foundOutlier = true
		}
	}
	if !foundOutlier {
		t.Errorf("Expected outlier at index 10 not found. UNPL was %v, Value was 100", result.UNPL)
	}

	values = []float64{10, 10, 10, 10, 10, 10, 10, 10, 2, 2, 2, 2, 2, 2, 2, 2}
	result = CalculateXmR(values)
	foundShift := 0
	for _, s := range result.Signals {
		if s.Type == "shift" {
			foundShift++
		}
	}
	if foundShift < 2 {
		t.Errorf("Expected 2 shift signals (one at index 7, one at index 15), got %v", foundShift)
	}
}

// stepSnapshot has ten eligible employees over twelve weeks from Monday
// 2024-01-01. On core days five come in per day, nine from week five on.
func stepSnapshot(t *testing.T, step bool) *Snapshot {
	t.Helper()
	var employees []*roster.Employee
	for id := 1; id <= 10; id++ {
		employees = append(employees, &roster.Employee{
			ID: id, Name: fmt.Sprintf("Employee %d", id), Location: "London UK", WorkingStatus: "Hybrid",
			HireDate: date(2023, 1, 1), Active: true, FullTimeOverride: boolPtr(true),
		})
	}
	pool := roster.NewPool(employees)

	var events []badge.Event
	start := date(2024, 1, 1)
	for week := 0; week < 12; week++ {
		present := 5
		if step && week >= 4 {
			present = 9
		}
		for _, offset := range []int{1, 2, 3} {
			d := start.AddDate(0, 0, week*7+offset)
			for id := 1; id <= present; id++ {
				events = append(events, swipe(id, d.Year(), d.Month(), d.Day(), 9, 0))
			}
		}
	}

	s, err := NewSnapshot(context.Background(), pool, BuildFacts(events, pool), Options{
		Segments: []Segment{londonHybridFT()},
		CoreDays: coreDays,
	})
	if err != nil {
		t.Fatalf("NewSnapshot failed: %v", err)
	}
	return s
}

func TestWeeklyStability(t *testing.T) {
	res, err := stepSnapshot(t, false).WeeklyStability(Window{}, "")
	if err != nil {
		t.Fatalf("WeeklyStability failed: %v", err)
	}
	if len(res.Weeks) != 12 || res.Status != "stable" || res.XmR.Average != 50 {
		t.Errorf("expected 12 stable weeks at 50%%, got %d weeks, %s, avg %v", len(res.Weeks), res.Status, res.XmR.Average)
	}

	res, err = stepSnapshot(t, true).WeeklyStability(Window{}, "")
	if err != nil {
		t.Fatalf("WeeklyStability failed: %v", err)
	}
	if res.Status != "unstable" {
		t.Errorf("expected a step change to be unstable, got %s (limits %v..%v)", res.Status, res.XmR.LNPL, res.XmR.UNPL)
	}
	if !hasSignal(res.XmR.Signals, "shift") {
		t.Errorf("expected a shift signal, got %+v", res.XmR.Signals)
	}
	if res.XmR.UNPL > 100 {
		t.Errorf("upper limit must be capped at 100, got %v", res.XmR.UNPL)
	}

	short := Window{Start: date(2024, 1, 1), End: date(2024, 1, 14)}
	res, err = stepSnapshot(t, true).WeeklyStability(short, "")
	if err != nil {
		t.Fatalf("WeeklyStability failed: %v", err)
	}
	if res.Status != "insufficient_data" {
		t.Errorf("expected insufficient_data for two weeks, got %s", res.Status)
	}
}
