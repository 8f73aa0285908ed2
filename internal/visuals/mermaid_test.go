package visuals

import (
	"strings"
	"testing"
	"time"

	"office-attendance/internal/stats"
)

func TestGenerateDailyChart(t *testing.T) {
	if got := GenerateDailyChart(nil); got != "" {
		t.Errorf("expected empty chart, got %q", got)
	}

	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	var daily []stats.DailyBucket
	for i := 0; i < 90; i++ {
		daily = append(daily, stats.DailyBucket{Date: start.AddDate(0, 0, i), Eligible: 10, Present: i % 10})
	}
	chart := GenerateDailyChart(daily)
	if !strings.HasPrefix(chart, "```mermaid\nxychart-beta\n") {
		t.Fatalf("unexpected chart header: %q", chart)
	}
	if !strings.Contains(chart, "y-axis \"Employees\" 0 --> 11") {
		t.Errorf("expected y-axis scaled above the eligible headcount:\n%s", chart)
	}

	// 90 points at rate 2 keep 45, the last point is always kept.
	var xAxis string
	for _, line := range strings.Split(chart, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "x-axis") {
			xAxis = line
		}
	}
	if n := strings.Count(xAxis, "\"") / 2; n != 46 {
		t.Errorf("expected 46 labels after subsampling, got %d", n)
	}
	if !strings.Contains(xAxis, "\"Mar30\"") {
		t.Errorf("expected the last day to be kept: %s", xAxis)
	}
}

func TestGenerateWeekdayChart(t *testing.T) {
	chart := GenerateWeekdayChart([]stats.WeekdayBucket{
		{Weekday: "Monday", Percentage: 20},
		{Weekday: "Tuesday", Core: true, Percentage: 62.5},
	})
	for _, want := range []string{"\"Tuesday (core)\"", "bar [20.0, 62.5]", "0 --> 100"} {
		if !strings.Contains(chart, want) {
			t.Errorf("expected %q in chart:\n%s", want, chart)
		}
	}
}

func TestGenerateDivisionChart(t *testing.T) {
	chart := GenerateDivisionChart([]stats.DivisionBucket{
		{Division: "Eng", Eligible: 4, Present: 2, Percentage: 50},
		{Division: "Unassigned"},
	})
	if strings.Contains(chart, "Unassigned") {
		t.Errorf("divisions without eligible employees should be skipped:\n%s", chart)
	}
	if GenerateDivisionChart([]stats.DivisionBucket{{Division: "Ops"}}) != "" {
		t.Error("expected empty chart when no division has eligible employees")
	}
}

func TestGenerateBreakdownPie(t *testing.T) {
	if GenerateBreakdownPie(nil) != "" {
		t.Error("expected empty pie for no rows")
	}
	pie := GenerateBreakdownPie([]stats.BreakdownRow{
		{Division: "Eng", InSegment: 0.7, Other: 0.3},
		{Division: "Ops", FullTimeOtherStatus: 0.3},
	})
	for _, want := range []string{"\"In segment\" : 0.7", "\"Full-time, other status\" : 0.3", "\"Other\" : 0.3"} {
		if !strings.Contains(pie, want) {
			t.Errorf("expected %q in pie:\n%s", want, pie)
		}
	}
}

func TestGenerateXmRChart(t *testing.T) {
	short := stats.StabilityResult{Weeks: []string{"a", "b"}, XmR: stats.CalculateXmR([]float64{40, 60})}
	if GenerateXmRChart(short) != "" {
		t.Error("expected no chart below the minimum number of weeks")
	}

	res := stats.StabilityResult{
		Weeks: []string{"W1", "W2", "W3"},
		XmR:   stats.XmRResult{Values: []float64{40, 50, 60}, Average: 50, UNPL: 76.6, LNPL: 23.4},
	}
	chart := GenerateXmRChart(res)
	for _, want := range []string{"x-axis [\"W1\", \"W2\", \"W3\"]", "line [40.0, 50.0, 60.0]", "line [76.6, 76.6, 76.6]"} {
		if !strings.Contains(chart, want) {
			t.Errorf("expected %q in chart:\n%s", want, chart)
		}
	}
}
