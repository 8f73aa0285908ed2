// Package report bundles the rollups of one window and segment and writes
// them as CSV, JSON or SQLite for a presentation layer.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"office-attendance/internal/stats"
	"office-attendance/internal/tabular"

	"github.com/rs/zerolog/log"
)

// Report is every table for one window and segment.
type Report struct {
	GeneratedAt time.Time               `json:"generatedAt"`
	Window      stats.Window            `json:"window"`
	Segment     string                  `json:"segment"`
	Period      stats.PeriodSummary     `json:"period"`
	Daily       []stats.DailyBucket     `json:"daily"`
	Weekly      []stats.WeeklyBucket    `json:"weekly"`
	Stability   stats.StabilityResult   `json:"stability"`
	Weekday     []stats.WeekdayBucket   `json:"weekday"`
	Division    []stats.DivisionBucket  `json:"division"`
	Breakdown   []stats.BreakdownRow    `json:"divisionBreakdown"`
	Employees   []stats.EmployeeSummary `json:"employees"`
	Facts       []stats.Fact            `json:"facts,omitempty"`
	Quality     stats.QualityReport     `json:"quality"`
}

// Build computes all rollups from s. Facts are included only on request.
func Build(s *stats.Snapshot, w stats.Window, segment string, includeFacts bool) (*Report, error) {
	w, err := s.Resolve(w)
	if err != nil {
		return nil, err
	}
	_, seg, err := s.Segment(segment)
	if err != nil {
		return nil, err
	}

	r := &Report{GeneratedAt: time.Now(), Window: w, Segment: seg.Tag(), Quality: s.Quality()}
	if r.Period, err = s.Period(w, segment); err != nil {
		return nil, err
	}
	if r.Daily, err = s.Daily(w, segment); err != nil {
		return nil, err
	}
	if r.Weekly, err = s.Weekly(w, segment); err != nil {
		return nil, err
	}
	if r.Stability, err = s.WeeklyStability(w, segment); err != nil {
		return nil, err
	}
	r.Weekday = r.Period.Weekdays
	if r.Division, err = s.Division(w, segment); err != nil {
		return nil, err
	}
	if r.Breakdown, err = s.DivisionBreakdown(w, segment); err != nil {
		return nil, err
	}
	if r.Employees, err = s.EmployeeSummaries(w, segment); err != nil {
		return nil, err
	}
	if includeFacts {
		if r.Facts, err = s.DayFacts(w); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// WriteJSON writes r to path, creating parent directories.
func WriteJSON(path string, r *Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return err
	}
	log.Info().Str("path", path).Msg("Report written")
	return nil
}

// WriteCSV writes one CSV per table into dir and returns the paths written.
// suffix distinguishes runs, e.g. the analysed window.
func WriteCSV(dir, suffix string, r *Report) ([]string, error) {
	tables := []csvTable{
		{"attendance_daily", []string{"date", "weekday", "eligible_count", "present_count", "other_present_count", "percentage"}, dailyRows(r.Daily)},
		{"attendance_weekly", []string{"week_start", "label", "core_days", "eligible_count", "present_count", "percentage"}, weeklyRows(r.Weekly)},
		{"attendance_weekday", []string{"weekday", "core", "days", "eligible_count", "present_count", "other_present_count", "percentage"}, weekdayRows(r.Weekday)},
		{"attendance_division", []string{"division", "core_days", "eligible_count", "present_count", "percentage"}, divisionRows(r.Division)},
		{"division_breakdown", []string{"division", "in_segment", "same_status_elsewhere", "full_time_other_status", "other"}, breakdownRows(r.Breakdown)},
		{"employee_summary", []string{"employee_id", "name", "division", "days_attended", "core_days_attended", "eligible_core_days", "eligible_core_days_attended", "attendance_rate", "median_arrival", "mean_arrival", "excluded_arrivals"}, employeeRows(r.Employees)},
	}
	if r.Facts != nil {
		tables = append(tables, csvTable{"attendance_facts", []string{"employee_id", "name", "date", "present", "visits", "first_arrival", "eligible_segments"}, factRows(r.Facts)})
	}

	var written []string
	for _, t := range tables {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.csv", t.name, suffix))
		if err := tabular.WriteFile(path, t.header, t.rows); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", path, err)
		}
		written = append(written, path)
	}
	log.Info().Str("dir", dir).Int("files", len(written)).Msg("CSV report written")
	return written, nil
}

type csvTable struct {
	name   string
	header []string
	rows   [][]string
}

func f1(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) }
func itoa(v int) string   { return strconv.Itoa(v) }

func optF1(v *float64) string {
	if v == nil {
		return ""
	}
	return f1(*v)
}

func dailyRows(in []stats.DailyBucket) [][]string {
	rows := make([][]string, 0, len(in))
	for _, b := range in {
		rows = append(rows, []string{b.Date.Format(time.DateOnly), b.Weekday, itoa(b.Eligible), itoa(b.Present), itoa(b.OtherPresent), f1(b.Percentage)})
	}
	return rows
}

func weeklyRows(in []stats.WeeklyBucket) [][]string {
	rows := make([][]string, 0, len(in))
	for _, b := range in {
		rows = append(rows, []string{b.WeekStart.Format(time.DateOnly), b.Label, itoa(b.Days), f1(b.Eligible), f1(b.Present), f1(b.Percentage)})
	}
	return rows
}

func weekdayRows(in []stats.WeekdayBucket) [][]string {
	rows := make([][]string, 0, len(in))
	for _, b := range in {
		rows = append(rows, []string{b.Weekday, strconv.FormatBool(b.Core), itoa(b.Days), f1(b.Eligible), f1(b.Present), f1(b.OtherPresent), f1(b.Percentage)})
	}
	return rows
}

func divisionRows(in []stats.DivisionBucket) [][]string {
	rows := make([][]string, 0, len(in))
	for _, b := range in {
		rows = append(rows, []string{b.Division, itoa(b.Days), f1(b.Eligible), f1(b.Present), f1(b.Percentage)})
	}
	return rows
}

func breakdownRows(in []stats.BreakdownRow) [][]string {
	rows := make([][]string, 0, len(in))
	for _, b := range in {
		rows = append(rows, []string{b.Division, f1(b.InSegment), f1(b.SameStatusElsewhere), f1(b.FullTimeOtherStatus), f1(b.Other)})
	}
	return rows
}

func employeeRows(in []stats.EmployeeSummary) [][]string {
	rows := make([][]string, 0, len(in))
	for _, e := range in {
		rows = append(rows, []string{
			itoa(e.EmployeeID), e.Name, e.Division,
			itoa(e.DaysAttended), itoa(e.CoreDaysAttended), itoa(e.EligibleCoreDays), itoa(e.EligibleCoreDaysAttended),
			optF1(e.AttendanceRate), e.Arrival.Median, e.Arrival.Mean, itoa(e.Arrival.Excluded),
		})
	}
	return rows
}

func factRows(in []stats.Fact) [][]string {
	rows := make([][]string, 0, len(in))
	for _, f := range in {
		arrival := ""
		if f.FirstArrival != nil {
			arrival = f.FirstArrival.String()
		}
		rows = append(rows, []string{
			itoa(f.EmployeeID), f.Name, f.Date.Format(time.DateOnly), strconv.FormatBool(f.Present),
			itoa(f.Visits), arrival, strings.Join(f.EligibleSegments, "; "),
		})
	}
	return rows
}
