package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"office-attendance/internal/visuals"

	"github.com/rs/zerolog/log"
)

// Markdown renders the summary of r with Mermaid charts.
func Markdown(r *Report) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Office Attendance: %s\n\n", r.Segment))
	sb.WriteString(fmt.Sprintf("Window: %s (generated %s)\n\n", r.Window, r.GeneratedAt.Format("2006-01-02 15:04")))

	p := r.Period
	sb.WriteString("| Office days | Core days | Avg eligible | Avg present | Attendance | Distinct employees |\n")
	sb.WriteString("|---|---|---|---|---|---|\n")
	sb.WriteString(fmt.Sprintf("| %d | %d | %.1f | %.1f | %.1f%% | %d |\n\n",
		p.OfficeDays, p.CoreDays, p.Eligible, p.Present, p.Percentage, p.DistinctEmployees))

	sections := []struct {
		title string
		chart string
	}{
		{"Weekly", visuals.GenerateWeeklyChart(r.Weekly)},
		{"Weekly stability (" + r.Stability.Status + ")", visuals.GenerateXmRChart(r.Stability)},
		{"Day of week", visuals.GenerateWeekdayChart(r.Weekday)},
		{"Daily", visuals.GenerateDailyChart(r.Daily)},
		{"Divisions", visuals.GenerateDivisionChart(r.Division)},
		{"Who came in", visuals.GenerateBreakdownPie(r.Breakdown)},
	}
	for _, s := range sections {
		if s.chart == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf("## %s\n\n%s\n\n", s.title, s.chart))
	}
	return sb.String()
}

// WriteMarkdown writes Markdown(r) to path.
func WriteMarkdown(path string, r *Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(Markdown(r)), 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return err
	}
	log.Info().Str("path", path).Msg("Markdown report written")
	return nil
}
