// Package visuals renders attendance rollups as Mermaid charts.
package visuals

import (
	"fmt"
	"math"
	"strings"

	"office-attendance/internal/stats"
)

// maxPoints is where Mermaid's xychart layout starts overlapping labels.
const maxPoints = 60

func subsampleRate(n int) int {
	if n > maxPoints {
		return int(math.Ceil(float64(n) / maxPoints))
	}
	return 1
}

func quote(s string) string {
	return fmt.Sprintf("\"%s\"", strings.ReplaceAll(s, "\"", "'"))
}

func f1(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

type xyChart struct {
	title  string
	yLabel string
	yMax   float64
	labels []string
	bars   [][]string
	lines  [][]string
}

func (c xyChart) String() string {
	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString(fmt.Sprintf("    title %s\n", quote(c.title)))
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(c.labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis %s 0 --> %d\n", quote(c.yLabel), int(math.Ceil(c.yMax))))
	for _, b := range c.bars {
		sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(b, ", ")))
	}
	for _, l := range c.lines {
		sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(l, ", ")))
	}
	sb.WriteString("```")
	return sb.String()
}

// GenerateDailyChart plots present employees as bars against the eligible
// headcount as a line.
func GenerateDailyChart(daily []stats.DailyBucket) string {
	if len(daily) == 0 {
		return ""
	}

	c := xyChart{title: "Daily Attendance (Eligible vs Present)", yLabel: "Employees"}
	var present, eligible []string
	maxVal := 0
	rate := subsampleRate(len(daily))
	for i, d := range daily {
		if d.Eligible > maxVal {
			maxVal = d.Eligible
		}
		if d.Present > maxVal {
			maxVal = d.Present
		}
		if i%rate != 0 && i != len(daily)-1 {
			continue
		}
		c.labels = append(c.labels, quote(d.Date.Format("Jan02")))
		present = append(present, fmt.Sprintf("%d", d.Present))
		eligible = append(eligible, fmt.Sprintf("%d", d.Eligible))
	}
	c.yMax = float64(maxVal + int(math.Max(1, float64(maxVal)*0.1)))
	c.bars = [][]string{present}
	c.lines = [][]string{eligible}
	return c.String()
}

// GenerateWeeklyChart plots the weekly core-day attendance percentage.
func GenerateWeeklyChart(weekly []stats.WeeklyBucket) string {
	if len(weekly) == 0 {
		return ""
	}

	c := xyChart{title: "Weekly Core-Day Attendance", yLabel: "Attendance (%)", yMax: 100}
	var values []string
	rate := subsampleRate(len(weekly))
	for i, w := range weekly {
		if i%rate != 0 && i != len(weekly)-1 {
			continue
		}
		c.labels = append(c.labels, quote(w.WeekStart.Format("Jan02")))
		values = append(values, f1(w.Percentage))
	}
	c.lines = [][]string{values}
	return c.String()
}

// GenerateWeekdayChart shows the average attendance percentage per day of week.
func GenerateWeekdayChart(weekdays []stats.WeekdayBucket) string {
	if len(weekdays) == 0 {
		return ""
	}

	c := xyChart{title: "Attendance by Day of Week", yLabel: "Attendance (%)", yMax: 100}
	var values []string
	for _, w := range weekdays {
		label := w.Weekday
		if w.Core {
			label += " (core)"
		}
		c.labels = append(c.labels, quote(label))
		values = append(values, f1(w.Percentage))
	}
	c.bars = [][]string{values}
	return c.String()
}

// GenerateDivisionChart shows core-day attendance per division.
func GenerateDivisionChart(divisions []stats.DivisionBucket) string {
	var labels, values []string
	for _, d := range divisions {
		if d.Eligible == 0 {
			continue
		}
		labels = append(labels, quote(d.Division))
		values = append(values, f1(d.Percentage))
	}
	if len(labels) == 0 {
		return ""
	}

	c := xyChart{title: "Core-Day Attendance by Division", yLabel: "Attendance (%)", yMax: 100, labels: labels}
	c.bars = [][]string{values}
	return c.String()
}

// GenerateBreakdownPie shows who came in on an average office day, by category.
func GenerateBreakdownPie(rows []stats.BreakdownRow) string {
	var in, elsewhere, fullTime, other float64
	for _, r := range rows {
		in += r.InSegment
		elsewhere += r.SameStatusElsewhere
		fullTime += r.FullTimeOtherStatus
		other += r.Other
	}
	if in+elsewhere+fullTime+other == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("pie title Average Daily Visitors by Category\n")
	sb.WriteString(fmt.Sprintf("    \"In segment\" : %s\n", f1(in)))
	sb.WriteString(fmt.Sprintf("    \"Same status, other location\" : %s\n", f1(elsewhere)))
	sb.WriteString(fmt.Sprintf("    \"Full-time, other status\" : %s\n", f1(fullTime)))
	sb.WriteString(fmt.Sprintf("    \"Other\" : %s\n", f1(other)))
	sb.WriteString("```")
	return sb.String()
}

// GenerateXmRChart plots weekly attendance against its average and natural
// process limits.
func GenerateXmRChart(result stats.StabilityResult) string {
	if len(result.XmR.Values) < stats.MinStabilityWeeks {
		return ""
	}

	c := xyChart{title: "Weekly Attendance Behavior (XmR)", yLabel: "Attendance (%)", yMax: 100}
	var values, averages, unpls, lnpls []string
	for i, v := range result.XmR.Values {
		label := ""
		if i < len(result.Weeks) {
			label = result.Weeks[i]
		}
		c.labels = append(c.labels, quote(label))
		values = append(values, f1(v))
		averages = append(averages, f1(result.XmR.Average))
		unpls = append(unpls, f1(result.XmR.UNPL))
		lnpls = append(lnpls, f1(result.XmR.LNPL))
	}
	c.lines = [][]string{values, averages, unpls, lnpls}
	return c.String()
}
