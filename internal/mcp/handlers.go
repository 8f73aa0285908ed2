package mcp

import (
	"context"
	"fmt"

	"office-attendance/internal/report"
	"office-attendance/internal/service"
	"office-attendance/internal/stats"
	"office-attendance/internal/visuals"
)

type queryContext struct {
	Session string        `json:"session"`
	Query   service.Query `json:"query"`
}

func (s *Server) queryContext(ctx context.Context, q service.Query) queryContext {
	info, _ := s.svc.Session(ctx)
	return queryContext{Session: info.ID, Query: q}
}

func emptyWarning(n int) []string {
	if n == 0 {
		return []string{"No office days fall inside the selected window. Check the window against the session date range."}
	}
	return nil
}

func (s *Server) handleSession(ctx context.Context, _ NoArgs) (any, error) {
	info, err := s.svc.Session(ctx)
	if err != nil {
		return nil, err
	}
	return wrap(info, nil, nil, []string{
		"Percentages use only the employees eligible on each date as denominator; eligibility does not depend on the window.",
		"Days without any badge activity are treated as office closures and excluded from averages.",
		"Run 'attendance_quality' before presenting results to surface unresolved badge identities.",
	}), nil
}

func (s *Server) handleDaily(ctx context.Context, in WindowArgs) (any, error) {
	q := queryOf(in)
	rows, err := s.svc.Daily(ctx, q)
	if err != nil {
		return nil, err
	}
	return wrap(rows, s.queryContext(ctx, q), emptyWarning(len(rows)), nil).
		withChart(visuals.GenerateDailyChart(rows)), nil
}

func (s *Server) handleWeekly(ctx context.Context, in WindowArgs) (any, error) {
	q := queryOf(in)
	rows, err := s.svc.Weekly(ctx, q)
	if err != nil {
		return nil, err
	}
	return wrap(rows, s.queryContext(ctx, q), emptyWarning(len(rows)), []string{
		"Weekly figures average over core office days only; weeks without a core office day are omitted.",
	}).withChart(visuals.GenerateWeeklyChart(rows)), nil
}

func (s *Server) handleStability(ctx context.Context, in WindowArgs) (any, error) {
	q := queryOf(in)
	res, err := s.svc.Stability(ctx, q)
	if err != nil {
		return nil, err
	}
	var warnings []string
	if res.Status == "insufficient_data" {
		warnings = []string{fmt.Sprintf("Fewer than %d weeks with core office days; widen the window.", stats.MinStabilityWeeks)}
	}
	return wrap(res, s.queryContext(ctx, q), warnings, []string{
		"Points outside the natural process limits or runs of 8 weeks on one side of the average indicate a real change in attendance, not noise.",
	}).withChart(visuals.GenerateXmRChart(res)), nil
}

func (s *Server) handlePeriod(ctx context.Context, in WindowArgs) (any, error) {
	q := queryOf(in)
	sum, err := s.svc.Period(ctx, q)
	if err != nil {
		return nil, err
	}
	return wrap(sum, s.queryContext(ctx, q), emptyWarning(sum.OfficeDays), nil).
		withChart(visuals.GenerateWeekdayChart(sum.Weekdays)), nil
}

func (s *Server) handleDivision(ctx context.Context, in WindowArgs) (any, error) {
	q := queryOf(in)
	res, err := s.svc.Division(ctx, q)
	if err != nil {
		return nil, err
	}
	return wrap(res, s.queryContext(ctx, q), nil, []string{
		"Division percentages are core-day averages for the segment; the breakdown averages head counts over all office days.",
	}).withChart(visuals.GenerateDivisionChart(res.Divisions), visuals.GenerateBreakdownPie(res.Breakdown)), nil
}

func (s *Server) handleEmployees(ctx context.Context, in WindowArgs) (any, error) {
	q := queryOf(in)
	rows, err := s.svc.Employees(ctx, q)
	if err != nil {
		return nil, err
	}
	return wrap(rows, s.queryContext(ctx, q), nil, nil), nil
}

func (s *Server) handleQuality(ctx context.Context, _ NoArgs) (any, error) {
	res, err := s.svc.Quality(ctx)
	if err != nil {
		return nil, err
	}
	return wrap(res, nil, res.Load.Warnings, []string{
		"Unresolved badge identities can be mapped to employee numbers in the overrides file, then call 'reload_data'.",
	}), nil
}

func (s *Server) handleExplain(ctx context.Context, in ExplainArgs) (any, error) {
	ex, err := s.svc.Explain(ctx, in.Employee, in.Date, in.Segment)
	if err != nil {
		return nil, err
	}
	return wrap(ex, nil, nil, nil), nil
}

func (s *Server) handleExport(ctx context.Context, in ExportArgs) (any, error) {
	formats, err := report.ParseFormats(in.Formats)
	if err != nil {
		return nil, err
	}
	q := service.Query{Start: in.Start, End: in.End, Days: in.Days, Segment: in.Segment}
	r, err := s.svc.Report(ctx, q, in.IncludeFacts)
	if err != nil {
		return nil, err
	}
	paths, err := report.Export(ctx, s.cfg.ExportDir, r, formats)
	if err != nil {
		return nil, fmt.Errorf("export failed after %d files: %w", len(paths), err)
	}
	return wrap(map[string]any{"files": paths, "window": r.Window}, s.queryContext(ctx, q), nil, nil), nil
}

func (s *Server) handleReload(ctx context.Context, _ NoArgs) (any, error) {
	info, err := s.svc.Reload(ctx)
	if err != nil {
		return nil, err
	}
	return wrap(info, nil, nil, nil), nil
}
