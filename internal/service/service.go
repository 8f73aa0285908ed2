// Package service owns the reporting session: it loads the sources once,
// builds the eligibility snapshot and answers report queries from it.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"office-attendance/internal/config"
	"office-attendance/internal/dataset"
	"office-attendance/internal/report"
	"office-attendance/internal/stats"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrEmployeeNotFound is returned when an employee query matches nobody.
var ErrEmployeeNotFound = errors.New("employee not found")

// Query selects a window and a segment. Explicit dates win over Days; with
// neither, the configured default analysis period ending on the latest badge
// date is used.
type Query struct {
	Start   string `json:"start,omitempty"`
	End     string `json:"end,omitempty"`
	Days    int    `json:"days,omitempty"`
	Segment string `json:"segment,omitempty"`
}

// SessionInfo describes the loaded session.
type SessionInfo struct {
	ID        string          `json:"id"`
	LoadedAt  time.Time       `json:"loadedAt"`
	DataRange stats.Window    `json:"dataRange"`
	Events    int             `json:"events"`
	Employees int             `json:"employees"`
	Segments  []stats.Segment `json:"segments"`
}

// AttendanceService serves report queries from a session snapshot that is
// built once and read-only afterwards.
type AttendanceService struct {
	cfg *config.AppConfig

	mu      sync.Mutex
	ds      *dataset.Dataset
	snap    *stats.Snapshot
	session SessionInfo
}

// NewAttendanceService creates a service; nothing is loaded until first use.
func NewAttendanceService(cfg *config.AppConfig) *AttendanceService {
	return &AttendanceService{cfg: cfg}
}

// Segments returns the segments configured for every session.
func Segments(cfg *config.AppConfig) []stats.Segment {
	ft := cfg.Segment.FullTime
	primary := stats.NewSegment(cfg.Segment.Location, cfg.Segment.WorkingStatus, &ft)
	segs := []stats.Segment{primary}
	if loc := stats.NewSegment(cfg.Segment.Location, "", nil); loc.Tag() != primary.Tag() {
		segs = append(segs, loc)
	}
	return segs
}

func (s *AttendanceService) snapshot(ctx context.Context) (*stats.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap != nil {
		return s.snap, nil
	}
	return s.loadLocked(ctx)
}

func (s *AttendanceService) loadLocked(ctx context.Context) (*stats.Snapshot, error) {
	ds, err := dataset.Load(ctx, dataset.Paths{
		BadgeLog:  s.cfg.BadgeLogPath,
		Roster:    s.cfg.RosterPath,
		History:   s.cfg.HistoryPath,
		Overrides: s.cfg.OverridesPath,
	}, dataset.Options{
		Location:                     s.cfg.Location,
		AssumeFullTimeWithoutHistory: s.cfg.MissingHistoryPolicy == config.AssumeFullTime,
	})
	if err != nil {
		return nil, err
	}

	snap, err := stats.NewSnapshot(ctx, ds.Pool, stats.BuildFacts(ds.Events, ds.Pool), stats.Options{
		Segments:       Segments(s.cfg),
		CoreDays:       s.cfg.CoreDays,
		OutlierMinutes: s.cfg.OutlierMinutes,
		Workers:        s.cfg.Workers,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build snapshot: %w", err)
	}

	s.ds = ds
	s.snap = snap
	s.session = SessionInfo{
		ID:        uuid.NewString(),
		LoadedAt:  ds.LoadedAt,
		DataRange: snap.Range(),
		Events:    len(ds.Events),
		Employees: ds.Pool.Len(),
		Segments:  snap.Segments(),
	}
	log.Info().
		Str("session", s.session.ID).
		Str("range", s.session.DataRange.String()).
		Int("events", s.session.Events).
		Int("employees", s.session.Employees).
		Msg("Attendance session ready")
	return snap, nil
}

// Reload discards the session and loads the sources again.
func (s *AttendanceService) Reload(ctx context.Context) (SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.snap
	s.snap = nil
	if _, err := s.loadLocked(ctx); err != nil {
		s.snap = prev
		return SessionInfo{}, err
	}
	return s.session, nil
}

// Session returns the current session, loading it if needed.
func (s *AttendanceService) Session(ctx context.Context) (SessionInfo, error) {
	if _, err := s.snapshot(ctx); err != nil {
		return SessionInfo{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session, nil
}

// Window resolves q against the snapshot's data range.
func (s *AttendanceService) Window(snap *stats.Snapshot, q Query) (stats.Window, error) {
	if q.Start != "" || q.End != "" {
		w, err := stats.ParseWindow(q.Start, q.End)
		if err != nil {
			return stats.Window{}, err
		}
		return snap.Resolve(w)
	}
	days := q.Days
	if days <= 0 {
		days = s.cfg.DefaultAnalysisDays
	}
	end := snap.Range().End
	if end.IsZero() {
		return stats.Window{}, nil
	}
	return stats.LastNDays(end, days), nil
}

func (s *AttendanceService) prepare(ctx context.Context, q Query) (*stats.Snapshot, stats.Window, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, stats.Window{}, err
	}
	w, err := s.Window(snap, q)
	if err != nil {
		return nil, stats.Window{}, err
	}
	return snap, w, nil
}

// Daily returns daily buckets.
func (s *AttendanceService) Daily(ctx context.Context, q Query) ([]stats.DailyBucket, error) {
	snap, w, err := s.prepare(ctx, q)
	if err != nil {
		return nil, err
	}
	return snap.Daily(w, q.Segment)
}

// Weekly returns core-day weekly buckets.
func (s *AttendanceService) Weekly(ctx context.Context, q Query) ([]stats.WeeklyBucket, error) {
	snap, w, err := s.prepare(ctx, q)
	if err != nil {
		return nil, err
	}
	return snap.Weekly(w, q.Segment)
}

// Period returns the period summary including the weekday breakdown.
func (s *AttendanceService) Period(ctx context.Context, q Query) (stats.PeriodSummary, error) {
	snap, w, err := s.prepare(ctx, q)
	if err != nil {
		return stats.PeriodSummary{}, err
	}
	return snap.Period(w, q.Segment)
}

// Stability runs a process behavior chart over weekly attendance.
func (s *AttendanceService) Stability(ctx context.Context, q Query) (stats.StabilityResult, error) {
	snap, w, err := s.prepare(ctx, q)
	if err != nil {
		return stats.StabilityResult{}, err
	}
	return snap.WeeklyStability(w, q.Segment)
}

// DivisionResult bundles the division rollup and its category breakdown.
type DivisionResult struct {
	Divisions []stats.DivisionBucket `json:"divisions"`
	Breakdown []stats.BreakdownRow   `json:"breakdown"`
}

// Division returns division rollups.
func (s *AttendanceService) Division(ctx context.Context, q Query) (DivisionResult, error) {
	snap, w, err := s.prepare(ctx, q)
	if err != nil {
		return DivisionResult{}, err
	}
	var res DivisionResult
	if res.Divisions, err = snap.Division(w, q.Segment); err != nil {
		return DivisionResult{}, err
	}
	if res.Breakdown, err = snap.DivisionBreakdown(w, q.Segment); err != nil {
		return DivisionResult{}, err
	}
	return res, nil
}

// Employees returns per-employee summaries.
func (s *AttendanceService) Employees(ctx context.Context, q Query) ([]stats.EmployeeSummary, error) {
	snap, w, err := s.prepare(ctx, q)
	if err != nil {
		return nil, err
	}
	return snap.EmployeeSummaries(w, q.Segment)
}

// Facts returns the employee-day facts of the window.
func (s *AttendanceService) Facts(ctx context.Context, q Query) ([]stats.Fact, error) {
	snap, w, err := s.prepare(ctx, q)
	if err != nil {
		return nil, err
	}
	return snap.DayFacts(w)
}

// Report builds the full report for q.
func (s *AttendanceService) Report(ctx context.Context, q Query, includeFacts bool) (*report.Report, error) {
	snap, w, err := s.prepare(ctx, q)
	if err != nil {
		return nil, err
	}
	return report.Build(snap, w, q.Segment, includeFacts)
}

// QualityResult combines load-time and engine-level data-quality findings.
type QualityResult struct {
	Session SessionInfo         `json:"session"`
	Load    dataset.Report      `json:"load"`
	Engine  stats.QualityReport `json:"engine"`
}

// Quality returns the data-quality report of the current session.
func (s *AttendanceService) Quality(ctx context.Context) (QualityResult, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return QualityResult{}, err
	}
	s.mu.Lock()
	res := QualityResult{Session: s.session, Load: s.ds.Report}
	s.mu.Unlock()
	res.Engine = snap.Quality()
	return res, nil
}

// Explain resolves employee (an id or an exact name) and explains their
// eligibility on date (YYYY-MM-DD).
func (s *AttendanceService) Explain(ctx context.Context, employee, date, segment string) (stats.Explanation, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return stats.Explanation{}, err
	}
	d, err := time.Parse(time.DateOnly, strings.TrimSpace(date))
	if err != nil {
		return stats.Explanation{}, fmt.Errorf("%w: date %q", stats.ErrInvalidWindow, date)
	}
	id, err := resolveEmployee(snap, employee)
	if err != nil {
		return stats.Explanation{}, err
	}
	return snap.Explain(id, d, segment)
}

func resolveEmployee(snap *stats.Snapshot, employee string) (int, error) {
	employee = strings.TrimSpace(employee)
	if id, err := strconv.Atoi(employee); err == nil {
		return id, nil
	}
	matches := snap.Pool().FindByName(employee)
	switch len(matches) {
	case 0:
		return 0, fmt.Errorf("%w: %q", ErrEmployeeNotFound, employee)
	case 1:
		return matches[0].ID, nil
	default:
		return 0, fmt.Errorf("%w: %q matches %d employees, use an id", ErrEmployeeNotFound, employee, len(matches))
	}
}
