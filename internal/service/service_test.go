package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"office-attendance/internal/config"
	"office-attendance/internal/stats"
)

func testConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		return p
	}

	return &config.AppConfig{
		BadgeLogPath: write("badge.csv", "User,Date/time,Where,Event\n"+
			"1 Doe; John,11/06/2024 09:00:00,Front,Valid Access\n"+
			"1 Doe; John,12/06/2024 09:20:00,Front,Valid Access\n"+
			"2 Roe; Jane,12/06/2024 10:00:00,Front,Valid Access\n"+
			"3 Poe; Max,13/06/2024 08:00:00,Front,Valid Access\n"),
		RosterPath: write("roster.csv", "Employee #,\"Last name, First name\",Hire Date,Location,Working Status,Status,Division\n"+
			"1,\"Doe, John\",01/01/2024,London UK,Hybrid,Active,Eng\n"+
			"2,\"Roe, Jane\",01/01/2024,London UK,Hybrid,Active,Eng\n"+
			"3,\"Poe, Max\",01/01/2024,Berlin,Hybrid,Active,Ops\n"),
		HistoryPath: write("history.csv", "\"Last name, First name\",Employment Status: Date,Employment Status\n"+
			"\"Doe, John\",01/01/2024,Full-Time\n"+
			"\"Poe, Max\",01/01/2024,Full-Time\n"),
		OverridesPath:        filepath.Join(dir, "overrides.json"),
		Location:             time.UTC,
		Segment:              config.SegmentConfig{Location: "London UK", WorkingStatus: "Hybrid", FullTime: true},
		CoreDays:             []time.Weekday{time.Tuesday, time.Wednesday, time.Thursday},
		OutlierMinutes:       120,
		DefaultAnalysisDays:  365,
		MissingHistoryPolicy: config.NotFullTime,
		Workers:              2,
	}
}

func TestAttendanceService_Queries(t *testing.T) {
	ctx := context.Background()
	svc := NewAttendanceService(testConfig(t))

	info, err := svc.Session(ctx)
	if err != nil {
		t.Fatalf("Session failed: %v", err)
	}
	if info.ID == "" || info.Events != 4 || info.Employees != 3 || len(info.Segments) != 2 {
		t.Errorf("unexpected session %+v", info)
	}

	daily, err := svc.Daily(ctx, Query{})
	if err != nil {
		t.Fatalf("Daily failed: %v", err)
	}
	if len(daily) != 3 {
		t.Fatalf("expected 3 office days, got %d", len(daily))
	}
	// Jane has no history and the policy says not full-time.
	if daily[1].Eligible != 1 || daily[1].Present != 1 || daily[1].OtherPresent != 1 {
		t.Errorf("unexpected 2024-06-12 bucket %+v", daily[1])
	}

	narrow, err := svc.Daily(ctx, Query{Start: "2024-06-12", End: "2024-06-12"})
	if err != nil {
		t.Fatalf("Daily failed: %v", err)
	}
	if len(narrow) != 1 || narrow[0].Eligible != daily[1].Eligible {
		t.Errorf("narrow window changed the denominator: %+v", narrow)
	}

	if _, err := svc.Daily(ctx, Query{Start: "2024-06-13", End: "2024-06-11"}); !errors.Is(err, stats.ErrInvalidWindow) {
		t.Errorf("expected ErrInvalidWindow, got %v", err)
	}
	if _, err := svc.Daily(ctx, Query{Segment: "London UK"}); err != nil {
		t.Errorf("secondary segment should be queryable: %v", err)
	}

	ex, err := svc.Explain(ctx, "Roe, Jane", "2024-06-12", "")
	if err != nil {
		t.Fatalf("Explain failed: %v", err)
	}
	if ex.Eligibility.Reason != stats.ReasonNotFullTime || !ex.Present {
		t.Errorf("unexpected explanation %+v", ex)
	}
	if _, err := svc.Explain(ctx, "Nobody", "2024-06-12", ""); !errors.Is(err, ErrEmployeeNotFound) {
		t.Errorf("expected ErrEmployeeNotFound, got %v", err)
	}

	q, err := svc.Quality(ctx)
	if err != nil {
		t.Fatalf("Quality failed: %v", err)
	}
	if q.Load.Pool.WithoutHistory != 1 {
		t.Errorf("expected one employee without history, got %+v", q.Load.Pool)
	}

	rep, err := svc.Report(ctx, Query{Days: 2}, false)
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}
	if !rep.Window.Start.Equal(time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected 2-day window ending on the last badge date, got %v", rep.Window)
	}

	reloaded, err := svc.Reload(ctx)
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if reloaded.ID == info.ID {
		t.Error("expected a new session id after reload")
	}
}

func TestAttendanceService_AssumeFullTimePolicy(t *testing.T) {
	cfg := testConfig(t)
	cfg.MissingHistoryPolicy = config.AssumeFullTime
	svc := NewAttendanceService(cfg)

	daily, err := svc.Daily(context.Background(), Query{Start: "2024-06-12", End: "2024-06-12"})
	if err != nil {
		t.Fatalf("Daily failed: %v", err)
	}
	if len(daily) != 1 || daily[0].Eligible != 2 || daily[0].Present != 2 {
		t.Errorf("expected Jane to count under assume_full_time, got %+v", daily)
	}
}

func TestAttendanceService_MissingBadgeLog(t *testing.T) {
	cfg := testConfig(t)
	cfg.BadgeLogPath = filepath.Join(t.TempDir(), "missing.csv")
	if _, err := NewAttendanceService(cfg).Session(context.Background()); err == nil {
		t.Fatal("expected error for missing badge log")
	}
}
