package report

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS reports (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	generated_at TEXT NOT NULL,
	window_start TEXT NOT NULL,
	window_end TEXT NOT NULL,
	segment TEXT NOT NULL,
	core_days INTEGER NOT NULL,
	eligible_count REAL NOT NULL,
	present_count REAL NOT NULL,
	percentage REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS daily_attendance (
	report_id INTEGER NOT NULL REFERENCES reports(id),
	date TEXT NOT NULL,
	weekday TEXT NOT NULL,
	eligible_count INTEGER NOT NULL,
	present_count INTEGER NOT NULL,
	other_present_count INTEGER NOT NULL,
	percentage REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS weekly_attendance (
	report_id INTEGER NOT NULL REFERENCES reports(id),
	week_start TEXT NOT NULL,
	core_days INTEGER NOT NULL,
	eligible_count REAL NOT NULL,
	present_count REAL NOT NULL,
	percentage REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS division_attendance (
	report_id INTEGER NOT NULL REFERENCES reports(id),
	division TEXT NOT NULL,
	eligible_count REAL NOT NULL,
	present_count REAL NOT NULL,
	percentage REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS employee_summary (
	report_id INTEGER NOT NULL REFERENCES reports(id),
	employee_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	days_attended INTEGER NOT NULL,
	core_days_attended INTEGER NOT NULL,
	eligible_core_days INTEGER NOT NULL,
	attendance_rate REAL,
	median_arrival TEXT,
	mean_arrival TEXT
);
`

// ExportSQLite appends r to the SQLite database at path, creating the schema
// on first use, and returns the new report id.
func ExportSQLite(ctx context.Context, path string, r *Report) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer db.Close()

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return 0, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return 0, fmt.Errorf("failed to create schema: %w", err)
	}

	var reportID int64
	err = transaction(ctx, db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO reports (generated_at, window_start, window_end, segment, core_days, eligible_count, present_count, percentage)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.GeneratedAt.Format(time.RFC3339), r.Window.Start.Format(time.DateOnly), r.Window.End.Format(time.DateOnly),
			r.Segment, r.Period.CoreDays, r.Period.Eligible, r.Period.Present, r.Period.Percentage)
		if err != nil {
			return fmt.Errorf("failed to insert report: %w", err)
		}
		if reportID, err = res.LastInsertId(); err != nil {
			return err
		}

		for _, b := range r.Daily {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO daily_attendance VALUES (?, ?, ?, ?, ?, ?, ?)`,
				reportID, b.Date.Format(time.DateOnly), b.Weekday, b.Eligible, b.Present, b.OtherPresent, b.Percentage); err != nil {
				return fmt.Errorf("failed to insert daily row: %w", err)
			}
		}
		for _, b := range r.Weekly {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO weekly_attendance VALUES (?, ?, ?, ?, ?, ?)`,
				reportID, b.WeekStart.Format(time.DateOnly), b.Days, b.Eligible, b.Present, b.Percentage); err != nil {
				return fmt.Errorf("failed to insert weekly row: %w", err)
			}
		}
		for _, b := range r.Division {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO division_attendance VALUES (?, ?, ?, ?, ?)`,
				reportID, b.Division, b.Eligible, b.Present, b.Percentage); err != nil {
				return fmt.Errorf("failed to insert division row: %w", err)
			}
		}
		for _, e := range r.Employees {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO employee_summary VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				reportID, e.EmployeeID, e.Name, e.DaysAttended, e.CoreDaysAttended, e.EligibleCoreDays,
				nullFloat(e.AttendanceRate), nullString(e.Arrival.Median), nullString(e.Arrival.Mean)); err != nil {
				return fmt.Errorf("failed to insert employee row: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Info().Str("path", path).Int64("reportId", reportID).Msg("Report exported to SQLite")
	return reportID, nil
}

// transaction executes fn within a database transaction.
func transaction(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
