package roster

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"office-attendance/internal/tabular"

	"github.com/rs/zerolog/log"
)

// ErrMissingColumns is returned when a roster or history feed lacks a
// structurally required column.
var ErrMissingColumns = errors.New("roster feed is missing required columns")

// Column aliases for the HR exports.
var (
	colID               = []string{"Employee #", "Employee Number", "Employee ID"}
	colName             = []string{"Last name, First name", "Employee Name", "Name"}
	colHireDate         = []string{"Hire Date"}
	colOriginalHireDate = []string{"Original Hire Date", "Previous Hire Date"}
	colLocation         = []string{"Location"}
	colWorkingStatus    = []string{"Working Status"}
	colLastDay          = []string{"Last Day"}
	colResignation      = []string{"Resignation Date", "Termination Date"}
	colStatus           = []string{"Status"}
	colDivision         = []string{"Division", "Department"}

	colHistoryDate  = []string{"Employment Status: Date", "Effective Date"}
	colHistoryLabel = []string{"Employment Status", "Status"}
)

// DateLayouts are tried in order; HR exports are day-first.
var DateLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"02-Jan-2006",
	"2 Jan 2006",
	"02-01-2006",
}

// ParseDate parses a day-first calendar date into a UTC midnight value.
// An empty string yields the zero time without error.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// Row is one roster line before de-duplication and joining.
type Row struct {
	ID               int
	Name             string
	HireDate         time.Time
	OriginalHireDate time.Time
	LastDay          time.Time
	ResignationDate  time.Time
	Location         string
	WorkingStatus    string
	Status           string
	Division         string
	Active           bool
}

// HistoryRow is one employment-status change keyed by employee name.
type HistoryRow struct {
	Name      string
	Effective time.Time
	Label     string
}

// ParseReport counts issues found while reading the HR feeds.
type ParseReport struct {
	Rows           int      `json:"rows"`
	InvalidIDs     int      `json:"invalidIds"`
	InvalidDates   int      `json:"invalidDates"`
	MissingColumns []string `json:"missingColumns,omitempty"`
}

// ParseRoster reads roster rows. Only the employee number column is
// required; missing eligibility columns are reported and left empty.
func ParseRoster(t *tabular.Table) ([]Row, ParseReport, error) {
	var rep ParseReport

	idCol, ok := t.Column(colID...)
	if !ok {
		return nil, rep, fmt.Errorf("%w: need %q, have %v", ErrMissingColumns, colID[0], t.Header)
	}

	lookup := func(aliases []string, eligibility bool) int {
		c, ok := t.Column(aliases...)
		if !ok {
			if eligibility {
				rep.MissingColumns = append(rep.MissingColumns, aliases[0])
			}
			return -1
		}
		return c
	}
	nameCol := lookup(colName, false)
	hireCol := lookup(colHireDate, true)
	origCol := lookup(colOriginalHireDate, false)
	locCol := lookup(colLocation, true)
	wsCol := lookup(colWorkingStatus, true)
	lastCol := lookup(colLastDay, false)
	resCol := lookup(colResignation, false)
	statusCol := lookup(colStatus, false)
	divCol := lookup(colDivision, false)

	for _, c := range rep.MissingColumns {
		log.Warn().Str("column", c).Msg("Roster column missing; eligibility degrades to unknown")
	}

	date := func(row []string, col int) time.Time {
		d, err := ParseDate(t.Value(row, col))
		if err != nil {
			rep.InvalidDates++
			return time.Time{}
		}
		return d
	}

	rows := make([]Row, 0, t.Len())
	for _, rec := range t.Rows {
		rep.Rows++
		id, err := parseID(t.Value(rec, idCol))
		if err != nil {
			rep.InvalidIDs++
			continue
		}
		r := Row{
			ID:               id,
			Name:             t.Value(rec, nameCol),
			HireDate:         date(rec, hireCol),
			OriginalHireDate: date(rec, origCol),
			LastDay:          date(rec, lastCol),
			ResignationDate:  date(rec, resCol),
			Location:         t.Value(rec, locCol),
			WorkingStatus:    t.Value(rec, wsCol),
			Status:           t.Value(rec, statusCol),
			Division:         t.Value(rec, divCol),
		}
		if statusCol >= 0 {
			r.Active = strings.EqualFold(r.Status, "Active")
		} else {
			r.Active = r.LastDay.IsZero() && r.ResignationDate.IsZero()
		}
		rows = append(rows, r)
	}

	if rep.InvalidIDs > 0 || rep.InvalidDates > 0 {
		log.Warn().Int("invalidIds", rep.InvalidIDs).Int("invalidDates", rep.InvalidDates).Msg("Roster rows with unusable values")
	}
	return rows, rep, nil
}

// ParseHistory reads employment-status history rows.
func ParseHistory(t *tabular.Table) ([]HistoryRow, ParseReport, error) {
	var rep ParseReport

	nameCol, okName := t.Column(colName...)
	dateCol, okDate := t.Column(colHistoryDate...)
	labelCol, okLabel := t.Column(colHistoryLabel...)
	if !okName || !okDate || !okLabel {
		return nil, rep, fmt.Errorf("%w: need %q, %q and %q, have %v",
			ErrMissingColumns, colName[0], colHistoryDate[0], colHistoryLabel[0], t.Header)
	}

	rows := make([]HistoryRow, 0, t.Len())
	for _, rec := range t.Rows {
		rep.Rows++
		eff, err := ParseDate(t.Value(rec, dateCol))
		if err != nil || eff.IsZero() {
			rep.InvalidDates++
			continue
		}
		name := t.Value(rec, nameCol)
		if name == "" {
			continue
		}
		rows = append(rows, HistoryRow{Name: name, Effective: eff, Label: t.Value(rec, labelCol)})
	}

	if rep.InvalidDates > 0 {
		log.Warn().Int("count", rep.InvalidDates).Msg("Status history rows with unusable dates skipped")
	}
	return rows, rep, nil
}

// parseID accepts "123" and spreadsheet-style "123.0".
func parseID(s string) (int, error) {
	if s == "" {
		return 0, errors.New("empty id")
	}
	if id, err := strconv.Atoi(s); err == nil {
		return id, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return int(f), nil
}
