package roster

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"office-attendance/internal/tabular"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func boolPtr(b bool) *bool { return &b }

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"01/02/2024", day(2024, 2, 1), false},
		{"1/2/2024", day(2024, 2, 1), false},
		{"2024-02-01", day(2024, 2, 1), false},
		{"", time.Time{}, false},
		{"soon", time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDate(%q) error = %v", tt.in, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseRoster(t *testing.T) {
	data := "Employee #,\"Last name, First name\",Hire Date,Original Hire Date,Location,Working Status,Last Day,Resignation Date,Status,Division\n" +
		"101,\"Doe, John\",01/01/2024,,London UK,Hybrid,,,Active,Engineering\n" +
		"102.0,\"Roe, Jane\",01/03/2022,01/06/2019,London UK,Hybrid,,30/04/2024,Inactive,Sales\n" +
		"abc,\"Bad, Row\",01/01/2024,,London UK,Hybrid,,,Active,Sales\n"

	table, err := tabular.Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	rows, rep, err := ParseRoster(table)
	if err != nil {
		t.Fatalf("ParseRoster failed: %v", err)
	}
	if len(rows) != 2 || rep.InvalidIDs != 1 {
		t.Fatalf("expected 2 rows and 1 invalid id, got %d / %+v", len(rows), rep)
	}
	if len(rep.MissingColumns) != 0 {
		t.Errorf("unexpected missing columns %v", rep.MissingColumns)
	}
	if rows[1].ID != 102 || rows[1].Active || !rows[1].ResignationDate.Equal(day(2024, 4, 30)) {
		t.Errorf("unexpected second row %+v", rows[1])
	}
}

func TestParseRoster_MissingColumns(t *testing.T) {
	table, _ := tabular.Parse([]byte("Name\nx\n"))
	if _, _, err := ParseRoster(table); !errors.Is(err, ErrMissingColumns) {
		t.Fatalf("expected ErrMissingColumns, got %v", err)
	}

	table, _ = tabular.Parse([]byte("Employee #,Hire Date\n1,01/01/2024\n"))
	rows, rep, err := ParseRoster(table)
	if err != nil {
		t.Fatalf("ParseRoster failed: %v", err)
	}
	if len(rows) != 1 || len(rep.MissingColumns) != 2 {
		t.Errorf("expected degraded parse with 2 missing columns, got %+v", rep)
	}
}

func TestBuild(t *testing.T) {
	rows := []Row{
		{ID: 1, Name: "Doe, John", HireDate: day(2024, 1, 1), Location: "London UK", WorkingStatus: "Hybrid", Active: true},
		{ID: 2, Name: "Roe, Jane", HireDate: day(2022, 3, 1), OriginalHireDate: day(2019, 6, 1), LastDay: day(2024, 5, 1), ResignationDate: day(2024, 4, 1), Location: "London UK", WorkingStatus: "Hybrid"},
		{ID: 3, Name: "Dup, Old", HireDate: day(2020, 1, 1), Location: "London UK", WorkingStatus: "Office"},
		{ID: 3, Name: "Dup, New", HireDate: day(2023, 1, 1), Location: "London UK", WorkingStatus: "Hybrid", Active: true},
		{ID: 4, Name: "Same, Name", HireDate: day(2023, 1, 1), Active: true},
		{ID: 5, Name: "Same, Name", HireDate: day(2023, 1, 1), Active: true},
	}
	history := []HistoryRow{
		{Name: "doe,  john", Effective: day(2024, 1, 1), Label: "Full-Time"},
		{Name: "Same, Name", Effective: day(2024, 1, 1), Label: "Full-Time"},
		{Name: "Nobody", Effective: day(2024, 1, 1), Label: "Full-Time"},
	}
	loc := "Berlin"
	overrides := &Overrides{Employees: []EmployeeOverride{
		{EmployeeID: 1, Division: strPtr("Engineering")},
		{EmployeeID: 849, Create: true, Name: "Hindhaugh, Robert", Location: strPtr("London UK"), WorkingStatus: strPtr("Hybrid"), HireDate: &Date{day(2021, 1, 1)}, FullTime: boolPtr(true)},
		{Name: "Roe, Jane", Location: &loc},
		{EmployeeID: 999},
	}}
	lastBadge := day(2024, 6, 30)

	pool, rep := Build(rows, history, overrides, BuildOptions{LastBadgeDate: lastBadge})

	if pool.Len() != 6 {
		t.Fatalf("expected 6 employees, got %d", pool.Len())
	}
	if rep.DuplicateIDs != 1 || rep.HistoryMatched != 1 || rep.HistoryAmbiguous != 1 || rep.HistoryUnmatched != 1 {
		t.Errorf("unexpected join report %+v", rep)
	}
	if rep.OverridesApplied != 2 || rep.OverridesCreated != 1 || rep.OverridesUnmatched != 1 {
		t.Errorf("unexpected override report %+v", rep)
	}

	john, _ := pool.Get(1)
	if john.Division != "Engineering" || !john.LastDayWorked.Equal(lastBadge) {
		t.Errorf("unexpected John %+v", john)
	}

	jane, _ := pool.Get(2)
	if !jane.HireDate.Equal(day(2019, 6, 1)) {
		t.Errorf("expected earliest hire date, got %v", jane.HireDate)
	}
	if !jane.TerminationDate.Equal(day(2024, 5, 1)) || !jane.LastDayWorked.Equal(day(2024, 5, 1)) {
		t.Errorf("expected Last Day to win, got %v / %v", jane.TerminationDate, jane.LastDayWorked)
	}
	if jane.Location != "Berlin" {
		t.Errorf("expected name-matched override, got %q", jane.Location)
	}

	dup, _ := pool.Get(3)
	if dup.Name != "Dup, New" {
		t.Errorf("expected active duplicate to win, got %q", dup.Name)
	}

	robert, ok := pool.Get(849)
	if !ok || !robert.FromOverride || !robert.FullTimeAsOf(day(2020, 1, 1)) {
		t.Errorf("expected backfilled full-time profile, got %+v", robert)
	}
}

func strPtr(s string) *string { return &s }

func TestFullTimeAsOf(t *testing.T) {
	e := &Employee{History: []StatusEntry{
		{Effective: day(2024, 1, 1), Label: "Full-Time"},
		{Effective: day(2024, 3, 1), Label: "Part-Time"},
		{Effective: day(2024, 6, 1), Label: "Full Time"},
	}}

	tests := []struct {
		date time.Time
		want bool
	}{
		{day(2023, 12, 31), false},
		{day(2024, 1, 1), true},
		{day(2024, 2, 29), true},
		{day(2024, 3, 1), false},
		{day(2024, 6, 15), true},
	}
	for _, tt := range tests {
		if got := e.FullTimeAsOf(tt.date); got != tt.want {
			t.Errorf("FullTimeAsOf(%s) = %v, want %v", tt.date.Format("2006-01-02"), got, tt.want)
		}
	}

	noHistory := &Employee{}
	if noHistory.FullTimeAsOf(day(2024, 1, 1)) {
		t.Error("expected not full-time without history by default")
	}
	noHistory.FullTimeWithoutHistory = true
	if !noHistory.FullTimeAsOf(day(2024, 1, 1)) {
		t.Error("expected policy to apply without history")
	}

	e.FullTimeOverride = boolPtr(false)
	if e.FullTimeAsOf(day(2024, 6, 15)) {
		t.Error("expected override to win over history")
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()

	o, err := LoadOverrides(filepath.Join(dir, "missing.json"))
	if err != nil || len(o.Employees) != 0 {
		t.Fatalf("expected empty overrides for missing file, got %v / %v", o, err)
	}

	path := filepath.Join(dir, "overrides.json")
	content := `{
  "identities": [{"name": "Mueller, Benjamin", "employee_id": 867}],
  "employees": [{"employee_id": 867, "create": true, "name": "Mueller, Benjamin", "hire_date": "2022-04-01", "full_time": true}]
}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	o, err = LoadOverrides(path)
	if err != nil {
		t.Fatalf("LoadOverrides failed: %v", err)
	}
	if o.IdentityMap()["Mueller, Benjamin"] != 867 {
		t.Errorf("identity not loaded: %+v", o.Identities)
	}
	if got := o.Employees[0].HireDate.Time; !got.Equal(day(2022, 4, 1)) {
		t.Errorf("hire date = %v", got)
	}

	bad := filepath.Join(dir, "bad.json")
	_ = os.WriteFile(bad, []byte(`{"employees":[{"create":true,"name":"x"}]}`), 0644)
	if _, err := LoadOverrides(bad); err == nil {
		t.Error("expected validation error for create without id")
	}
}

func TestBuild_SharedNameHistoryGoesToActiveProfile(t *testing.T) {
	rows := []Row{
		{ID: 10, Name: "Doe, John", HireDate: day(2015, 1, 1), LastDay: day(2022, 3, 31), Location: "London UK", WorkingStatus: "Hybrid"},
		{ID: 11, Name: "Doe, John", HireDate: day(2023, 2, 1), Location: "London UK", WorkingStatus: "Hybrid", Active: true},
		{ID: 20, Name: "Lee, Ann", HireDate: day(2018, 1, 1), LastDay: day(2020, 1, 1)},
		{ID: 21, Name: "Lee, Ann", HireDate: day(2021, 1, 1), LastDay: day(2022, 1, 1)},
	}
	history := []HistoryRow{
		{Name: "Doe, John", Effective: day(2023, 2, 1), Label: "Full-Time"},
		{Name: "Lee, Ann", Effective: day(2021, 1, 1), Label: "Part-Time"},
	}

	pool, rep := Build(rows, history, nil, BuildOptions{LastBadgeDate: day(2024, 6, 30)})

	if rep.HistoryMatched != 2 || rep.HistorySharedName != 2 || rep.HistoryAmbiguous != 0 {
		t.Errorf("unexpected join report %+v", rep)
	}
	rehired, _ := pool.Get(11)
	if !rehired.FullTimeAsOf(day(2024, 6, 12)) {
		t.Errorf("expected the active profile to receive the history, got %+v", rehired.History)
	}
	leaver, _ := pool.Get(10)
	if len(leaver.History) != 0 {
		t.Errorf("expected the leaver to get no history, got %+v", leaver.History)
	}
	later, _ := pool.Get(21)
	if len(later.History) != 1 {
		t.Errorf("expected the later hire to receive the history among leavers, got %+v", later.History)
	}
}

func TestEmploymentWindow(t *testing.T) {
	rows := []Row{
		{ID: 1, Name: "Active, A", HireDate: day(2024, 1, 1), Active: true},
		{ID: 2, Name: "Leaver, B", HireDate: day(2024, 1, 1), LastDay: day(2024, 5, 1)},
		{ID: 3, Name: "Notice, C", HireDate: day(2024, 1, 1), LastDay: day(2024, 9, 30), Active: true},
	}
	pool, _ := Build(rows, nil, nil, BuildOptions{LastBadgeDate: day(2024, 6, 30)})

	tests := []struct {
		id   int
		date time.Time
		want bool
	}{
		{1, day(2024, 6, 30), true},
		{1, day(2024, 7, 1), false},
		{2, day(2024, 5, 1), true},
		{2, day(2024, 5, 2), false},
		{3, day(2024, 6, 30), true},
		{3, day(2024, 7, 1), false},
		{1, day(2023, 12, 31), false},
	}
	for _, tt := range tests {
		e, _ := pool.Get(tt.id)
		if got := e.EmployedOn(tt.date); got != tt.want {
			t.Errorf("EmployedOn(%d, %s) = %v, want %v", tt.id, tt.date.Format(time.DateOnly), got, tt.want)
		}
	}

	open := &Employee{HireDate: day(2024, 1, 1)}
	if !open.EmployedOn(day(2030, 1, 1)) || !open.EmploymentEnd().IsZero() {
		t.Error("a profile without a closed window should stay employed")
	}
}
