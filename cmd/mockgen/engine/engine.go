package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"office-attendance/internal/badge"
	"office-attendance/internal/roster"
	"office-attendance/internal/tabular"
)

// File names match the default source paths.
const (
	BadgeFile     = "key_card_access.csv"
	RosterFile    = "employee_info.csv"
	HistoryFile   = "employment_status_history.csv"
	OverridesFile = "overrides.json"
)

type GeneratorConfig struct {
	Scenario     string // "mild", "chaos" or "drift"
	Distribution string // "uniform" or "weibull" arrival lateness
	Employees    int
	Days         int
	Now          time.Time
	Location     *time.Location
	Seed         uint64
}

// Employee is one synthetic roster row.
type Employee struct {
	ID            int
	Last, First   string
	Location      string
	WorkingStatus string
	Division      string
	HireDate      time.Time
	LastDay       time.Time
	FullTime      []roster.StatusEntry
}

// Name is the roster form "Last, First".
func (e Employee) Name() string { return e.Last + ", " + e.First }

// Actor is the badge-system form "ID Last; First".
func (e Employee) Actor() string { return fmt.Sprintf("%d %s; %s", e.ID, e.Last, e.First) }

// Dataset is everything Save writes.
type Dataset struct {
	Employees []Employee
	Events    []badge.Event
	Overrides roster.Overrides
	// BadRows are appended verbatim to the badge log.
	BadRows [][]string
}

var (
	lastNames  = []string{"Smith", "Jones", "Taylor", "Brown", "Williams", "Wilson", "Johnson", "Davies", "Patel", "Wright", "Walker", "Evans", "Khan", "Green", "Hall"}
	firstNames = []string{"Oliver", "Amelia", "George", "Isla", "Harry", "Ava", "Noah", "Mia", "Jack", "Ivy", "Leo", "Grace", "Arthur", "Freya", "Oscar"}
	divisions  = []string{"Engineering", "Finance", "Operations", "Sales", "People"}
	doors      = []string{"Front Door", "Side Door", "Car Park"}
)

func Generate(cfg GeneratorConfig) Dataset {
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Days < 1 {
		cfg.Days = 90
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	end := time.Date(cfg.Now.Year(), cfg.Now.Month(), cfg.Now.Day(), 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -(cfg.Days - 1))

	var ds Dataset
	for i := 0; i < cfg.Employees; i++ {
		ds.Employees = append(ds.Employees, newEmployee(rng, 100+i, start, end, cfg.Scenario))
	}

	// Badge names without an id prefix are resolved through the identity table;
	// 867 has no roster row and is backfilled.
	robert := Employee{ID: 849, Last: "Hindhaugh", First: "Robert", Location: "London UK", WorkingStatus: "Hybrid",
		Division: "Operations", HireDate: start.AddDate(-2, 0, 0),
		FullTime: []roster.StatusEntry{{Effective: start.AddDate(-2, 0, 0), Label: "Full-Time"}}}
	ds.Employees = append(ds.Employees, robert)
	ds.Overrides.Identities = []roster.IdentityOverride{
		{Name: "Hindhaugh; Robert", EmployeeID: 849},
		{Name: "Farrow; Elena", EmployeeID: 867},
	}
	yes := true
	loc, ws, div := "London UK", "Hybrid", "Engineering"
	ds.Overrides.Employees = []roster.EmployeeOverride{{
		EmployeeID: 867, Name: "Farrow, Elena", Create: true,
		Location: &loc, WorkingStatus: &ws, Division: &div,
		HireDate: &roster.Date{Time: start.AddDate(-1, 0, 0)}, FullTime: &yes,
	}}
	elena := Employee{ID: 867, Last: "Farrow", First: "Elena", HireDate: start.AddDate(-1, 0, 0)}

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		progress := float64(d.Sub(start)) / float64(end.Sub(start)+24*time.Hour)
		for _, e := range ds.Employees {
			if !attends(rng, e, d, progress, cfg.Scenario) {
				continue
			}
			actor := e.Actor()
			if e.ID == 849 {
				actor = "Hindhaugh; Robert"
			}
			ds.Events = append(ds.Events, swipes(rng, cfg, actor, d)...)
		}
		if attends(rng, elena, d, progress, cfg.Scenario) {
			ds.Events = append(ds.Events, swipes(rng, cfg, "Farrow; Elena", d)...)
		}
		if cfg.Scenario == "chaos" {
			ds.Events = append(ds.Events, chaos(rng, cfg, d)...)
		}
	}
	if cfg.Scenario == "chaos" {
		ds.BadRows = [][]string{
			{"105 Broken; Row", "not a date", "Front Door", "Valid Access"},
			{"", start.Format("02/01/2006") + " 09:00:00", "Front Door", "Valid Access"},
		}
	}
	return ds
}

func newEmployee(rng *rand.Rand, id int, start, end time.Time, scenario string) Employee {
	e := Employee{
		ID:            id,
		Last:          lastNames[rng.IntN(len(lastNames))],
		First:         firstNames[rng.IntN(len(firstNames))],
		Location:      pick(rng, []string{"London UK", "London UK", "London UK", "Manchester UK", "Remote"}),
		WorkingStatus: pick(rng, []string{"Hybrid", "Hybrid", "Hybrid", "Office", "Remote"}),
		Division:      divisions[rng.IntN(len(divisions))],
		HireDate:      start.AddDate(0, -rng.IntN(48), -rng.IntN(28)),
	}
	span := int(end.Sub(start).Hours() / 24)
	switch r := rng.Float64(); {
	case r < 0.08:
		e.HireDate = start.AddDate(0, 0, rng.IntN(span+1))
	case r < 0.16:
		e.LastDay = start.AddDate(0, 0, rng.IntN(span+1))
	}

	switch r := rng.Float64(); {
	case r < 0.05 && scenario != "mild":
		// no history
	case r < 0.15:
		e.FullTime = []roster.StatusEntry{{Effective: e.HireDate, Label: "Part-Time"}}
	case r < 0.22:
		e.FullTime = []roster.StatusEntry{
			{Effective: e.HireDate, Label: "Part-Time"},
			{Effective: start.AddDate(0, 0, rng.IntN(span+1)), Label: "Full-Time"},
		}
	default:
		e.FullTime = []roster.StatusEntry{{Effective: e.HireDate, Label: "Full-Time"}}
	}
	return e
}

func pick(rng *rand.Rand, from []string) string {
	return from[rng.IntN(len(from))]
}

// attends decides whether e comes in on d. progress runs from 0 to 1 across
// the generated period.
func attends(rng *rand.Rand, e Employee, d time.Time, progress float64, scenario string) bool {
	if d.Before(e.HireDate) {
		return false
	}
	if !e.LastDay.IsZero() && d.After(e.LastDay) {
		// Chaos lets some leavers keep badging in for a few days.
		if scenario != "chaos" || d.Sub(e.LastDay) > 5*24*time.Hour {
			return false
		}
	}

	p := 0.2
	switch e.WorkingStatus {
	case "Office":
		p = 0.85
	case "Remote":
		p = 0.03
	}
	core := d.Weekday() >= time.Tuesday && d.Weekday() <= time.Thursday
	if e.WorkingStatus == "Hybrid" && core {
		p = 0.6
	}
	if scenario == "drift" {
		p = math.Min(1, p*(0.5+progress))
	}
	return rng.Float64() < p
}

func arrival(rng *rand.Rand, cfg GeneratorConfig, d time.Time) time.Time {
	var minutes float64
	if cfg.Distribution == "weibull" {
		// Lateness after 07:30 with a long tail.
		minutes = 450 + weibullSample(rng, 1.5, 70)
	} else {
		minutes = 480 + rng.Float64()*120
	}
	if minutes > 20*60 {
		minutes = 20 * 60
	}
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, cfg.Location).Add(time.Duration(minutes * float64(time.Minute))).Truncate(time.Second)
}

func swipes(rng *rand.Rand, cfg GeneratorConfig, actor string, d time.Time) []badge.Event {
	first := arrival(rng, cfg, d)
	out := []badge.Event{{RawActor: actor, Timestamp: first, Door: pick(rng, doors), Kind: "Valid Access"}}
	// Lunch return.
	if rng.Float64() < 0.5 {
		back := first.Add(time.Duration(3*60+rng.IntN(120)) * time.Minute)
		out = append(out, badge.Event{RawActor: actor, Timestamp: back, Door: pick(rng, doors), Kind: "Valid Access"})
	}
	return out
}

func chaos(rng *rand.Rand, cfg GeneratorConfig, d time.Time) []badge.Event {
	var out []badge.Event
	if rng.Float64() < 0.7 {
		out = append(out, badge.Event{RawActor: "Cleaner", Timestamp: arrival(rng, cfg, d).Add(-3 * time.Hour), Door: "Back Door", Kind: "Valid Access"})
	}
	if rng.Float64() < 0.3 {
		out = append(out, badge.Event{RawActor: "Visitor 12", Timestamp: arrival(rng, cfg, d), Door: "Front Door", Kind: "Valid Access"})
	}
	return out
}

func weibullSample(rng *rand.Rand, k, lambda float64) float64 {
	u := rng.Float64()
	if u == 0 {
		u = 0.0001
	}
	// X = lambda * (-ln(1-u))^(1/k)
	return lambda * math.Pow(-math.Log(1.0-u), 1.0/k)
}

func dmy(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}

// Save writes the four source files into outDir.
func Save(outDir string, ds Dataset) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	header, rows := badge.Records(ds.Events)
	// Chaos duplicates a few swipes verbatim, as repeated exports do.
	if len(rows) > 10 && len(ds.BadRows) > 0 {
		rows = append(rows, rows[:3]...)
	}
	rows = append(rows, ds.BadRows...)
	if err := tabular.WriteFile(filepath.Join(outDir, BadgeFile), header, rows); err != nil {
		return err
	}

	rosterHeader := []string{"Employee #", "Last name, First name", "Hire Date", "Location", "Working Status", "Division", "Status", "Last Day"}
	historyHeader := []string{"Last name, First name", "Employment Status: Date", "Employment Status"}
	var rosterRows, historyRows [][]string
	for _, e := range ds.Employees {
		status := "Active"
		if !e.LastDay.IsZero() {
			status = "Inactive"
		}
		rosterRows = append(rosterRows, []string{strconv.Itoa(e.ID), e.Name(), dmy(e.HireDate), e.Location, e.WorkingStatus, e.Division, status, dmy(e.LastDay)})
		for _, h := range e.FullTime {
			historyRows = append(historyRows, []string{e.Name(), dmy(h.Effective), h.Label})
		}
	}
	if err := tabular.WriteFile(filepath.Join(outDir, RosterFile), rosterHeader, rosterRows); err != nil {
		return err
	}
	if err := tabular.WriteFile(filepath.Join(outDir, HistoryFile), historyHeader, historyRows); err != nil {
		return err
	}

	data, err := json.MarshalIndent(ds.Overrides, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outDir, OverridesFile), data, 0644)
}
