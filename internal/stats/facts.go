package stats

import (
	"sort"
	"time"

	"office-attendance/internal/badge"
	"office-attendance/internal/roster"
)

const noArrival TimeOfDay = -1

// FactTable is the complete employee x date presence table: one cell for
// every employee seen in the badge log and every calendar date between the
// log's first and last swipe.
type FactTable struct {
	employees []int
	names     []string
	dates     []time.Time
	observed  []bool

	visits []int
	first  []TimeOfDay

	empIndex  map[int]int
	dateIndex map[time.Time]int
}

// BuildFacts groups resolved events by (employee, date) in a single pass and
// expands the groups into the full table. Employees without a roster profile
// keep their facts.
func BuildFacts(events []badge.Event, pool *roster.Pool) *FactTable {
	t := &FactTable{
		empIndex:  make(map[int]int),
		dateIndex: make(map[time.Time]int),
	}
	if len(events) == 0 {
		return t
	}

	type key struct {
		id   int
		date time.Time
	}
	type group struct {
		visits int
		first  time.Time
	}

	groups := make(map[key]*group)
	actors := make(map[int]string)
	var minDate, maxDate time.Time
	observed := make(map[time.Time]bool)

	for _, e := range events {
		d := e.Date()
		k := key{e.EmployeeID, d}
		g, ok := groups[k]
		if !ok {
			g = &group{first: e.Timestamp}
			groups[k] = g
		}
		g.visits++
		if e.Timestamp.Before(g.first) {
			g.first = e.Timestamp
		}
		if _, ok := actors[e.EmployeeID]; !ok {
			actors[e.EmployeeID] = e.RawActor
		}
		observed[d] = true
		if minDate.IsZero() || d.Before(minDate) {
			minDate = d
		}
		if d.After(maxDate) {
			maxDate = d
		}
	}

	for id := range actors {
		t.employees = append(t.employees, id)
	}
	sort.Ints(t.employees)
	t.names = make([]string, len(t.employees))
	for i, id := range t.employees {
		t.empIndex[id] = i
		if e, ok := pool.Get(id); ok && e.Name != "" {
			t.names[i] = e.Name
		} else {
			t.names[i] = badge.DisplayName(actors[id])
		}
	}

	for d := minDate; !d.After(maxDate); d = d.AddDate(0, 0, 1) {
		t.dateIndex[d] = len(t.dates)
		t.dates = append(t.dates, d)
		t.observed = append(t.observed, observed[d])
	}

	n := len(t.employees) * len(t.dates)
	t.visits = make([]int, n)
	t.first = make([]TimeOfDay, n)
	for i := range t.first {
		t.first[i] = noArrival
	}
	for k, g := range groups {
		i := t.cell(t.empIndex[k.id], t.dateIndex[k.date])
		t.visits[i] = g.visits
		t.first[i] = TimeOfDayOf(g.first)
	}

	return t
}

func (t *FactTable) cell(ei, di int) int {
	return ei*len(t.dates) + di
}

// Len returns the number of facts.
func (t *FactTable) Len() int {
	return len(t.employees) * len(t.dates)
}

// Employees returns the employee ids in the table, ascending.
func (t *FactTable) Employees() []int { return t.employees }

// Dates returns every calendar date in the table, ascending.
func (t *FactTable) Dates() []time.Time { return t.dates }

// Observed reports whether any swipe was recorded on the date at index di.
func (t *FactTable) Observed(di int) bool { return t.observed[di] }

// Range returns the window spanned by the table.
func (t *FactTable) Range() Window {
	if len(t.dates) == 0 {
		return Window{}
	}
	return Window{Start: t.dates[0], End: t.dates[len(t.dates)-1]}
}

// Name returns the display name for the employee at index ei.
func (t *FactTable) Name(ei int) string { return t.names[ei] }

// EmployeeIndex returns the row index of an employee id.
func (t *FactTable) EmployeeIndex(id int) (int, bool) {
	i, ok := t.empIndex[id]
	return i, ok
}

// DateIndex returns the column index of a calendar date.
func (t *FactTable) DateIndex(date time.Time) (int, bool) {
	i, ok := t.dateIndex[Day(date)]
	return i, ok
}

// Visits returns the swipe count for (employee index, date index).
func (t *FactTable) Visits(ei, di int) int {
	return t.visits[t.cell(ei, di)]
}

// FirstArrival returns the first swipe time of the day, if any.
func (t *FactTable) FirstArrival(ei, di int) (TimeOfDay, bool) {
	f := t.first[t.cell(ei, di)]
	return f, f != noArrival
}

// Fact is one materialised EmployeeDayFact.
type Fact struct {
	EmployeeID       int        `json:"employeeId"`
	Name             string     `json:"name"`
	Date             time.Time  `json:"date"`
	Present          bool       `json:"present"`
	Visits           int        `json:"visits"`
	FirstArrival     *TimeOfDay `json:"firstArrival,omitempty"`
	EligibleSegments []string   `json:"eligibleSegments"`
}

// At materialises the fact at (ei, di) without segment membership.
func (t *FactTable) At(ei, di int) Fact {
	f := Fact{
		EmployeeID:       t.employees[ei],
		Name:             t.names[ei],
		Date:             t.dates[di],
		Visits:           t.Visits(ei, di),
		EligibleSegments: []string{},
	}
	f.Present = f.Visits > 0
	if arr, ok := t.FirstArrival(ei, di); ok {
		f.FirstArrival = &arr
	}
	return f
}
