// Package roster builds the session-wide employee pool from the HR roster,
// the employment-status history and the operational override table.
package roster

import (
	"sort"
	"strings"
	"time"
)

// StatusEntry is one point in an employee's employment-status history.
type StatusEntry struct {
	Effective time.Time `json:"effective"`
	Label     string    `json:"label"`
}

// Employee is an immutable employee profile for the duration of a session.
// All dates are UTC midnight values.
type Employee struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Location      string `json:"location"`
	WorkingStatus string `json:"workingStatus"`
	Division      string `json:"division,omitempty"`
	Active        bool   `json:"active"`

	// HireDate is the combined hire date (earliest service date).
	HireDate time.Time `json:"hireDate"`
	// TerminationDate is zero while employed.
	TerminationDate time.Time `json:"terminationDate,omitempty"`
	// LastDayWorked closes the employment window: the termination date for
	// leavers, the latest badge date for active employees.
	LastDayWorked time.Time `json:"lastDayWorked,omitempty"`

	History []StatusEntry `json:"history,omitempty"`

	// FullTimeOverride, when set, wins over the status history.
	FullTimeOverride *bool `json:"fullTimeOverride,omitempty"`
	// FullTimeWithoutHistory applies when History is empty.
	FullTimeWithoutHistory bool `json:"fullTimeWithoutHistory,omitempty"`

	// FromOverride marks profiles backfilled from the override table.
	FromOverride bool `json:"fromOverride,omitempty"`
}

// FullTimeAsOf reports whether the employee was full-time on date.
func (e *Employee) FullTimeAsOf(date time.Time) bool {
	if e.FullTimeOverride != nil {
		return *e.FullTimeOverride
	}
	if len(e.History) == 0 {
		return e.FullTimeWithoutHistory
	}
	// History is sorted by Effective; find the first entry after date.
	i := sort.Search(len(e.History), func(i int) bool {
		return e.History[i].Effective.After(date)
	})
	if i == 0 {
		return false
	}
	return IsFullTimeLabel(e.History[i-1].Label)
}

// StatusAsOf returns the status label in force on date, or "".
func (e *Employee) StatusAsOf(date time.Time) string {
	i := sort.Search(len(e.History), func(i int) bool {
		return e.History[i].Effective.After(date)
	})
	if i == 0 {
		return ""
	}
	return e.History[i-1].Label
}

// EmploymentEnd returns the last day of the employment window: LastDayWorked
// once the pool is built, else the termination date. Zero means open.
func (e *Employee) EmploymentEnd() time.Time {
	if !e.LastDayWorked.IsZero() {
		return e.LastDayWorked
	}
	return e.TerminationDate
}

// EmployedOn reports whether date lies inside [HireDate, EmploymentEnd].
func (e *Employee) EmployedOn(date time.Time) bool {
	if e.HireDate.IsZero() || date.Before(e.HireDate) {
		return false
	}
	end := e.EmploymentEnd()
	return end.IsZero() || !date.After(end)
}

// HasUnknownAttributes reports whether eligibility-relevant fields are missing.
func (e *Employee) HasUnknownAttributes() bool {
	return e.HireDate.IsZero() || e.Location == "" || e.WorkingStatus == ""
}

// IsFullTimeLabel matches "Full-Time", "Full Time", "full_time" and similar.
func IsFullTimeLabel(label string) bool {
	key := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(label)))
	return key == "fulltime"
}

// NameKey normalises a display name for joining feeds keyed by name.
func NameKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// Pool is the complete, de-duplicated set of employee profiles.
type Pool struct {
	employees []*Employee
	byID      map[int]*Employee
}

// NewPool indexes employees by id. Later duplicates replace earlier ones.
func NewPool(employees []*Employee) *Pool {
	p := &Pool{byID: make(map[int]*Employee, len(employees))}
	for _, e := range employees {
		p.byID[e.ID] = e
	}
	p.employees = make([]*Employee, 0, len(p.byID))
	for _, e := range p.byID {
		p.employees = append(p.employees, e)
	}
	sort.Slice(p.employees, func(i, j int) bool { return p.employees[i].ID < p.employees[j].ID })
	return p
}

// Get returns the profile for id.
func (p *Pool) Get(id int) (*Employee, bool) {
	if p == nil {
		return nil, false
	}
	e, ok := p.byID[id]
	return e, ok
}

// All returns the profiles ordered by id. Callers must not modify them.
func (p *Pool) All() []*Employee {
	if p == nil {
		return nil
	}
	return p.employees
}

// Len returns the number of profiles.
func (p *Pool) Len() int {
	if p == nil {
		return 0
	}
	return len(p.employees)
}

// FindByName returns the profiles whose normalised name equals name.
func (p *Pool) FindByName(name string) []*Employee {
	key := NameKey(name)
	var out []*Employee
	for _, e := range p.All() {
		if NameKey(e.Name) == key {
			out = append(out, e)
		}
	}
	return out
}

// Divisions returns the sorted distinct divisions in the pool.
func (p *Pool) Divisions() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range p.All() {
		if e.Division == "" || seen[e.Division] {
			continue
		}
		seen[e.Division] = true
		out = append(out, e.Division)
	}
	sort.Strings(out)
	return out
}
