package stats

import "sort"

// EmployeeSummary aggregates one employee's attendance over a window.
type EmployeeSummary struct {
	EmployeeID int    `json:"employeeId"`
	Name       string `json:"name"`
	Location   string `json:"location,omitempty"`
	Status     string `json:"workingStatus,omitempty"`
	Division   string `json:"division,omitempty"`
	Profile    bool   `json:"hasProfile"`

	DaysAttended     int `json:"daysAttended"`
	CoreDaysAttended int `json:"coreDaysAttended"`
	// EligibleCoreDays counts core office days on which the employee was
	// eligible for the segment; EligibleCoreDaysAttended those with a swipe.
	EligibleCoreDays         int      `json:"eligibleCoreDays"`
	EligibleCoreDaysAttended int      `json:"eligibleCoreDaysAttended"`
	AttendanceRate           *float64 `json:"attendanceRate,omitempty"`

	Arrival ArrivalStats `json:"arrival"`
}

// EmployeeSummaries summarises every employee seen in the badge log over w.
// Arrival statistics use first arrivals on core days only.
func (s *Snapshot) EmployeeSummaries(w Window, segTag string) ([]EmployeeSummary, error) {
	si, _, err := s.Segment(segTag)
	if err != nil {
		return nil, err
	}
	if w, err = s.Resolve(w); err != nil {
		return nil, err
	}

	dates := s.facts.Dates()
	office := s.officeDates(w, false)
	ids := s.facts.Employees()
	out := make([]EmployeeSummary, len(ids))

	for ei, id := range ids {
		sum := EmployeeSummary{EmployeeID: id, Name: s.facts.Name(ei)}
		if e, ok := s.pool.Get(id); ok {
			sum.Profile = true
			sum.Location = e.Location
			sum.Status = e.WorkingStatus
			sum.Division = e.Division
		}

		var minutes []float64
		for _, di := range office {
			present := s.facts.Visits(ei, di) > 0
			if present {
				sum.DaysAttended++
			}
			if !s.IsCoreDay(dates[di]) {
				continue
			}
			if present {
				sum.CoreDaysAttended++
				if arr, ok := s.facts.FirstArrival(ei, di); ok {
					minutes = append(minutes, arr.Minutes())
				}
			}
			if s.IsEligibleAt(si, di, id) {
				sum.EligibleCoreDays++
				if present {
					sum.EligibleCoreDaysAttended++
				}
			}
		}
		if sum.EligibleCoreDays > 0 {
			rate := Percentage(float64(sum.EligibleCoreDaysAttended), float64(sum.EligibleCoreDays))
			sum.AttendanceRate = &rate
		}
		sum.Arrival = CalculateArrivalStats(minutes, s.outlier)
		out[ei] = sum
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].EmployeeID < out[j].EmployeeID
	})
	return out, nil
}

// QualityReport lists anomalies visible only once facts and profiles meet.
type QualityReport struct {
	DateRange Window `json:"dateRange"`
	Employees int    `json:"employeesInLog"`
	Facts     int    `json:"facts"`
	// UnknownEmployees appear in the badge log but not in the pool.
	UnknownEmployees    []int `json:"unknownEmployees"`
	UnknownEmployeeDays int   `json:"unknownEmployeePresentDays"`
	// PresentOutsideEmployment counts present days before hire or after termination.
	PresentOutsideEmployment int `json:"presentOutsideEmployment"`
	// EligibleWithoutHistory counts employees eligible on some date whose
	// full-time flag came from the missing-history policy.
	EligibleWithoutHistory int `json:"eligibleWithoutHistory"`
}

// Quality scans the snapshot for data anomalies.
func (s *Snapshot) Quality() QualityReport {
	q := QualityReport{
		DateRange:        s.Range(),
		Employees:        len(s.facts.Employees()),
		Facts:            s.facts.Len(),
		UnknownEmployees: []int{},
	}
	dates := s.facts.Dates()
	for ei, id := range s.facts.Employees() {
		e, ok := s.pool.Get(id)
		if !ok {
			q.UnknownEmployees = append(q.UnknownEmployees, id)
		}
		for di := range dates {
			if s.facts.Visits(ei, di) == 0 {
				continue
			}
			if !ok {
				q.UnknownEmployeeDays++
			} else if !e.EmployedOn(dates[di]) && !e.HireDate.IsZero() {
				q.PresentOutsideEmployment++
			}
		}
	}

	flagged := make(map[int]bool)
	for si := range s.segments {
		if s.segments[si].FullTime == nil {
			continue
		}
		for di := range dates {
			for _, id := range s.eligible[si][di] {
				if e, _ := s.pool.Get(id); e != nil && len(e.History) == 0 && e.FullTimeOverride == nil {
					flagged[id] = true
				}
			}
		}
	}
	q.EligibleWithoutHistory = len(flagged)
	return q
}
