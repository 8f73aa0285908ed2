package stats

import "office-attendance/internal/roster"

// Unassigned labels employees whose profile carries no division.
const Unassigned = "Unassigned"

// DivisionBucket is the core-day average for one division.
type DivisionBucket struct {
	Division   string  `json:"division"`
	Days       int     `json:"coreDays"`
	Eligible   float64 `json:"eligibleCount"`
	Present    float64 `json:"presentCount"`
	Percentage float64 `json:"percentage"`
}

// Division averages, per division, the eligible and present counts over the
// core office days in w. Denominators come from the full pool.
func (s *Snapshot) Division(w Window, segTag string) ([]DivisionBucket, error) {
	si, _, err := s.Segment(segTag)
	if err != nil {
		return nil, err
	}
	if w, err = s.Resolve(w); err != nil {
		return nil, err
	}

	type acc struct{ eligible, present float64 }
	totals := make(map[string]*acc)
	core := s.officeDates(w, true)
	for _, di := range core {
		for _, id := range s.eligible[si][di] {
			e, _ := s.pool.Get(id)
			div := divisionOf(e)
			a, ok := totals[div]
			if !ok {
				a = &acc{}
				totals[div] = a
			}
			a.eligible++
			if s.visits(id, di) > 0 {
				a.present++
			}
		}
	}

	out := make([]DivisionBucket, 0, len(totals))
	if len(core) == 0 {
		return out, nil
	}
	n := float64(len(core))
	for _, div := range s.divisions() {
		a, ok := totals[div]
		if !ok {
			continue
		}
		out = append(out, DivisionBucket{
			Division:   div,
			Days:       len(core),
			Eligible:   Round1(a.eligible / n),
			Present:    Round1(a.present / n),
			Percentage: Percentage(a.present/n, a.eligible/n),
		})
	}
	return out, nil
}

// BreakdownRow is the average daily number of present employees of a
// division, split by how they relate to the segment.
type BreakdownRow struct {
	Division string `json:"division"`
	// InSegment were eligible for the segment.
	InSegment float64 `json:"inSegment"`
	// SameStatusElsewhere share the segment's working status at another location.
	SameStatusElsewhere float64 `json:"sameStatusElsewhere"`
	// FullTimeOtherStatus are full-time with a different working status.
	FullTimeOtherStatus float64 `json:"fullTimeOtherStatus"`
	Other               float64 `json:"other"`
}

// DivisionBreakdown averages present employees per office day in w by
// division and category. Present employees without a profile are not
// attributed to any division.
func (s *Snapshot) DivisionBreakdown(w Window, segTag string) ([]BreakdownRow, error) {
	si, seg, err := s.Segment(segTag)
	if err != nil {
		return nil, err
	}
	if w, err = s.Resolve(w); err != nil {
		return nil, err
	}

	rows := make(map[string]*BreakdownRow)
	days := s.officeDates(w, false)
	dates := s.facts.Dates()
	for _, di := range days {
		date := dates[di]
		for ei, id := range s.facts.Employees() {
			if s.facts.Visits(ei, di) == 0 {
				continue
			}
			e, ok := s.pool.Get(id)
			if !ok {
				continue
			}
			div := divisionOf(e)
			r, ok := rows[div]
			if !ok {
				r = &BreakdownRow{Division: div}
				rows[div] = r
			}
			switch {
			case s.IsEligibleAt(si, di, id):
				r.InSegment++
			case seg.WorkingStatus != "" && sameValue(e.WorkingStatus, seg.WorkingStatus) &&
				seg.Location != "" && !sameValue(e.Location, seg.Location):
				r.SameStatusElsewhere++
			case seg.WorkingStatus != "" && !sameValue(e.WorkingStatus, seg.WorkingStatus) && e.FullTimeAsOf(date):
				r.FullTimeOtherStatus++
			default:
				r.Other++
			}
		}
	}

	out := make([]BreakdownRow, 0, len(rows))
	if len(days) == 0 {
		return out, nil
	}
	n := float64(len(days))
	for _, div := range s.divisions() {
		r, ok := rows[div]
		if !ok {
			continue
		}
		r.InSegment = Round1(r.InSegment / n)
		r.SameStatusElsewhere = Round1(r.SameStatusElsewhere / n)
		r.FullTimeOtherStatus = Round1(r.FullTimeOtherStatus / n)
		r.Other = Round1(r.Other / n)
		out = append(out, *r)
	}
	return out, nil
}

func (s *Snapshot) divisions() []string {
	divs := s.pool.Divisions()
	for _, d := range divs {
		if d == Unassigned {
			return divs
		}
	}
	return append(divs, Unassigned)
}

func divisionOf(e *roster.Employee) string {
	if e == nil || e.Division == "" {
		return Unassigned
	}
	return e.Division
}
