package stats

import "time"

// DailyBucket holds one office day's counts for a segment.
type DailyBucket struct {
	Date         time.Time `json:"date"`
	Weekday      string    `json:"weekday"`
	Eligible     int       `json:"eligibleCount"`
	Present      int       `json:"presentCount"`
	OtherPresent int       `json:"otherPresentCount"`
	Percentage   float64   `json:"percentage"`
}

// Daily returns one bucket per office day in w. Eligible counts come from the
// full pool; present counts only eligible employees with a swipe.
func (s *Snapshot) Daily(w Window, segTag string) ([]DailyBucket, error) {
	si, _, err := s.Segment(segTag)
	if err != nil {
		return nil, err
	}
	if w, err = s.Resolve(w); err != nil {
		return nil, err
	}

	dates := s.facts.Dates()
	out := make([]DailyBucket, 0)
	for _, di := range s.officeDates(w, false) {
		eligible := len(s.eligible[si][di])
		present := s.presentEligible[si][di]
		out = append(out, DailyBucket{
			Date:         dates[di],
			Weekday:      dates[di].Weekday().String(),
			Eligible:     eligible,
			Present:      present,
			OtherPresent: s.presentAll[di] - present,
			Percentage:   Percentage(float64(present), float64(eligible)),
		})
	}
	return out, nil
}

// WeekdayBucket averages office days falling on the same weekday.
type WeekdayBucket struct {
	Weekday      string  `json:"weekday"`
	Core         bool    `json:"core"`
	Days         int     `json:"days"`
	Eligible     float64 `json:"eligibleCount"`
	Present      float64 `json:"presentCount"`
	OtherPresent float64 `json:"otherPresentCount"`
	Percentage   float64 `json:"percentage"`
}

// Weekday averages daily eligible, present and other-present counts by day of
// week, Monday first. Weekdays without office days are omitted.
func (s *Snapshot) Weekday(w Window, segTag string) ([]WeekdayBucket, error) {
	daily, err := s.Daily(w, segTag)
	if err != nil {
		return nil, err
	}

	type acc struct {
		days                     int
		eligible, present, other float64
	}
	var byDay [7]acc
	for _, b := range daily {
		a := &byDay[b.Date.Weekday()]
		a.days++
		a.eligible += float64(b.Eligible)
		a.present += float64(b.Present)
		a.other += float64(b.OtherPresent)
	}

	out := make([]WeekdayBucket, 0, 7)
	for i := 1; i <= 7; i++ {
		wd := time.Weekday(i % 7)
		a := byDay[wd]
		if a.days == 0 {
			continue
		}
		n := float64(a.days)
		out = append(out, WeekdayBucket{
			Weekday:      wd.String(),
			Core:         s.core[wd],
			Days:         a.days,
			Eligible:     Round1(a.eligible / n),
			Present:      Round1(a.present / n),
			OtherPresent: Round1(a.other / n),
			Percentage:   Percentage(a.present/n, a.eligible/n),
		})
	}
	return out, nil
}

// PeriodSummary is the headline for a window: core-day averages plus the
// weekday breakdown.
type PeriodSummary struct {
	Window            Window          `json:"window"`
	Segment           string          `json:"segment"`
	OfficeDays        int             `json:"officeDays"`
	CoreDays          int             `json:"coreDays"`
	Eligible          float64         `json:"eligibleCount"`
	Present           float64         `json:"presentCount"`
	Percentage        float64         `json:"percentage"`
	DistinctEmployees int             `json:"distinctEmployeesPresent"`
	Weekdays          []WeekdayBucket `json:"weekdays"`
}

// Period summarises w for a segment.
func (s *Snapshot) Period(w Window, segTag string) (PeriodSummary, error) {
	si, seg, err := s.Segment(segTag)
	if err != nil {
		return PeriodSummary{}, err
	}
	if w, err = s.Resolve(w); err != nil {
		return PeriodSummary{}, err
	}
	weekdays, err := s.Weekday(w, segTag)
	if err != nil {
		return PeriodSummary{}, err
	}

	sum := PeriodSummary{
		Window:     w,
		Segment:    seg.Tag(),
		OfficeDays: len(s.officeDates(w, false)),
		Weekdays:   weekdays,
	}

	core := s.officeDates(w, true)
	sum.CoreDays = len(core)
	var eligible, present float64
	for _, di := range core {
		eligible += float64(len(s.eligible[si][di]))
		present += float64(s.presentEligible[si][di])
	}
	if n := float64(len(core)); n > 0 {
		sum.Eligible = Round1(eligible / n)
		sum.Present = Round1(present / n)
		sum.Percentage = Percentage(present/n, eligible/n)
	}

	seen := make(map[int]bool)
	for _, di := range s.officeDates(w, false) {
		for ei, id := range s.facts.Employees() {
			if s.facts.Visits(ei, di) > 0 {
				seen[id] = true
			}
		}
	}
	sum.DistinctEmployees = len(seen)
	return sum, nil
}
