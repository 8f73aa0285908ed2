package stats

import "time"

// WeeklyBucket is the core-day average for one week.
type WeeklyBucket struct {
	WeekStart  time.Time `json:"weekStart"`
	Label      string    `json:"label"`
	Days       int       `json:"coreDays"`
	Eligible   float64   `json:"eligibleCount"`
	Present    float64   `json:"presentCount"`
	Percentage float64   `json:"percentage"`
}

// Weekly averages eligible and present counts over the core office days of
// each week (weeks start on Monday) before forming the percentage, so weeks
// with fewer core days are not penalised. Weeks without core office days in
// w are omitted.
func (s *Snapshot) Weekly(w Window, segTag string) ([]WeeklyBucket, error) {
	si, _, err := s.Segment(segTag)
	if err != nil {
		return nil, err
	}
	if w, err = s.Resolve(w); err != nil {
		return nil, err
	}

	type acc struct {
		days              int
		eligible, present float64
	}
	weeks := make(map[time.Time]*acc)
	dates := s.facts.Dates()
	for _, di := range s.officeDates(w, true) {
		week := WeekStart(dates[di])
		a, ok := weeks[week]
		if !ok {
			a = &acc{}
			weeks[week] = a
		}
		a.days++
		a.eligible += float64(len(s.eligible[si][di]))
		a.present += float64(s.presentEligible[si][di])
	}

	out := make([]WeeklyBucket, 0, len(weeks))
	for _, week := range w.Subdivide("week") {
		a, ok := weeks[week]
		if !ok {
			continue
		}
		n := float64(a.days)
		out = append(out, WeeklyBucket{
			WeekStart:  week,
			Label:      BucketLabel(week, "week"),
			Days:       a.days,
			Eligible:   Round1(a.eligible / n),
			Present:    Round1(a.present / n),
			Percentage: Percentage(a.present/n, a.eligible/n),
		})
	}
	return out, nil
}
