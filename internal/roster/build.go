package roster

import (
	"sort"
	"time"

	"github.com/rs/zerolog/log"
)

// BuildOptions controls how the pool is derived.
type BuildOptions struct {
	// LastBadgeDate closes the employment window of active employees.
	LastBadgeDate time.Time
	// AssumeFullTimeWithoutHistory decides the full-time flag of employees
	// with no status-history entry at all.
	AssumeFullTimeWithoutHistory bool
}

// BuildReport summarises the join of roster, history and overrides.
type BuildReport struct {
	RosterRows                 int `json:"rosterRows"`
	Employees                  int `json:"employees"`
	DuplicateIDs               int `json:"duplicateIds"`
	HistoryRows                int `json:"historyRows"`
	HistoryMatched             int `json:"historyMatched"`
	HistoryUnmatched           int `json:"historyUnmatched"`
	HistoryAmbiguous           int `json:"historyAmbiguous"`
	HistorySharedName          int `json:"historySharedName"`
	WithoutHistory             int `json:"withoutHistory"`
	InactiveWithoutTermination int `json:"inactiveWithoutTermination"`
	UnknownAttributes          int `json:"unknownAttributes"`
	OverridesApplied           int `json:"overridesApplied"`
	OverridesCreated           int `json:"overridesCreated"`
	OverridesUnmatched         int `json:"overridesUnmatched"`
}

// Build derives the full employee pool.
func Build(rows []Row, history []HistoryRow, overrides *Overrides, opts BuildOptions) (*Pool, BuildReport) {
	rep := BuildReport{RosterRows: len(rows), HistoryRows: len(history)}

	// 1. De-duplicate roster ids: prefer active, then the later hire date.
	best := make(map[int]Row, len(rows))
	for _, r := range rows {
		cur, exists := best[r.ID]
		if !exists {
			best[r.ID] = r
			continue
		}
		rep.DuplicateIDs++
		if (r.Active && !cur.Active) || (r.Active == cur.Active && r.HireDate.After(cur.HireDate)) {
			best[r.ID] = r
		}
	}

	byID := make(map[int]*Employee, len(best))
	for _, r := range best {
		byID[r.ID] = fromRow(r)
	}

	// 2. Join history by name through a name -> id lookup built from the roster.
	nameToIDs := make(map[string][]int)
	for id, e := range byID {
		key := NameKey(e.Name)
		if key == "" {
			continue
		}
		nameToIDs[key] = append(nameToIDs[key], id)
	}
	for _, h := range history {
		ids := nameToIDs[NameKey(h.Name)]
		if len(ids) == 0 {
			rep.HistoryUnmatched++
			continue
		}
		e, ok := nameHolder(ids, byID)
		if !ok {
			rep.HistoryAmbiguous++
			continue
		}
		if len(ids) > 1 {
			rep.HistorySharedName++
		}
		e.History = append(e.History, StatusEntry{Effective: h.Effective, Label: h.Label})
		rep.HistoryMatched++
	}

	// 3. Operational overrides, applied after the generic join.
	if overrides != nil {
		for _, ov := range overrides.Employees {
			targets := matchOverride(ov, byID, nameToIDs)
			if len(targets) == 0 {
				if ov.Create && ov.EmployeeID > 0 {
					e := &Employee{ID: ov.EmployeeID, Active: true, FromOverride: true}
					ov.apply(e)
					byID[e.ID] = e
					rep.OverridesCreated++
					continue
				}
				rep.OverridesUnmatched++
				continue
			}
			for _, e := range targets {
				ov.apply(e)
			}
			rep.OverridesApplied++
		}
	}

	// 4. Derived fields.
	employees := make([]*Employee, 0, len(byID))
	for _, e := range byID {
		sort.SliceStable(e.History, func(i, j int) bool {
			return e.History[i].Effective.Before(e.History[j].Effective)
		})
		if len(e.History) == 0 {
			rep.WithoutHistory++
			e.FullTimeWithoutHistory = opts.AssumeFullTimeWithoutHistory
		}
		if !e.Active && e.TerminationDate.IsZero() {
			rep.InactiveWithoutTermination++
		}
		if e.HasUnknownAttributes() {
			rep.UnknownAttributes++
		}
		e.LastDayWorked = lastDayWorked(e, opts.LastBadgeDate)
		employees = append(employees, e)
	}

	pool := NewPool(employees)
	rep.Employees = pool.Len()

	if rep.DuplicateIDs > 0 || rep.HistoryUnmatched > 0 || rep.HistoryAmbiguous > 0 || rep.HistorySharedName > 0 || rep.OverridesUnmatched > 0 {
		log.Warn().
			Int("duplicateIds", rep.DuplicateIDs).
			Int("historyUnmatched", rep.HistoryUnmatched).
			Int("historyAmbiguous", rep.HistoryAmbiguous).
			Int("historySharedName", rep.HistorySharedName).
			Int("overridesUnmatched", rep.OverridesUnmatched).
			Msg("Roster join issues")
	}
	if rep.InactiveWithoutTermination > 0 {
		log.Warn().Int("count", rep.InactiveWithoutTermination).Msg("Inactive employees without a termination date are treated as employed")
	}
	log.Info().
		Int("employees", rep.Employees).
		Int("historyMatched", rep.HistoryMatched).
		Int("withoutHistory", rep.WithoutHistory).
		Msg("Employee pool built")

	return pool, rep
}

func fromRow(r Row) *Employee {
	hire := r.HireDate
	if !r.OriginalHireDate.IsZero() && (hire.IsZero() || r.OriginalHireDate.Before(hire)) {
		hire = r.OriginalHireDate
	}
	term := r.LastDay
	if term.IsZero() {
		term = r.ResignationDate
	}
	return &Employee{
		ID:              r.ID,
		Name:            r.Name,
		Location:        r.Location,
		WorkingStatus:   r.WorkingStatus,
		Division:        r.Division,
		Active:          r.Active,
		HireDate:        hire,
		TerminationDate: term,
	}
}

// nameHolder picks which of the profiles sharing a name receives name-keyed
// history, using the duplicate-id rule: active first, then the later hire.
// A tie on both leaves the name ambiguous.
func nameHolder(ids []int, byID map[int]*Employee) (*Employee, bool) {
	if len(ids) == 1 {
		return byID[ids[0]], true
	}
	var best *Employee
	tied := false
	for _, id := range ids {
		e := byID[id]
		switch {
		case best == nil || (e.Active && !best.Active) || (e.Active == best.Active && e.HireDate.After(best.HireDate)):
			best, tied = e, false
		case e.Active == best.Active && e.HireDate.Equal(best.HireDate):
			tied = true
		}
	}
	return best, !tied
}

func matchOverride(ov EmployeeOverride, byID map[int]*Employee, nameToIDs map[string][]int) []*Employee {
	if ov.EmployeeID > 0 {
		if e, ok := byID[ov.EmployeeID]; ok {
			return []*Employee{e}
		}
		return nil
	}
	ids := nameToIDs[NameKey(ov.Name)]
	if len(ids) != 1 {
		return nil
	}
	return []*Employee{byID[ids[0]]}
}

func lastDayWorked(e *Employee, lastBadge time.Time) time.Time {
	if !e.Active && !e.TerminationDate.IsZero() {
		return e.TerminationDate
	}
	if !e.TerminationDate.IsZero() && (lastBadge.IsZero() || e.TerminationDate.Before(lastBadge)) {
		return e.TerminationDate
	}
	return lastBadge
}
