package stats

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"time"

	"office-attendance/internal/roster"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ErrUnknownSegment is returned when a query names a segment the snapshot
// was not built for.
var ErrUnknownSegment = errors.New("unknown segment")

// Options configures a Snapshot.
type Options struct {
	// Segments to precompute; the first is the default.
	Segments []Segment
	// CoreDays drive the weekly, division and per-employee metrics.
	CoreDays []time.Weekday
	// OutlierMinutes is the trimmed-mean exclusion threshold.
	OutlierMinutes float64
	// Workers bounds the parallel eligibility pass.
	Workers int
}

// Snapshot is the session-wide, read-only view every rollup reads from: the
// fact table plus, for each segment and date, the employees of the full pool
// eligible on that date. It is fully built before it is returned.
type Snapshot struct {
	pool  *roster.Pool
	facts *FactTable

	segments []Segment
	segIndex map[string]int
	coreDays []time.Weekday
	core     [7]bool
	outlier  float64

	// eligible[s][d] lists pool ids eligible for segment s on date d, ascending.
	eligible [][][]int
	// presentEligible[s][d] counts eligible ids with at least one visit.
	presentEligible [][]int
	// presentAll[d] counts employees with at least one visit.
	presentAll []int
}

// NewSnapshot computes the eligibility masks against the full pool. Dates are
// processed in parallel; each worker writes only its own date slots.
func NewSnapshot(ctx context.Context, pool *roster.Pool, facts *FactTable, opts Options) (*Snapshot, error) {
	if len(opts.Segments) == 0 {
		return nil, fmt.Errorf("%w: no segments configured", ErrUnknownSegment)
	}
	workers := opts.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	s := &Snapshot{
		pool:     pool,
		facts:    facts,
		segments: opts.Segments,
		segIndex: make(map[string]int, len(opts.Segments)),
		coreDays: opts.CoreDays,
		outlier:  opts.OutlierMinutes,
	}
	for i, seg := range opts.Segments {
		if _, dup := s.segIndex[seg.Tag()]; dup {
			return nil, fmt.Errorf("duplicate segment %q", seg.Tag())
		}
		s.segIndex[seg.Tag()] = i
	}
	for _, d := range opts.CoreDays {
		s.core[d] = true
	}

	dates := facts.Dates()
	s.eligible = make([][][]int, len(s.segments))
	s.presentEligible = make([][]int, len(s.segments))
	for i := range s.segments {
		s.eligible[i] = make([][]int, len(dates))
		s.presentEligible[i] = make([]int, len(dates))
	}
	s.presentAll = make([]int, len(dates))

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for di := range dates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s.fillDate(di)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Debug().
		Int("employees", pool.Len()).
		Int("dates", len(dates)).
		Int("segments", len(s.segments)).
		Dur("elapsed", time.Since(start)).
		Msg("Eligibility snapshot built")
	return s, nil
}

func (s *Snapshot) fillDate(di int) {
	date := s.facts.Dates()[di]
	for si, seg := range s.segments {
		var ids []int
		present := 0
		for _, e := range s.pool.All() {
			if !IsEligible(e, date, seg) {
				continue
			}
			ids = append(ids, e.ID)
			if s.visits(e.ID, di) > 0 {
				present++
			}
		}
		s.eligible[si][di] = ids
		s.presentEligible[si][di] = present
	}
	for ei := range s.facts.Employees() {
		if s.facts.Visits(ei, di) > 0 {
			s.presentAll[di]++
		}
	}
}

func (s *Snapshot) visits(id, di int) int {
	ei, ok := s.facts.EmployeeIndex(id)
	if !ok {
		return 0
	}
	return s.facts.Visits(ei, di)
}

// Pool returns the full employee pool.
func (s *Snapshot) Pool() *roster.Pool { return s.pool }

// Facts returns the underlying fact table.
func (s *Snapshot) Facts() *FactTable { return s.facts }

// Segments returns the configured segments; the first is the default.
func (s *Snapshot) Segments() []Segment { return s.segments }

// CoreDays returns the configured core weekdays.
func (s *Snapshot) CoreDays() []time.Weekday { return s.coreDays }

// Range returns the calendar range covered by the badge data.
func (s *Snapshot) Range() Window { return s.facts.Range() }

// IsCoreDay reports whether d falls on a configured core weekday.
func (s *Snapshot) IsCoreDay(d time.Time) bool { return s.core[d.Weekday()] }

// Segment resolves a segment tag; "" selects the default segment.
func (s *Snapshot) Segment(tag string) (int, Segment, error) {
	if tag == "" {
		return 0, s.segments[0], nil
	}
	i, ok := s.segIndex[tag]
	if !ok {
		return 0, Segment{}, fmt.Errorf("%w: %q", ErrUnknownSegment, tag)
	}
	return i, s.segments[i], nil
}

// EligibleIDs returns the pool ids eligible for segment si on date index di.
func (s *Snapshot) EligibleIDs(si, di int) []int {
	return s.eligible[si][di]
}

// IsEligibleAt reports membership of id in the precomputed mask.
func (s *Snapshot) IsEligibleAt(si, di, id int) bool {
	ids := s.eligible[si][di]
	i := sort.SearchInts(ids, id)
	return i < len(ids) && ids[i] == id
}

// Resolve validates w and fills open bounds from the data range.
func (s *Snapshot) Resolve(w Window) (Window, error) {
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w.Clamp(s.Range()), nil
}

// officeDates returns the indices of dates inside w with at least one swipe.
// Days without any swipe are treated as office closures.
func (s *Snapshot) officeDates(w Window, coreOnly bool) []int {
	var out []int
	for di, d := range s.facts.Dates() {
		if !s.facts.Observed(di) || !w.Contains(d) {
			continue
		}
		if coreOnly && !s.IsCoreDay(d) {
			continue
		}
		out = append(out, di)
	}
	return out
}

// DayFacts materialises the facts inside w with their segment memberships,
// ordered by employee then date.
func (s *Snapshot) DayFacts(w Window) ([]Fact, error) {
	w, err := s.Resolve(w)
	if err != nil {
		return nil, err
	}
	var dis []int
	for di, d := range s.facts.Dates() {
		if w.Contains(d) {
			dis = append(dis, di)
		}
	}

	out := make([]Fact, 0, len(s.facts.Employees())*len(dis))
	for ei, id := range s.facts.Employees() {
		for _, di := range dis {
			f := s.facts.At(ei, di)
			for si, seg := range s.segments {
				if s.IsEligibleAt(si, di, id) {
					f.EligibleSegments = append(f.EligibleSegments, seg.Tag())
				}
			}
			out = append(out, f)
		}
	}
	return out, nil
}

// Explanation describes one employee's standing on one date.
type Explanation struct {
	EmployeeID   int         `json:"employeeId"`
	Name         string      `json:"name,omitempty"`
	Date         time.Time   `json:"date"`
	Segment      string      `json:"segment"`
	Eligibility  Eligibility `json:"eligibility"`
	FullTime     bool        `json:"fullTime"`
	Status       string      `json:"status,omitempty"`
	Present      bool        `json:"present"`
	Visits       int         `json:"visits"`
	FirstArrival *TimeOfDay  `json:"firstArrival,omitempty"`
}

// Explain reports why an employee is or is not eligible on date.
func (s *Snapshot) Explain(id int, date time.Time, segTag string) (Explanation, error) {
	_, seg, err := s.Segment(segTag)
	if err != nil {
		return Explanation{}, err
	}
	date = Day(date)
	e, _ := s.pool.Get(id)

	ex := Explanation{
		EmployeeID:  id,
		Date:        date,
		Segment:     seg.Tag(),
		Eligibility: CheckEligibility(e, date, seg),
	}
	if e != nil {
		ex.Name = e.Name
		ex.FullTime = e.FullTimeAsOf(date)
		ex.Status = e.StatusAsOf(date)
	}
	if ei, ok := s.facts.EmployeeIndex(id); ok {
		if ex.Name == "" {
			ex.Name = s.facts.Name(ei)
		}
		if di, ok := s.facts.DateIndex(date); ok {
			ex.Visits = s.facts.Visits(ei, di)
			ex.Present = ex.Visits > 0
			if arr, ok := s.facts.FirstArrival(ei, di); ok {
				ex.FirstArrival = &arr
			}
		}
	}
	return ex, nil
}
