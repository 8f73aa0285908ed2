package badge

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var leadingID = regexp.MustCompile(`^\s*(\d+)`)

// Resolver maps raw actor strings to canonical employee identifiers.
type Resolver struct {
	exceptions map[string]int
}

// NewResolver builds a resolver with a named-exception table (full name -> id)
// for actors the badge system exports without a numeric prefix.
func NewResolver(exceptions map[string]int) *Resolver {
	r := &Resolver{exceptions: make(map[string]int, len(exceptions))}
	for name, id := range exceptions {
		r.exceptions[NormalizeName(name)] = id
	}
	return r
}

// Resolve returns the employee id for an actor string.
func (r *Resolver) Resolve(actor string) (int, bool) {
	if m := leadingID.FindStringSubmatch(actor); m != nil {
		if id, err := strconv.Atoi(m[1]); err == nil {
			return id, true
		}
	}
	if id, ok := r.exceptions[NormalizeName(actor)]; ok {
		return id, true
	}
	return 0, false
}

// ResolveResult summarises a ResolveAll pass.
type ResolveResult struct {
	Resolved   int            `json:"resolved"`
	Dropped    int            `json:"dropped"`
	Unresolved map[string]int `json:"unresolved,omitempty"`
}

// TopUnresolved returns the n most frequent unresolved actors.
func (r ResolveResult) TopUnresolved(n int) []string {
	actors := make([]string, 0, len(r.Unresolved))
	for a := range r.Unresolved {
		actors = append(actors, a)
	}
	sort.Slice(actors, func(i, j int) bool {
		if r.Unresolved[actors[i]] != r.Unresolved[actors[j]] {
			return r.Unresolved[actors[i]] > r.Unresolved[actors[j]]
		}
		return actors[i] < actors[j]
	})
	if len(actors) > n {
		actors = actors[:n]
	}
	return actors
}

// ResolveAll returns the events whose actor resolves, with EmployeeID set.
// Unresolvable events are dropped and counted.
func (r *Resolver) ResolveAll(events []Event) ([]Event, ResolveResult) {
	res := ResolveResult{Unresolved: make(map[string]int)}
	out := make([]Event, 0, len(events))
	for _, e := range events {
		id, ok := r.Resolve(e.RawActor)
		if !ok {
			res.Dropped++
			res.Unresolved[strings.TrimSpace(e.RawActor)]++
			continue
		}
		e.EmployeeID = id
		out = append(out, e)
		res.Resolved++
	}
	return out, res
}

// NormalizeName folds case and whitespace so "Doe,  John" matches "doe, john".
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// DisplayName strips a leading numeric id from an actor string.
func DisplayName(actor string) string {
	if loc := leadingID.FindStringIndex(actor); loc != nil {
		return strings.TrimSpace(actor[loc[1]:])
	}
	return strings.TrimSpace(actor)
}
