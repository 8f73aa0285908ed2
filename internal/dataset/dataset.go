// Package dataset loads the badge log, roster, status history and override
// table into resolved events and the full employee pool.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"office-attendance/internal/badge"
	"office-attendance/internal/roster"
	"office-attendance/internal/stats"
	"office-attendance/internal/tabular"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ErrBadgeLogUnavailable is returned when the badge log cannot be read or
// lacks its required columns.
var ErrBadgeLogUnavailable = errors.New("badge log unavailable")

// Paths locates the source files.
type Paths struct {
	BadgeLog  string
	Roster    string
	History   string
	Overrides string
}

// Options controls parsing and pool construction.
type Options struct {
	Location                     *time.Location
	AssumeFullTimeWithoutHistory bool
}

// Report collects every recoverable data-quality finding from a load.
type Report struct {
	BadgeEncoding  string              `json:"badgeEncoding,omitempty"`
	Badge          badge.ParseStats    `json:"badge"`
	Duplicates     int                 `json:"duplicateSwipes"`
	Identity       badge.ResolveResult `json:"identity"`
	TopUnresolved  []string            `json:"topUnresolved,omitempty"`
	Roster         roster.ParseReport  `json:"roster"`
	History        roster.ParseReport  `json:"history"`
	Pool           roster.BuildReport  `json:"pool"`
	FormatWarnings int                 `json:"formatWarnings"`
	Warnings       []string            `json:"warnings,omitempty"`
}

// Dataset is one consistent load of all sources.
type Dataset struct {
	Events   []badge.Event
	Pool     *roster.Pool
	Report   Report
	LoadedAt time.Time
}

// Range returns the calendar range of the resolved events.
func (d *Dataset) Range() stats.Window {
	if len(d.Events) == 0 {
		return stats.Window{}
	}
	return stats.Window{Start: d.Events[0].Date(), End: d.Events[len(d.Events)-1].Date()}
}

// Load reads all sources. Only an unreadable badge log is fatal; a missing
// roster yields an empty pool and missing history yields none, with warnings.
func Load(ctx context.Context, p Paths, opts Options) (*Dataset, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	var (
		badgeTable, rosterTable, historyTable *tabular.Table
		overrides                             *roster.Overrides
		rep                                   Report
	)

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := tabular.ReadFile(p.BadgeLog)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrBadgeLogUnavailable, p.BadgeLog, err)
		}
		badgeTable = t
		return nil
	})
	g.Go(func() error {
		rosterTable = readOptional(p.Roster, "roster")
		return nil
	})
	g.Go(func() error {
		historyTable = readOptional(p.History, "status history")
		return nil
	})
	g.Go(func() error {
		o, err := roster.LoadOverrides(p.Overrides)
		if err != nil {
			return err
		}
		overrides = o
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Badge log
	rep.BadgeEncoding = badgeTable.Encoding
	rep.FormatWarnings += len(badgeTable.Warnings)
	raw, parseStats, err := badge.ParseLog(badgeTable, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadgeLogUnavailable, err)
	}
	rep.Badge = parseStats

	store := badge.NewStore()
	added := store.Append(raw)
	rep.Duplicates = len(raw) - added

	resolved, res := badge.NewResolver(overrides.IdentityMap()).ResolveAll(store.Events())
	rep.Identity = res
	rep.TopUnresolved = res.TopUnresolved(10)

	// Roster and history
	var rows []roster.Row
	if rosterTable != nil {
		rep.FormatWarnings += len(rosterTable.Warnings)
		rows, rep.Roster, err = roster.ParseRoster(rosterTable)
		if err != nil {
			rep.warn("roster ignored: %v", err)
		}
	} else {
		rep.warn("roster not loaded; no employee can be eligible")
	}

	var history []roster.HistoryRow
	if historyTable != nil {
		rep.FormatWarnings += len(historyTable.Warnings)
		history, rep.History, err = roster.ParseHistory(historyTable)
		if err != nil {
			rep.warn("status history ignored: %v", err)
		}
	} else {
		rep.warn("status history not loaded; full-time flags follow the missing-history policy")
	}
	for _, c := range rep.Roster.MissingColumns {
		rep.warn("roster column %q missing; affected eligibility is unknown", c)
	}

	var lastBadge time.Time
	if n := len(resolved); n > 0 {
		lastBadge = resolved[n-1].Date()
	}
	pool, buildRep := roster.Build(rows, history, overrides, roster.BuildOptions{
		LastBadgeDate:                lastBadge,
		AssumeFullTimeWithoutHistory: opts.AssumeFullTimeWithoutHistory,
	})
	rep.Pool = buildRep

	if parseStats.UnparsableTimestamp > 0 {
		log.Warn().Int("count", parseStats.UnparsableTimestamp).Msg("Badge rows with unparsable timestamps excluded")
	}
	if res.Dropped > 0 {
		log.Warn().Int("dropped", res.Dropped).Strs("top", rep.TopUnresolved).Msg("Badge events with unresolvable actors dropped")
	}
	log.Info().
		Int("events", len(resolved)).
		Int("employees", pool.Len()).
		Str("encoding", rep.BadgeEncoding).
		Msg("Dataset loaded")

	return &Dataset{
		Events:   resolved,
		Pool:     pool,
		Report:   rep,
		LoadedAt: time.Now(),
	}, nil
}

func (r *Report) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.Warnings = append(r.Warnings, msg)
	log.Warn().Msg(msg)
}

func readOptional(path, what string) *tabular.Table {
	if path == "" {
		return nil
	}
	t, err := tabular.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn().Str("path", path).Msgf("No %s file found", what)
		} else {
			log.Warn().Err(err).Str("path", path).Msgf("Failed to read %s", what)
		}
		return nil
	}
	return t
}
