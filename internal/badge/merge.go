package badge

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"office-attendance/internal/tabular"

	"github.com/rs/zerolog/log"
)

// BackupMarker separates the original file name from the backup timestamp.
const BackupMarker = ".backup."

const backupStampLayout = "20060102_150405"

// MergeResult describes a merge of a new badge export into an existing log.
type MergeResult struct {
	Existing   int    `json:"existing"`
	Incoming   int    `json:"incoming"`
	Added      int    `json:"added"`
	Total      int    `json:"total"`
	Undated    int    `json:"undated"`
	BackupPath string `json:"backupPath,omitempty"`
}

// Merge combines the rows of incoming with those of existing and writes the
// de-duplicated union to output. Rows are carried through as exported: extra
// columns are kept, and rows without a usable actor or timestamp are kept
// after the dated rows. A missing or empty existing file is treated as empty.
// When backup is set and existing is non-empty, a timestamped copy is written
// next to it first.
func Merge(existing, incoming, output string, loc *time.Location, backup bool) (MergeResult, error) {
	var res MergeResult
	if loc == nil {
		loc = time.UTC
	}

	var base *tabular.Table
	info, err := os.Stat(existing)
	switch {
	case err == nil && info.Size() > 0:
		if base, err = readLog(existing); err != nil {
			return res, err
		}
	case err != nil && !os.IsNotExist(err):
		return res, fmt.Errorf("failed to stat %s: %w", existing, err)
	}

	in, err := readLog(incoming)
	if err != nil {
		return res, err
	}

	header := in.Header
	if base != nil {
		header = unionHeader(base, in)
	}
	m := newRowMerger(header, loc)
	if base != nil {
		res.Existing = base.Len()
		m.add(base, existing)
	}
	res.Incoming = in.Len()
	res.Added = m.add(in, incoming)
	res.Total = len(m.rows)
	res.Undated = m.undated

	if backup && base != nil {
		path, err := writeBackup(existing, time.Now())
		if err != nil {
			return res, err
		}
		res.BackupPath = path
	}

	if err := tabular.WriteFile(output, header, m.sorted()); err != nil {
		return res, fmt.Errorf("failed to write merged log: %w", err)
	}

	log.Info().
		Int("existing", res.Existing).
		Int("incoming", res.Incoming).
		Int("added", res.Added).
		Int("total", res.Total).
		Int("undated", res.Undated).
		Msg("Badge logs merged")
	return res, nil
}

func readLog(path string) (*tabular.Table, error) {
	t, err := tabular.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read badge log %s: %w", path, err)
	}
	if !t.Has(ActorColumns...) || !t.Has(TimeColumns...) {
		return nil, fmt.Errorf("%w: %s has %v", ErrMissingColumns, path, t.Header)
	}
	return t, nil
}

var fieldColumns = [][]string{ActorColumns, TimeColumns, DoorColumns, KindColumns}

const (
	fieldActor = iota
	fieldTime
	fieldDoor
	fieldKind
)

// fieldOf returns which badge field a column name is an alias of, or -1.
func fieldOf(name string) int {
	for f, aliases := range fieldColumns {
		for _, a := range aliases {
			if strings.EqualFold(a, name) {
				return f
			}
		}
	}
	return -1
}

func columnFor(t *tabular.Table, name string) (int, bool) {
	if f := fieldOf(name); f >= 0 {
		return t.Column(fieldColumns[f]...)
	}
	return t.Column(name)
}

// unionHeader keeps the existing column order and appends incoming columns
// the existing log does not have.
func unionHeader(base, in *tabular.Table) []string {
	header := slices.Clone(base.Header)
	for _, h := range in.Header {
		if _, ok := columnFor(base, h); !ok {
			header = append(header, h)
		}
	}
	return header
}

type mergedRow struct {
	cells []string
	ts    time.Time
	dated bool
}

type rowMerger struct {
	header  []string
	fields  [4]int
	loc     *time.Location
	seen    map[string]bool
	rows    []mergedRow
	undated int
}

func newRowMerger(header []string, loc *time.Location) *rowMerger {
	m := &rowMerger{header: header, fields: [4]int{-1, -1, -1, -1}, loc: loc, seen: make(map[string]bool)}
	for i, h := range header {
		if f := fieldOf(h); f >= 0 && m.fields[f] < 0 {
			m.fields[f] = i
		}
	}
	return m
}

func (m *rowMerger) field(cells []string, f int) string {
	if i := m.fields[f]; i >= 0 {
		return strings.TrimSpace(cells[i])
	}
	return ""
}

// add projects the rows of t onto the merged header and returns how many
// were new.
func (m *rowMerger) add(t *tabular.Table, path string) int {
	cols := make([]int, len(m.header))
	for i, h := range m.header {
		cols[i], _ = columnFor(t, h)
	}

	added, undated := 0, 0
	for _, row := range t.Rows {
		cells := make([]string, len(m.header))
		for i, c := range cols {
			if c >= 0 && c < len(row) {
				cells[i] = row[c]
			}
		}

		r := mergedRow{cells: cells}
		var key string
		actor := m.field(cells, fieldActor)
		if ts, err := ParseTimestamp(m.field(cells, fieldTime), m.loc); err == nil && actor != "" {
			r.ts, r.dated = ts, true
			key = Event{RawActor: actor, Timestamp: ts, Door: m.field(cells, fieldDoor), Kind: m.field(cells, fieldKind)}.identity()
		} else {
			undated++
			trimmed := make([]string, len(cells))
			for i, c := range cells {
				trimmed[i] = strings.TrimSpace(c)
			}
			key = "raw|" + strings.Join(trimmed, "\x1f")
		}

		if m.seen[key] {
			continue
		}
		m.seen[key] = true
		m.rows = append(m.rows, r)
		if !r.dated {
			m.undated++
		}
		added++
	}

	if undated > 0 {
		log.Warn().Int("count", undated).Str("path", path).Msg("Carrying rows without a usable actor or timestamp")
	}
	return added
}

// sorted returns dated rows in chronological order followed by undated rows
// in the order they were read.
func (m *rowMerger) sorted() [][]string {
	rows := slices.Clone(m.rows)
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.dated != b.dated {
			return a.dated
		}
		if !a.dated || a.ts.Equal(b.ts) {
			return false
		}
		return a.ts.Before(b.ts)
	})

	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = r.cells
	}
	return out
}

func writeBackup(path string, now time.Time) (string, error) {
	dst := path + BackupMarker + now.Format(backupStampLayout)

	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s for backup: %w", path, err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create backup %s: %w", dst, err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return "", fmt.Errorf("failed to write backup %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return dst, nil
}

// PruneBackups removes all but the newest keep backups of base in dir and
// returns the removed paths.
func PruneBackups(dir, base string, keep int) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	prefix := base + BackupMarker
	var backups []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		backups = append(backups, e.Name())
	}

	// Stamps are fixed-width, so lexical order is chronological.
	sort.Sort(sort.Reverse(sort.StringSlice(backups)))

	if keep < 0 {
		keep = 0
	}
	if len(backups) <= keep {
		return nil, nil
	}

	var removed []string
	for _, name := range backups[keep:] {
		p := filepath.Join(dir, name)
		if err := os.Remove(p); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", p, err)
		}
		removed = append(removed, p)
	}
	log.Info().Int("removed", len(removed)).Int("kept", keep).Str("base", base).Msg("Pruned badge log backups")
	return removed, nil
}
