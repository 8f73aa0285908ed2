package report

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format is an export target.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatSQLite   Format = "sqlite"
	FormatMarkdown Format = "md"
)

// SQLiteFile is the database appended to by sqlite exports.
const SQLiteFile = "attendance.db"

var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormats parses a comma separated list such as "csv,json".
// An empty list means csv.
func ParseFormats(s string) ([]Format, error) {
	if strings.TrimSpace(s) == "" {
		return []Format{FormatCSV}, nil
	}
	seen := make(map[Format]bool)
	var out []Format
	for _, part := range strings.Split(s, ",") {
		f := Format(strings.ToLower(strings.TrimSpace(part)))
		switch f {
		case FormatCSV, FormatJSON, FormatSQLite, FormatMarkdown:
		case "":
			continue
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, part)
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}

// Suffix names the files of one export run after the analysed window.
func Suffix(r *Report) string {
	return r.Window.Start.Format("20060102") + "_" + r.Window.End.Format("20060102")
}

// Export writes r into dir in every requested format and returns the paths
// written. SQLite exports append to a single database file.
func Export(ctx context.Context, dir string, r *Report, formats []Format) ([]string, error) {
	suffix := Suffix(r)
	var written []string
	for _, f := range formats {
		switch f {
		case FormatCSV:
			paths, err := WriteCSV(dir, suffix, r)
			written = append(written, paths...)
			if err != nil {
				return written, err
			}
		case FormatJSON:
			path := filepath.Join(dir, fmt.Sprintf("attendance_report_%s.json", suffix))
			if err := WriteJSON(path, r); err != nil {
				return written, err
			}
			written = append(written, path)
		case FormatMarkdown:
			path := filepath.Join(dir, fmt.Sprintf("attendance_report_%s.md", suffix))
			if err := WriteMarkdown(path, r); err != nil {
				return written, err
			}
			written = append(written, path)
		case FormatSQLite:
			path := filepath.Join(dir, SQLiteFile)
			if _, err := ExportSQLite(ctx, path, r); err != nil {
				return written, err
			}
			written = append(written, path)
		default:
			return written, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
		}
	}
	return written, nil
}
