// Package tabular reads and writes the CSV exports produced by the badge
// system and the HR platform.
package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Warning represents a non-fatal issue encountered during parsing.
type Warning struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Table is a header-indexed CSV document.
type Table struct {
	Header   []string
	Rows     [][]string
	Encoding string
	Warnings []Warning

	index map[string]int
}

// ReadFile loads and parses a CSV file from disk.
func ReadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes data to UTF-8 and parses it as CSV with a header row.
// Rows with too few fields are padded, rows with too many are truncated;
// both are reported as warnings.
func Parse(data []byte) (*Table, error) {
	decoded, encoding, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("encoding detection failed: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &Table{Encoding: encoding, index: map[string]int{}}, nil
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	t := &Table{Encoding: encoding}
	t.setHeader(header)

	row := 1
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			t.Warnings = append(t.Warnings, Warning{Row: row, Message: err.Error()})
			continue
		}
		if isBlank(rec) {
			continue
		}
		switch {
		case len(rec) < len(header):
			t.Warnings = append(t.Warnings, Warning{Row: row, Message: fmt.Sprintf("expected %d fields, got %d (padded)", len(header), len(rec))})
			padded := make([]string, len(header))
			copy(padded, rec)
			rec = padded
		case len(rec) > len(header):
			t.Warnings = append(t.Warnings, Warning{Row: row, Message: fmt.Sprintf("expected %d fields, got %d (truncated)", len(header), len(rec))})
			rec = rec[:len(header)]
		}
		t.Rows = append(t.Rows, rec)
	}

	return t, nil
}

// Decode strips byte order marks and converts UTF-16 or Latin-1 input to UTF-8.
func Decode(data []byte) ([]byte, string, error) {
	if len(data) == 0 {
		return data, "utf-8", nil
	}

	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return data[3:], "utf-8-bom", nil
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		out, _, err := transform.Bytes(unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder(), data)
		return out, "utf-16le", err
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		out, _, err := transform.Bytes(unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder(), data)
		return out, "utf-16be", err
	}

	if utf8.Valid(data) {
		return data, "utf-8", nil
	}

	out, _, err := transform.Bytes(charmap.ISO8859_1.NewDecoder(), data)
	return out, "latin-1", err
}

func (t *Table) setHeader(header []string) {
	t.Header = make([]string, len(header))
	t.index = make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		t.Header[i] = name
		key := normalizeColumn(name)
		if _, dup := t.index[key]; !dup {
			t.index[key] = i
		}
	}
}

// Column returns the index of the first present column among the aliases.
func (t *Table) Column(aliases ...string) (int, bool) {
	for _, a := range aliases {
		if i, ok := t.index[normalizeColumn(a)]; ok {
			return i, true
		}
	}
	return -1, false
}

// Has reports whether any of the aliases is a column of the table.
func (t *Table) Has(aliases ...string) bool {
	_, ok := t.Column(aliases...)
	return ok
}

// Value returns the trimmed cell at (row, col); col < 0 yields "".
func (t *Table) Value(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// WriteFile writes header and rows as CSV, replacing path atomically.
func WriteFile(path string, header []string, rows [][]string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	tmpPath := path + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := writer.WriteAll(rows); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write rows: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}

func normalizeColumn(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
