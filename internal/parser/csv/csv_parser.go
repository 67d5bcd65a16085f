// Package csv reads a whole comma-separated file into a typed table.Table and
// writes a table back out. The file is materialized in memory; rows are kept
// in file order.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"housing-etl/internal/table"
)

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// skipLogLimit caps the per-file warnings for malformed rows.
const skipLogLimit = 50

// Options configures the reader. All fields are optional.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// Schema declares the type of known columns. Columns not present in the
	// schema are typed by table.InferType over all of their values.
	Schema table.Schema
}

// Stats describes what the reader did besides producing rows.
type Stats struct {
	// Rows is the number of data rows loaded into the table.
	Rows int
	// Skipped counts rows the CSV reader rejected or that had more cells
	// than the header.
	Skipped int
	// Padded counts rows shorter than the header; missing cells are nil.
	Padded int
	// ParseFailures counts, per column, non-empty cells that did not parse
	// as the declared type and were loaded as nil.
	ParseFailures map[string]int
}

// ErrNoHeader is returned for an empty input.
var ErrNoHeader = errors.New("csv: missing header row")

// Read parses r into a table. The first record is the header.
func Read(r io.Reader, opt Options) (*table.Table, Stats, error) {
	stats := Stats{ParseFailures: map[string]int{}}

	cr := csv.NewReader(r)
	if opt.Comma != 0 {
		cr.Comma = opt.Comma
	}
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, stats, ErrNoHeader
	}
	if err != nil {
		return nil, stats, fmt.Errorf("read csv header: %w", err)
	}
	header = StripHeaderBOM(header)

	var raw [][]string
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if stats.Skipped < skipLogLimit {
				slog.Warn("csv: skipping row", "line", line, "err", err)
			}
			stats.Skipped++
			continue
		}
		if len(rec) > len(header) {
			if stats.Skipped < skipLogLimit {
				slog.Warn("csv: skipping row", "line", line, "fields", len(rec), "expected", len(header))
			}
			stats.Skipped++
			continue
		}
		if len(rec) < len(header) {
			stats.Padded++
		}
		// encoding/csv reuses nothing unless ReuseRecord is set, so rec is ours.
		raw = append(raw, rec)
	}

	cols := make([]table.Column, len(header))
	for i, name := range header {
		typ, ok := opt.Schema.Lookup(name)
		if !ok {
			typ = table.InferType(columnValues(raw, i))
		}
		cols[i] = table.Column{Name: name, Type: typ}
	}

	t := table.New(cols)
	for _, rec := range raw {
		row := make([]any, len(cols))
		for i, c := range cols {
			if i >= len(rec) {
				continue
			}
			v, ok := table.ParseCell(rec[i], c.Type)
			if !ok {
				stats.ParseFailures[c.Name]++
			}
			row[i] = v
		}
		if err := t.AppendRow(row); err != nil {
			return nil, stats, err
		}
	}
	stats.Rows = t.Len()
	return t, stats, nil
}

// Write renders t as CSV with a header row.
func Write(w io.Writer, t *table.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Names()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	rec := make([]string, t.Width())
	for r := 0; r < t.Len(); r++ {
		for c, v := range t.Row(r) {
			rec[c] = table.FormatCell(v)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row %d: %w", r+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// StripHeaderBOM removes a UTF-8 BOM from the first header cell if present.
func StripHeaderBOM(headers []string) []string {
	if len(headers) == 0 {
		return headers
	}
	headers[0] = strings.TrimPrefix(headers[0], utf8BOM)
	return headers
}

func columnValues(raw [][]string, i int) []string {
	out := make([]string, 0, len(raw))
	for _, rec := range raw {
		if i < len(rec) {
			out = append(out, rec[i])
		}
	}
	return out
}
