// Package skiplog writes a CSV log of rows the cleaning pipeline removed,
// one line per row with the reason and the row's business key.
//
// Layout:
//
//	reason,property_id,row
//	bedrooms_out_of_range,P03,Property_ID=P03; Micro_Market=Worli; ...
//
// The row column holds the whole record as "column=value" pairs in table
// order, so a dropped row can be traced back to the raw file without a
// second lookup. Log keeps per-reason counts for the run summary and is safe
// for concurrent use. Writes are buffered; callers must Flush and check its
// error, since Reject itself never fails.
package skiplog

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"housing-etl/internal/housing"
	"housing-etl/internal/table"
)

// Header is the fixed first line of a skip log.
var Header = []string{"reason", "property_id", "row"}

// Log records skipped rows and counts them per reason. It implements
// transformer.Rejecter.
type Log struct {
	mu      sync.Mutex
	w       *csv.Writer
	reasons map[string]int
	err     error
}

// New writes the header to w and returns a Log appending to it.
func New(w io.Writer) (*Log, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return nil, fmt.Errorf("skiplog: write header: %w", err)
	}
	return &Log{w: cw, reasons: make(map[string]int)}, nil
}

// Reject logs one removed row. The row is rendered as "column=value" pairs
// separated by "; ". Write errors are kept and reported by Flush.
func (l *Log) Reject(reason string, columns []string, row []any) {
	key := ""
	pairs := make([]string, 0, len(row))
	for i, v := range row {
		cell := table.FormatCell(v)
		if i < len(columns) {
			if columns[i] == housing.PropertyID {
				key = cell
			}
			pairs = append(pairs, columns[i]+"="+cell)
			continue
		}
		pairs = append(pairs, cell)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.reasons[reason]++
	if l.err != nil {
		return
	}
	if err := l.w.Write([]string{reason, key, strings.Join(pairs, "; ")}); err != nil {
		l.err = err
	}
}

// Counts returns the number of rows logged per reason.
func (l *Log) Counts() map[string]int {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]int, len(l.reasons))
	for k, v := range l.reasons {
		out[k] = v
	}
	return out
}

// Summary renders the per-reason counts as "reason=n" sorted by reason.
func (l *Log) Summary() string {
	c := l.Counts()
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, c[k])
	}
	return strings.Join(parts, " ")
}

// Flush writes buffered lines and returns the first write error.
func (l *Log) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Flush()
	if l.err != nil {
		return fmt.Errorf("skiplog: write: %w", l.err)
	}
	if err := l.w.Error(); err != nil {
		return fmt.Errorf("skiplog: flush: %w", err)
	}
	return nil
}
