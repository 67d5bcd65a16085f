// Package table holds the in-memory, typed tabular dataset the cleaning
// pipeline operates on. A Table is an ordered slice of rows sharing one column
// set; every cell is either nil (missing) or a Go value matching the column's
// declared type:
//
//	TypeText  -> string
//	TypeFloat -> float64
//	TypeInt   -> int64
//	TypeBool  -> bool
//	TypeDate  -> string (the raw date text)
//
// The whole dataset lives in memory and is owned by a single caller; Table is
// not safe for concurrent mutation.
package table

import "fmt"

// ColumnType is the declared type of a column. The set is closed; stages
// branch on it instead of inspecting cell values at runtime.
type ColumnType int

const (
	TypeText ColumnType = iota
	TypeFloat
	TypeInt
	TypeBool
	TypeDate
)

// String returns the lower-case name used in diagnostics output.
func (t ColumnType) String() string {
	switch t {
	case TypeText:
		return "text"
	case TypeFloat:
		return "float"
	case TypeInt:
		return "int"
	case TypeBool:
		return "bool"
	case TypeDate:
		return "date"
	default:
		return fmt.Sprintf("ColumnType(%d)", int(t))
	}
}

// Numeric reports whether values of this type are float64 or int64.
func (t ColumnType) Numeric() bool { return t == TypeFloat || t == TypeInt }

// Column names a column and its declared type.
type Column struct {
	Name string
	Type ColumnType
}

// Schema is an ordered list of declared columns.
type Schema []Column

// Lookup returns the declared type for name.
func (s Schema) Lookup(name string) (ColumnType, bool) {
	for _, c := range s {
		if c.Name == name {
			return c.Type, true
		}
	}
	return TypeText, false
}

// Names returns the column names in declaration order.
func (s Schema) Names() []string {
	out := make([]string, len(s))
	for i, c := range s {
		out[i] = c.Name
	}
	return out
}

// Table is an ordered sequence of rows with a fixed column set.
type Table struct {
	cols  []Column
	index map[string]int
	rows  [][]any
}

// New returns an empty table with the given columns. Duplicate names keep the
// first position for lookups.
func New(cols []Column) *Table {
	t := &Table{
		cols:  append([]Column(nil), cols...),
		index: make(map[string]int, len(cols)),
	}
	for i, c := range t.cols {
		if _, dup := t.index[c.Name]; !dup {
			t.index[c.Name] = i
		}
	}
	return t
}

// Columns returns a copy of the column list.
func (t *Table) Columns() []Column { return append([]Column(nil), t.cols...) }

// Names returns the column names in order.
func (t *Table) Names() []string { return Schema(t.cols).Names() }

// Width is the number of columns.
func (t *Table) Width() int { return len(t.cols) }

// Len is the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Index returns the position of the named column.
func (t *Table) Index(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Column returns the column at position i.
func (t *Table) Column(i int) Column { return t.cols[i] }

// SetType changes the declared type of column i. Callers are responsible for
// converting the cells to match.
func (t *Table) SetType(i int, typ ColumnType) { t.cols[i].Type = typ }

// AddColumn appends a new all-nil column and returns its index. If the column
// already exists its type is updated and its existing index returned.
func (t *Table) AddColumn(c Column) int {
	if i, ok := t.index[c.Name]; ok {
		t.cols[i].Type = c.Type
		return i
	}
	t.cols = append(t.cols, c)
	i := len(t.cols) - 1
	t.index[c.Name] = i
	for r := range t.rows {
		t.rows[r] = append(t.rows[r], nil)
	}
	return i
}

// AppendRow adds a row. The row must have exactly Width cells; the slice is
// retained, not copied.
func (t *Table) AppendRow(row []any) error {
	if len(row) != len(t.cols) {
		return fmt.Errorf("table: row has %d cells, want %d", len(row), len(t.cols))
	}
	t.rows = append(t.rows, row)
	return nil
}

// Row returns row r. Mutating the returned slice mutates the table.
func (t *Table) Row(r int) []any { return t.rows[r] }

// Get returns the cell at row r, column c.
func (t *Table) Get(r, c int) any { return t.rows[r][c] }

// Set replaces the cell at row r, column c.
func (t *Table) Set(r, c int, v any) { t.rows[r][c] = v }

// Nulls counts nil cells in column c.
func (t *Table) Nulls(c int) int {
	n := 0
	for _, row := range t.rows {
		if row[c] == nil {
			n++
		}
	}
	return n
}

// Retain keeps the rows for which keep returns true, preserving order, and
// returns the number of rows removed. keep receives the original row index.
func (t *Table) Retain(keep func(r int, row []any) bool) int {
	out := t.rows[:0]
	for r, row := range t.rows {
		if keep(r, row) {
			out = append(out, row)
		}
	}
	removed := len(t.rows) - len(out)
	for i := len(out); i < len(t.rows); i++ {
		t.rows[i] = nil
	}
	t.rows = out
	return removed
}
