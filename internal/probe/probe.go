// Package probe profiles a table for inspection: its shape, the inferred
// type and null count of every column, the first rows and a numeric summary
// of each numeric column.
package probe

import (
	"math"
	"slices"

	"github.com/spf13/cast"

	"housing-etl/internal/table"
)

// Profile is the inspection summary of one table.
type Profile struct {
	Rows    int
	Columns []Column
	// Head holds up to the requested number of leading rows.
	Head [][]any
}

// Column describes one column.
type Column struct {
	Name  string
	Type  table.ColumnType
	Nulls int
	// Summary is set for float and int columns only.
	Summary *Summary
}

// Summary is the numeric description of a column's non-null values. Std is
// the sample standard deviation; quantiles interpolate linearly between
// closest ranks. Fields are NaN when undefined.
type Summary struct {
	Count int
	Mean  float64
	Std   float64
	Min   float64
	P25   float64
	P50   float64
	P75   float64
	Max   float64
}

// Describe profiles t, keeping the first head rows.
func Describe(t *table.Table, head int) Profile {
	p := Profile{Rows: t.Len()}
	for c := 0; c < t.Width(); c++ {
		col := t.Column(c)
		pc := Column{Name: col.Name, Type: col.Type, Nulls: t.Nulls(c)}
		if col.Type.Numeric() {
			s := Summarize(numbers(t, c))
			pc.Summary = &s
		}
		p.Columns = append(p.Columns, pc)
	}
	for r := 0; r < min(head, t.Len()); r++ {
		p.Head = append(p.Head, t.Row(r))
	}
	return p
}

func numbers(t *table.Table, c int) []float64 {
	out := make([]float64, 0, t.Len())
	for r := 0; r < t.Len(); r++ {
		v := t.Get(r, c)
		if v == nil {
			continue
		}
		f, err := cast.ToFloat64E(v)
		if err != nil || math.IsNaN(f) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Summarize describes vals. vals is not modified.
func Summarize(vals []float64) Summary {
	nan := math.NaN()
	s := Summary{Count: len(vals), Mean: nan, Std: nan, Min: nan, P25: nan, P50: nan, P75: nan, Max: nan}
	if len(vals) == 0 {
		return s
	}
	sorted := slices.Clone(vals)
	slices.Sort(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	s.Mean = sum / float64(len(sorted))
	if len(sorted) > 1 {
		var ss float64
		for _, v := range sorted {
			d := v - s.Mean
			ss += d * d
		}
		s.Std = math.Sqrt(ss / float64(len(sorted)-1))
	}
	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.P25 = Quantile(sorted, 0.25)
	s.P50 = Quantile(sorted, 0.50)
	s.P75 = Quantile(sorted, 0.75)
	return s
}

// Quantile returns the q-quantile of ascending sorted values using linear
// interpolation between the two closest ranks.
func Quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}
