// Package builtin contains the cleaning stages of the housing pipeline.
//
// Impute replaces missing cells so that the clean file has as few nulls as
// the data allows. It runs before filtering, so the statistics it fills with
// are computed over every row read, including rows dropped later.
package builtin

import (
	"context"
	"math"
	"sort"

	"housing-etl/internal/table"
	"housing-etl/internal/transformer"
)

// UnknownValue fills text columns that have no observed value, and columns
// whose type has no statistic.
const UnknownValue = "Unknown"

// Impute fills nulls column by column. The strategy is chosen from the
// column's declared type:
//
//	text, bool   most frequent value, ties to the first seen
//	float, int   median of the non-null values (rounded for int)
//	other        UnknownValue
//
// A text or bool column with no values at all is filled with UnknownValue; a
// bool column filled that way is retyped to text so the table stays
// consistent with its cells. A numeric column with no values is left as is
// since no value of its type can be derived.
type Impute struct{}

func (Impute) Name() string { return "impute" }

func (Impute) Apply(ctx context.Context, t *table.Table, rep *transformer.Report) error {
	for c := 0; c < t.Width(); c++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		nulls := t.Nulls(c)
		if nulls == 0 {
			continue
		}
		col := t.Column(c)
		strategy, fill, ok := fillFor(t, c)
		if !ok {
			continue
		}
		if _, isText := fill.(string); isText && col.Type == table.TypeBool {
			t.SetType(c, table.TypeText)
		}
		for r := 0; r < t.Len(); r++ {
			if t.Get(r, c) == nil {
				t.Set(r, c, fill)
			}
		}
		rep.Imputed(col.Name, strategy, fill, nulls)
	}
	return nil
}

// StrategyFor returns the fill strategy used for a column type.
func StrategyFor(typ table.ColumnType) transformer.Strategy {
	switch typ {
	case table.TypeText, table.TypeBool:
		return transformer.StrategyMode
	case table.TypeFloat, table.TypeInt:
		return transformer.StrategyMedian
	default:
		return transformer.StrategyUnknown
	}
}

func fillFor(t *table.Table, c int) (transformer.Strategy, any, bool) {
	col := t.Column(c)
	strategy := StrategyFor(col.Type)
	switch strategy {
	case transformer.StrategyMode:
		if v, ok := Mode(t, c); ok {
			return strategy, v, true
		}
		return strategy, UnknownValue, true
	case transformer.StrategyMedian:
		m, ok := Median(t, c)
		if !ok {
			return strategy, nil, false
		}
		if col.Type == table.TypeInt {
			return strategy, int64(math.Round(m)), true
		}
		return strategy, m, true
	default:
		return strategy, UnknownValue, true
	}
}

// Mode returns the most frequent non-null value of column c. Ties go to the
// value seen first.
func Mode(t *table.Table, c int) (any, bool) {
	counts := make(map[any]int)
	var order []any
	for r := 0; r < t.Len(); r++ {
		v := t.Get(r, c)
		if v == nil {
			continue
		}
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
	}
	var best any
	bestN := 0
	for _, v := range order {
		if counts[v] > bestN {
			best, bestN = v, counts[v]
		}
	}
	return best, bestN > 0
}

// Median returns the median of the non-null numeric values of column c.
func Median(t *table.Table, c int) (float64, bool) {
	vals := make([]float64, 0, t.Len())
	for r := 0; r < t.Len(); r++ {
		f, ok := table.Float(t.Get(r, c))
		if !ok || math.IsNaN(f) {
			continue
		}
		vals = append(vals, f)
	}
	if len(vals) == 0 {
		return 0, false
	}
	sort.Float64s(vals)
	mid := len(vals) / 2
	if len(vals)%2 == 1 {
		return vals[mid], true
	}
	return (vals[mid-1] + vals[mid]) / 2, true
}
