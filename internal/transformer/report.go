package transformer

import (
	"math"
	"time"
)

// Strategy names how a column's nulls were filled.
type Strategy string

const (
	StrategyMode    Strategy = "mode"
	StrategyMedian  Strategy = "median"
	StrategyUnknown Strategy = "unknown"
)

// Imputation records one column fill.
type Imputation struct {
	Column   string
	Strategy Strategy
	Value    any
	Filled   int
}

// Drop records rows removed by a filtering stage.
type Drop struct {
	Stage  string
	Reason string
	Rows   int
}

// StageRun is the timing and row count of one stage execution.
type StageRun struct {
	Name     string
	RowsIn   int
	RowsOut  int
	Duration time.Duration
	Err      error
}

// PricePerSqftCeiling is the largest Price_Per_Sqft the luxury_housing table
// column accepts; larger values are counted in the report.
const PricePerSqftCeiling = 100000

// Report is the diagnostic metadata of one cleaning run.
type Report struct {
	RunID   string
	RowsIn  int
	RowsOut int

	Imputations []Imputation
	Drops       []Drop
	Stages      []StageRun

	// ParseFailures counts, per column, non-empty values that could not be
	// parsed and were turned into nulls.
	ParseFailures map[string]int

	// MaxPricePerSqft is NaN until at least one Price_Per_Sqft is derived.
	MaxPricePerSqft float64
	// PricePerSqftOverCeiling counts derived values above PricePerSqftCeiling.
	PricePerSqftOverCeiling int
}

// NewReport returns an empty report for the given run.
func NewReport(runID string) *Report {
	return &Report{
		RunID:           runID,
		ParseFailures:   map[string]int{},
		MaxPricePerSqft: math.NaN(),
	}
}

// ParseFailed adds n value parse failures for column.
func (r *Report) ParseFailed(column string, n int) {
	if n == 0 {
		return
	}
	if r.ParseFailures == nil {
		r.ParseFailures = map[string]int{}
	}
	r.ParseFailures[column] += n
}

// Dropped records n rows removed by stage for reason.
func (r *Report) Dropped(stage, reason string, n int) {
	r.Drops = append(r.Drops, Drop{Stage: stage, Reason: reason, Rows: n})
}

// DroppedBy sums the rows removed for reason.
func (r *Report) DroppedBy(reason string) int {
	n := 0
	for _, d := range r.Drops {
		if d.Reason == reason {
			n += d.Rows
		}
	}
	return n
}

// TotalDropped sums all removed rows.
func (r *Report) TotalDropped() int {
	n := 0
	for _, d := range r.Drops {
		n += d.Rows
	}
	return n
}

// Imputed records a column fill.
func (r *Report) Imputed(column string, s Strategy, value any, filled int) {
	r.Imputations = append(r.Imputations, Imputation{Column: column, Strategy: s, Value: value, Filled: filled})
}

// ObservePricePerSqft folds one derived Price_Per_Sqft into the report.
func (r *Report) ObservePricePerSqft(v float64) {
	if math.IsNaN(r.MaxPricePerSqft) || v > r.MaxPricePerSqft {
		r.MaxPricePerSqft = v
	}
	if v > PricePerSqftCeiling {
		r.PricePerSqftOverCeiling++
	}
}
