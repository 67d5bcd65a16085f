// Package builtin contains the cleaning stages of the housing pipeline.
//
// Outliers removes rows that cannot be real luxury listings: a bedroom count
// outside 1 to 6, or a ticket price outside 0.2 to 30 crore. Bounds are
// inclusive. A value still missing after imputation is out of range.
//
// Bedrooms is checked first; a row failing both checks is counted once,
// under ReasonBedrooms. Every dropped row goes to the optional Rejecter and
// to the Report's drop counts.
package builtin

import (
	"context"
	"fmt"

	"housing-etl/internal/housing"
	"housing-etl/internal/table"
	"housing-etl/internal/transformer"
)

// Valid ranges, inclusive.
const (
	MinBedrooms = 1
	MaxBedrooms = 6
	MinPriceCr  = 0.2
	MaxPriceCr  = 30
)

// Drop reasons reported by the filtering stages and written to the skip log.
const (
	ReasonBedrooms  = "bedrooms_out_of_range"
	ReasonPrice     = "price_out_of_range"
	ReasonDuplicate = "duplicate_property_id"
)

// Outliers drops rows whose Bedrooms is outside [MinBedrooms, MaxBedrooms]
// and then rows whose Ticket_Price_Cr is outside [MinPriceCr, MaxPriceCr].
// A null value is out of range.
type Outliers struct {
	// Rejects, when set, receives every dropped row.
	Rejects transformer.Rejecter
}

func (Outliers) Name() string { return "outliers" }

func (o Outliers) Apply(_ context.Context, t *table.Table, rep *transformer.Report) error {
	beds, err := requireColumn(t, housing.Bedrooms)
	if err != nil {
		return err
	}
	price, err := requireColumn(t, housing.TicketPriceCr)
	if err != nil {
		return err
	}
	names := t.Names()

	n := t.Retain(o.keepWithin(names, beds, MinBedrooms, MaxBedrooms, ReasonBedrooms))
	rep.Dropped(o.Name(), ReasonBedrooms, n)

	n = t.Retain(o.keepWithin(names, price, MinPriceCr, MaxPriceCr, ReasonPrice))
	rep.Dropped(o.Name(), ReasonPrice, n)
	return nil
}

func (o Outliers) keepWithin(names []string, c int, lo, hi float64, reason string) func(int, []any) bool {
	return func(_ int, row []any) bool {
		if InRange(row[c], lo, hi) {
			return true
		}
		if o.Rejects != nil {
			o.Rejects.Reject(reason, names, row)
		}
		return false
	}
}

// InRange reports whether v is numeric and lo <= v <= hi.
func InRange(v any, lo, hi float64) bool {
	f, ok := table.Float(v)
	return ok && f >= lo && f <= hi
}

func missing(name string) error {
	return fmt.Errorf("%w: %s", transformer.ErrMissingColumn, name)
}
