// Package builtin contains the cleaning stages of the housing pipeline.
//
// Derive adds the analysis columns:
//
//   - Purchase_Quarter is rewritten as "YYYYQn" and split into
//     Purchase_Year ("YYYY") and Quarter ("Qn"); an unparseable date nulls
//     all three.
//   - Price_Per_Sqft is Ticket_Price_Cr in rupees over Unit_Size_Sqft,
//     rounded half to even at two decimals; nil when either input is
//     missing or the size is zero.
//   - Booking_Flag is 1 for "ready to move" and 0 for everything else.
//
// Derive runs last, after filtering, so the derived values describe only the
// rows that reach the clean file.
package builtin

import (
	"context"
	"fmt"
	"math"
	"strings"

	"housing-etl/internal/housing"
	"housing-etl/internal/table"
	"housing-etl/internal/transformer"
)

// bookingFlags maps a lower-cased Possession_Status to Booking_Flag.
// Unlisted statuses are 0.
var bookingFlags = map[string]int64{
	"ready to move":      1,
	"under construction": 0,
	"launch":             0,
}

// Derive computes the period, price-per-area and booking columns. Each
// derivation runs only when its source column is present.
type Derive struct{}

func (Derive) Name() string { return "derive" }

func (Derive) Apply(_ context.Context, t *table.Table, rep *transformer.Report) error {
	if q, ok := t.Index(housing.PurchaseQuarter); ok {
		derivePeriod(t, q, rep)
	}
	if size, ok := t.Index(housing.UnitSizeSqft); ok {
		price, err := requireColumn(t, housing.TicketPriceCr)
		if err != nil {
			return err
		}
		derivePricePerSqft(t, price, size, rep)
	}
	if st, ok := t.Index(housing.PossessionStatus); ok {
		bf := t.AddColumn(table.Column{Name: housing.BookingFlag, Type: table.TypeInt})
		for r := 0; r < t.Len(); r++ {
			t.Set(r, bf, BookingFlag(t.Get(r, st)))
		}
	}
	return nil
}

func derivePeriod(t *table.Table, q int, rep *transformer.Report) {
	t.SetType(q, table.TypeText)
	year := t.AddColumn(table.Column{Name: housing.PurchaseYear, Type: table.TypeText})
	qtr := t.AddColumn(table.Column{Name: housing.Quarter, Type: table.TypeText})

	failed := 0
	for r := 0; r < t.Len(); r++ {
		raw := t.Get(r, q)
		p, ok := QuarterOf(raw)
		if !ok {
			if present(raw) {
				failed++
			}
			t.Set(r, q, nil)
			t.Set(r, year, nil)
			t.Set(r, qtr, nil)
			continue
		}
		t.Set(r, q, p)
		t.Set(r, year, p[:4])
		t.Set(r, qtr, p[len(p)-2:])
	}
	rep.ParseFailed(housing.PurchaseQuarter, failed)
}

func derivePricePerSqft(t *table.Table, price, size int, rep *transformer.Report) {
	pps := t.AddColumn(table.Column{Name: housing.PricePerSqft, Type: table.TypeFloat})
	for r := 0; r < t.Len(); r++ {
		v := PricePerSqft(t.Get(r, price), t.Get(r, size))
		t.Set(r, pps, v)
		if f, ok := v.(float64); ok {
			rep.ObservePricePerSqft(f)
		}
	}
}

// QuarterOf parses v as a calendar date and returns its quarter as
// "YYYYQn".
func QuarterOf(v any) (string, bool) {
	s, ok := text(v)
	if !ok {
		return "", false
	}
	d, ok := table.ParseDate(s)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%04dQ%d", d.Year(), (int(d.Month())-1)/3+1), true
}

// PricePerSqft returns priceCr * Crore / sizeSqft rounded to two decimals,
// or nil when either operand is missing, the size is zero, or the result is
// not finite.
func PricePerSqft(priceCr, sizeSqft any) any {
	p, ok := table.Float(priceCr)
	if !ok {
		return nil
	}
	s, ok := table.Float(sizeSqft)
	if !ok || s == 0 {
		return nil
	}
	v := p * Crore / s
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return Round2(v)
}

// Round2 rounds to two decimals, halves to even.
func Round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}

// BookingFlag is 1 for "ready to move" in any case and 0 otherwise.
func BookingFlag(status any) int64 {
	s, ok := status.(string)
	if !ok {
		return 0
	}
	return bookingFlags[strings.ToLower(s)]
}
