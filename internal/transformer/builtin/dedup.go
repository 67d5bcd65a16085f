// Package builtin contains the cleaning stages of the housing pipeline.
//
// DeDup collapses repeated listings by Property_ID, keeping the first
// occurrence in file order. Keys are hashed with xxh3 (128-bit) over their
// CSV rendering, so memory grows with the number of distinct keys and not
// with their length. Run it after Normalize so that equal keys render the
// same way.
package builtin

import (
	"context"

	"github.com/zeebo/xxh3"

	"housing-etl/internal/housing"
	"housing-etl/internal/table"
	"housing-etl/internal/transformer"
)

// DeDup keeps the first row for each business key and drops later ones.
// Keys are compared by their CSV rendering; nil keys compare equal to each
// other. When the key column is absent the stage does nothing.
type DeDup struct {
	// Key is the business key column. Defaults to Property_ID.
	Key string

	// Rejects, when set, receives every dropped row.
	Rejects transformer.Rejecter
}

func (DeDup) Name() string { return "dedup" }

func (d DeDup) Apply(_ context.Context, t *table.Table, rep *transformer.Report) error {
	key := d.Key
	if key == "" {
		key = housing.PropertyID
	}
	c, ok := t.Index(key)
	if !ok {
		return nil
	}
	names := t.Names()

	seen := make(map[xxh3.Uint128]struct{}, t.Len())
	n := t.Retain(func(_ int, row []any) bool {
		h := keyHash(row[c])
		if _, dup := seen[h]; !dup {
			seen[h] = struct{}{}
			return true
		}
		if d.Rejects != nil {
			d.Rejects.Reject(ReasonDuplicate, names, row)
		}
		return false
	})
	rep.Dropped(d.Name(), ReasonDuplicate, n)
	return nil
}

func keyHash(v any) xxh3.Uint128 {
	if v == nil {
		return xxh3.HashString128("\x00")
	}
	return xxh3.HashString128(table.FormatCell(v))
}
