// Package transformer runs an ordered list of stages over an in-memory table
// and collects what each stage did into a Report.
//
// A Stage mutates the table in place: it may rewrite cells, change a
// column's declared type, append columns or drop rows. Stages do not fail on
// individual bad values; they null the cell and count it in the Report.
// An error from a stage means the whole run is unusable (a required column
// is missing, the context was canceled) and Chain stops at once.
//
// Rows dropped by a stage can be handed to a Rejecter, which is how the skip
// log sees them without the stages knowing about files.
package transformer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"housing-etl/internal/table"
)

// ErrMissingColumn is returned by stages whose source column is absent from
// the table.
var ErrMissingColumn = errors.New("missing required column")

// Stage mutates t in place. Stages never fail on individual malformed values;
// an error means the table is unusable (for example a required column is
// missing) and aborts the run.
type Stage interface {
	Name() string
	Apply(ctx context.Context, t *table.Table, rep *Report) error
}

// Rejecter receives rows removed by filtering stages. Implementations must
// not retain row.
type Rejecter interface {
	Reject(reason string, columns []string, row []any)
}

// Chain is an ordered list of stages.
type Chain []Stage

// Apply runs every stage in order, stopping at the first error or when ctx is
// done. Per-stage timings are appended to rep.Stages.
func (c Chain) Apply(ctx context.Context, t *table.Table, rep *Report) error {
	for _, s := range c {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		in := t.Len()
		err := s.Apply(ctx, t, rep)
		rep.Stages = append(rep.Stages, StageRun{
			Name:     s.Name(),
			RowsIn:   in,
			RowsOut:  t.Len(),
			Duration: time.Since(start),
			Err:      err,
		})
		if err != nil {
			return fmt.Errorf("transformer: %s: %w", s.Name(), err)
		}
	}
	return nil
}
