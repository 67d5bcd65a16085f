package storage

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"housing-etl/internal/metrics"
)

// CopyFn inserts rows aligned to columns and returns the number of rows
// reported as inserted. Repository.CopyFrom satisfies it.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// BatchOptions configures LoadBatches.
type BatchOptions struct {
	// Size is the number of rows per CopyFn call. Must be > 0.
	Size int
	// Job labels the per-batch metrics. Defaults to "load".
	Job string
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// LoadBatches drains rows from in, groups them into batches of opt.Size and
// calls copyFn once per non-empty batch. Every batch is logged and counted as
// a success or failure; the first failure stops the load.
//
// It returns the total reported by copyFn and the first error. When ctx is
// canceled it returns (total, ctx.Err()).
func LoadBatches(ctx context.Context, columns []string, in <-chan []any, opt BatchOptions, copyFn CopyFn) (int64, error) {
	if opt.Size <= 0 {
		return 0, errors.New("storage: batch size must be > 0")
	}
	if copyFn == nil {
		return 0, errors.New("storage: copyFn must not be nil")
	}
	if opt.Job == "" {
		opt.Job = "load"
	}
	log := opt.Logger
	if log == nil {
		log = slog.Default()
	}

	var (
		total     int64
		batches   int
		batch     = make([][]any, 0, opt.Size)
		start     = time.Now()
		lastFlush = start
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		batches++
		n, err := copyFn(ctx, columns, batch)
		total += n
		size := len(batch)
		batch = batch[:0]
		metrics.RecordBatch(opt.Job, err)
		if err != nil {
			log.Error("load: batch failed", "batch", batches, "rows", size, "total_inserted", total, "err", err)
			return err
		}

		now := time.Now()
		since := now.Sub(lastFlush)
		rps := 0.0
		if since > 0 {
			rps = float64(n) / since.Seconds()
		}
		log.Info("load: batch inserted", "batch", batches, "rows", n, "total_inserted", total,
			"rps", int64(rps), "elapsed", now.Sub(start).Truncate(time.Millisecond))
		lastFlush = now
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		case row, ok := <-in:
			if !ok {
				if err := flush(); err != nil {
					return total, err
				}
				log.Debug("load: input closed", "batches", batches, "total_inserted", total)
				return total, nil
			}
			// Backends keep no reference to a batch after CopyFn returns, so
			// the slice is reused.
			batch = append(batch, row)
			if len(batch) >= opt.Size {
				if err := flush(); err != nil {
					return total, err
				}
			}
		}
	}
}
