// Package loader bulk-inserts the cleaned CSV into the luxury_housing table.
//
// A producer goroutine decodes the file into housing.Listing records and
// hands their values to storage.LoadBatches, which inserts them batch by
// batch through the configured storage backend. The destination table must
// already exist.
package loader

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/jszwec/csvutil"
	"golang.org/x/sync/errgroup"

	"housing-etl/internal/datasource/file"
	"housing-etl/internal/housing"
	"housing-etl/internal/metrics"
	"housing-etl/internal/storage"
)

// ErrSchema reports a cleaned file whose header lacks table columns.
var ErrSchema = errors.New("cleaned file does not match table columns")

// Options configures one load.
type Options struct {
	CleanPath string
	Storage   storage.Config
	// BatchSize is the number of rows per bulk insert. Defaults to 1000.
	BatchSize int
	// Job is the metrics job label. Defaults to "load".
	Job    string
	Logger *slog.Logger
}

// Result summarizes a load.
type Result struct {
	// Decoded is the number of records read from the file.
	Decoded int64
	// Inserted is the number of rows the backend reported as inserted.
	Inserted int64
}

// Run loads opt.CleanPath into the configured table. A missing or unreadable
// file wraps file.ErrSourceUnavailable and is reported before any connection
// is opened.
func Run(ctx context.Context, opt Options) (Result, error) {
	return runWith(ctx, opt, storage.New)
}

func runWith(ctx context.Context, opt Options, open storage.Factory) (Result, error) {
	if opt.BatchSize <= 0 {
		opt.BatchSize = 1000
	}
	if opt.Job == "" {
		opt.Job = "load"
	}
	log := opt.Logger
	if log == nil {
		log = slog.Default()
	}

	rc, err := file.NewLocal(opt.CleanPath).Open(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load: %w", err)
	}
	defer rc.Close()
	dec, err := newDecoder(rc)
	if err != nil {
		return Result{}, fmt.Errorf("load: %s: %w", opt.CleanPath, err)
	}

	repo, err := open(ctx, opt.Storage)
	if err != nil {
		return Result{}, fmt.Errorf("load: open %s: %w", opt.Storage.Kind, err)
	}
	defer repo.Close()
	log.Info("load: connected", "kind", opt.Storage.Kind, "table", opt.Storage.Table)

	start := time.Now()
	var res Result
	g, gctx := errgroup.WithContext(ctx)
	rows := make(chan []any, opt.BatchSize)

	g.Go(func() error {
		defer close(rows)
		for {
			var l housing.Listing
			if err := dec.Decode(&l); err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				return fmt.Errorf("load: decode %s: %w", opt.CleanPath, err)
			}
			select {
			case rows <- l.Values():
				res.Decoded++
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})
	g.Go(func() error {
		n, err := storage.LoadBatches(gctx, housing.CleanSchema().Names(), rows, storage.BatchOptions{
			Size:   opt.BatchSize,
			Job:    opt.Job,
			Logger: log,
		}, repo.CopyFrom)
		res.Inserted = n
		return err
	})
	err = g.Wait()
	metrics.RecordStage(opt.Job, "load", err, time.Since(start))
	metrics.RecordRows(opt.Job, "inserted", res.Inserted)
	if err != nil {
		return res, err
	}
	log.Info("load: rows inserted", "table", opt.Storage.Table, "rows", res.Inserted,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return res, nil
}

// newDecoder reads the header, skipping a UTF-8 BOM, and checks that every
// table column is present. Extra columns are ignored.
func newDecoder(r io.Reader) (*csvutil.Decoder, error) {
	br := bufio.NewReader(r)
	if b, err := br.Peek(3); err == nil && string(b) == "\xef\xbb\xbf" {
		_, _ = br.Discard(3)
	}
	dec, err := csvutil.NewDecoder(csv.NewReader(br))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", file.ErrSourceUnavailable)
		}
		return nil, err
	}
	header := dec.Header()
	var missing []string
	for _, name := range housing.CleanSchema().Names() {
		if !slices.Contains(header, name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %v", ErrSchema, missing)
	}
	return dec, nil
}
