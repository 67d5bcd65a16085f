// Package cleaning is the entry point of the cleaning pipeline. Run reads the
// raw export whole, runs the stages in order and writes the cleaned file:
//
//	raw CSV -> Normalize -> Impute -> Outliers -> DeDup -> Derive -> clean CSV
//
// The output is written only after every stage has completed.
package cleaning

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"housing-etl/internal/config"
	"housing-etl/internal/datasource/file"
	"housing-etl/internal/housing"
	"housing-etl/internal/metrics"
	csvparser "housing-etl/internal/parser/csv"
	"housing-etl/internal/skiplog"
	"housing-etl/internal/table"
	"housing-etl/internal/transformer"
	"housing-etl/internal/transformer/builtin"
)

// ErrMissingColumn reports that the raw file lacks a column the stages need.
var ErrMissingColumn = transformer.ErrMissingColumn

// Options is the explicit configuration of one run.
type Options struct {
	RawPath   string
	CleanPath string
	// RejectsPath, when set, receives a CSV log of the rows removed by the
	// filters.
	RejectsPath string

	// RunID labels the run in logs and metrics; a UUID is generated when
	// empty.
	RunID string
	// Job is the metrics job label. Defaults to "clean".
	Job string

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Result is the outcome of a successful run.
type Result struct {
	Report *transformer.Report
	// Table is the cleaned table as written.
	Table *table.Table
}

// Stages returns the pipeline in execution order. rejects may be nil.
func Stages(rejects transformer.Rejecter) transformer.Chain {
	return transformer.Chain{
		builtin.Normalize{},
		builtin.Impute{},
		builtin.Outliers{Rejects: rejects},
		builtin.DeDup{Key: housing.PropertyID, Rejects: rejects},
		builtin.Derive{},
	}
}

// Run executes the pipeline for opt. Fatal errors wrap
// config.ErrConfiguration, file.ErrSourceUnavailable or ErrMissingColumn;
// malformed individual values never fail a run.
func Run(ctx context.Context, opt Options) (Result, error) {
	if opt.RawPath == "" {
		return Result{}, fmt.Errorf("%w: raw data path is not set", config.ErrConfiguration)
	}
	if opt.CleanPath == "" {
		return Result{}, fmt.Errorf("%w: clean data path is not set", config.ErrConfiguration)
	}
	if opt.RunID == "" {
		opt.RunID = uuid.NewString()
	}
	if opt.Job == "" {
		opt.Job = "clean"
	}
	log := opt.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("run_id", opt.RunID)

	began := time.Now()
	start := began
	t, stats, err := read(ctx, opt.RawPath)
	metrics.RecordStage(opt.Job, "read", err, time.Since(start))
	if err != nil {
		return Result{}, err
	}
	log.Info("clean: raw data loaded", "path", opt.RawPath, "rows", t.Len(), "columns", t.Width(),
		"skipped", stats.Skipped, "padded", stats.Padded)

	for _, name := range housing.Required {
		if _, ok := t.Index(name); !ok {
			return Result{}, fmt.Errorf("clean: %s: %w: %s", opt.RawPath, ErrMissingColumn, name)
		}
	}

	rep := transformer.NewReport(opt.RunID)
	rep.RowsIn = t.Len()
	for col, n := range stats.ParseFailures {
		rep.ParseFailed(col, n)
	}

	var rejects *skiplog.Log
	var rejectBuf bytes.Buffer
	if opt.RejectsPath != "" {
		if rejects, err = skiplog.New(&rejectBuf); err != nil {
			return Result{}, err
		}
	}

	chainErr := Stages(rejecterOrNil(rejects)).Apply(ctx, t, rep)
	for _, s := range rep.Stages {
		metrics.RecordStage(opt.Job, s.Name, s.Err, s.Duration)
	}
	if chainErr != nil {
		return Result{}, fmt.Errorf("clean: %w", chainErr)
	}
	rep.RowsOut = t.Len()

	start = time.Now()
	err = file.WriteAtomic(opt.CleanPath, func(w io.Writer) error {
		return csvparser.Write(w, t)
	})
	metrics.RecordStage(opt.Job, "write", err, time.Since(start))
	if err != nil {
		return Result{}, fmt.Errorf("clean: write %s: %w", opt.CleanPath, err)
	}

	if rejects != nil {
		if err := rejects.Flush(); err != nil {
			return Result{}, err
		}
		if err := file.WriteAtomic(opt.RejectsPath, func(w io.Writer) error {
			_, err := w.Write(rejectBuf.Bytes())
			return err
		}); err != nil {
			return Result{}, fmt.Errorf("clean: write %s: %w", opt.RejectsPath, err)
		}
		log.Info("clean: rejects written", "path", opt.RejectsPath, "reasons", rejects.Summary())
	}

	logReport(log, rep)
	recordReport(opt.Job, rep)
	log.Info("clean: cleaned data saved", "path", opt.CleanPath, "rows", t.Len(), "columns", t.Width(),
		"elapsed", time.Since(began).Round(time.Millisecond))
	return Result{Report: rep, Table: t}, nil
}

func read(ctx context.Context, path string) (*table.Table, csvparser.Stats, error) {
	rc, err := file.NewLocal(path).Open(ctx)
	if err != nil {
		return nil, csvparser.Stats{}, err
	}
	defer rc.Close()

	t, stats, err := csvparser.Read(rc, csvparser.Options{Schema: housing.RawSchema()})
	if err != nil {
		return nil, stats, fmt.Errorf("%w: read %s: %w", file.ErrSourceUnavailable, path, err)
	}
	return t, stats, nil
}

// rejecterOrNil keeps a nil *skiplog.Log from becoming a non-nil interface.
func rejecterOrNil(l *skiplog.Log) transformer.Rejecter {
	if l == nil {
		return nil
	}
	return l
}

func logReport(log *slog.Logger, rep *transformer.Report) {
	for _, imp := range rep.Imputations {
		log.Info("clean: filled missing values", "column", imp.Column, "strategy", string(imp.Strategy),
			"value", table.FormatCell(imp.Value), "rows", imp.Filled)
	}
	for col, n := range rep.ParseFailures {
		log.Debug("clean: unparseable values", "column", col, "rows", n)
	}
	log.Info("clean: outliers removed",
		"bedrooms", rep.DroppedBy(builtin.ReasonBedrooms),
		"price", rep.DroppedBy(builtin.ReasonPrice))
	log.Info("clean: duplicates removed", "rows", rep.DroppedBy(builtin.ReasonDuplicate))
	for _, s := range rep.Stages {
		log.Debug("clean: stage done", "stage", s.Name, "in", s.RowsIn, "out", s.RowsOut, "elapsed", s.Duration)
	}
	if rep.PricePerSqftOverCeiling > 0 {
		log.Warn("clean: Price_Per_Sqft above table limit",
			"max", rep.MaxPricePerSqft, "rows", rep.PricePerSqftOverCeiling, "limit", transformer.PricePerSqftCeiling)
	} else if !math.IsNaN(rep.MaxPricePerSqft) {
		log.Info("clean: max Price_Per_Sqft", "value", rep.MaxPricePerSqft)
	}
}

func recordReport(job string, rep *transformer.Report) {
	metrics.RecordRows(job, "read", int64(rep.RowsIn))
	metrics.RecordRows(job, "written", int64(rep.RowsOut))
	metrics.RecordRows(job, "dropped_bedrooms", int64(rep.DroppedBy(builtin.ReasonBedrooms)))
	metrics.RecordRows(job, "dropped_price", int64(rep.DroppedBy(builtin.ReasonPrice)))
	metrics.RecordRows(job, "dropped_duplicate", int64(rep.DroppedBy(builtin.ReasonDuplicate)))
	filled := 0
	for _, imp := range rep.Imputations {
		filled += imp.Filled
	}
	metrics.RecordRows(job, "imputed", int64(filled))
	failed := 0
	for _, n := range rep.ParseFailures {
		failed += n
	}
	metrics.RecordRows(job, "parse_failures", int64(failed))
}
