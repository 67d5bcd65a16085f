// Package metrics records operational metrics of the cleaning and loading
// jobs through a pluggable Backend.
//
// The global backend defaults to a no-op, so every Record* helper is safe to
// call when no metrics system is configured. Concrete systems live in the
// prompush (Prometheus Pushgateway) and datadog (DogStatsD) subpackages.
package metrics

import "time"

// Metric names shared by all backends.
const (
	StageTotal           = "housing_stage_total"
	StageDurationSeconds = "housing_stage_duration_seconds"
	RowsTotal            = "housing_rows_total"
	BatchesTotal         = "housing_batches_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing one.
// It is meant to be called once at startup.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStage counts one execution of a pipeline stage and observes its
// duration, labelled by outcome.
func RecordStage(job, stage string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{
		"job":    job,
		"stage":  stage,
		"status": status,
	}
	backend.IncCounter(StageTotal, 1, lbls)
	backend.ObserveHistogram(StageDurationSeconds, d.Seconds(), lbls)
}

// RecordRows adds delta rows of the given kind. Kinds used by the jobs:
//   - "read", "written" (clean)
//   - "imputed", "parse_failures"
//   - "dropped_bedrooms", "dropped_price", "dropped_duplicate"
//   - "inserted", "failed" (load)
func RecordRows(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(RowsTotal, float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordBatch counts one flushed insert batch.
func RecordBatch(job string, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	backend.IncCounter(BatchesTotal, 1, Labels{
		"job":    job,
		"status": status,
	})
}
