// Package metrics provides a small, backend-agnostic abstraction for
// recording operational metrics from the report pipeline.
//
// It exposes a narrow interface (Backend) focused on counters and duration
// observations, with a global pluggable backend defaulting to a no-op, so
// metric calls are always safe even when no real backend is configured. The
// pattern mirrors the storage abstraction: the rest of the codebase depends
// only on this interface while concrete metric systems stay isolated in
// subpackages.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a duration-style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
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

// RecordStage measures one pipeline stage: an execution count labeled by
// outcome plus the duration. Stages are load, normalize, aggregate, write,
// and store.
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

	backend.IncCounter("report_stage_total", 1, lbls)
	backend.ObserveHistogram("report_stage_duration_seconds", d.Seconds(), lbls)
}

// RecordRows increments a row-level counter for the given job and kind.
//
// Kinds mirror the QA summary fields:
//   - "raw"
//   - "parsed"
//   - "dropped"
//   - "deduped"
//   - "csv_skipped"
func RecordRows(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("report_rows_total", float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordTables counts result tables written for the given job.
func RecordTables(job string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("report_tables_total", float64(delta), Labels{
		"job": job,
	})
}
