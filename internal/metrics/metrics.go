// Package metrics is a small backend-agnostic layer for run metrics: step
// latency and outcome, and record counts per kind.
//
// A process-wide Backend defaults to a no-op, so instrumentation is always
// safe to call. Concrete backends (Pushgateway, Datadog) live in subpackages.
package metrics

import (
	"sync"
	"time"
)

// Metric names shared by every backend.
const (
	StepTotal           = "recon_step_total"
	StepDurationSeconds = "recon_step_duration_seconds"
	RecordsTotal        = "recon_records_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend receives metric observations.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes buffered metrics, if the backend buffers.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs b. Passing nil keeps the current backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// Flush delegates to the current backend.
func Flush() error {
	return current().Flush()
}

// RecordStep counts one execution of step and observes its duration, labelled
// success or failure by err.
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"job": job, "step": step, "status": status}

	b := current()
	b.IncCounter(StepTotal, 1, lbls)
	b.ObserveHistogram(StepDurationSeconds, d.Seconds(), lbls)
}

// RecordRow adds delta to the record counter for kind. Kinds used by the
// run: "referrals", "valid", "invalid", "parse_errors", "stored".
// Non-positive deltas are dropped.
func RecordRow(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(RecordsTotal, float64(delta), Labels{"job": job, "kind": kind})
}
