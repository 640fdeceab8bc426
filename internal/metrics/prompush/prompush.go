// Package prompush is a Prometheus Pushgateway backend for package metrics.
// Collectors live in a private registry that Flush pushes under the job's
// grouping key.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/mfonekpo/springer-capital/internal/metrics"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string
	jobName    string
	reg        *prometheus.Registry

	stepCounter   *prometheus.CounterVec
	stepDuration  *prometheus.SummaryVec
	recordCounter *prometheus.CounterVec
}

// NewBackend builds a backend pushing to gatewayURL under jobName.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "recon"
	}

	b := &Backend{
		gatewayURL: gatewayURL,
		jobName:    jobName,
		reg:        prometheus.NewRegistry(),
		stepCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.StepTotal,
			Help: "Pipeline step executions by step and status.",
		}, []string{"step", "status"}),
		stepDuration: prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Name:       metrics.StepDurationSeconds,
			Help:       "Pipeline step duration in seconds by step and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}, []string{"step", "status"}),
		recordCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.RecordsTotal,
			Help: "Record counts by kind (referrals, valid, invalid, parse_errors, stored).",
		}, []string{"kind"}),
	}
	for _, c := range []prometheus.Collector{b.stepCounter, b.stepDuration, b.recordCounter} {
		if err := b.reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register: %w", err)
		}
	}
	return b, nil
}

// IncCounter implements metrics.Backend. The job label is carried by the
// Pushgateway grouping key instead of a metric label.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.StepTotal:
		b.stepCounter.WithLabelValues(labels["step"], labels["status"]).Add(delta)
	case metrics.RecordsTotal:
		b.recordCounter.WithLabelValues(labels["kind"]).Add(delta)
	}
}

// ObserveHistogram implements metrics.Backend.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.StepDurationSeconds {
		return
	}
	b.stepDuration.WithLabelValues(labels["step"], labels["status"]).Observe(value)
}

// Flush pushes the registry to the Pushgateway, replacing the job's group.
func (b *Backend) Flush() error {
	if err := push.New(b.gatewayURL, b.jobName).Gatherer(b.reg).Push(); err != nil {
		return fmt.Errorf("prompush: push: %w", err)
	}
	return nil
}
