// Package metrics defines Prometheus metrics for pipeline runs.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/custodia-labs/dself/internal/core/domain"
	"github.com/custodia-labs/dself/internal/core/ports/driven"
)

// Ensure Collector implements the RunObserver interface.
var _ driven.RunObserver = (*Collector)(nil)

// Collector records run reports into its own registry.
type Collector struct {
	registry *prometheus.Registry

	RunsTotal        *prometheus.CounterVec
	RecordsExtracted *prometheus.CounterVec
	RecordsPersisted *prometheus.CounterVec
	RunDuration      *prometheus.HistogramVec
	LastRunTimestamp *prometheus.GaugeVec
	LastRunSuccess   *prometheus.GaugeVec
}

// New creates a Collector with all metrics registered.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dself_runs_total",
				Help: "Total pipeline runs by source, final state and destination",
			},
			[]string{"source", "state", "destination"},
		),
		RecordsExtracted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dself_records_extracted_total",
				Help: "Total raw items extracted",
			},
			[]string{"source"},
		),
		RecordsPersisted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dself_records_persisted_total",
				Help: "Total records persisted by destination",
			},
			[]string{"source", "destination"},
		),
		RunDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dself_run_duration_seconds",
				Help:    "Pipeline run duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		LastRunTimestamp: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "dself_last_run_timestamp_seconds",
				Help: "Unix time the last run of a source ended",
			},
			[]string{"source"},
		),
		LastRunSuccess: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "dself_last_run_success",
				Help: "1 if the last run of a source succeeded, else 0",
			},
			[]string{"source"},
		),
	}
	c.registry.MustRegister(
		c.RunsTotal, c.RecordsExtracted, c.RecordsPersisted,
		c.RunDuration, c.LastRunTimestamp, c.LastRunSuccess,
	)
	return c
}

// Registry returns the registry holding the metrics.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveRun implements driven.RunObserver.
func (c *Collector) ObserveRun(r domain.RunReport) {
	source := string(r.Source)
	dest := string(r.Destination)
	if dest == "" {
		dest = string(domain.DestinationNone)
	}

	c.RunsTotal.WithLabelValues(source, string(r.State), dest).Inc()
	c.RecordsExtracted.WithLabelValues(source).Add(float64(r.Extracted))
	if r.Persisted > 0 {
		c.RecordsPersisted.WithLabelValues(source, dest).Add(float64(r.Persisted))
	}
	if !r.EndedAt.IsZero() {
		c.RunDuration.WithLabelValues(source).Observe(r.Duration().Seconds())
		c.LastRunTimestamp.WithLabelValues(source).Set(float64(r.EndedAt.Unix()))
	}
	success := 0.0
	if r.Succeeded() {
		success = 1
	}
	c.LastRunSuccess.WithLabelValues(source).Set(success)
}

// WriteTextfile writes the metrics in the node_exporter textfile format.
// The write is atomic.
func (c *Collector) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
