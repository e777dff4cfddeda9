// Package metrics exports report counts in the Prometheus textfile format.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ccollicutt/proclog/pkg/analyzer"
	"github.com/ccollicutt/proclog/pkg/output"
)

const namespace = "proclog"

// Collector holds the gauges describing one run.
type Collector struct {
	registry *prometheus.Registry

	started   *prometheus.GaugeVec
	completed *prometheus.GaugeVec
	pending   *prometheus.GaugeVec
	findings  *prometheus.GaugeVec
	lastRun   prometheus.Gauge
}

// New creates a collector with its own registry.
func New() (*Collector, error) {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		started: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "processes_started",
			Help:      "START rows in the last analyzed log.",
		}, []string{"source"}),
		completed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "processes_completed",
			Help:      "END rows matched to a START in the last analyzed log.",
		}, []string{"source"}),
		pending: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "processes_pending",
			Help:      "STARTs without a matching END in the last analyzed log.",
		}, []string{"source"}),
		findings: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "findings",
			Help:      "Processes whose duration crossed a threshold, by severity.",
		}, []string{"source", "severity"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last analysis.",
		}),
	}

	for _, cs := range []prometheus.Collector{c.started, c.completed, c.pending, c.findings, c.lastRun} {
		if err := c.registry.Register(cs); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Observe records a report's counts.
func (c *Collector) Observe(report *output.Report) {
	for _, res := range report.Results {
		r := res.Report
		c.started.WithLabelValues(res.Source).Set(float64(r.ProcessesStarted))
		c.completed.WithLabelValues(res.Source).Set(float64(r.ProcessesCompleted))
		c.pending.WithLabelValues(res.Source).Set(float64(len(r.Pending)))
		for _, sev := range []analyzer.Severity{analyzer.SeverityWarning, analyzer.SeverityError} {
			c.findings.WithLabelValues(res.Source, string(sev)).Set(float64(r.Count(sev)))
		}
	}

	if !report.Metadata.AnalyzedAt.IsZero() {
		c.lastRun.Set(float64(report.Metadata.AnalyzedAt.Unix()))
	}
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// WriteTextfile writes the report's metrics to path, replacing it atomically.
func WriteTextfile(path string, report *output.Report) error {
	c, err := New()
	if err != nil {
		return fmt.Errorf("creating metrics: %w", err)
	}
	c.Observe(report)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating metrics directory: %w", err)
		}
	}

	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}

	return nil
}
