// Package metrics exposes analysis counters on a private Prometheus
// registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codewithboateng/diguard/internal/model"
)

const (
	StatusPassed = "passed"
	StatusFailed = "failed"
	StatusError  = "error"
)

type Metrics struct {
	Registry *prometheus.Registry

	RunsTotal       *prometheus.CounterVec
	ViolationsTotal *prometheus.CounterVec
	ClassesAnalyzed prometheus.Counter
	RunDuration     prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "diguard_runs_total",
				Help: "Analysis runs by outcome",
			},
			[]string{"status"},
		),
		ViolationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "diguard_violations_total",
				Help: "Reported violations by rule and severity",
			},
			[]string{"rule", "severity"},
		),
		ClassesAnalyzed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "diguard_classes_analyzed_total",
			Help: "Classes evaluated across all runs",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "diguard_run_duration_seconds",
			Help:    "Wall time of one analysis run",
			Buckets: prometheus.DefBuckets,
		}),
	}
	m.Registry.MustRegister(
		m.RunsTotal,
		m.ViolationsTotal,
		m.ClassesAnalyzed,
		m.RunDuration,
		collectors.NewGoCollector(),
	)
	return m
}

// ObserveRun records a completed run.
func (m *Metrics) ObserveRun(run *model.Run, d time.Duration) {
	status := StatusPassed
	if run.Report.HasFailures() {
		status = StatusFailed
	}
	m.RunsTotal.WithLabelValues(status).Inc()
	m.ClassesAnalyzed.Add(float64(len(run.Classes)))
	m.RunDuration.Observe(d.Seconds())
	for _, v := range run.Report.Violations {
		m.ViolationsTotal.WithLabelValues(v.RuleID, string(v.Severity)).Inc()
	}
}

func (m *Metrics) ObserveError() { m.RunsTotal.WithLabelValues(StatusError).Inc() }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
