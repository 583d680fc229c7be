// Package metrics exposes Prometheus instrumentation for the optimizer.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus collectors. A nil *Metrics is
// valid and records nothing, so tests can skip instrumentation.
type Metrics struct {
	runsTotal     *prometheus.CounterVec
	solveDuration prometheus.Histogram
}

// New registers the collectors with reg and returns the Metrics handle.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "optimization_runs_total",
			Help: "Optimization runs by terminal status.",
		}, []string{"status"}),
		solveDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "solver_solve_duration_seconds",
			Help:    "Wall-clock duration of the LP solve.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// RunFinished counts a run reaching a terminal status.
func (m *Metrics) RunFinished(status string) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(status).Inc()
}

// ObserveSolveDuration records one solve's duration.
func (m *Metrics) ObserveSolveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.solveDuration.Observe(d.Seconds())
}
