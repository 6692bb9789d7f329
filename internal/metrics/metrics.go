// Package metrics exposes prometheus instrumentation for the finalizer worker.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	finalizeJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "courtstats",
		Subsystem: "finalizer",
		Name:      "jobs_total",
		Help:      "Finalization jobs processed, by result.",
	}, []string{"result"})

	finalizeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "courtstats",
		Subsystem: "finalizer",
		Name:      "job_duration_seconds",
		Help:      "Wall time of one finalization job.",
		Buckets:   prometheus.DefBuckets,
	})
)

// Job results.
const (
	ResultOK      = "ok"
	ResultError   = "error"
	ResultSkipped = "skipped"
)

// ObserveFinalize records one finalization job outcome.
func ObserveFinalize(result string, elapsed time.Duration) {
	finalizeJobs.WithLabelValues(result).Inc()
	finalizeDuration.Observe(elapsed.Seconds())
}
