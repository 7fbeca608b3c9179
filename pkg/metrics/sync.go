package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SyncMetrics records outcomes for reconciliation runs, labeled by operation
// (import_catalog, apply_orders, push_stock).
type SyncMetrics struct {
	duration *prometheus.HistogramVec
	items    *prometheus.CounterVec
	failures *prometheus.CounterVec
}

// NewSyncMetrics registers the sync metrics on the provided registerer.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	if reg == nil {
		return &SyncMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sync_run_duration_seconds",
		Help:    "Duration of reconciliation runs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	items := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_items_total",
		Help: "Per-item outcomes inside reconciliation runs.",
	}, []string{"operation", "outcome"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_run_failures_total",
		Help: "Reconciliation runs aborted before processing any items.",
	}, []string{"operation"})
	reg.MustRegister(duration, items, failures)
	return &SyncMetrics{
		duration: duration,
		items:    items,
		failures: failures,
	}
}

// ObserveDuration records the wall time of a completed run.
func (s *SyncMetrics) ObserveDuration(operation string, d time.Duration) {
	if s == nil || s.duration == nil {
		return
	}
	s.duration.WithLabelValues(normalizeLabel(operation)).Observe(d.Seconds())
}

// IncItem counts one per-item outcome (created, updated, processed, failed…).
func (s *SyncMetrics) IncItem(operation, outcome string) {
	if s == nil || s.items == nil {
		return
	}
	s.items.WithLabelValues(normalizeLabel(operation), normalizeLabel(outcome)).Inc()
}

// AddItems counts n per-item outcomes at once.
func (s *SyncMetrics) AddItems(operation, outcome string, n int) {
	if s == nil || s.items == nil || n <= 0 {
		return
	}
	s.items.WithLabelValues(normalizeLabel(operation), normalizeLabel(outcome)).Add(float64(n))
}

// IncRunFailure counts an aborted run.
func (s *SyncMetrics) IncRunFailure(operation string) {
	if s == nil || s.failures == nil {
		return
	}
	s.failures.WithLabelValues(normalizeLabel(operation)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
