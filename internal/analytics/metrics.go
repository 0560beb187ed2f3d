package analytics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds Prometheus metrics for analytics and session tracking.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	InteractionsTotal *prometheus.CounterVec
	SessionMinutes    prometheus.Counter
	AnalysisDuration  prometheus.Histogram
	EntriesAnalyzed   prometheus.Gauge
}

// NewMetrics creates and registers the analytics metrics on the default registry.
// Registration happens once per process.
//
// Metrics:
//   - psycomed_interactions_total{feature} - UI interactions by feature
//   - psycomed_session_minutes_total - minutes of tracked session time
//   - psycomed_analysis_duration_seconds - time spent computing derived metrics
//   - psycomed_entries_analyzed - entry count of the latest analysis
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			InteractionsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "psycomed_interactions_total",
					Help: "Total number of tracked UI interactions",
				},
				[]string{"feature"},
			),
			SessionMinutes: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "psycomed_session_minutes_total",
					Help: "Total minutes of tracked session time",
				},
			),
			AnalysisDuration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "psycomed_analysis_duration_seconds",
					Help:    "Duration of a full analytics pass in seconds",
					Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12), // 0.1ms to ~200ms
				},
			),
			EntriesAnalyzed: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "psycomed_entries_analyzed",
					Help: "Number of entries in the latest analytics pass",
				},
			),
		}
	})
	return globalMetrics
}

// RecordInteraction counts one interaction with feature
func (m *Metrics) RecordInteraction(feature string) {
	if m == nil {
		return
	}
	m.InteractionsTotal.WithLabelValues(feature).Inc()
}

// RecordSessionMinute counts one minute of session time
func (m *Metrics) RecordSessionMinute() {
	if m == nil {
		return
	}
	m.SessionMinutes.Inc()
}

// RecordAnalysis observes one analytics pass
func (m *Metrics) RecordAnalysis(d time.Duration, entries int) {
	if m == nil {
		return
	}
	m.AnalysisDuration.Observe(d.Seconds())
	m.EntriesAnalyzed.Set(float64(entries))
}
