package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/riskibarqy/esport-notifier/internal/usecase"
)

const metricsNamespace = "esport_notifier"

// NotificationMetrics is the Prometheus implementation of
// usecase.NotificationMetrics. Each instance owns its registry.
type NotificationMetrics struct {
	registry *prometheus.Registry

	sourceFetches  *prometheus.CounterVec
	sourceMatches  *prometheus.CounterVec
	sourceRejected *prometheus.CounterVec
	deliveries     *prometheus.CounterVec
	sweeps         *prometheus.CounterVec
	sweepDuration  prometheus.Histogram
	sweepLastCount *prometheus.GaugeVec
}

var _ usecase.NotificationMetrics = (*NotificationMetrics)(nil)

func NewNotificationMetrics() *NotificationMetrics {
	m := &NotificationMetrics{
		registry: prometheus.NewRegistry(),
		sourceFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "source_fetches_total",
			Help:      "Provider fetches per game and phase source.",
		}, []string{"source", "status"}),
		sourceMatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "source_matches_total",
			Help:      "Normalized matches returned per source.",
		}, []string{"source"}),
		sourceRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "source_rejected_total",
			Help:      "Provider records dropped by the normalizer.",
		}, []string{"source"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "deliveries_total",
			Help:      "Reminder delivery attempts by outcome.",
		}, []string{"outcome"}),
		sweeps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "sweeps_total",
			Help:      "Completed notification sweeps.",
		}, []string{"status"}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "sweep_duration_seconds",
			Help:      "Wall time of a notification sweep.",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 30, 60},
		}),
		sweepLastCount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "sweep_last_count",
			Help:      "Counters of the most recent sweep.",
		}, []string{"kind"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.sourceFetches,
		m.sourceMatches,
		m.sourceRejected,
		m.deliveries,
		m.sweeps,
		m.sweepDuration,
		m.sweepLastCount,
	)
	return m
}

func (m *NotificationMetrics) ObserveSource(label string, matches, rejected int, err error) {
	m.sourceFetches.WithLabelValues(label, statusLabel(err)).Inc()
	if err != nil {
		return
	}
	m.sourceMatches.WithLabelValues(label).Add(float64(matches))
	m.sourceRejected.WithLabelValues(label).Add(float64(rejected))
}

func (m *NotificationMetrics) ObserveDelivery(outcome usecase.DeliveryOutcome) {
	m.deliveries.WithLabelValues(string(outcome)).Inc()
}

func (m *NotificationMetrics) ObserveSweep(result usecase.SweepResult, err error, elapsed time.Duration) {
	m.sweeps.WithLabelValues(statusLabel(err)).Inc()
	m.sweepDuration.Observe(elapsed.Seconds())
	if err != nil {
		return
	}
	m.sweepLastCount.WithLabelValues("matches").Set(float64(result.MatchCount))
	m.sweepLastCount.WithLabelValues("notifications").Set(float64(result.NotificationCount))
	m.sweepLastCount.WithLabelValues("attempts").Set(float64(result.AttemptCount))
	m.sweepLastCount.WithLabelValues("skipped").Set(float64(result.SkippedCount))
	m.sweepLastCount.WithLabelValues("failed").Set(float64(result.FailedCount))
}

// Handler serves the registry in the Prometheus text format.
func (m *NotificationMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
