package prometheus

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// DefaultRegistry is the default Prometheus registry
	DefaultRegistry = prometheus.NewRegistry()

	// DefaultRegisterer is the default Prometheus registerer
	DefaultRegisterer = prometheus.WrapRegistererWith(prometheus.Labels{"service": "blockmul"}, DefaultRegistry)

	// Metrics collection
	metricsOnce sync.Once
	metrics     *Metrics
)

// Metrics holds all Prometheus metrics for the block multiplier pool
type Metrics struct {
	// Job metrics
	JobsCompletedTotal prometheus.Counter
	JobDuration        prometheus.Histogram

	// Invocation metrics
	InvocationsTotal   prometheus.Counter
	InvocationDuration prometheus.Histogram

	// Pool metrics
	QueueDepth        prometheus.Gauge
	ActiveInvocations prometheus.Gauge
	PoolWorkers       prometheus.Gauge
}

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = NewMetrics(DefaultRegisterer)
	})
	return metrics
}

// NewMetrics creates a new metrics collection
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = DefaultRegisterer
	}

	return &Metrics{
		JobsCompletedTotal: promauto.With(registerer).NewCounter(
			prometheus.CounterOpts{
				Name: "blockmul_jobs_completed_total",
				Help: "Total number of block-compute jobs completed by the pool",
			},
		),
		JobDuration: promauto.With(registerer).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "blockmul_job_duration_seconds",
				Help:    "Block-compute job duration in seconds",
				Buckets: prometheus.ExponentialBuckets(1e-6, 10, 8), // 1us to 10s
			},
		),
		InvocationsTotal: promauto.With(registerer).NewCounter(
			prometheus.CounterOpts{
				Name: "blockmul_invocations_total",
				Help: "Total number of multiply invocations",
			},
		),
		InvocationDuration: promauto.With(registerer).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "blockmul_invocation_duration_seconds",
				Help:    "Multiply invocation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		QueueDepth: promauto.With(registerer).NewGauge(
			prometheus.GaugeOpts{
				Name: "blockmul_queue_depth",
				Help: "Number of jobs currently waiting in the dispatch queue",
			},
		),
		ActiveInvocations: promauto.With(registerer).NewGauge(
			prometheus.GaugeOpts{
				Name: "blockmul_active_invocations",
				Help: "Number of multiply invocations currently in flight",
			},
		),
		PoolWorkers: promauto.With(registerer).NewGauge(
			prometheus.GaugeOpts{
				Name: "blockmul_pool_workers",
				Help: "Number of worker goroutines in the pool",
			},
		),
	}
}

// RecordJob records a completed block-compute job
func (m *Metrics) RecordJob(duration time.Duration) {
	m.JobsCompletedTotal.Inc()
	m.JobDuration.Observe(duration.Seconds())
}

// RecordInvocation records a completed multiply invocation
func (m *Metrics) RecordInvocation(duration time.Duration) {
	m.InvocationsTotal.Inc()
	m.InvocationDuration.Observe(duration.Seconds())
}

// Handler returns an HTTP handler that serves the default registry
// Mount it on /metrics for Prometheus scraping
func Handler() http.Handler {
	return promhttp.HandlerFor(DefaultRegistry, promhttp.HandlerOpts{})
}
