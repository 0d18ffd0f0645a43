package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// AggregatorMetricsCollector records colony aggregation metrics. It
// satisfies services.AggregatorMetrics.
type AggregatorMetricsCollector struct {
	fetchDuration *prometheus.HistogramVec
	results       *prometheus.CounterVec
	cacheLookups  *prometheus.CounterVec
	inFlight      prometheus.Gauge
}

// NewAggregatorMetricsCollector creates a new aggregator metrics collector
func NewAggregatorMetricsCollector() *AggregatorMetricsCollector {
	return &AggregatorMetricsCollector{
		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "aggregator",
				Name:      "snapshot_fetch_duration_seconds",
				Help:      "Colony snapshot fetch duration distribution",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"status"},
		),

		results: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "aggregator",
				Name:      "colony_results_total",
				Help:      "Colony results produced by outcome (computed, cached, failed, cancelled)",
			},
			[]string{"status"},
		),

		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "aggregator",
				Name:      "result_cache_lookups_total",
				Help:      "Result cache lookups by outcome",
			},
			[]string{"result"},
		),

		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "aggregator",
				Name:      "colonies_in_flight",
				Help:      "Colonies currently being fetched or simulated",
			},
		),
	}
}

// Register registers the aggregator metrics with reg
func (c *AggregatorMetricsCollector) Register(reg prometheus.Registerer) error {
	return registerAll(reg, c.fetchDuration, c.results, c.cacheLookups, c.inFlight)
}

// ObserveFetch records a snapshot fetch
func (c *AggregatorMetricsCollector) ObserveFetch(duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.fetchDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordResult counts one colony result by status
func (c *AggregatorMetricsCollector) RecordResult(status string) {
	c.results.WithLabelValues(status).Inc()
}

// RecordCacheLookup counts a result cache lookup
func (c *AggregatorMetricsCollector) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.cacheLookups.WithLabelValues(result).Inc()
}

// SetInFlight sets the number of colonies in progress
func (c *AggregatorMetricsCollector) SetInFlight(n int) {
	c.inFlight.Set(float64(n))
}
