package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// APIMetricsCollector records traffic to the game API. It satisfies
// api.RequestMetrics.
type APIMetricsCollector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	retries         *prometheus.CounterVec
	rateLimitWait   *prometheus.HistogramVec
	breakerState    prometheus.GaugeFunc
}

// NewAPIMetricsCollector creates an API metrics collector. breakerState, when
// non-nil, is sampled at scrape time (0 closed, 1 open, 2 half-open).
func NewAPIMetricsCollector(breakerState func() float64) *APIMetricsCollector {
	if breakerState == nil {
		breakerState = func() float64 { return 0 }
	}

	return &APIMetricsCollector{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "esi",
				Name:      "requests_total",
				Help:      "Total number of game API requests by method, endpoint and status code",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "esi",
				Name:      "request_duration_seconds",
				Help:      "Game API request duration distribution",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
			},
			[]string{"method", "endpoint"},
		),

		retries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "esi",
				Name:      "retries_total",
				Help:      "Total number of game API retry attempts",
			},
			[]string{"method", "endpoint", "reason"},
		),

		rateLimitWait: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "esi",
				Name:      "rate_limit_wait_seconds",
				Help:      "Time spent waiting for the client-side rate limiter",
				Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1.0, 2.0, 5.0},
			},
			[]string{"method", "endpoint"},
		),

		breakerState: prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "esi",
				Name:      "circuit_breaker_state",
				Help:      "Circuit breaker state (0 closed, 1 open, 2 half-open)",
			},
			breakerState,
		),
	}
}

// Register registers the API metrics with reg
func (c *APIMetricsCollector) Register(reg prometheus.Registerer) error {
	return registerAll(reg, c.requestsTotal, c.requestDuration, c.retries, c.rateLimitWait, c.breakerState)
}

// RecordRequest records one HTTP exchange. statusCode 0 means no response.
func (c *APIMetricsCollector) RecordRequest(method, endpoint string, statusCode int, duration time.Duration) {
	c.requestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	c.requestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordRetry records a retry attempt
func (c *APIMetricsCollector) RecordRetry(method, endpoint, reason string) {
	c.retries.WithLabelValues(method, endpoint, reason).Inc()
}

// RecordRateLimitWait records time spent waiting for the rate limiter
func (c *APIMetricsCollector) RecordRateLimitWait(method, endpoint string, wait time.Duration) {
	c.rateLimitWait.WithLabelValues(method, endpoint).Observe(wait.Seconds())
}
