package metrics_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/colonysim-go/internal/adapters/metrics"
	"github.com/andrescamacho/colonysim-go/internal/application/colony/queries"
	"github.com/andrescamacho/colonysim-go/internal/application/mediator"
)

func findMetric(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) *dto.Metric {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != name {
			continue
		}
	next:
		for _, m := range family.GetMetric() {
			got := make(map[string]string)
			for _, lp := range m.GetLabel() {
				got[lp.GetName()] = lp.GetValue()
			}
			for k, v := range labels {
				if got[k] != v {
					continue next
				}
			}
			return m
		}
	}
	t.Fatalf("metric %s %v not found", name, labels)
	return nil
}

func TestAggregatorMetricsCollector_RecordsOutcomes(t *testing.T) {
	// Arrange
	reg := prometheus.NewRegistry()
	collector := metrics.NewAggregatorMetricsCollector()
	require.NoError(t, collector.Register(reg))

	// Act
	collector.RecordResult("computed")
	collector.RecordResult("computed")
	collector.RecordResult("failed")
	collector.RecordCacheLookup(true)
	collector.RecordCacheLookup(false)
	collector.RecordCacheLookup(false)
	collector.ObserveFetch(120*time.Millisecond, nil)
	collector.ObserveFetch(2*time.Second, errors.New("boom"))
	collector.SetInFlight(4)

	// Assert
	assert.Equal(t, 2.0, findMetric(t, reg, "colonysim_aggregator_colony_results_total", map[string]string{"status": "computed"}).GetCounter().GetValue())
	assert.Equal(t, 1.0, findMetric(t, reg, "colonysim_aggregator_colony_results_total", map[string]string{"status": "failed"}).GetCounter().GetValue())
	assert.Equal(t, 1.0, findMetric(t, reg, "colonysim_aggregator_result_cache_lookups_total", map[string]string{"result": "hit"}).GetCounter().GetValue())
	assert.Equal(t, 2.0, findMetric(t, reg, "colonysim_aggregator_result_cache_lookups_total", map[string]string{"result": "miss"}).GetCounter().GetValue())
	assert.Equal(t, uint64(1), findMetric(t, reg, "colonysim_aggregator_snapshot_fetch_duration_seconds", map[string]string{"status": "error"}).GetHistogram().GetSampleCount())
	assert.Equal(t, 4.0, findMetric(t, reg, "colonysim_aggregator_colonies_in_flight", nil).GetGauge().GetValue())
}

func TestAPIMetricsCollector_RecordsRequestsAndBreakerState(t *testing.T) {
	// Arrange
	reg := prometheus.NewRegistry()
	state := 0.0
	collector := metrics.NewAPIMetricsCollector(func() float64 { return state })
	require.NoError(t, collector.Register(reg))

	// Act
	collector.RecordRequest("GET", "planets", 200, 50*time.Millisecond)
	collector.RecordRequest("GET", "planets", 503, 10*time.Millisecond)
	collector.RecordRetry("GET", "planets", "server_error")
	collector.RecordRateLimitWait("GET", "planets", time.Millisecond)
	state = 1

	// Assert
	assert.Equal(t, 1.0, findMetric(t, reg, "colonysim_esi_requests_total", map[string]string{"status_code": "503"}).GetCounter().GetValue())
	assert.Equal(t, 1.0, findMetric(t, reg, "colonysim_esi_retries_total", map[string]string{"reason": "server_error"}).GetCounter().GetValue())
	assert.Equal(t, uint64(2), findMetric(t, reg, "colonysim_esi_request_duration_seconds", map[string]string{"endpoint": "planets"}).GetHistogram().GetSampleCount())
	assert.Equal(t, 1.0, findMetric(t, reg, "colonysim_esi_circuit_breaker_state", nil).GetGauge().GetValue())
}

func TestRegister_NilRegistererIsNoOp(t *testing.T) {
	// Arrange
	collector := metrics.NewCommandMetricsCollector()

	// Act
	err := collector.Register(nil)

	// Assert
	assert.NoError(t, err)
}

func TestRegister_DuplicateFails(t *testing.T) {
	// Arrange
	reg := prometheus.NewRegistry()
	require.NoError(t, metrics.NewAggregatorMetricsCollector().Register(reg))

	// Act
	err := metrics.NewAggregatorMetricsCollector().Register(reg)

	// Assert
	assert.Error(t, err)
}

func TestPrometheusMiddleware_RecordsRequestNameAndStatus(t *testing.T) {
	// Arrange
	reg := prometheus.NewRegistry()
	collector := metrics.NewCommandMetricsCollector()
	require.NoError(t, collector.Register(reg))
	middleware := metrics.PrometheusMiddleware(collector)

	ok := func(ctx context.Context, request mediator.Request) (mediator.Response, error) { return "done", nil }
	fail := func(ctx context.Context, request mediator.Request) (mediator.Response, error) { return nil, errors.New("boom") }

	// Act
	resp, err := middleware(context.Background(), &queries.GetColonySummaryQuery{}, ok)
	_, failErr := middleware(context.Background(), &queries.GetColonySummaryQuery{}, fail)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "done", resp)
	assert.Error(t, failErr)
	assert.Equal(t, 1.0, findMetric(t, reg, "colonysim_mediator_requests_total",
		map[string]string{"request": "GetColonySummaryQuery", "status": "success"}).GetCounter().GetValue())
	assert.Equal(t, 1.0, findMetric(t, reg, "colonysim_mediator_requests_total",
		map[string]string{"request": "GetColonySummaryQuery", "status": "error"}).GetCounter().GetValue())
	assert.Equal(t, 0.0, findMetric(t, reg, "colonysim_mediator_requests_in_flight",
		map[string]string{"request": "GetColonySummaryQuery"}).GetGauge().GetValue())
}

func TestPrometheusMiddleware_NilCollectorPassesThrough(t *testing.T) {
	// Arrange
	middleware := metrics.PrometheusMiddleware(nil)
	called := false
	next := func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
		called = true
		return nil, nil
	}

	// Act
	_, err := middleware(context.Background(), &queries.GetColonySummaryQuery{}, next)

	// Assert
	assert.NoError(t, err)
	assert.True(t, called)
}

func TestInitRegistry_EnablesMetrics(t *testing.T) {
	// Act
	reg := metrics.InitRegistry()
	defer func() { metrics.Registry = nil }()

	// Assert
	assert.True(t, metrics.IsEnabled())
	assert.Same(t, reg, metrics.GetRegistry())
	assert.NotNil(t, findMetric(t, reg, "go_goroutines", nil))
}

func TestAggregatorMetricsCollector_InFlightGaugeLint(t *testing.T) {
	// Arrange
	collector := metrics.NewAggregatorMetricsCollector()
	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, collector.Register(reg))
	collector.SetInFlight(1)

	// Act
	problems, err := testutil.GatherAndLint(reg)

	// Assert
	require.NoError(t, err)
	assert.Empty(t, problems)
}
