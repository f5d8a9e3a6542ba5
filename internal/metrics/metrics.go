// Package metrics provides the Prometheus registry for the line quality services.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "line_quality"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Quality metrics
var (
	QualityAggregationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quality_aggregations_total",
		Help:      "Total number of quality window aggregations by status",
	}, []string{"status"})
	UniqueTestQueriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "unique_test_queries_total",
		Help:      "Total number of latest-record queries by filter column and status",
	}, []string{"filter", "status"})
	UnparseableTimestampsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "unparseable_timestamps_total",
		Help:      "Records dropped because their start timestamp did not parse",
	}, []string{"source"})
	QualityAggregationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "quality_aggregation_duration_seconds",
		Help:      "Duration of quality window aggregations in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	WindowTestCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "window_test_count",
		Help:      "Number of tests in the most recently aggregated window",
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(QualityAggregationsTotal)
		registry.MustRegister(UniqueTestQueriesTotal)
		registry.MustRegister(UnparseableTimestampsTotal)
		registry.MustRegister(QualityAggregationDuration)
		registry.MustRegister(WindowTestCount)

		registry.MustRegister(ForecastRunsTotal)
		registry.MustRegister(ForecastTimeoutsTotal)
		registry.MustRegister(ForecastFitDuration)
		registry.MustRegister(BacktestRunsTotal)
		registry.MustRegister(BacktestSkippedTotal)
		registry.MustRegister(BacktestDuration)
		registry.MustRegister(BacktestCoverage)
		registry.MustRegister(BacktestRMSE)
		registry.MustRegister(SeriesCacheLookupsTotal)
		registry.MustRegister(DiagnosticsExportFailuresTotal)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordQualityAggregation records one window rollup.
func RecordQualityAggregation(durationSeconds float64, total int, err error) {
	QualityAggregationsTotal.WithLabelValues(status(err)).Inc()
	QualityAggregationDuration.Observe(durationSeconds)
	if err == nil {
		WindowTestCount.Set(float64(total))
	}
}

// RecordUniqueTestQuery records one latest-record query.
func RecordUniqueTestQuery(filter string, err error) {
	UniqueTestQueriesTotal.WithLabelValues(filter, status(err)).Inc()
}

// RecordUnparseable counts records dropped by source.
func RecordUnparseable(source string, count int) {
	UnparseableTimestampsTotal.WithLabelValues(source).Add(float64(count))
}
