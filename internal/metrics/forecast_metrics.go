package metrics

import "github.com/prometheus/client_golang/prometheus"

// Forecast and backtest metrics
var (
	ForecastRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "forecast_runs_total",
		Help:      "Total number of forecast runs by status",
	}, []string{"status"})
	ForecastTimeoutsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "forecast_timeouts_total",
		Help:      "Fits abandoned after their deadline by kind",
	}, []string{"kind"})
	ForecastFitDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "forecast_fit_duration_seconds",
		Help:      "Duration of forecast fits in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
	})
	BacktestRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backtest_runs_total",
		Help:      "Total number of backtest runs by status",
	}, []string{"status"})
	BacktestSkippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backtest_skipped_total",
		Help:      "Backtests skipped for insufficient history",
	})
	BacktestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backtest_duration_seconds",
		Help:      "Duration of backtest runs in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
	})
	BacktestCoverage = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "backtest_coverage",
		Help:      "Interval coverage of the latest backtest",
	})
	BacktestRMSE = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "backtest_rmse",
		Help:      "Root-mean-square error of the latest backtest",
	})
	SeriesCacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "series_cache_lookups_total",
		Help:      "Daily series cache lookups by result",
	}, []string{"result"})
	DiagnosticsExportFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "diagnostics_export_failures_total",
		Help:      "Diagnostics exports that failed by sink",
	}, []string{"sink"})
)

// RecordForecast records a forecast run.
func RecordForecast(durationSeconds float64, err error) {
	ForecastRunsTotal.WithLabelValues(status(err)).Inc()
	if err == nil {
		ForecastFitDuration.Observe(durationSeconds)
	}
}

// RecordTimeout records a fit abandoned after its deadline.
func RecordTimeout(kind string) {
	ForecastTimeoutsTotal.WithLabelValues(kind).Inc()
}

// RecordBacktest records a completed backtest and its aggregate accuracy.
func RecordBacktest(durationSeconds, rmse, coverage float64) {
	BacktestRunsTotal.WithLabelValues("success").Inc()
	BacktestDuration.Observe(durationSeconds)
	BacktestRMSE.Set(rmse)
	BacktestCoverage.Set(coverage)
}

// RecordBacktestFailure records a backtest that returned an error.
func RecordBacktestFailure() {
	BacktestRunsTotal.WithLabelValues("error").Inc()
}

// RecordBacktestSkipped records a backtest refused for lack of history.
func RecordBacktestSkipped() {
	BacktestRunsTotal.WithLabelValues("skipped").Inc()
	BacktestSkippedTotal.Inc()
}

// RecordExportFailure records a failed diagnostics export.
func RecordExportFailure(sink string) {
	DiagnosticsExportFailuresTotal.WithLabelValues(sink).Inc()
}

// RecordSeriesCache records a series cache hit or miss.
func RecordSeriesCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	SeriesCacheLookupsTotal.WithLabelValues(result).Inc()
}
