package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// ForecastLogger provides dedicated logging for model fitting and backtests.
type ForecastLogger struct {
	*logrus.Entry
}

// NewForecastLogger creates a new forecast logger.
func NewForecastLogger(baseLogger *logrus.Logger) *ForecastLogger {
	return &ForecastLogger{
		Entry: OrDefault(baseLogger).WithField("component", "forecast"),
	}
}

// LogFit logs a completed model fit.
func (f *ForecastLogger) LogFit(observations, changepoints int, sigma float64, duration time.Duration) {
	f.WithFields(logrus.Fields{
		"observations": observations,
		"changepoints": changepoints,
		"sigma":        sigma,
		"duration_ms":  duration.Milliseconds(),
	}).Debug("Forecast model fitted")
}

// LogForecast logs a completed forecast run.
func (f *ForecastLogger) LogForecast(runID string, observations, horizon, points int, duration time.Duration) {
	f.WithFields(logrus.Fields{
		"run_id":       runID,
		"observations": observations,
		"horizon_days": horizon,
		"points":       points,
		"duration_ms":  duration.Milliseconds(),
	}).Info("Forecast completed")
}

// LogBacktest logs a completed backtest.
func (f *ForecastLogger) LogBacktest(runID string, horizon, folds int, rmse, coverage float64, duration time.Duration) {
	f.WithFields(logrus.Fields{
		"run_id":       runID,
		"horizon_days": horizon,
		"folds":        folds,
		"rmse":         rmse,
		"coverage":     coverage,
		"duration_ms":  duration.Milliseconds(),
	}).Info("Backtest completed")
}

// LogBacktestSkipped logs a backtest refused for lack of history.
func (f *ForecastLogger) LogBacktestSkipped(horizon, seriesSize int, reason string) {
	f.WithFields(logrus.Fields{
		"horizon_days": horizon,
		"series_size":  seriesSize,
		"reason":       reason,
	}).Warn("Backtest skipped")
}

// LogTimeout logs a fit abandoned after its deadline.
func (f *ForecastLogger) LogTimeout(kind string, timeout time.Duration) {
	f.WithFields(logrus.Fields{
		"kind":       kind,
		"timeout_ms": timeout.Milliseconds(),
	}).Error("Forecast fit timed out")
}

// LogExportFailure logs a diagnostics export that could not be written.
func (f *ForecastLogger) LogExportFailure(runID, sink string, err error) {
	f.WithFields(logrus.Fields{
		"run_id": runID,
		"sink":   sink,
	}).WithError(err).Warn("Diagnostics export failed")
}
