package diagnostics

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/line-quality/internal/config"
	"github.com/yourusername/line-quality/internal/forecast"
	"github.com/yourusername/line-quality/internal/models"
)

var day0 = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func floatPtr(v float64) *float64 { return &v }

func sampleRun() *Run {
	fc := &forecast.Result{
		Horizon: 2,
		Seed:    42,
		Summary: forecast.FitSummary{Observations: 2, Sigma: 0.01, Scale: 0.2},
		Points: []models.ForecastPoint{
			{Date: day0, Estimate: 0.1, Lower: 0.05, Upper: 0.15},
			{Date: day0.AddDate(0, 0, 1), Estimate: 0.12, Lower: 0.06, Upper: 0.18},
			{Date: day0.AddDate(0, 0, 2), Estimate: 0.11, Lower: 0.04, Upper: 0.18},
			{Date: day0.AddDate(0, 0, 3), Estimate: 0.1, Lower: 0.02, Upper: 0.18},
		},
	}
	pred := models.BacktestPrediction{Cutoff: day0, Date: day0.AddDate(0, 0, 1), HorizonDay: 1, Actual: 0.1, Estimate: 0.12, Lower: 0.06, Upper: 0.18}
	metrics := models.AccuracyMetrics{Count: 1, MAPE: floatPtr(0.2), RMSE: 0.02, Coverage: 1}
	bt := &models.BacktestReport{
		HorizonDays: 1,
		SeriesSize:  3,
		Folds: []models.BacktestFold{
			{Index: 0, Cutoff: day0, TrainSize: 2, Predictions: []models.BacktestPrediction{pred}, Metrics: metrics},
		},
		Aggregate: &metrics,
		ByHorizon: []models.HorizonMetrics{{HorizonDay: 1, AccuracyMetrics: models.AccuracyMetrics{Count: 1, RMSE: 0.02, Coverage: 1}}},
	}
	return NewRun(fc, bt)
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestCSVExporter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	exp := NewCSVExporter(dir)
	require.NoError(t, exp.Export(context.Background(), sampleRun()))

	fc := readCSV(t, filepath.Join(dir, ForecastFile))
	require.Len(t, fc, 5)
	assert.Equal(t, []string{"ds", "yhat", "yhat_lower", "yhat_upper"}, fc[0])
	assert.Equal(t, []string{"2024-05-01", "0.100000", "0.050000", "0.150000"}, fc[1])

	bt := readCSV(t, filepath.Join(dir, BacktestFile))
	require.Len(t, bt, 2)
	assert.Equal(t, []string{"2024-05-02", "0.120000", "0.060000", "0.180000", "0.100000", "2024-05-01", "1"}, bt[1])

	perf := readCSV(t, filepath.Join(dir, PerformanceMetricsFile))
	require.Len(t, perf, 3)
	assert.Equal(t, []string{"1 days", "1", "0.020000", "", "1.000000"}, perf[1])
	assert.Equal(t, []string{"all", "1", "0.020000", "0.200000", "1.000000"}, perf[2])
}

func TestCSVExporterSkippedBacktest(t *testing.T) {
	dir := t.TempDir()
	run := sampleRun()
	run.Backtest = &models.BacktestReport{Skipped: true, SkipReason: "short", HorizonDays: 8, SeriesSize: 3}

	require.NoError(t, NewCSVExporter(dir).Export(context.Background(), run))
	assert.FileExists(t, filepath.Join(dir, ForecastFile))
	assert.NoFileExists(t, filepath.Join(dir, BacktestFile))
	assert.NoFileExists(t, filepath.Join(dir, PerformanceMetricsFile))
}

func TestSQLiteStoreExport(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "diagnostics.db"))
	require.NoError(t, err)
	defer store.Close()

	run := sampleRun()
	require.NoError(t, store.Export(context.Background(), run))

	var horizon, observations int
	var skipped bool
	require.NoError(t, store.db.QueryRow(
		`SELECT horizon_days, observations, backtest_skipped FROM forecast_runs WHERE id = ?`, run.ID.String(),
	).Scan(&horizon, &observations, &skipped))
	assert.Equal(t, 2, horizon)
	assert.Equal(t, 2, observations)
	assert.False(t, skipped)

	var points, metricRows, folds int
	require.NoError(t, store.db.QueryRow(`SELECT COUNT(*) FROM forecast_points WHERE run_id = ?`, run.ID.String()).Scan(&points))
	require.NoError(t, store.db.QueryRow(`SELECT COUNT(*) FROM performance_metrics WHERE run_id = ?`, run.ID.String()).Scan(&metricRows))
	require.NoError(t, store.db.QueryRow(`SELECT COUNT(*) FROM backtest_folds WHERE run_id = ?`, run.ID.String()).Scan(&folds))
	assert.Equal(t, 4, points)
	assert.Equal(t, 2, metricRows)
	assert.Equal(t, 1, folds)

	var mape *float64
	require.NoError(t, store.db.QueryRow(
		`SELECT mape FROM performance_metrics WHERE run_id = ? AND horizon_day = 1`, run.ID.String(),
	).Scan(&mape))
	assert.Nil(t, mape)
}

func TestSQLiteStoreRollsBackDuplicateRun(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "diagnostics.db"))
	require.NoError(t, err)
	defer store.Close()

	run := sampleRun()
	require.NoError(t, store.Export(context.Background(), run))
	assert.Error(t, store.Export(context.Background(), run))

	var points int
	require.NoError(t, store.db.QueryRow(`SELECT COUNT(*) FROM forecast_points`).Scan(&points))
	assert.Equal(t, 4, points)
}

func TestOpenSQLiteIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diagnostics.db")
	first, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

func TestOpenSinks(t *testing.T) {
	sinks, err := Open(nil)
	require.NoError(t, err)
	assert.Empty(t, sinks.Exporters)

	sinks, err = Open(&config.DiagnosticsConfig{Enabled: false, OutputDir: t.TempDir()})
	require.NoError(t, err)
	assert.Empty(t, sinks.Exporters)

	dir := t.TempDir()
	sinks, err = Open(&config.DiagnosticsConfig{
		Enabled:    true,
		OutputDir:  dir,
		SQLitePath: filepath.Join(dir, "diagnostics.db"),
	})
	require.NoError(t, err)
	require.Len(t, sinks.Exporters, 2)
	assert.Equal(t, "csv", sinks.Exporters[0].Name())
	assert.Equal(t, "sqlite", sinks.Exporters[1].Name())
	assert.NoError(t, sinks.Close())
}
