package backtest

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/line-quality/internal/config"
	"github.com/yourusername/line-quality/internal/forecast"
	"github.com/yourusername/line-quality/internal/models"
)

var start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func seriesOn(days []int) []models.DefectRatePoint {
	out := make([]models.DefectRatePoint, len(days))
	for i, d := range days {
		out[i] = models.DefectRatePoint{
			Date:       start.AddDate(0, 0, d),
			DefectRate: 0.1 + 0.04*math.Sin(2*math.Pi*float64(d)/7),
			Total:      50,
		}
	}
	return out
}

func consecutive(n int) []models.DefectRatePoint {
	days := make([]int, n)
	for i := range days {
		days[i] = i
	}
	return seriesOn(days)
}

func newTestEvaluator(t *testing.T, parallelism int) *Evaluator {
	t.Helper()
	cfg := forecast.DefaultConfig()
	cfg.UncertaintySamples = 200
	engine, err := forecast.NewEngine(cfg, nil)
	require.NoError(t, err)
	ev, err := NewEvaluator(engine, Config{HorizonDays: 8, PeriodDays: 1, Parallelism: parallelism}, nil)
	require.NoError(t, err)
	return ev
}

func TestEvaluateSkipsShortSeries(t *testing.T) {
	ev := newTestEvaluator(t, 2)

	report, err := ev.Evaluate(context.Background(), consecutive(10), 8)
	require.NoError(t, err)
	assert.True(t, report.Skipped)
	assert.Contains(t, report.SkipReason, "17")
	assert.Nil(t, report.Aggregate)
	assert.Empty(t, report.Folds)
	assert.Empty(t, report.ByHorizon)
	assert.Equal(t, 10, report.SeriesSize)
}

func TestEvaluateGuardBoundary(t *testing.T) {
	ev := newTestEvaluator(t, 2)

	report, err := ev.Evaluate(context.Background(), consecutive(16), 8)
	require.NoError(t, err)
	assert.True(t, report.Skipped)

	report, err = ev.Evaluate(context.Background(), consecutive(17), 8)
	require.NoError(t, err)
	require.False(t, report.Skipped)
	require.Len(t, report.Folds, 1)
	assert.Equal(t, 16, report.Folds[0].TrainSize)
	assert.Len(t, report.Folds[0].Predictions, 1)
}

func TestEvaluateRejectsInvalidHorizon(t *testing.T) {
	ev := newTestEvaluator(t, 1)
	for _, h := range []int{0, -3} {
		_, err := ev.Evaluate(context.Background(), consecutive(30), h)
		assert.True(t, errors.Is(err, models.ErrInvalidHorizon))
	}
}

func TestEvaluateRollingOrigin(t *testing.T) {
	ev := newTestEvaluator(t, 4)

	report, err := ev.Evaluate(context.Background(), consecutive(20), 3)
	require.NoError(t, err)
	require.False(t, report.Skipped)

	// cutoffs at indices 5..18
	require.Len(t, report.Folds, 14)
	total := 0
	for i, fold := range report.Folds {
		assert.Equal(t, i, fold.Index)
		assert.Equal(t, 6+i, fold.TrainSize)
		assert.Equal(t, start.AddDate(0, 0, 5+i), fold.Cutoff)
		for _, p := range fold.Predictions {
			assert.True(t, p.Date.After(fold.Cutoff))
			assert.False(t, p.Date.After(fold.Cutoff.AddDate(0, 0, 3)))
			assert.GreaterOrEqual(t, p.HorizonDay, 1)
			assert.LessOrEqual(t, p.HorizonDay, 3)
		}
		assert.GreaterOrEqual(t, fold.Metrics.Coverage, 0.0)
		assert.LessOrEqual(t, fold.Metrics.Coverage, 1.0)
		total += len(fold.Predictions)
	}
	assert.Len(t, report.Folds[13].Predictions, 1)

	require.NotNil(t, report.Aggregate)
	assert.Equal(t, total, report.Aggregate.Count)
	assert.NotNil(t, report.Aggregate.MAPE)
	assert.GreaterOrEqual(t, report.Aggregate.RMSE, 0.0)

	require.Len(t, report.ByHorizon, 3)
	assert.Equal(t, 14, report.ByHorizon[0].Count)
	assert.Equal(t, 13, report.ByHorizon[1].Count)
	assert.Equal(t, 12, report.ByHorizon[2].Count)
}

func TestEvaluateDropsFoldsWithoutTestPoints(t *testing.T) {
	ev := newTestEvaluator(t, 2)
	series := seriesOn([]int{0, 1, 2, 3, 4, 5, 6, 30, 31, 32, 33, 34, 35, 36})

	report, err := ev.Evaluate(context.Background(), series, 2)
	require.NoError(t, err)
	require.False(t, report.Skipped)

	// cutoffs at indices 3..12, the one on day 6 sees nothing before day 30
	assert.Len(t, report.Folds, 9)
	for _, fold := range report.Folds {
		assert.NotEqual(t, start.AddDate(0, 0, 6), fold.Cutoff)
		assert.NotEmpty(t, fold.Predictions)
	}
}

func TestEvaluateSkipsWhenNoFoldHasTestPoints(t *testing.T) {
	ev := newTestEvaluator(t, 2)
	series := seriesOn([]int{0, 10, 20})

	report, err := ev.Evaluate(context.Background(), series, 1)
	require.NoError(t, err)
	assert.True(t, report.Skipped)
	assert.Nil(t, report.Aggregate)
}

func TestEvaluateParallelismDeterministic(t *testing.T) {
	series := consecutive(25)

	serial, err := newTestEvaluator(t, 1).Evaluate(context.Background(), series, 4)
	require.NoError(t, err)
	parallel, err := newTestEvaluator(t, 8).Evaluate(context.Background(), series, 4)
	require.NoError(t, err)
	assert.Equal(t, serial, parallel)
}

func TestEvaluateDoesNotMutateSeries(t *testing.T) {
	ev := newTestEvaluator(t, 2)
	series := consecutive(12)
	series[0], series[11] = series[11], series[0]
	snapshot := append([]models.DefectRatePoint(nil), series...)

	report, err := ev.Evaluate(context.Background(), series, 2)
	require.NoError(t, err)
	assert.False(t, report.Skipped)
	assert.Equal(t, snapshot, series)
}

func TestEvaluateCanceledContext(t *testing.T) {
	ev := newTestEvaluator(t, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ev.Evaluate(ctx, consecutive(30), 3)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNewEvaluatorValidation(t *testing.T) {
	_, err := NewEvaluator(nil, DefaultConfig(), nil)
	assert.Error(t, err)

	engine, err := forecast.NewEngine(forecast.DefaultConfig(), nil)
	require.NoError(t, err)
	_, err = NewEvaluator(engine, Config{HorizonDays: 8, PeriodDays: 0, Parallelism: 1}, nil)
	assert.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	cfg, err := FromConfig(&config.BacktestConfig{HorizonDays: 5, PeriodDays: 2, Parallelism: 3})
	require.NoError(t, err)
	assert.Equal(t, Config{HorizonDays: 5, PeriodDays: 2, Parallelism: 3}, cfg)

	cfg, err = FromConfig(&config.BacktestConfig{})
	require.NoError(t, err)
	assert.Equal(t, DefaultHorizonDays, cfg.HorizonDays)

	_, err = FromConfig(nil)
	assert.Error(t, err)
}

func TestCutoffIndices(t *testing.T) {
	assert.Equal(t, []int{5, 6, 7, 8}, cutoffIndices(10, 3, 1))
	assert.Equal(t, []int{5, 7}, cutoffIndices(10, 3, 2))
	assert.Empty(t, cutoffIndices(6, 3, 1))
}
