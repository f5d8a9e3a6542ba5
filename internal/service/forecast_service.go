// Package service wires the quality and forecasting components into the
// operations exposed by the CLI and the scheduler.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/line-quality/internal/backtest"
	"github.com/yourusername/line-quality/internal/diagnostics"
	"github.com/yourusername/line-quality/internal/forecast"
	"github.com/yourusername/line-quality/internal/logger"
	"github.com/yourusername/line-quality/internal/metrics"
	"github.com/yourusername/line-quality/internal/models"
	"github.com/yourusername/line-quality/internal/series"
)

// WorkerOptions bounds background fitting
type WorkerOptions struct {
	MaxConcurrentFits int
	FitTimeout        time.Duration
}

// ForecastService builds the defect-rate series and runs forecasts and
// backtests on it off the caller goroutine
type ForecastService struct {
	builder   *series.Builder
	engine    *forecast.Engine
	evaluator *backtest.Evaluator
	pool      *fitPool
	exporters []diagnostics.Exporter
	logger    *logger.ForecastLogger

	mu      sync.RWMutex
	lastRun *diagnostics.Run
}

// NewForecastService creates a new forecast service
func NewForecastService(
	builder *series.Builder,
	engine *forecast.Engine,
	evaluator *backtest.Evaluator,
	opts WorkerOptions,
	exporters []diagnostics.Exporter,
	log *logrus.Logger,
) (*ForecastService, error) {
	if builder == nil || engine == nil || evaluator == nil {
		return nil, fmt.Errorf("series builder, forecast engine and backtest evaluator are required")
	}
	fl := logger.NewForecastLogger(log)
	return &ForecastService{
		builder:   builder,
		engine:    engine,
		evaluator: evaluator,
		pool:      newFitPool(opts.MaxConcurrentFits, opts.FitTimeout, fl),
		exporters: exporters,
		logger:    fl,
	}, nil
}

// Series returns the current daily defect-rate series
func (s *ForecastService) Series(ctx context.Context) ([]models.DefectRatePoint, error) {
	return s.builder.Build(ctx)
}

// Forecast projects the series horizonDays ahead. Zero uses the engine default.
func (s *ForecastService) Forecast(ctx context.Context, horizonDays int) (*forecast.Result, error) {
	history, err := s.builder.Build(ctx)
	if err != nil {
		return nil, err
	}
	return s.forecast(ctx, uuid.NewString(), history, horizonDays)
}

func (s *ForecastService) forecast(ctx context.Context, runID string, history []models.DefectRatePoint, horizonDays int) (*forecast.Result, error) {
	started := time.Now()
	result, err := runBounded(ctx, s.pool, "forecast", func(context.Context) (*forecast.Result, error) {
		return s.engine.Forecast(history, horizonDays)
	})
	metrics.RecordForecast(time.Since(started).Seconds(), err)
	if err != nil {
		return nil, err
	}
	s.logger.LogForecast(runID, len(history), result.Horizon, len(result.Points), time.Since(started))
	return result, nil
}

// Backtest evaluates forecast accuracy at horizonDays. Zero uses the
// configured backtest horizon.
func (s *ForecastService) Backtest(ctx context.Context, horizonDays int) (*models.BacktestReport, error) {
	history, err := s.builder.Build(ctx)
	if err != nil {
		return nil, err
	}
	return s.backtest(ctx, uuid.NewString(), history, horizonDays)
}

func (s *ForecastService) backtest(ctx context.Context, runID string, history []models.DefectRatePoint, horizonDays int) (*models.BacktestReport, error) {
	if horizonDays == 0 {
		horizonDays = s.evaluator.Config().HorizonDays
	}
	started := time.Now()
	report, err := runBounded(ctx, s.pool, "backtest", func(ctx context.Context) (*models.BacktestReport, error) {
		return s.evaluator.Evaluate(ctx, history, horizonDays)
	})
	switch {
	case err != nil:
		metrics.RecordBacktestFailure()
		return nil, err
	case report.Skipped:
		metrics.RecordBacktestSkipped()
	default:
		metrics.RecordBacktest(time.Since(started).Seconds(), report.Aggregate.RMSE, report.Aggregate.Coverage)
		s.logger.LogBacktest(runID, horizonDays, len(report.Folds), report.Aggregate.RMSE, report.Aggregate.Coverage, time.Since(started))
	}
	return report, nil
}

// Refresh rebuilds the series and runs the default forecast and backtest on
// that one snapshot, then writes them to the diagnostic sinks. Export
// failures are logged and do not fail the refresh.
func (s *ForecastService) Refresh(ctx context.Context) (*diagnostics.Run, error) {
	s.builder.Invalidate()
	history, err := s.builder.Build(ctx)
	if err != nil {
		return nil, err
	}
	runID := uuid.New()

	result, err := s.forecast(ctx, runID.String(), history, 0)
	if err != nil {
		return nil, fmt.Errorf("forecast: %w", err)
	}
	report, err := s.backtest(ctx, runID.String(), history, 0)
	if err != nil {
		return nil, fmt.Errorf("backtest: %w", err)
	}

	run := diagnostics.NewRun(result, report)
	run.ID = runID
	for _, exp := range s.exporters {
		if err := exp.Export(ctx, run); err != nil {
			s.logger.LogExportFailure(runID.String(), exp.Name(), err)
			metrics.RecordExportFailure(exp.Name())
		}
	}

	s.mu.Lock()
	s.lastRun = run
	s.mu.Unlock()
	return run, nil
}

// LastRun returns the most recent successful refresh, or nil
func (s *ForecastService) LastRun() *diagnostics.Run {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRun
}
