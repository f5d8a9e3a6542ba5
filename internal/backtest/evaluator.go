// Package backtest measures forecast accuracy by refitting the forecast
// engine on expanding prefixes of the series and scoring the days after
// each cutoff.
package backtest

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/line-quality/internal/forecast"
	"github.com/yourusername/line-quality/internal/logger"
	"github.com/yourusername/line-quality/internal/models"
	"golang.org/x/sync/errgroup"
)

// Evaluator runs rolling-origin backtests
type Evaluator struct {
	engine *forecast.Engine
	config Config
	log    *logger.ForecastLogger
}

// NewEvaluator creates a backtest evaluator over engine
func NewEvaluator(engine *forecast.Engine, cfg Config, log *logrus.Logger) (*Evaluator, error) {
	if engine == nil {
		return nil, fmt.Errorf("forecast engine is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid backtest config: %w", err)
	}
	return &Evaluator{engine: engine, config: cfg, log: logger.NewForecastLogger(log)}, nil
}

// Config returns the evaluator configuration
func (e *Evaluator) Config() Config {
	return e.config
}

// MinSeriesSize is the shortest series a horizon can be evaluated on
func MinSeriesSize(horizonDays int) int {
	return 2*horizonDays + 1
}

// Evaluate backtests series at horizonDays. A series too short for the
// horizon yields a skipped report rather than an error.
func (e *Evaluator) Evaluate(ctx context.Context, series []models.DefectRatePoint, horizonDays int) (*models.BacktestReport, error) {
	if horizonDays <= 0 {
		return nil, fmt.Errorf("%w: %d days", models.ErrInvalidHorizon, horizonDays)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	points := append([]models.DefectRatePoint(nil), series...)
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })

	report := &models.BacktestReport{HorizonDays: horizonDays, SeriesSize: len(points)}
	if need := MinSeriesSize(horizonDays); len(points) < need {
		return e.skip(report, fmt.Sprintf("need at least %d daily points for a %d day horizon, have %d", need, horizonDays, len(points))), nil
	}

	cutoffs := cutoffIndices(len(points), horizonDays, e.config.PeriodDays)
	folds := make([]*models.BacktestFold, len(cutoffs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Parallelism)
	for i, cutoff := range cutoffs {
		i, cutoff := i, cutoff
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fold, err := e.runFold(points, cutoff, horizonDays)
			if err != nil {
				return fmt.Errorf("fold at %s: %w", points[cutoff].Date.Format(time.DateOnly), err)
			}
			folds[i] = fold
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, fold := range folds {
		if fold == nil || len(fold.Predictions) == 0 {
			continue
		}
		fold.Index = len(report.Folds)
		report.Folds = append(report.Folds, *fold)
	}
	if len(report.Folds) == 0 {
		return e.skip(report, fmt.Sprintf("no cutoff has observations within %d days", horizonDays)), nil
	}

	all := report.Predictions()
	aggregate := Accuracy(all)
	report.Aggregate = &aggregate
	report.ByHorizon = ByHorizon(all, horizonDays)
	return report, nil
}

func (e *Evaluator) skip(report *models.BacktestReport, reason string) *models.BacktestReport {
	report.Skipped = true
	report.SkipReason = reason
	report.Folds = nil
	e.log.LogBacktestSkipped(report.HorizonDays, report.SeriesSize, reason)
	return report
}

// cutoffIndices walks the expanding training window from the first cutoff
// holding 2h points to the last one that leaves a point to test
func cutoffIndices(n, horizonDays, period int) []int {
	var out []int
	for c := 2*horizonDays - 1; c <= n-2; c += period {
		out = append(out, c)
	}
	return out
}

func (e *Evaluator) runFold(points []models.DefectRatePoint, cutoff, horizonDays int) (*models.BacktestFold, error) {
	train := append([]models.DefectRatePoint(nil), points[:cutoff+1]...)
	cutoffDate := train[len(train)-1].Date
	limit := cutoffDate.AddDate(0, 0, horizonDays)

	var test []models.DefectRatePoint
	for _, p := range points[cutoff+1:] {
		if p.Date.After(limit) {
			break
		}
		test = append(test, p)
	}
	fold := &models.BacktestFold{Cutoff: cutoffDate, TrainSize: len(train)}
	if len(test) == 0 {
		return fold, nil
	}

	model, err := e.engine.Fit(train)
	if err != nil {
		return nil, err
	}
	dates := make([]time.Time, len(test))
	for i, p := range test {
		dates[i] = p.Date
	}

	for i, f := range model.Predict(dates) {
		fold.Predictions = append(fold.Predictions, models.BacktestPrediction{
			Cutoff:     cutoffDate,
			Date:       f.Date,
			HorizonDay: int(math.Round(f.Date.Sub(cutoffDate).Hours() / 24)),
			Actual:     test[i].DefectRate,
			Estimate:   f.Estimate,
			Lower:      f.Lower,
			Upper:      f.Upper,
		})
	}
	fold.Metrics = Accuracy(fold.Predictions)
	return fold, nil
}
