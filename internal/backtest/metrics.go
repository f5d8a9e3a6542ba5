package backtest

import (
	"math"

	"github.com/yourusername/line-quality/internal/models"
	"gonum.org/v1/gonum/stat"
)

// Accuracy scores predictions. MAPE averages only over non-zero actuals and
// is nil when there are none.
func Accuracy(predictions []models.BacktestPrediction) models.AccuracyMetrics {
	m := models.AccuracyMetrics{Count: len(predictions)}
	if len(predictions) == 0 {
		return m
	}

	squared := make([]float64, 0, len(predictions))
	var pct []float64
	covered := 0
	for _, p := range predictions {
		diff := p.Actual - p.Estimate
		squared = append(squared, diff*diff)
		if p.Actual != 0 {
			pct = append(pct, math.Abs(diff/p.Actual))
		}
		if p.Covered() {
			covered++
		}
	}

	m.RMSE = math.Sqrt(stat.Mean(squared, nil))
	m.Coverage = float64(covered) / float64(len(predictions))
	if len(pct) > 0 {
		mape := stat.Mean(pct, nil)
		m.MAPE = &mape
	}
	return m
}

// ByHorizon scores predictions separately for each horizon day 1..h.
// Days without predictions are omitted.
func ByHorizon(predictions []models.BacktestPrediction, horizonDays int) []models.HorizonMetrics {
	buckets := make([][]models.BacktestPrediction, horizonDays+1)
	for _, p := range predictions {
		if p.HorizonDay < 1 || p.HorizonDay > horizonDays {
			continue
		}
		buckets[p.HorizonDay] = append(buckets[p.HorizonDay], p)
	}

	var out []models.HorizonMetrics
	for d := 1; d <= horizonDays; d++ {
		if len(buckets[d]) == 0 {
			continue
		}
		out = append(out, models.HorizonMetrics{HorizonDay: d, AccuracyMetrics: Accuracy(buckets[d])})
	}
	return out
}
