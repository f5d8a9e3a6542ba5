package models

import "time"

// AccuracyMetrics holds forecast error and interval coverage.
// MAPE is nil when every actual in the sample is zero.
type AccuracyMetrics struct {
	Count    int      `json:"count"`
	MAPE     *float64 `json:"mape"`
	RMSE     float64  `json:"rmse"`
	Coverage float64  `json:"coverage"`
}

// HorizonMetrics are accuracy metrics restricted to one horizon day
type HorizonMetrics struct {
	HorizonDay int `json:"horizon_day"`
	AccuracyMetrics
}

// BacktestPrediction is one out-of-sample prediction compared with its actual
type BacktestPrediction struct {
	Cutoff     time.Time `json:"cutoff"`
	Date       time.Time `json:"date"`
	HorizonDay int       `json:"horizon_day"`
	Actual     float64   `json:"actual"`
	Estimate   float64   `json:"estimate"`
	Lower      float64   `json:"lower"`
	Upper      float64   `json:"upper"`
}

// Covered reports whether the actual falls inside the interval
func (p BacktestPrediction) Covered() bool {
	return p.Actual >= p.Lower && p.Actual <= p.Upper
}

// BacktestFold is one rolling-origin train/evaluate cycle
type BacktestFold struct {
	Index       int                  `json:"index"`
	Cutoff      time.Time            `json:"cutoff"`
	TrainSize   int                  `json:"train_size"`
	Predictions []BacktestPrediction `json:"predictions"`
	Metrics     AccuracyMetrics      `json:"metrics"`
}

// BacktestReport is the outcome of a rolling-origin evaluation.
// A skipped report carries a reason and no metrics.
type BacktestReport struct {
	Skipped     bool             `json:"skipped"`
	SkipReason  string           `json:"skip_reason,omitempty"`
	HorizonDays int              `json:"horizon_days"`
	SeriesSize  int              `json:"series_size"`
	Folds       []BacktestFold   `json:"folds,omitempty"`
	Aggregate   *AccuracyMetrics `json:"aggregate,omitempty"`
	ByHorizon   []HorizonMetrics `json:"by_horizon,omitempty"`
}

// Predictions flattens the predictions of every fold in fold order
func (r *BacktestReport) Predictions() []BacktestPrediction {
	var out []BacktestPrediction
	for _, fold := range r.Folds {
		out = append(out, fold.Predictions...)
	}
	return out
}
