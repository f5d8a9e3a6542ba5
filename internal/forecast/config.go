package forecast

import (
	"fmt"

	"github.com/yourusername/line-quality/internal/config"
)

// DefaultHorizon is the number of days forecast when no horizon is given
const DefaultHorizon = 30

// DefaultSeed makes fits reproducible when no seed is configured
const DefaultSeed int64 = 42

// Config holds the seasonal model settings
type Config struct {
	Horizon               int
	WeeklyOrder           int
	DailyOrder            int
	Changepoints          int
	ChangepointRange      float64
	ChangepointPriorScale float64
	SeasonalityPriorScale float64
	IntervalWidth         float64
	UncertaintySamples    int
	Seed                  int64
}

// DefaultConfig returns weekly and daily seasonality with no yearly term
func DefaultConfig() Config {
	return Config{
		Horizon:               DefaultHorizon,
		WeeklyOrder:           3,
		DailyOrder:            4,
		Changepoints:          25,
		ChangepointRange:      0.8,
		ChangepointPriorScale: 0.05,
		SeasonalityPriorScale: 10,
		IntervalWidth:         0.8,
		UncertaintySamples:    1000,
		Seed:                  DefaultSeed,
	}
}

// FromConfig converts app config to model config
func FromConfig(cfg *config.ForecastConfig) (Config, error) {
	if cfg == nil {
		return Config{}, fmt.Errorf("forecast config is required")
	}

	c := Config{
		Horizon:               cfg.HorizonDays,
		WeeklyOrder:           cfg.WeeklyOrder,
		DailyOrder:            cfg.DailyOrder,
		Changepoints:          cfg.Changepoints,
		ChangepointRange:      cfg.ChangepointRange,
		ChangepointPriorScale: cfg.ChangepointPriorScale,
		SeasonalityPriorScale: cfg.SeasonalityPriorScale,
		IntervalWidth:         cfg.IntervalWidth,
		UncertaintySamples:    cfg.UncertaintySamples,
		Seed:                  cfg.Seed,
	}
	if c.Horizon == 0 {
		c.Horizon = DefaultHorizon
	}
	if c.Seed == 0 {
		c.Seed = DefaultSeed
	}

	return c, c.Validate()
}

// Validate validates model parameters
func (c Config) Validate() error {
	if c.Horizon <= 0 {
		return fmt.Errorf("horizon must be positive")
	}
	if c.WeeklyOrder < 0 || c.DailyOrder < 0 {
		return fmt.Errorf("fourier orders cannot be negative")
	}
	if c.Changepoints < 0 {
		return fmt.Errorf("changepoints cannot be negative")
	}
	if c.ChangepointRange <= 0 || c.ChangepointRange > 1 {
		return fmt.Errorf("changepoint range must be in (0, 1]")
	}
	if c.ChangepointPriorScale <= 0 || c.SeasonalityPriorScale <= 0 {
		return fmt.Errorf("prior scales must be positive")
	}
	if c.IntervalWidth <= 0 || c.IntervalWidth >= 1 {
		return fmt.Errorf("interval width must be between 0 and 1")
	}
	if c.UncertaintySamples < 0 {
		return fmt.Errorf("uncertainty samples cannot be negative")
	}
	return nil
}
