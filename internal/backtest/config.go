package backtest

import (
	"fmt"

	"github.com/yourusername/line-quality/internal/config"
)

// DefaultHorizonDays is the evaluation horizon used when none is given
const DefaultHorizonDays = 8

// Config holds rolling-origin settings
type Config struct {
	HorizonDays int
	PeriodDays  int
	Parallelism int
}

// DefaultConfig returns a one-day step with modest parallelism
func DefaultConfig() Config {
	return Config{HorizonDays: DefaultHorizonDays, PeriodDays: 1, Parallelism: 4}
}

// FromConfig converts app config to backtest config
func FromConfig(cfg *config.BacktestConfig) (Config, error) {
	if cfg == nil {
		return Config{}, fmt.Errorf("backtest config is required")
	}
	bt := Config{
		HorizonDays: cfg.HorizonDays,
		PeriodDays:  cfg.PeriodDays,
		Parallelism: cfg.Parallelism,
	}
	if bt.HorizonDays == 0 {
		bt.HorizonDays = DefaultHorizonDays
	}
	if bt.PeriodDays == 0 {
		bt.PeriodDays = 1
	}
	if bt.Parallelism == 0 {
		bt.Parallelism = 1
	}
	return bt, bt.Validate()
}

// Validate validates backtest config parameters
func (c Config) Validate() error {
	if c.HorizonDays <= 0 {
		return fmt.Errorf("horizon days must be positive")
	}
	if c.PeriodDays <= 0 {
		return fmt.Errorf("period days must be positive")
	}
	if c.Parallelism <= 0 {
		return fmt.Errorf("parallelism must be positive")
	}
	return nil
}
