package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix         = "LINE_QUALITY"
	defaultConfigPath = "config/config.yaml"
)

// Load reads and parses the configuration from file and environment variables.
// Placeholders of the form ${VAR_NAME} are expanded before parsing.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return unmarshal(v)
}

// LoadWithDefaults loads configuration with default values for optional fields.
// A missing file is not an error: defaults and environment variables apply.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "line-quality")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "line_quality")
	v.SetDefault("database.user", "line_quality")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.max_idle_connections", 2)

	v.SetDefault("forecast.horizon_days", 30)
	v.SetDefault("forecast.weekly_order", 3)
	v.SetDefault("forecast.daily_order", 4)
	v.SetDefault("forecast.changepoints", 25)
	v.SetDefault("forecast.changepoint_range", 0.8)
	v.SetDefault("forecast.changepoint_prior_scale", 0.05)
	v.SetDefault("forecast.seasonality_prior_scale", 10.0)
	v.SetDefault("forecast.interval_width", 0.8)
	v.SetDefault("forecast.uncertainty_samples", 1000)
	v.SetDefault("forecast.seed", 42)

	v.SetDefault("backtest.horizon_days", 8)
	v.SetDefault("backtest.period_days", 1)
	v.SetDefault("backtest.parallelism", 4)

	v.SetDefault("worker.max_concurrent_fits", 2)
	v.SetDefault("worker.fit_timeout_seconds", 120)
	v.SetDefault("worker.series_cache_seconds", 0)

	v.SetDefault("diagnostics.enabled", false)
	v.SetDefault("diagnostics.output_dir", "diagnostics")

	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.refresh_cron", "15 2 * * *")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}
