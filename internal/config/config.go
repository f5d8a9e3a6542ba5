// Package config provides configuration management for the line quality services.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App         AppConfig         `mapstructure:"app" validate:"required"`
	Database    DatabaseConfig    `mapstructure:"database" validate:"required"`
	Forecast    ForecastConfig    `mapstructure:"forecast" validate:"required"`
	Backtest    BacktestConfig    `mapstructure:"backtest" validate:"required"`
	Worker      WorkerConfig      `mapstructure:"worker" validate:"required"`
	Diagnostics DiagnosticsConfig `mapstructure:"diagnostics"`
	Scheduler   SchedulerConfig   `mapstructure:"scheduler"`
	Metrics     MetricsConfig     `mapstructure:"metrics" validate:"required"`
	AWS         AWSConfig         `mapstructure:"aws"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents the record store connection
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// ForecastConfig holds the seasonal model settings
type ForecastConfig struct {
	HorizonDays           int     `mapstructure:"horizon_days" validate:"required,gt=0"`
	WeeklyOrder           int     `mapstructure:"weekly_order" validate:"gte=0"`
	DailyOrder            int     `mapstructure:"daily_order" validate:"gte=0"`
	Changepoints          int     `mapstructure:"changepoints" validate:"gte=0"`
	ChangepointRange      float64 `mapstructure:"changepoint_range" validate:"required,fraction"`
	ChangepointPriorScale float64 `mapstructure:"changepoint_prior_scale" validate:"required,gt=0"`
	SeasonalityPriorScale float64 `mapstructure:"seasonality_prior_scale" validate:"required,gt=0"`
	IntervalWidth         float64 `mapstructure:"interval_width" validate:"required,fraction"`
	UncertaintySamples    int     `mapstructure:"uncertainty_samples" validate:"gte=0"`
	Seed                  int64   `mapstructure:"seed"`
}

// BacktestConfig represents rolling-origin evaluation settings
type BacktestConfig struct {
	HorizonDays int `mapstructure:"horizon_days" validate:"required,gt=0"`
	PeriodDays  int `mapstructure:"period_days" validate:"required,gt=0"`
	Parallelism int `mapstructure:"parallelism" validate:"required,gt=0"`
}

// WorkerConfig bounds background model fitting
type WorkerConfig struct {
	MaxConcurrentFits int `mapstructure:"max_concurrent_fits" validate:"required,gt=0"`
	FitTimeoutSeconds int `mapstructure:"fit_timeout_seconds" validate:"required,gt=0"`
	// SeriesCacheSeconds keeps the built daily series for reuse; zero disables it
	SeriesCacheSeconds int `mapstructure:"series_cache_seconds" validate:"gte=0"`
}

// DiagnosticsConfig controls the optional forecast exports
type DiagnosticsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	OutputDir  string `mapstructure:"output_dir"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// SchedulerConfig represents the periodic forecast refresh
type SchedulerConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	RefreshCron string `mapstructure:"refresh_cron" validate:"omitempty,cron"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// AWSConfig locates the secret holding the database password
type AWSConfig struct {
	SecretsEnabled bool   `mapstructure:"secrets_enabled"`
	Region         string `mapstructure:"region"`
	SecretName     string `mapstructure:"secret_name"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SeriesCacheTTL returns how long a built series may be reused
func (c *Config) SeriesCacheTTL() time.Duration {
	return time.Duration(c.Worker.SeriesCacheSeconds) * time.Second
}

// FitTimeout returns the worker fit timeout as a duration
func (c *Config) FitTimeout() time.Duration {
	return time.Duration(c.Worker.FitTimeoutSeconds) * time.Second
}
