// Package app assembles the services shared by the command-line tools.
package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/line-quality/internal/backtest"
	"github.com/yourusername/line-quality/internal/config"
	"github.com/yourusername/line-quality/internal/database"
	"github.com/yourusername/line-quality/internal/diagnostics"
	"github.com/yourusername/line-quality/internal/forecast"
	"github.com/yourusername/line-quality/internal/logger"
	"github.com/yourusername/line-quality/internal/quality"
	"github.com/yourusername/line-quality/internal/repository"
	"github.com/yourusername/line-quality/internal/resolver"
	"github.com/yourusername/line-quality/internal/series"
	"github.com/yourusername/line-quality/internal/service"
)

// App holds the wired services
type App struct {
	Config   *config.Config
	Logger   *logrus.Logger
	DB       *database.DB
	Quality  *service.QualityService
	Forecast *service.ForecastService

	sinks *diagnostics.Sinks
}

// LoadConfig reads configuration, overlays AWS secrets when enabled and
// validates the result
func LoadConfig(ctx context.Context, path string) (*config.Config, error) {
	cfg, err := config.LoadWithDefaults(path)
	if err != nil {
		return nil, err
	}
	if err := config.LoadSecretsFromAWS(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to load secrets: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// New connects to the record store, checks its tables and wires every
// service
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	repos, err := repository.NewRepositories(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	a, err := NewWithRepositories(cfg, repos, log)
	if err != nil {
		db.Close()
		return nil, err
	}
	a.DB = db
	return a, nil
}

// NewWithRepositories wires every service over repos
func NewWithRepositories(cfg *config.Config, repos *repository.Repositories, log *logrus.Logger) (*App, error) {
	log = logger.OrDefault(log)

	aggregator, err := quality.NewAggregator(repos, log)
	if err != nil {
		return nil, err
	}
	res, err := resolver.New(repos.TestEvent, log)
	if err != nil {
		return nil, err
	}
	qualitySvc, err := service.NewQualityService(aggregator, res)
	if err != nil {
		return nil, err
	}

	builder, err := series.NewBuilder(repos.TestEvent, log)
	if err != nil {
		return nil, err
	}
	builder.WithCache(cfg.SeriesCacheTTL())
	fcfg, err := forecast.FromConfig(&cfg.Forecast)
	if err != nil {
		return nil, err
	}
	engine, err := forecast.NewEngine(fcfg, log)
	if err != nil {
		return nil, err
	}
	btcfg, err := backtest.FromConfig(&cfg.Backtest)
	if err != nil {
		return nil, err
	}
	evaluator, err := backtest.NewEvaluator(engine, btcfg, log)
	if err != nil {
		return nil, err
	}

	sinks, err := diagnostics.Open(&cfg.Diagnostics)
	if err != nil {
		return nil, err
	}
	forecastSvc, err := service.NewForecastService(builder, engine, evaluator, service.WorkerOptions{
		MaxConcurrentFits: cfg.Worker.MaxConcurrentFits,
		FitTimeout:        cfg.FitTimeout(),
	}, sinks.Exporters, log)
	if err != nil {
		sinks.Close()
		return nil, err
	}

	return &App{
		Config:   cfg,
		Logger:   log,
		Quality:  qualitySvc,
		Forecast: forecastSvc,
		sinks:    sinks,
	}, nil
}

// Close releases the diagnostic sinks and the database pool
func (a *App) Close() error {
	err := a.sinks.Close()
	if a.DB != nil {
		a.DB.Close()
	}
	return err
}
