// Package main runs the scheduled forecast refresh with health and metrics
// endpoints.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/line-quality/internal/app"
	"github.com/yourusername/line-quality/internal/health"
	"github.com/yourusername/line-quality/internal/metrics"
	"github.com/yourusername/line-quality/internal/scheduler"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to config file")
		runOnStart = flag.Bool("run-on-start", true, "Refresh once before waiting for the schedule")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig(ctx, *configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to setup dependencies: %v", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			a.Logger.WithError(err).Error("Failed to close resources")
		}
	}()

	appLog := a.Logger
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"version":     Version,
		"commit":      GitCommit,
	}).Info("Forecast scheduler starting")

	metrics.InitRegistry()
	sched := scheduler.NewScheduler(a.Forecast, cfg.FitTimeout()*2, appLog)

	healthServer := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Commit:      GitCommit,
		Port:        strconv.Itoa(cfg.Metrics.Port),
		Logger:      appLog,
		DB:          a.DB,
		Refresh:     sched,
		MetricsPath: cfg.Metrics.Path,
	})
	if cfg.Metrics.Enabled {
		if err := healthServer.Start(ctx); err != nil {
			appLog.WithError(err).Fatal("Failed to start health server")
		}
	}

	if !cfg.Scheduler.Enabled {
		appLog.Warn("Scheduler disabled, running a single refresh")
		if err := sched.RunNow(ctx); err != nil {
			os.Exit(1)
		}
		return
	}

	if err := sched.ScheduleRefresh(cfg.Scheduler.RefreshCron); err != nil {
		appLog.WithError(err).Fatal("Failed to schedule refresh")
	}
	if *runOnStart {
		// a failed first refresh is reported by /ready and retried on schedule
		_ = sched.RunNow(ctx)
	}
	if err := sched.Start(); err != nil {
		appLog.WithError(err).Fatal("Failed to start scheduler")
	}
	healthServer.SetReady(true)
	appLog.WithField("next_run", sched.GetNextRun()).Info("Waiting for scheduled refreshes")

	<-ctx.Done()
	appLog.Info("Shutting down")
	healthServer.SetReady(false)
	if err := sched.Stop(); err != nil {
		appLog.WithError(err).Error("Scheduler did not stop cleanly")
	}
	if err := healthServer.Shutdown(); err != nil {
		appLog.WithError(err).Error("Health server did not stop cleanly")
	}
}
