// Package scheduler runs the periodic forecast refresh.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/line-quality/internal/diagnostics"
	"github.com/yourusername/line-quality/internal/logger"
)

// Refresher recomputes the forecast and backtest
type Refresher interface {
	Refresh(ctx context.Context) (*diagnostics.Run, error)
}

// Scheduler manages scheduled refresh jobs
type Scheduler struct {
	cron            *cron.Cron
	refresher       Refresher
	logger          *logrus.Logger
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	jobTimeout      time.Duration
	gracefulTimeout time.Duration

	lastRefresh time.Time
	lastErr     error
}

// NewScheduler creates a new scheduler. Overlapping runs of the same job are
// skipped.
func NewScheduler(refresher Refresher, jobTimeout time.Duration, log *logrus.Logger) *Scheduler {
	if jobTimeout <= 0 {
		jobTimeout = 30 * time.Minute
	}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		refresher:       refresher,
		logger:          logger.OrDefault(log),
		jobIDs:          make([]cron.EntryID, 0),
		jobTimeout:      jobTimeout,
		gracefulTimeout: 30 * time.Second,
	}
}

// ScheduleRefresh schedules the forecast refresh on a standard cron expression
func (s *Scheduler) ScheduleRefresh(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	entryID, err := s.cron.AddFunc(cronExpression, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		defer cancel()
		_ = s.RunNow(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("cron", cronExpression).Info("Scheduled forecast refresh")
	return nil
}

// RunNow runs one refresh immediately and records its outcome
func (s *Scheduler) RunNow(ctx context.Context) error {
	started := time.Now()
	s.logger.Info("Starting forecast refresh")

	run, err := s.refresher.Refresh(ctx)

	s.mu.Lock()
	s.lastRefresh = time.Now().UTC()
	s.lastErr = err
	s.mu.Unlock()

	if err != nil {
		s.logger.WithError(err).Error("Forecast refresh failed")
		return err
	}
	s.logger.WithFields(logrus.Fields{
		"run_id":      run.ID.String(),
		"duration_ms": time.Since(started).Milliseconds(),
	}).Info("Forecast refresh completed")
	return nil
}

// LastRefresh returns when the last refresh finished and its error.
// The time is zero before the first run.
func (s *Scheduler) LastRefresh() (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRefresh, s.lastErr
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")
	return nil
}

// Stop waits for running jobs up to the graceful timeout
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.gracefulTimeout)
	defer cancel()

	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler stop timed out after %s", s.gracefulTimeout)
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() && (nextRun.IsZero() || entry.Next.Before(nextRun)) {
			nextRun = entry.Next
		}
	}
	return nextRun
}
