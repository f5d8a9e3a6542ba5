package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/line-quality/internal/diagnostics"
)

type fakeRefresher struct {
	calls atomic.Int32
	err   error
}

func (f *fakeRefresher) Refresh(ctx context.Context) (*diagnostics.Run, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return diagnostics.NewRun(nil, nil), nil
}

func TestScheduleRefreshValidation(t *testing.T) {
	s := NewScheduler(&fakeRefresher{}, time.Minute, nil)

	assert.Error(t, s.Start(), "no jobs scheduled")
	assert.Error(t, s.ScheduleRefresh("not a cron"))
	require.NoError(t, s.ScheduleRefresh("15 2 * * *"))
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(&fakeRefresher{}, time.Minute, nil)
	require.NoError(t, s.ScheduleRefresh("15 2 * * *"))

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.Error(t, s.Start())
	assert.Error(t, s.ScheduleRefresh("@hourly"))

	next := s.GetNextRun()
	assert.False(t, next.IsZero())
	assert.Equal(t, 2, next.UTC().Hour())
	assert.Equal(t, 15, next.UTC().Minute())

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	assert.True(t, s.GetNextRun().IsZero())
	assert.NoError(t, s.Stop())
}

func TestRunNowRecordsOutcome(t *testing.T) {
	refresher := &fakeRefresher{}
	s := NewScheduler(refresher, time.Minute, nil)

	at, err := s.LastRefresh()
	assert.True(t, at.IsZero())
	assert.NoError(t, err)

	require.NoError(t, s.RunNow(context.Background()))
	at, err = s.LastRefresh()
	assert.False(t, at.IsZero())
	assert.NoError(t, err)

	refresher.err = errors.New("store down")
	assert.ErrorIs(t, s.RunNow(context.Background()), refresher.err)
	_, err = s.LastRefresh()
	assert.ErrorIs(t, err, refresher.err)
	assert.Equal(t, int32(2), refresher.calls.Load())
}

func TestScheduledJobRuns(t *testing.T) {
	refresher := &fakeRefresher{}
	s := NewScheduler(refresher, time.Minute, nil)
	require.NoError(t, s.ScheduleRefresh("@every 1s"))
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool { return refresher.calls.Load() > 0 }, 5*time.Second, 50*time.Millisecond)
}
