package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yourusername/line-quality/internal/logger"
	"github.com/yourusername/line-quality/internal/metrics"
	"github.com/yourusername/line-quality/internal/models"
	"golang.org/x/sync/semaphore"
)

// fitPool bounds concurrent model fits and abandons those that overrun
// their deadline
type fitPool struct {
	sem     *semaphore.Weighted
	timeout time.Duration
	log     *logger.ForecastLogger
}

func newFitPool(maxConcurrent int, timeout time.Duration, log *logger.ForecastLogger) *fitPool {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &fitPool{sem: semaphore.NewWeighted(int64(maxConcurrent)), timeout: timeout, log: log}
}

type outcome[T any] struct {
	value T
	err   error
}

// runBounded runs fn on its own goroutine once a slot is free. When the
// deadline passes first the caller gets ErrForecastTimeout; the goroutine
// keeps its slot until fn returns and its result is dropped.
func runBounded[T any](ctx context.Context, p *fitPool, kind string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return zero, p.wrap(kind, err)
	}

	done := make(chan outcome[T], 1)
	go func() {
		defer p.sem.Release(1)
		v, err := fn(ctx)
		done <- outcome[T]{value: v, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			return zero, p.wrap(kind, out.err)
		}
		return out.value, nil
	case <-ctx.Done():
		return zero, p.wrap(kind, ctx.Err())
	}
}

func (p *fitPool) wrap(kind string, err error) error {
	if !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	p.log.LogTimeout(kind, p.timeout)
	metrics.RecordTimeout(kind)
	return fmt.Errorf("%s: %w after %s", kind, models.ErrForecastTimeout, p.timeout)
}
