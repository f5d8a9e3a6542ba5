// Package series builds the daily defect-rate series from test history.
package series

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/line-quality/internal/logger"
	"github.com/yourusername/line-quality/internal/metrics"
	"github.com/yourusername/line-quality/internal/models"
	"github.com/yourusername/line-quality/internal/repository"
)

// Builder reads the full test history and reduces it to daily defect rates
type Builder struct {
	events repository.TestEventRepository
	log    *logger.QualityLogger
	cache  *seriesCache
}

// NewBuilder creates a series builder over events
func NewBuilder(events repository.TestEventRepository, log *logrus.Logger) (*Builder, error) {
	if events == nil {
		return nil, fmt.Errorf("test event repository is required")
	}
	return &Builder{events: events, log: logger.NewQualityLogger(log)}, nil
}

// WithCache reuses a built series for ttl. A non-positive ttl disables reuse.
func (b *Builder) WithCache(ttl time.Duration) *Builder {
	if ttl <= 0 {
		b.cache = nil
		return b
	}
	b.cache = newSeriesCache(ttl)
	return b
}

// Invalidate drops any cached series
func (b *Builder) Invalidate() {
	if b.cache != nil {
		b.cache.flush()
	}
}

// Build scans every recorded outcome and returns the daily series
func (b *Builder) Build(ctx context.Context) ([]models.DefectRatePoint, error) {
	if b.cache != nil {
		if points, ok := b.cache.get(); ok {
			return points, nil
		}
	}

	outcomes, err := b.events.ListOutcomes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list test outcomes: %w", err)
	}

	points, dropped := FromOutcomes(outcomes)
	if dropped > 0 {
		b.log.WithField("dropped", dropped).Warn("Dropped outcomes with unparseable timestamps")
		metrics.RecordUnparseable("series", dropped)
	}
	if b.cache != nil {
		b.cache.set(points)
	}
	return points, nil
}

// FromOutcomes groups parseable outcomes by UTC calendar day. Days without
// outcomes are absent. Points are ordered by ascending date.
func FromOutcomes(outcomes []models.TestOutcome) ([]models.DefectRatePoint, int) {
	type tally struct{ total, failures int }
	days := make(map[time.Time]*tally)
	dropped := 0

	for _, outcome := range outcomes {
		ts, err := models.ParseTimestamp(outcome.StartTimestamp)
		if err != nil {
			dropped++
			continue
		}
		date := Day(ts)
		t, ok := days[date]
		if !ok {
			t = &tally{}
			days[date] = t
		}
		t.total++
		if !outcome.Passed() {
			t.failures++
		}
	}

	points := make([]models.DefectRatePoint, 0, len(days))
	for date, t := range days {
		points = append(points, models.DefectRatePoint{
			Date:       date,
			DefectRate: float64(t.failures) / float64(t.total),
			Total:      t.total,
			Failures:   t.failures,
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points, dropped
}

// Day truncates t to midnight UTC of its calendar date
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Clone returns an independent copy of points
func Clone(points []models.DefectRatePoint) []models.DefectRatePoint {
	return append([]models.DefectRatePoint(nil), points...)
}
