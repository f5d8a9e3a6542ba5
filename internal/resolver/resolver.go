// Package resolver selects the most recent test record per grouping key.
package resolver

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

// Record pairs a test event row with its parsed start timestamp
type Record struct {
	Row   models.TestEventRow
	Start time.Time
}

// Parse keeps the rows whose start timestamp parses and reports how many were dropped.
// Dropped rows are logged against source.
func Parse(rows []models.TestEventRow, source string, log *logger.QualityLogger) ([]Record, int) {
	records := make([]Record, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		start, err := models.ParseTimestamp(row.StartTimestamp)
		if err != nil {
			dropped++
			if log != nil {
				log.LogUnparseable(source, row.ID, row.StartTimestamp)
			}
			continue
		}
		records = append(records, Record{Row: row, Start: start})
	}
	if dropped > 0 {
		metrics.RecordUnparseable(source, dropped)
	}
	return records, dropped
}

// LatestBy returns one record per distinct key, the one with the latest start.
// Records sharing the maximum start within a group keep their input order, so
// the first of them wins; callers must not rely on which.
// The result is ordered by start descending.
func LatestBy(records []Record, key func(models.TestEventRow) string) []Record {
	if len(records) == 0 {
		return []Record{}
	}

	type keyed struct {
		key string
		rec Record
	}
	sorted := make([]keyed, len(records))
	for i, rec := range records {
		sorted[i] = keyed{key: key(rec.Row), rec: rec}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].key != sorted[j].key {
			return sorted[i].key < sorted[j].key
		}
		return sorted[i].rec.Start.After(sorted[j].rec.Start)
	})

	latest := make([]Record, 0, len(sorted))
	for i, k := range sorted {
		if i > 0 && sorted[i-1].key == k.key {
			continue
		}
		latest = append(latest, k.rec)
	}

	sort.SliceStable(latest, func(i, j int) bool {
		return latest[i].Start.After(latest[j].Start)
	})
	return latest
}

// Query selects the rows of Window whose Filter column equals Value and groups
// them by GroupBy. A zero GroupBy groups by serial number.
type Query struct {
	GroupBy models.FilterColumn
	Filter  models.FilterColumn
	Value   string
	Window  models.TimeWindow
}

// Resolver answers latest-record queries against the record store
type Resolver struct {
	events repository.TestEventRepository
	log    *logger.QualityLogger
}

// New creates a resolver reading from events
func New(events repository.TestEventRepository, log *logrus.Logger) (*Resolver, error) {
	if events == nil {
		return nil, fmt.Errorf("test event repository is required")
	}
	return &Resolver{events: events, log: logger.NewQualityLogger(log)}, nil
}

// Latest returns at most one row per grouping key, newest first.
// Invalid columns, values or windows are rejected before the store is queried.
func (r *Resolver) Latest(ctx context.Context, q Query) ([]models.TestEventRow, error) {
	groupBy := q.GroupBy
	if groupBy == models.FilterUnknown {
		groupBy = models.FilterSerialNumber
	}
	if !groupBy.Valid() {
		return nil, fmt.Errorf("group by: %w: %d", models.ErrInvalidFilterColumn, int(groupBy))
	}
	if !q.Filter.Valid() {
		return nil, fmt.Errorf("filter: %w: %d", models.ErrInvalidFilterColumn, int(q.Filter))
	}
	if _, err := q.Filter.ParseValue(q.Value); err != nil {
		return nil, err
	}
	if err := q.Window.Validate(); err != nil {
		return nil, err
	}

	rows, err := r.events.ListByFilter(ctx, q.Filter, q.Value, q.Window)
	if err != nil {
		return nil, fmt.Errorf("failed to list test events by %s: %w", q.Filter, err)
	}

	parsed, _ := Parse(rows, "resolver", r.log)
	inWindow := parsed[:0]
	for _, rec := range parsed {
		if q.Window.Contains(rec.Start) {
			inWindow = append(inWindow, rec)
		}
	}

	latest := LatestBy(inWindow, groupBy.Key)
	out := make([]models.TestEventRow, len(latest))
	for i, rec := range latest {
		out[i] = rec.Row
	}

	r.log.LogResolution(groupBy.String(), q.Filter.String(), len(rows), len(out))
	return out, nil
}
