package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/yourusername/line-quality/internal/models"
)

// MemoryStore is an in-process record store over fixed slices. It applies the
// same text-range window prefilter as the PostgreSQL repositories.
type MemoryStore struct {
	mu            sync.Mutex
	events        []models.TestEventRow
	interventions []models.InterventionLog
	queries       int

	// Err, when set, is returned by every query
	Err error
}

// NewMemoryStore creates a store holding copies of the given records
func NewMemoryStore(events []models.TestEventRow, interventions []models.InterventionLog) *MemoryStore {
	return &MemoryStore{
		events:        append([]models.TestEventRow(nil), events...),
		interventions: append([]models.InterventionLog(nil), interventions...),
	}
}

// Queries returns how many queries reached the store
func (m *MemoryStore) Queries() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queries
}

func (m *MemoryStore) begin(ctx context.Context) error {
	m.mu.Lock()
	m.queries++
	m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.Err
}

// ListInWindow implements TestEventRepository
func (m *MemoryStore) ListInWindow(ctx context.Context, window models.TimeWindow) ([]models.TestEventRow, error) {
	return m.list(ctx, window, func(models.TestEventRow) bool { return true })
}

// ListByFilter implements TestEventRepository
func (m *MemoryStore) ListByFilter(ctx context.Context, column models.FilterColumn, value string, window models.TimeWindow) ([]models.TestEventRow, error) {
	if _, err := column.ParseValue(value); err != nil {
		return nil, err
	}
	return m.list(ctx, window, func(row models.TestEventRow) bool { return column.Matches(row, value) })
}

func (m *MemoryStore) list(ctx context.Context, window models.TimeWindow, keep func(models.TestEventRow) bool) ([]models.TestEventRow, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}
	if err := m.begin(ctx); err != nil {
		return nil, err
	}

	lo, hi := models.FormatTimestamp(window.Start), models.FormatTimestamp(window.End)
	var out []models.TestEventRow
	for _, row := range m.events {
		start := models.TrimTimestamp(row.StartTimestamp)
		if start >= lo && start < hi && keep(row) {
			out = append(out, row)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return models.TrimTimestamp(out[i].StartTimestamp) > models.TrimTimestamp(out[j].StartTimestamp)
	})
	return out, nil
}

// ListOutcomes implements TestEventRepository
func (m *MemoryStore) ListOutcomes(ctx context.Context) ([]models.TestOutcome, error) {
	if err := m.begin(ctx); err != nil {
		return nil, err
	}
	out := make([]models.TestOutcome, 0, len(m.events))
	for _, row := range m.events {
		out = append(out, models.TestOutcome{StartTimestamp: row.StartTimestamp, ResultCode: row.ResultCode})
	}
	return out, nil
}

// Interventions exposes the store as an InterventionRepository
func (m *MemoryStore) Interventions() InterventionRepository {
	return memoryInterventions{m}
}

type memoryInterventions struct {
	m *MemoryStore
}

func (mi memoryInterventions) ListInWindow(ctx context.Context, window models.TimeWindow, serialNumber string) ([]models.InterventionLog, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}
	if err := mi.m.begin(ctx); err != nil {
		return nil, err
	}
	var out []models.InterventionLog
	for _, entry := range mi.m.interventions {
		if !window.Contains(entry.InterventionTime) {
			continue
		}
		if serialNumber != "" && entry.SerialNumber != serialNumber {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

// Repositories wraps the store in a Repositories container
func (m *MemoryStore) Repositories() *Repositories {
	return &Repositories{TestEvent: m, Intervention: m.Interventions()}
}
