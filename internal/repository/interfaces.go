package repository

import (
	"context"

	"github.com/yourusername/line-quality/internal/models"
)

// TestEventRepository defines read access to recorded test events.
// Window queries may return rows whose timestamps do not parse; callers
// parse and filter them.
type TestEventRepository interface {
	ListInWindow(ctx context.Context, window models.TimeWindow) ([]models.TestEventRow, error)
	ListByFilter(ctx context.Context, column models.FilterColumn, value string, window models.TimeWindow) ([]models.TestEventRow, error)
	ListOutcomes(ctx context.Context) ([]models.TestOutcome, error)
}

// InterventionRepository defines read access to repair interventions.
// An empty serial number matches every unit.
type InterventionRepository interface {
	ListInWindow(ctx context.Context, window models.TimeWindow, serialNumber string) ([]models.InterventionLog, error)
}
