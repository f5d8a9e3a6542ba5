package repository

import (
	"context"
	"fmt"

	"github.com/yourusername/line-quality/internal/database"
	"github.com/yourusername/line-quality/internal/models"
)

// PostgresInterventionRepository implements InterventionRepository for PostgreSQL
type PostgresInterventionRepository struct {
	db *database.DB
}

// NewPostgresInterventionRepository creates a new intervention repository
func NewPostgresInterventionRepository(db *database.DB) InterventionRepository {
	return &PostgresInterventionRepository{db: db}
}

// ListInWindow retrieves interventions inside window, optionally for one serial number
func (r *PostgresInterventionRepository) ListInWindow(ctx context.Context, window models.TimeWindow, serialNumber string) ([]models.InterventionLog, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}

	query := `
		SELECT id, serial_number, defect_code, intervention_time
		FROM interventions
		WHERE intervention_time >= $1 AND intervention_time < $2
	`
	args := []interface{}{window.Start, window.End}
	if serialNumber != "" {
		query += " AND serial_number = $3"
		args = append(args, serialNumber)
	}

	rows, err := r.db.GetPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query interventions: %w", err)
	}
	defer rows.Close()

	var logs []models.InterventionLog
	for rows.Next() {
		var entry models.InterventionLog
		if err := rows.Scan(&entry.ID, &entry.SerialNumber, &entry.DefectCode, &entry.InterventionTime); err != nil {
			return nil, fmt.Errorf("failed to scan intervention: %w", err)
		}
		logs = append(logs, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating interventions: %w", err)
	}

	return logs, nil
}
