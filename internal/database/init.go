package database

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/yourusername/line-quality/internal/config"
)

// Schema is the layout of the record store tables this service reads
//
//go:embed schema.sql
var Schema string

// RequiredTables are the record store tables read by the repositories
var RequiredTables = []string{"board_references", "test_events", "interventions"}

// Initialize creates a database connection pool and verifies the record
// store tables exist
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	missing, err := db.missingTables(ctx, RequiredTables)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to inspect schema: %w", err)
	}
	if len(missing) > 0 {
		db.Close()
		return nil, fmt.Errorf("record store is missing tables: %s", strings.Join(missing, ", "))
	}

	return db, nil
}

// ApplySchema creates the record store tables when absent. Used to prepare
// test databases; production stores are owned by the line systems.
func (db *DB) ApplySchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func (db *DB) missingTables(ctx context.Context, tables []string) ([]string, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = current_schema() AND table_name = ANY($1)`, tables)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	found := make(map[string]bool, len(tables))
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		found[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var missing []string
	for _, t := range tables {
		if !found[t] {
			missing = append(missing, t)
		}
	}
	return missing, nil
}
