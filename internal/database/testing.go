package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/yourusername/line-quality/internal/config"
)

// TestDBEnv enables tests against a live PostgreSQL when set to "true".
// Connection settings come from the usual LINE_QUALITY_DATABASE_* variables.
const TestDBEnv = "LINE_QUALITY_TEST_DB"

// SetupTestDB connects to the test database, applies the schema and empties
// every table. The test is skipped unless TestDBEnv is set.
func SetupTestDB(t *testing.T) *DB {
	t.Helper()
	if os.Getenv(TestDBEnv) != "true" {
		t.Skipf("set %s=true to run PostgreSQL tests", TestDBEnv)
	}

	cfg, err := config.LoadWithDefaults(os.Getenv("LINE_QUALITY_TEST_CONFIG"))
	if err != nil {
		t.Fatalf("failed to load test config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		t.Fatalf("failed to create test database connection: %v", err)
	}
	if err := db.ApplySchema(ctx); err != nil {
		db.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}
	if _, err := db.pool.Exec(ctx, `TRUNCATE test_events, interventions, board_references, board_families RESTART IDENTITY CASCADE`); err != nil {
		db.Close()
		t.Fatalf("failed to truncate tables: %v", err)
	}

	t.Cleanup(db.Close)
	return db
}
