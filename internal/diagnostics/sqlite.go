package diagnostics

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/yourusername/line-quality/internal/models"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore keeps every diagnostic run in a local SQLite file
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite creates or opens the store at path and applies the schema.
// Safe to call on an existing file.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite allows a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Name identifies the sink
func (s *SQLiteStore) Name() string { return "sqlite" }

// Close closes the database
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Export inserts the run and its children in one transaction
func (s *SQLiteStore) Export(ctx context.Context, run *Run) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin export: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = insertRun(ctx, tx, run); err != nil {
		return err
	}
	if run.Forecast != nil {
		for _, p := range run.Forecast.Points {
			if _, err = tx.ExecContext(ctx, `
				INSERT INTO forecast_points (run_id, ds, estimate, lower_bound, upper_bound)
				VALUES (?, ?, ?, ?, ?)
			`, run.ID.String(), p.Date.Format(dateLayout), p.Estimate, p.Lower, p.Upper); err != nil {
				return fmt.Errorf("insert forecast point: %w", err)
			}
		}
	}

	if report := run.Backtest; report != nil && !report.Skipped {
		if report.Aggregate != nil {
			if err = insertMetrics(ctx, tx, run, 0, *report.Aggregate); err != nil {
				return err
			}
		}
		for _, h := range report.ByHorizon {
			if err = insertMetrics(ctx, tx, run, h.HorizonDay, h.AccuracyMetrics); err != nil {
				return err
			}
		}
		for _, fold := range report.Folds {
			if _, err = tx.ExecContext(ctx, `
				INSERT INTO backtest_folds (run_id, fold_index, cutoff, train_size, count, rmse, mape, coverage)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			`, run.ID.String(), fold.Index, fold.Cutoff.Format(dateLayout), fold.TrainSize,
				fold.Metrics.Count, fold.Metrics.RMSE, nullable(fold.Metrics.MAPE), fold.Metrics.Coverage); err != nil {
				return fmt.Errorf("insert backtest fold: %w", err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit export: %w", err)
	}
	return nil
}

func insertRun(ctx context.Context, tx *sql.Tx, run *Run) error {
	var (
		horizon, observations int
		sigma                 float64
		btHorizon             sql.NullInt64
		skipped               bool
		reason                sql.NullString
	)
	if run.Forecast != nil {
		horizon = run.Forecast.Horizon
		observations = run.Forecast.Summary.Observations
		sigma = run.Forecast.Summary.Sigma
	}
	if run.Backtest != nil {
		btHorizon = sql.NullInt64{Int64: int64(run.Backtest.HorizonDays), Valid: true}
		skipped = run.Backtest.Skipped
		reason = sql.NullString{String: run.Backtest.SkipReason, Valid: run.Backtest.SkipReason != ""}
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO forecast_runs (id, created_at, horizon_days, observations, sigma, backtest_horizon_days, backtest_skipped, skip_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID.String(), run.CreatedAt.Format(time.RFC3339), horizon, observations, sigma, btHorizon, skipped, reason)
	if err != nil {
		return fmt.Errorf("insert forecast run: %w", err)
	}
	return nil
}

func insertMetrics(ctx context.Context, tx *sql.Tx, run *Run, horizonDay int, m models.AccuracyMetrics) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO performance_metrics (run_id, horizon_day, count, rmse, mape, coverage)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID.String(), horizonDay, m.Count, m.RMSE, nullable(m.MAPE), m.Coverage)
	if err != nil {
		return fmt.Errorf("insert performance metrics: %w", err)
	}
	return nil
}

func nullable(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
