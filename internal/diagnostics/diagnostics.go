// Package diagnostics writes forecast and backtest runs to optional sinks for
// offline inspection. Nothing in the service reads them back.
package diagnostics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/line-quality/internal/config"
	"github.com/yourusername/line-quality/internal/forecast"
	"github.com/yourusername/line-quality/internal/models"
)

const dateLayout = "2006-01-02"

// Run is one forecast refresh with its optional backtest
type Run struct {
	ID        uuid.UUID
	CreatedAt time.Time
	Forecast  *forecast.Result
	Backtest  *models.BacktestReport
}

// NewRun stamps a refresh with a fresh id
func NewRun(result *forecast.Result, report *models.BacktestReport) *Run {
	return &Run{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
		Forecast:  result,
		Backtest:  report,
	}
}

// Exporter writes a run to one sink
type Exporter interface {
	Name() string
	Export(ctx context.Context, run *Run) error
}

// Sinks are the exporters opened from configuration
type Sinks struct {
	Exporters []Exporter
	closers   []func() error
}

// Open builds the configured sinks. A disabled config yields no exporters.
func Open(cfg *config.DiagnosticsConfig) (*Sinks, error) {
	sinks := &Sinks{}
	if cfg == nil || !cfg.Enabled {
		return sinks, nil
	}

	if cfg.OutputDir != "" {
		sinks.Exporters = append(sinks.Exporters, NewCSVExporter(cfg.OutputDir))
	}
	if cfg.SQLitePath != "" {
		store, err := OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open diagnostics store: %w", err)
		}
		sinks.Exporters = append(sinks.Exporters, store)
		sinks.closers = append(sinks.closers, store.Close)
	}
	return sinks, nil
}

// Close releases every sink
func (s *Sinks) Close() error {
	var errs []error
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
