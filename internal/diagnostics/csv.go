package diagnostics

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/yourusername/line-quality/internal/models"
)

// File names written by the CSV exporter
const (
	ForecastFile           = "defect_rate_forecast.csv"
	PerformanceMetricsFile = "defect_rate_performance_metrics.csv"
	BacktestFile           = "defect_rate_backtest.csv"
)

// CSVExporter overwrites the three diagnostic CSV files in a directory
type CSVExporter struct {
	dir string
}

// NewCSVExporter creates an exporter writing into dir
func NewCSVExporter(dir string) *CSVExporter {
	return &CSVExporter{dir: dir}
}

// Name identifies the sink
func (c *CSVExporter) Name() string { return "csv" }

// Export writes the forecast, and the backtest files when the run has an
// evaluated backtest
func (c *CSVExporter) Export(ctx context.Context, run *Run) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	if run.Forecast != nil {
		records := [][]string{{"ds", "yhat", "yhat_lower", "yhat_upper"}}
		for _, p := range run.Forecast.Points {
			records = append(records, []string{p.Date.Format(dateLayout), formatFloat(p.Estimate), formatFloat(p.Lower), formatFloat(p.Upper)})
		}
		if err := c.write(ForecastFile, records); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	report := run.Backtest
	if report == nil || report.Skipped {
		return nil
	}

	records := [][]string{{"ds", "yhat", "yhat_lower", "yhat_upper", "y", "cutoff", "horizon_day"}}
	for _, p := range report.Predictions() {
		records = append(records, []string{
			p.Date.Format(dateLayout),
			formatFloat(p.Estimate),
			formatFloat(p.Lower),
			formatFloat(p.Upper),
			formatFloat(p.Actual),
			p.Cutoff.Format(dateLayout),
			strconv.Itoa(p.HorizonDay),
		})
	}
	if err := c.write(BacktestFile, records); err != nil {
		return err
	}

	records = [][]string{{"horizon", "count", "rmse", "mape", "coverage"}}
	for _, h := range report.ByHorizon {
		records = append(records, metricsRecord(fmt.Sprintf("%d days", h.HorizonDay), h.AccuracyMetrics))
	}
	if report.Aggregate != nil {
		records = append(records, metricsRecord("all", *report.Aggregate))
	}
	return c.write(PerformanceMetricsFile, records)
}

func (c *CSVExporter) write(name string, records [][]string) error {
	path := filepath.Join(c.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return f.Close()
}

func metricsRecord(label string, m models.AccuracyMetrics) []string {
	mape := ""
	if m.MAPE != nil {
		mape = formatFloat(*m.MAPE)
	}
	return []string{label, strconv.Itoa(m.Count), formatFloat(m.RMSE), mape, formatFloat(m.Coverage)}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
