package backtest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yourusername/line-quality/internal/models"
)

// GenerateConsoleReport formats a backtest report for terminal output
func GenerateConsoleReport(report *models.BacktestReport) string {
	var builder strings.Builder
	builder.WriteString("Backtest Report\n")
	builder.WriteString("================\n")
	builder.WriteString(fmt.Sprintf("Horizon: %d days\n", report.HorizonDays))
	builder.WriteString(fmt.Sprintf("Series Size: %d\n", report.SeriesSize))
	if report.Skipped {
		builder.WriteString(fmt.Sprintf("Status: skipped (%s)\n", report.SkipReason))
		return builder.String()
	}

	builder.WriteString(fmt.Sprintf("Folds: %d\n", len(report.Folds)))
	if report.Aggregate != nil {
		builder.WriteString(fmt.Sprintf("Predictions: %d\n", report.Aggregate.Count))
		builder.WriteString(fmt.Sprintf("MAPE: %s\n", formatMAPE(report.Aggregate.MAPE)))
		builder.WriteString(fmt.Sprintf("RMSE: %.4f\n", report.Aggregate.RMSE))
		builder.WriteString(fmt.Sprintf("Coverage: %.2f%%\n", report.Aggregate.Coverage*100))
	}

	if len(report.ByHorizon) > 0 {
		builder.WriteString("\nBy Horizon\n")
		builder.WriteString(fmt.Sprintf("%-5s %6s %9s %8s %9s\n", "Day", "Count", "MAPE", "RMSE", "Coverage"))
		for _, h := range report.ByHorizon {
			builder.WriteString(fmt.Sprintf("%-5d %6d %9s %8.4f %8.2f%%\n",
				h.HorizonDay, h.Count, formatMAPE(h.MAPE), h.RMSE, h.Coverage*100))
		}
	}
	return builder.String()
}

// ToJSON renders the report as indented JSON
func ToJSON(report *models.BacktestReport) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func formatMAPE(mape *float64) string {
	if mape == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", *mape*100)
}
