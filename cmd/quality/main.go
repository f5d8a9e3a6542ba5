// Package main provides the command-line interface to quality rollups and
// defect-rate forecasts.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/yourusername/line-quality/internal/app"
	"github.com/yourusername/line-quality/internal/backtest"
	"github.com/yourusername/line-quality/internal/models"
	"github.com/yourusername/line-quality/internal/quality"
	"github.com/yourusername/line-quality/internal/resolver"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile string
	windowOpts windowFlags
	serial     string
	details    bool
	groupBy    string
	filterCol  string
	filterVal  string
	horizon    int
	textReport bool

	application *app.App
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")

	for _, cmd := range []*cobra.Command{qualityCmd, uniqueTestsCmd} {
		cmd.Flags().StringVar(&windowOpts.start, "start", "", "Window start (YYYY-MM-DD HH:MM:SS)")
		cmd.Flags().StringVar(&windowOpts.end, "end", "", "Window end, exclusive (YYYY-MM-DD HH:MM:SS)")
		cmd.Flags().StringVar(&windowOpts.date, "date", "", "Day to report (YYYY-MM-DD), instead of --start/--end")
		cmd.Flags().StringVar(&windowOpts.from, "from", "", "Start clock time on --date (HH:MM:SS)")
		cmd.Flags().StringVar(&windowOpts.to, "to", "", "End clock time on --date, inclusive (HH:MM:SS)")
	}
	qualityCmd.Flags().StringVar(&serial, "serial", "", "Restrict the defect histogram to one serial number")
	qualityCmd.Flags().BoolVar(&details, "details", false, "Include every test in the window")

	uniqueTestsCmd.Flags().StringVar(&groupBy, "group-by", "serial_number", "Column identifying one unit")
	uniqueTestsCmd.Flags().StringVar(&filterCol, "filter", "", "Filter column")
	uniqueTestsCmd.Flags().StringVar(&filterVal, "value", "", "Filter value")

	forecastCmd.Flags().IntVar(&horizon, "horizon", 0, "Days to forecast (0 uses the configured horizon)")
	backtestCmd.Flags().IntVar(&horizon, "horizon", 0, "Evaluation horizon in days (0 uses the configured horizon)")
	backtestCmd.Flags().BoolVar(&textReport, "text", false, "Print a console report instead of JSON")
}

var rootCmd = &cobra.Command{
	Use:     "quality",
	Short:   "Test quality rollups and defect-rate forecasts",
	Version: fmt.Sprintf("%s (%s)", Version, GitCommit),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := app.LoadConfig(cmd.Context(), configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		application, err = app.New(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("failed to setup dependencies: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if application == nil {
			return nil
		}
		return application.Close()
	},
}

var qualityCmd = &cobra.Command{
	Use:   "quality",
	Short: "Summarize test outcomes in a window",
	RunE: func(cmd *cobra.Command, args []string) error {
		window, err := windowOpts.window()
		if err != nil {
			return err
		}
		m, err := application.Quality.Quality(cmd.Context(), quality.Request{
			Window:         window,
			SerialNumber:   serial,
			IncludeDetails: details,
		})
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), m)
	},
}

var uniqueTestsCmd = &cobra.Command{
	Use:   "unique-tests",
	Short: "Latest matching test per unit in a window",
	RunE: func(cmd *cobra.Command, args []string) error {
		window, err := windowOpts.window()
		if err != nil {
			return err
		}
		q, err := buildQuery(groupBy, filterCol, filterVal, window)
		if err != nil {
			return err
		}
		rows, err := application.Quality.UniqueTests(cmd.Context(), q)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), rows)
	},
}

var seriesCmd = &cobra.Command{
	Use:   "series",
	Short: "Daily defect-rate series",
	RunE: func(cmd *cobra.Command, args []string) error {
		points, err := application.Forecast.Series(cmd.Context())
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), points)
	},
}

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Forecast the daily defect rate",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := application.Forecast.Forecast(cmd.Context(), horizon)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), result)
	},
}

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Rolling-origin accuracy of the forecast",
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := application.Forecast.Backtest(cmd.Context(), horizon)
		if err != nil {
			return err
		}
		if textReport {
			_, err = io.WriteString(cmd.OutOrStdout(), backtest.GenerateConsoleReport(report))
			return err
		}
		return writeJSON(cmd.OutOrStdout(), report)
	},
}

func main() {
	rootCmd.AddCommand(qualityCmd, uniqueTestsCmd, seriesCmd, forecastCmd, backtestCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func buildQuery(groupBy, filter, value string, window models.TimeWindow) (resolver.Query, error) {
	group, err := models.ParseFilterColumn(groupBy)
	if err != nil {
		return resolver.Query{}, err
	}
	col, err := models.ParseFilterColumn(filter)
	if err != nil {
		return resolver.Query{}, err
	}
	return resolver.Query{GroupBy: group, Filter: col, Value: value, Window: window}, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
