package main

import (
	"fmt"
	"time"

	"github.com/yourusername/line-quality/internal/models"
	"github.com/yourusername/line-quality/internal/quality"
)

type windowFlags struct {
	start, end string
	date       string
	from, to   string
}

// window resolves either an explicit --start/--end pair or a --date with
// optional clock bounds
func (f windowFlags) window() (models.TimeWindow, error) {
	if f.date != "" {
		if f.start != "" || f.end != "" {
			return models.TimeWindow{}, fmt.Errorf("--date cannot be combined with --start or --end")
		}
		day, err := time.Parse(time.DateOnly, f.date)
		if err != nil {
			return models.TimeWindow{}, fmt.Errorf("%w: invalid date %q", models.ErrInvalidTimeWindow, f.date)
		}
		return quality.WindowForDay(day, f.from, f.to)
	}

	if f.start == "" || f.end == "" {
		return models.TimeWindow{}, fmt.Errorf("%w: --start and --end are required without --date", models.ErrInvalidTimeWindow)
	}
	start, err := models.ParseTimestamp(f.start)
	if err != nil {
		return models.TimeWindow{}, fmt.Errorf("%w: start: %v", models.ErrInvalidTimeWindow, err)
	}
	end, err := models.ParseTimestamp(f.end)
	if err != nil {
		return models.TimeWindow{}, fmt.Errorf("%w: end: %v", models.ErrInvalidTimeWindow, err)
	}
	window := models.TimeWindow{Start: start, End: end}
	return window, window.Validate()
}
