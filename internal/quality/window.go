package quality

import (
	"fmt"
	"time"

	"github.com/yourusername/line-quality/internal/models"
)

const (
	clockLayout       = "15:04:05"
	defaultStartClock = "00:00:00"
	defaultEndClock   = "23:59:59"
)

// WindowForDay builds the window covering day between two wall-clock times.
// Both clock times are inclusive to the second, so the window ends one second
// after to. Empty clock times default to the whole day.
func WindowForDay(day time.Time, from, to string) (models.TimeWindow, error) {
	if from == "" {
		from = defaultStartClock
	}
	if to == "" {
		to = defaultEndClock
	}

	start, err := atClock(day, from)
	if err != nil {
		return models.TimeWindow{}, err
	}
	end, err := atClock(day, to)
	if err != nil {
		return models.TimeWindow{}, err
	}

	window := models.TimeWindow{Start: start, End: end.Add(time.Second)}
	if !start.Before(end) {
		return models.TimeWindow{}, fmt.Errorf("%w: %s is not before %s", models.ErrInvalidTimeWindow, from, to)
	}
	return window, nil
}

func atClock(day time.Time, clock string) (time.Time, error) {
	c, err := time.Parse(clockLayout, clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: clock time %q must be HH:MM:SS", models.ErrInvalidTimeWindow, clock)
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, c.Hour(), c.Minute(), c.Second(), 0, time.UTC), nil
}
