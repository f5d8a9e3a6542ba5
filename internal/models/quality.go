package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TimeWindow is a half-open interval [Start, End)
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Validate rejects empty and inverted windows
func (w TimeWindow) Validate() error {
	if !w.Start.Before(w.End) {
		return fmt.Errorf("%w: start=%s end=%s", ErrInvalidTimeWindow,
			w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
	}
	return nil
}

// Contains reports whether t falls inside the window
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// ReferenceStat summarizes yield for one product reference
type ReferenceStat struct {
	ReferenceCode      string `json:"reference_code"`
	GoodCount          int    `json:"good_count"`
	BadCount           int    `json:"bad_count"`
	LatestSerialNumber string `json:"latest_serial_number"`
}

// ReferenceRevenue is one (reference, unit price) revenue line.
// TotalPrice is null when the reference has no price.
type ReferenceRevenue struct {
	ReferenceCode string              `json:"reference_code"`
	GoodCount     int                 `json:"good_count"`
	BadCount      int                 `json:"bad_count"`
	UnitPrice     decimal.NullDecimal `json:"unit_price"`
	TotalPrice    decimal.NullDecimal `json:"total_price"`
}

// QualityMetrics is the rollup of one time window
type QualityMetrics struct {
	Window           TimeWindow         `json:"window"`
	TotalCount       int                `json:"total_count"`
	GoodCount        int                `json:"good_count"`
	BadCount         int                `json:"bad_count"`
	DefectHistogram  map[string]int     `json:"defect_histogram"`
	ReferenceStats   []ReferenceStat    `json:"per_reference_stats"`
	ReferenceRevenue []ReferenceRevenue `json:"per_reference_revenue"`
	TestDetails      []TestEventRow     `json:"test_details,omitempty"`
	UnparseableCount int                `json:"unparseable_count"`
}
