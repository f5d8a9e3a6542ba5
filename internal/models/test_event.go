package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TimestampLayout is the only accepted layout for test event timestamps
const TimestampLayout = "2006-01-02 15:04:05"

// ResultPass is the result code recorded for a passing test
const ResultPass = 1

// TestEvent represents one recorded test of a manufactured unit
type TestEvent struct {
	ID             int64   `db:"id" json:"id"`
	BoardID        int64   `db:"board_id" json:"board_id"`
	SerialNumber   string  `db:"serial_number" json:"serial_number"`
	MachineID      string  `db:"machine_id" json:"machine_id"`
	OperatorID     string  `db:"operator_id" json:"operator_id"`
	StartTimestamp string  `db:"start_timestamp" json:"start_timestamp"`
	EndTimestamp   string  `db:"end_timestamp" json:"end_timestamp"`
	ResultCode     *int    `db:"result_code" json:"result_code"` // nil when the tester reported nothing
	TestType       string  `db:"test_type" json:"test_type"`
	Side           int     `db:"side" json:"side"`
	PositionFlan   int     `db:"position_flan" json:"position_flan"`
	ConfigLineID   int     `db:"config_line_id" json:"config_line_id"`
	ProcessID      float64 `db:"process_id" json:"process_id"`
}

// Passed reports whether the event carries the pass result code.
// A missing result code counts as a failure.
func (e TestEvent) Passed() bool {
	return e.ResultCode != nil && *e.ResultCode == ResultPass
}

// TestEventRow is a test event joined with the reference of its board
type TestEventRow struct {
	TestEvent
	ReferenceCode string              `db:"reference_code" json:"reference_code"`
	UnitPrice     decimal.NullDecimal `db:"unit_price" json:"unit_price"`
}

// TestOutcome is the minimal projection needed to build the defect-rate series
type TestOutcome struct {
	StartTimestamp string `db:"start_timestamp" json:"start_timestamp"`
	ResultCode     *int   `db:"result_code" json:"result_code"`
}

// Passed reports whether the outcome carries the pass result code.
func (o TestOutcome) Passed() bool {
	return o.ResultCode != nil && *o.ResultCode == ResultPass
}

// TimestampCutset is the padding stripped from stored timestamps before they
// are compared or parsed. The store prefilters strip the same characters.
const TimestampCutset = " \t\r\n"

// TrimTimestamp strips TimestampCutset from both ends of raw.
func TrimTimestamp(raw string) string {
	return strings.Trim(raw, TimestampCutset)
}

// ParseTimestamp parses a raw test timestamp in UTC.
func ParseTimestamp(raw string) (time.Time, error) {
	ts, err := time.ParseInLocation(TimestampLayout, TrimTimestamp(raw), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseableTimestamp, raw)
	}
	return ts, nil
}

// FormatTimestamp renders t in the store layout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
