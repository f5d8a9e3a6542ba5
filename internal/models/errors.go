package models

import "errors"

// Custom errors
var (
	ErrInvalidFilterColumn  = errors.New("invalid filter column")
	ErrInvalidFilterValue   = errors.New("invalid filter value")
	ErrInvalidTimeWindow    = errors.New("invalid time window: start must be before end")
	ErrInvalidHorizon       = errors.New("invalid horizon")
	ErrInsufficientHistory  = errors.New("insufficient history to fit forecast model")
	ErrForecastTimeout      = errors.New("forecast timed out")
	ErrUnparseableTimestamp = errors.New("unparseable timestamp")
)
