package models

import "time"

// DefectRatePoint is the defect rate of one calendar day with at least one test
type DefectRatePoint struct {
	Date       time.Time `json:"date"`
	DefectRate float64   `json:"defect_rate"`
	Total      int       `json:"total"`
	Failures   int       `json:"failures"`
}

// ForecastPoint is a point estimate with its symmetric interval
type ForecastPoint struct {
	Date     time.Time `json:"date"`
	Estimate float64   `json:"estimate"`
	Lower    float64   `json:"lower"`
	Upper    float64   `json:"upper"`
}
