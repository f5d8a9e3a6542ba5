package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BoardReference describes a product reference a tested board belongs to
type BoardReference struct {
	ID            int64               `db:"id" json:"id"`
	ReferenceCode string              `db:"reference_code" json:"reference_code"`
	FamilyID      *int64              `db:"family_id" json:"family_id"`
	UnitPrice     decimal.NullDecimal `db:"unit_price" json:"unit_price"` // current price, not historized
	Valid         bool                `db:"valid" json:"valid"`
}

// InterventionLog records a repair intervention and the defect it addressed
type InterventionLog struct {
	ID               int64     `db:"id" json:"id"`
	SerialNumber     string    `db:"serial_number" json:"serial_number"`
	DefectCode       *string   `db:"defect_code" json:"defect_code"`
	InterventionTime time.Time `db:"intervention_time" json:"intervention_time"`
}
