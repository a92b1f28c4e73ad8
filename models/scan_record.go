package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScanRecord is one OCR-confirmed balance reading. Rows are never updated.
type ScanRecord struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Timestamp    time.Time       `gorm:"index;not null" json:"timestamp"`
	RawText      string          `gorm:"size:255" json:"raw_text"`
	NumericValue decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"numeric_value"`
	CreatedAt    time.Time       `json:"created_at"`
}
