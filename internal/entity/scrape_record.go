package entity

import (
	"time"

	"gorm.io/gorm"
)

// ScrapeRecord is the persisted summary of one scrape call, written by the
// API service for reporting. The CLI and MCP server do not use it.
type ScrapeRecord struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	Symbol         string         `json:"symbol" gorm:"not null;index"`
	Success        bool           `json:"success"`
	ErrorMessage   string         `json:"error_message"`
	CurrentPrice   *float64       `json:"current_price"`
	PriceChangePct *float64       `json:"price_change_pct"`
	ElapsedMs      int64          `json:"elapsed_ms"`
	CreatedAt      time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName sets the table name for ScrapeRecord.
func (ScrapeRecord) TableName() string {
	return "scrape_records"
}
