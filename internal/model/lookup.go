package model

import "time"

// Lookup is one audit row per executed lookup. Response keeps the raw
// (unsanitized) envelope so admins can inspect what the upstream returned.
type Lookup struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    int64  `gorm:"index"`
	Command   string `gorm:"index"`
	Query     string
	Response  string `gorm:"type:text"`
	CreatedAt time.Time
}
