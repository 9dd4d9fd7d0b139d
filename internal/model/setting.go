package model

import "time"

// Setting is a generic key/value pair for runtime toggles.
type Setting struct {
	ID        uint   `gorm:"primaryKey"`
	Key       string `gorm:"uniqueIndex"`
	Value     string
	UpdatedAt time.Time
}
