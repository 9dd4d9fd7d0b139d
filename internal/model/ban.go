package model

import "time"

// Ban blocks a Telegram user from running lookups.
type Ban struct {
	ID         uint  `gorm:"primaryKey"`
	TelegramID int64 `gorm:"uniqueIndex"`
	Reason     string
	BannedBy   int64
	CreatedAt  time.Time
}
