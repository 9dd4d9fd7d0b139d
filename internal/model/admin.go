package model

import "time"

// Admin marks a Telegram user as privileged.
type Admin struct {
	ID         uint  `gorm:"primaryKey"`
	TelegramID int64 `gorm:"uniqueIndex"`
	AddedBy    int64
	CreatedAt  time.Time
}
