package model

import "time"

// User stores Telegram user metadata and the running lookup counter.
type User struct {
	ID         uint  `gorm:"primaryKey"`
	TelegramID int64 `gorm:"uniqueIndex"`
	FirstName  string
	LastName   string
	Username   string
	Lookups    int64 `gorm:"default:0"`
	LastSeen   time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
