package model

import "time"

// Group records a group chat the bot has been added to.
type Group struct {
	ID         uint  `gorm:"primaryKey"`
	ChatID     int64 `gorm:"uniqueIndex"`
	Title      string
	Username   string
	InviteLink string
	LastActive time.Time
	CreatedAt  time.Time
}
