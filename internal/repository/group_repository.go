package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"osintbot/internal/model"
)

// GroupRepository tracks group chats the bot has seen.
type GroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// Upsert records the group, refreshing title, handle, link and activity.
func (r *GroupRepository) Upsert(ctx context.Context, chatID int64, title, username, inviteLink string) error {
	var group model.Group
	db := r.db.WithContext(ctx)
	err := db.Where("chat_id = ?", chatID).First(&group).Error
	switch {
	case err == nil:
		updates := map[string]interface{}{
			"title":       title,
			"username":    username,
			"invite_link": inviteLink,
			"last_active": time.Now(),
		}
		if err := db.Model(&group).Updates(updates).Error; err != nil {
			return fmt.Errorf("update group: %w", err)
		}
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		group = model.Group{
			ChatID:     chatID,
			Title:      title,
			Username:   username,
			InviteLink: inviteLink,
			LastActive: time.Now(),
		}
		if err := db.Create(&group).Error; err != nil {
			return fmt.Errorf("create group: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("find group: %w", err)
	}
}

// ListAll returns every known group, most recently active first.
func (r *GroupRepository) ListAll(ctx context.Context) ([]model.Group, error) {
	var groups []model.Group
	if err := r.db.WithContext(ctx).Order("last_active DESC").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}
