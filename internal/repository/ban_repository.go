package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"osintbot/internal/model"
)

// BanRepository handles blocked users.
type BanRepository struct {
	db *gorm.DB
}

func NewBanRepository(db *gorm.DB) *BanRepository {
	return &BanRepository{db: db}
}

func (r *BanRepository) IsBanned(ctx context.Context, telegramID int64) (bool, error) {
	var ban model.Ban
	err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&ban).Error
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("find ban: %w", err)
	}
}

// Upsert bans a user; banning again replaces reason, issuer and timestamp.
func (r *BanRepository) Upsert(ctx context.Context, telegramID int64, reason string, bannedBy int64) error {
	var ban model.Ban
	db := r.db.WithContext(ctx)
	err := db.Where("telegram_id = ?", telegramID).First(&ban).Error
	switch {
	case err == nil:
		updates := map[string]interface{}{
			"reason":     reason,
			"banned_by":  bannedBy,
			"created_at": time.Now(),
		}
		if err := db.Model(&ban).Updates(updates).Error; err != nil {
			return fmt.Errorf("update ban: %w", err)
		}
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		ban = model.Ban{TelegramID: telegramID, Reason: reason, BannedBy: bannedBy}
		if err := db.Create(&ban).Error; err != nil {
			return fmt.Errorf("create ban: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("find ban: %w", err)
	}
}

func (r *BanRepository) Remove(ctx context.Context, telegramID int64) error {
	if err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).Delete(&model.Ban{}).Error; err != nil {
		return fmt.Errorf("remove ban: %w", err)
	}
	return nil
}

func (r *BanRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Ban{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
