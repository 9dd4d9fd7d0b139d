package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"osintbot/internal/model"
)

// AdminRepository handles the privileged user set.
type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) IsAdmin(ctx context.Context, telegramID int64) (bool, error) {
	var admin model.Admin
	err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&admin).Error
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("find admin: %w", err)
	}
}

// Add grants admin rights; adding an existing admin is a no-op.
func (r *AdminRepository) Add(ctx context.Context, telegramID, addedBy int64) error {
	var admin model.Admin
	db := r.db.WithContext(ctx)
	err := db.Where("telegram_id = ?", telegramID).First(&admin).Error
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		admin = model.Admin{TelegramID: telegramID, AddedBy: addedBy}
		if err := db.Create(&admin).Error; err != nil {
			return fmt.Errorf("create admin: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("find admin: %w", err)
	}
}

func (r *AdminRepository) Remove(ctx context.Context, telegramID int64) error {
	if err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).Delete(&model.Admin{}).Error; err != nil {
		return fmt.Errorf("remove admin: %w", err)
	}
	return nil
}

func (r *AdminRepository) ListAll(ctx context.Context) ([]model.Admin, error) {
	var admins []model.Admin
	if err := r.db.WithContext(ctx).Order("created_at").Find(&admins).Error; err != nil {
		return nil, err
	}
	return admins, nil
}

func (r *AdminRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Admin{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Bootstrap grants admin rights to the configured initial set.
func (r *AdminRepository) Bootstrap(ctx context.Context, ids []int64, addedBy int64) error {
	for _, id := range ids {
		if err := r.Add(ctx, id, addedBy); err != nil {
			return err
		}
	}
	return nil
}
