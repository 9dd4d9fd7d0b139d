package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"osintbot/internal/model"
)

// SettingRepository stores generic key/value toggles.
type SettingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// Set writes the value, replacing any previous one for the key.
func (r *SettingRepository) Set(ctx context.Context, key, value string) error {
	var setting model.Setting
	db := r.db.WithContext(ctx)
	err := db.Where("key = ?", key).First(&setting).Error
	switch {
	case err == nil:
		if err := db.Model(&setting).Update("value", value).Error; err != nil {
			return fmt.Errorf("update setting: %w", err)
		}
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		setting = model.Setting{Key: key, Value: value}
		if err := db.Create(&setting).Error; err != nil {
			return fmt.Errorf("create setting: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("find setting: %w", err)
	}
}

// Get returns the stored value, or gorm.ErrRecordNotFound when unset.
func (r *SettingRepository) Get(ctx context.Context, key string) (string, error) {
	var setting model.Setting
	if err := r.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error; err != nil {
		return "", err
	}
	return setting.Value, nil
}
