package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"osintbot/internal/model"
)

// UserRepository handles CRUD for users.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// UpsertFromTelegram finds or creates a user based on TelegramID, refreshes
// the profile fields and bumps LastSeen. The lookup counter is never touched.
func (r *UserRepository) UpsertFromTelegram(ctx context.Context, telegramID int64, firstName, lastName, username string) (*model.User, error) {
	var user model.User
	db := r.db.WithContext(ctx)
	err := db.Where("telegram_id = ?", telegramID).First(&user).Error
	switch {
	case err == nil:
		updates := map[string]interface{}{
			"first_name": firstName,
			"last_name":  lastName,
			"username":   username,
			"last_seen":  time.Now(),
		}
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
		return &user, nil
	case err == gorm.ErrRecordNotFound:
		user = model.User{
			TelegramID: telegramID,
			FirstName:  firstName,
			LastName:   lastName,
			Username:   username,
			LastSeen:   time.Now(),
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		return &user, nil
	default:
		return nil, fmt.Errorf("find user: %w", err)
	}
}

func (r *UserRepository) FindByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns users page by page, most recently seen first.
func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Order("last_seen DESC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ListIDs returns every Telegram user ID known to the bot.
func (r *UserRepository) ListIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Order("last_seen DESC").Pluck("telegram_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// ListRecent returns users seen at or after the cutoff.
func (r *UserRepository) ListRecent(ctx context.Context, since time.Time) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Where("last_seen >= ?", since).Order("last_seen DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ListInactive returns users not seen since the cutoff.
func (r *UserRepository) ListInactive(ctx context.Context, before time.Time) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Where("last_seen < ?", before).Order("last_seen DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Search matches the term against username, first and last name.
func (r *UserRepository) Search(ctx context.Context, term string, limit int) ([]model.User, error) {
	var users []model.User
	pattern := "%" + term + "%"
	if err := r.db.WithContext(ctx).
		Where("username LIKE ? OR first_name LIKE ? OR last_name LIKE ?", pattern, pattern, pattern).
		Order("last_seen DESC").Limit(limit).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Leaderboard returns the top users by lookup count.
func (r *UserRepository) Leaderboard(ctx context.Context, limit int) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Order("lookups DESC").Limit(limit).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *UserRepository) Delete(ctx context.Context, telegramID int64) error {
	if err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).Delete(&model.User{}).Error; err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
