package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"osintbot/internal/model"
)

// CommandCount is one row of the per-command usage ranking.
type CommandCount struct {
	Command string
	Count   int64
}

// DailyCount is one row of the day-by-day usage breakdown.
type DailyCount struct {
	Day     string
	Command string
	Count   int64
}

// LookupRepository handles the append-only lookup audit log.
type LookupRepository struct {
	db *gorm.DB
}

func NewLookupRepository(db *gorm.DB) *LookupRepository {
	return &LookupRepository{db: db}
}

// Record appends the audit row and increments the user's lookup counter in
// one transaction, so the counter and the log cannot drift apart.
func (r *LookupRepository) Record(ctx context.Context, lookup *model.Lookup) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(lookup).Error; err != nil {
			return fmt.Errorf("create lookup: %w", err)
		}
		if err := tx.Model(&model.User{}).
			Where("telegram_id = ?", lookup.UserID).
			UpdateColumn("lookups", gorm.Expr("lookups + ?", 1)).Error; err != nil {
			return fmt.Errorf("bump lookup counter: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("record lookup: %w", err)
	}
	return nil
}

// ListByUser returns the user's most recent lookups, newest first.
func (r *LookupRepository) ListByUser(ctx context.Context, telegramID int64, limit int) ([]model.Lookup, error) {
	var lookups []model.Lookup
	if err := r.db.WithContext(ctx).Where("user_id = ?", telegramID).
		Order("created_at DESC").Limit(limit).Find(&lookups).Error; err != nil {
		return nil, err
	}
	return lookups, nil
}

func (r *LookupRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Lookup{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// TopCommands ranks commands by total usage.
func (r *LookupRepository) TopCommands(ctx context.Context, limit int) ([]CommandCount, error) {
	var rows []CommandCount
	if err := r.db.WithContext(ctx).Model(&model.Lookup{}).
		Select("command, COUNT(*) AS count").
		Group("command").Order("count DESC").Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// DailyBreakdown returns per-day, per-command counts for the last N days.
func (r *LookupRepository) DailyBreakdown(ctx context.Context, days int) ([]DailyCount, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	var rows []DailyCount
	if err := r.db.WithContext(ctx).Model(&model.Lookup{}).
		Select("date(created_at) AS day, command, COUNT(*) AS count").
		Where("created_at >= ?", cutoff).
		Group("day, command").Order("day DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
