package postgres

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seu-repo/nutritrack/internal/domain"
	"github.com/seu-repo/nutritrack/internal/ports"
)

// StatsRepository implements the metric sources: window-scoped counting
// queries over the application's CRUD tables. Read-only.
type StatsRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewStatsRepository(db *gorm.DB, log *zap.Logger) ports.StatsRepository {
	return &StatsRepository{
		db:  db,
		log: log,
	}
}

func (r *StatsRepository) CountNewUsers(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error
	return count, err
}

func (r *StatsRepository) CountNewProducts(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error
	return count, err
}

func (r *StatsRepository) CountNewDailyRations(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.DailyRation{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error
	return count, err
}

func (r *StatsRepository) FindActiveUserIDs(ctx context.Context, from, to time.Time) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&domain.Meal{}).
		Distinct("user_id").
		Where("eaten_at >= ? AND eaten_at < ?", from, to).
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *StatsRepository) CountMealsByUsers(ctx context.Context, userIDs []string, from, to time.Time) (int64, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Meal{}).
		Where("user_id IN ? AND eaten_at >= ? AND eaten_at < ?", userIDs, from, to).
		Count(&count).Error
	return count, err
}
