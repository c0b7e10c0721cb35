package postgres

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seu-repo/nutritrack/internal/domain"
	"github.com/seu-repo/nutritrack/internal/ports"
)

type ReportRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewReportRepository(db *gorm.DB, log *zap.Logger) ports.ReportRepository {
	return &ReportRepository{
		db:  db,
		log: log,
	}
}

func (r *ReportRepository) Save(ctx context.Context, report *domain.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *ReportRepository) Update(ctx context.Context, report *domain.Report) error {
	return r.db.WithContext(ctx).Save(report).Error
}

func (r *ReportRepository) FindByID(ctx context.Context, id string) (*domain.Report, error) {
	var report domain.Report
	err := r.db.WithContext(ctx).First(&report, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}

func (r *ReportRepository) FindByPeriod(ctx context.Context, periodStart, periodEnd time.Time) (*domain.Report, error) {
	var report domain.Report
	err := r.db.WithContext(ctx).
		Where("period_start = ? AND period_end = ?", periodStart, periodEnd).
		First(&report).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}

func (r *ReportRepository) FindPage(ctx context.Context, limit, offset int) ([]domain.Report, error) {
	var reports []domain.Report
	err := r.db.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&reports).Error
	return reports, err
}

func (r *ReportRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Report{}).Count(&count).Error
	return count, err
}

// FinalizeIfStatus commits the terminal state with a compare-and-set on
// the status and run token columns. A run whose deadline already fired,
// or that was superseded by an in-place refresh, cannot overwrite the
// current owner's state: the update matches zero rows and is discarded.
func (r *ReportRepository) FinalizeIfStatus(ctx context.Context, report *domain.Report, expected domain.ReportStatus) (bool, error) {
	updates := map[string]interface{}{
		"status":                  report.Status,
		"content":                 report.Content,
		"completed_at":            report.CompletedAt,
		"total_execution_time_ms": report.TotalExecutionTimeMs,
		"updated_at":              report.UpdatedAt,
	}
	if report.Metrics != nil {
		m := report.Metrics
		updates["metric_new_users"] = m.NewUsers
		updates["metric_new_products"] = m.NewProducts
		updates["metric_new_daily_rations"] = m.NewDailyRations
		updates["metric_active_users"] = m.ActiveUsers
		updates["metric_avg_meals_per_active_user"] = m.AvgMealsPerActiveUser
		updates["metric_total_meals"] = m.TotalMeals
	}

	res := r.db.WithContext(ctx).
		Model(&domain.Report{}).
		Where("id = ? AND status = ? AND run_id = ?", report.ID, expected, report.RunID).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		r.log.Warn("Report finalize skipped, status changed concurrently",
			zap.String("report_id", report.ID),
			zap.String("expected_status", string(expected)),
		)
		return false, nil
	}
	return true, nil
}
