package ports

import (
	"context"
	"time"

	"github.com/seu-repo/nutritrack/internal/domain"
)

type ReportRepository interface {
	Save(ctx context.Context, report *domain.Report) error
	Update(ctx context.Context, report *domain.Report) error
	FindByID(ctx context.Context, id string) (*domain.Report, error)
	FindByPeriod(ctx context.Context, periodStart, periodEnd time.Time) (*domain.Report, error)
	FindPage(ctx context.Context, limit, offset int) ([]domain.Report, error)
	CountAll(ctx context.Context) (int64, error)
	// FinalizeIfStatus writes the report's terminal state only while the
	// stored row still has the expected status and the report's run token.
	// Returns false when another writer got there first, the deadline path
	// already committed, or a refresh handed the record to a newer run.
	FinalizeIfStatus(ctx context.Context, report *domain.Report, expected domain.ReportStatus) (bool, error)
}

// StatsRepository exposes the metric sources: pure, idempotent reads
// over the application's persisted records for a time window.
type StatsRepository interface {
	CountNewUsers(ctx context.Context, from, to time.Time) (int64, error)
	CountNewProducts(ctx context.Context, from, to time.Time) (int64, error)
	CountNewDailyRations(ctx context.Context, from, to time.Time) (int64, error)
	FindActiveUserIDs(ctx context.Context, from, to time.Time) ([]string, error)
	CountMealsByUsers(ctx context.Context, userIDs []string, from, to time.Time) (int64, error)
}
