package mocks

import (
	"context"
	"time"

	"github.com/seu-repo/nutritrack/internal/domain"
)

// MockReportRepository is a mock implementation of ReportRepository
type MockReportRepository struct {
	SaveFunc             func(ctx context.Context, report *domain.Report) error
	UpdateFunc           func(ctx context.Context, report *domain.Report) error
	FindByIDFunc         func(ctx context.Context, id string) (*domain.Report, error)
	FindByPeriodFunc     func(ctx context.Context, periodStart, periodEnd time.Time) (*domain.Report, error)
	FindPageFunc         func(ctx context.Context, limit, offset int) ([]domain.Report, error)
	CountAllFunc         func(ctx context.Context) (int64, error)
	FinalizeIfStatusFunc func(ctx context.Context, report *domain.Report, expected domain.ReportStatus) (bool, error)
}

func (m *MockReportRepository) Save(ctx context.Context, report *domain.Report) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, report)
	}
	return nil
}

func (m *MockReportRepository) Update(ctx context.Context, report *domain.Report) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, report)
	}
	return nil
}

func (m *MockReportRepository) FindByID(ctx context.Context, id string) (*domain.Report, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockReportRepository) FindByPeriod(ctx context.Context, periodStart, periodEnd time.Time) (*domain.Report, error) {
	if m.FindByPeriodFunc != nil {
		return m.FindByPeriodFunc(ctx, periodStart, periodEnd)
	}
	return nil, nil
}

func (m *MockReportRepository) FindPage(ctx context.Context, limit, offset int) ([]domain.Report, error) {
	if m.FindPageFunc != nil {
		return m.FindPageFunc(ctx, limit, offset)
	}
	return []domain.Report{}, nil
}

func (m *MockReportRepository) CountAll(ctx context.Context) (int64, error) {
	if m.CountAllFunc != nil {
		return m.CountAllFunc(ctx)
	}
	return 0, nil
}

func (m *MockReportRepository) FinalizeIfStatus(ctx context.Context, report *domain.Report, expected domain.ReportStatus) (bool, error) {
	if m.FinalizeIfStatusFunc != nil {
		return m.FinalizeIfStatusFunc(ctx, report, expected)
	}
	return true, nil
}

// MockStatsRepository is a mock implementation of StatsRepository
type MockStatsRepository struct {
	CountNewUsersFunc        func(ctx context.Context, from, to time.Time) (int64, error)
	CountNewProductsFunc     func(ctx context.Context, from, to time.Time) (int64, error)
	CountNewDailyRationsFunc func(ctx context.Context, from, to time.Time) (int64, error)
	FindActiveUserIDsFunc    func(ctx context.Context, from, to time.Time) ([]string, error)
	CountMealsByUsersFunc    func(ctx context.Context, userIDs []string, from, to time.Time) (int64, error)
}

func (m *MockStatsRepository) CountNewUsers(ctx context.Context, from, to time.Time) (int64, error) {
	if m.CountNewUsersFunc != nil {
		return m.CountNewUsersFunc(ctx, from, to)
	}
	return 0, nil
}

func (m *MockStatsRepository) CountNewProducts(ctx context.Context, from, to time.Time) (int64, error) {
	if m.CountNewProductsFunc != nil {
		return m.CountNewProductsFunc(ctx, from, to)
	}
	return 0, nil
}

func (m *MockStatsRepository) CountNewDailyRations(ctx context.Context, from, to time.Time) (int64, error) {
	if m.CountNewDailyRationsFunc != nil {
		return m.CountNewDailyRationsFunc(ctx, from, to)
	}
	return 0, nil
}

func (m *MockStatsRepository) FindActiveUserIDs(ctx context.Context, from, to time.Time) ([]string, error) {
	if m.FindActiveUserIDsFunc != nil {
		return m.FindActiveUserIDsFunc(ctx, from, to)
	}
	return []string{}, nil
}

func (m *MockStatsRepository) CountMealsByUsers(ctx context.Context, userIDs []string, from, to time.Time) (int64, error) {
	if m.CountMealsByUsersFunc != nil {
		return m.CountMealsByUsersFunc(ctx, userIDs, from, to)
	}
	return 0, nil
}
