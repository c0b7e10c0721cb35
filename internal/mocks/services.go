package mocks

import (
	"context"
	"time"

	"github.com/seu-repo/nutritrack/internal/domain"
	"github.com/seu-repo/nutritrack/internal/ports"
)

// MockReportService is a mock implementation of ReportService
type MockReportService struct {
	CreateFunc        func(ctx context.Context, periodStart, periodEnd time.Time) (*domain.Report, error)
	StatusFunc        func(ctx context.Context, id string) (domain.ReportStatus, error)
	ContentFunc       func(ctx context.Context, id string) (string, error)
	GetByIDFunc       func(ctx context.Context, id string) (*domain.Report, error)
	GetDataFunc       func(ctx context.Context, id string) (*ports.ReportData, error)
	IsPeriodTakenFunc func(ctx context.Context, periodStart, periodEnd time.Time) (bool, error)
	ListPageFunc      func(ctx context.Context, page, size int) (*ports.ReportPage, error)
	ExportCSVFunc     func(ctx context.Context, id string) ([]byte, string, error)
}

func (m *MockReportService) Create(ctx context.Context, periodStart, periodEnd time.Time) (*domain.Report, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, periodStart, periodEnd)
	}
	return nil, nil
}

func (m *MockReportService) Status(ctx context.Context, id string) (domain.ReportStatus, error) {
	if m.StatusFunc != nil {
		return m.StatusFunc(ctx, id)
	}
	return domain.ReportStatusCreated, nil
}

func (m *MockReportService) Content(ctx context.Context, id string) (string, error) {
	if m.ContentFunc != nil {
		return m.ContentFunc(ctx, id)
	}
	return "", nil
}

func (m *MockReportService) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockReportService) GetData(ctx context.Context, id string) (*ports.ReportData, error) {
	if m.GetDataFunc != nil {
		return m.GetDataFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockReportService) IsPeriodTaken(ctx context.Context, periodStart, periodEnd time.Time) (bool, error) {
	if m.IsPeriodTakenFunc != nil {
		return m.IsPeriodTakenFunc(ctx, periodStart, periodEnd)
	}
	return false, nil
}

func (m *MockReportService) ListPage(ctx context.Context, page, size int) (*ports.ReportPage, error) {
	if m.ListPageFunc != nil {
		return m.ListPageFunc(ctx, page, size)
	}
	return &ports.ReportPage{}, nil
}

func (m *MockReportService) ExportCSV(ctx context.Context, id string) ([]byte, string, error) {
	if m.ExportCSVFunc != nil {
		return m.ExportCSVFunc(ctx, id)
	}
	return nil, "", nil
}
