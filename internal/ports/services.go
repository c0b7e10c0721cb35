package ports

import (
	"context"
	"time"

	"github.com/seu-repo/nutritrack/internal/domain"
)

// ReportPage is one page of report summaries, newest first.
type ReportPage struct {
	Reports    []domain.Report `json:"reports"`
	Page       int             `json:"page"`
	Size       int             `json:"size"`
	TotalCount int64           `json:"total_count"`
}

// ReportData is the polling payload for a single report.
type ReportData struct {
	ID                   string              `json:"id"`
	Status               domain.ReportStatus `json:"status"`
	PeriodStart          time.Time           `json:"period_start"`
	PeriodEnd            time.Time           `json:"period_end"`
	TotalExecutionTimeMs *int64              `json:"total_execution_time_ms,omitempty"`
}

type ReportService interface {
	// Create applies the period dedup policy, persists the initial record
	// and starts aggregation asynchronously. Returns the report while it
	// is still in CREATED status.
	Create(ctx context.Context, periodStart, periodEnd time.Time) (*domain.Report, error)
	Status(ctx context.Context, id string) (domain.ReportStatus, error)
	Content(ctx context.Context, id string) (string, error)
	GetByID(ctx context.Context, id string) (*domain.Report, error)
	GetData(ctx context.Context, id string) (*ReportData, error)
	IsPeriodTaken(ctx context.Context, periodStart, periodEnd time.Time) (bool, error)
	ListPage(ctx context.Context, page, size int) (*ReportPage, error)
	// ExportCSV renders the downloadable tabular export. Only valid for
	// COMPLETED reports; returns the file body and suggested filename.
	ExportCSV(ctx context.Context, id string) ([]byte, string, error)
}

type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping() error
	Close() error
}
