package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seu-repo/nutritrack/internal/adapter/queue"
	"github.com/seu-repo/nutritrack/internal/adapter/websocket"
	"github.com/seu-repo/nutritrack/internal/domain"
	"github.com/seu-repo/nutritrack/internal/observability/telemetry"
	"github.com/seu-repo/nutritrack/internal/ports"
	"github.com/seu-repo/nutritrack/pkg/config"
)

const defaultTimeout = time.Minute

// Service is the report façade: period dedup on create, read operations
// for the polling protocol, paged listing and CSV export. The heavy
// lifting happens in the orchestrator (orchestrator.go), started
// asynchronously from Create.
type Service struct {
	reports ports.ReportRepository
	stats   ports.StatsRepository
	cache   ports.Cache
	mq      queue.MessageQueue
	hub     *websocket.Hub
	log     *zap.Logger

	timeout          time.Duration
	defaultPageSize  int
	allowedPageSizes map[int]bool
	contentTTL       time.Duration
	listTTL          time.Duration

	// now is a clock hook so the "period ends today" rule is testable.
	now func() time.Time
}

func NewService(
	reports ports.ReportRepository,
	stats ports.StatsRepository,
	cache ports.Cache,
	mq queue.MessageQueue,
	hub *websocket.Hub,
	cfg config.ReportsConfig,
	cacheCfg config.CacheConfig,
	log *zap.Logger,
) ports.ReportService {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	defaultSize := cfg.DefaultPageSize
	if defaultSize <= 0 {
		defaultSize = 16
	}
	sizes := cfg.AllowedPageSizes
	if len(sizes) == 0 {
		sizes = []int{8, 16, 32, 48}
	}
	allowed := make(map[int]bool, len(sizes))
	for _, size := range sizes {
		allowed[size] = true
	}

	return &Service{
		reports:          reports,
		stats:            stats,
		cache:            cache,
		mq:               mq,
		hub:              hub,
		log:              log,
		timeout:          timeout,
		defaultPageSize:  defaultSize,
		allowedPageSizes: allowed,
		contentTTL:       cacheCfg.ReportContentTTL,
		listTTL:          cacheCfg.ReportListTTL,
		now:              time.Now,
	}
}

func (s *Service) Create(ctx context.Context, periodStart, periodEnd time.Time) (*domain.Report, error) {
	periodStart = dateOnly(periodStart)
	periodEnd = dateOnly(periodEnd)

	if periodStart.After(periodEnd) {
		return nil, domain.ErrInvalidPeriod
	}

	existing, err := s.reports.FindByPeriod(ctx, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}

	var report *domain.Report
	switch {
	case existing == nil:
		now := s.now()
		report = &domain.Report{
			ID:          uuid.New().String(),
			PeriodStart: periodStart,
			PeriodEnd:   periodEnd,
			Status:      domain.ReportStatusCreated,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.reports.Save(ctx, report); err != nil {
			return nil, err
		}
	case sameDate(periodEnd, s.now()):
		// A period still accumulating data may be refreshed in place
		// under the same id. The previous run's cached body must go with
		// it, or pollers would read terminal content against a CREATED
		// status.
		existing.ResetForRerun()
		if err := s.reports.Update(ctx, existing); err != nil {
			return nil, err
		}
		if err := s.cache.Delete(ctx, contentCacheKey(existing.ID)); err != nil {
			s.log.Debug("Failed to invalidate report content cache", zap.Error(err))
		}
		report = existing
	default:
		return nil, domain.ErrDuplicatePeriod
	}

	s.invalidateListCache(ctx)
	telemetry.ReportsCreatedTotal.Inc()

	go s.generate(report.ID)

	return report, nil
}

func (s *Service) Status(ctx context.Context, id string) (domain.ReportStatus, error) {
	report, err := s.reports.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	if report == nil {
		return "", domain.ErrReportNotFound
	}
	return report.Status, nil
}

func (s *Service) Content(ctx context.Context, id string) (string, error) {
	key := contentCacheKey(id)
	if cached, err := s.cache.Get(ctx, key); err == nil && cached != "" {
		return cached, nil
	}

	report, err := s.reports.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	if report == nil {
		return "", domain.ErrReportNotFound
	}

	// Terminal content never changes; safe to cache.
	if report.Status.IsTerminal() && report.Content != "" {
		if err := s.cache.Set(ctx, key, report.Content, s.contentTTL); err != nil {
			s.log.Debug("Failed to cache report content", zap.String("report_id", id), zap.Error(err))
		}
	}

	return report.Content, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	report, err := s.reports.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, domain.ErrReportNotFound
	}
	return report, nil
}

func (s *Service) GetData(ctx context.Context, id string) (*ports.ReportData, error) {
	report, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ports.ReportData{
		ID:                   report.ID,
		Status:               report.Status,
		PeriodStart:          report.PeriodStart,
		PeriodEnd:            report.PeriodEnd,
		TotalExecutionTimeMs: report.TotalExecutionTimeMs,
	}, nil
}

func (s *Service) IsPeriodTaken(ctx context.Context, periodStart, periodEnd time.Time) (bool, error) {
	periodStart = dateOnly(periodStart)
	periodEnd = dateOnly(periodEnd)

	if periodStart.After(periodEnd) {
		return false, domain.ErrInvalidPeriod
	}

	existing, err := s.reports.FindByPeriod(ctx, periodStart, periodEnd)
	if err != nil {
		return false, err
	}
	return existing != nil, nil
}

func (s *Service) ListPage(ctx context.Context, page, size int) (*ports.ReportPage, error) {
	if page < 0 {
		page = 0
	}
	if !s.allowedPageSizes[size] {
		size = s.defaultPageSize
	}

	key := listCacheKey(page, size)
	if cached, err := s.cache.Get(ctx, key); err == nil && cached != "" {
		var result ports.ReportPage
		if err := json.Unmarshal([]byte(cached), &result); err == nil {
			return &result, nil
		}
	}

	reports, err := s.reports.FindPage(ctx, size, page*size)
	if err != nil {
		return nil, err
	}
	total, err := s.reports.CountAll(ctx)
	if err != nil {
		return nil, err
	}

	result := &ports.ReportPage{
		Reports:    reports,
		Page:       page,
		Size:       size,
		TotalCount: total,
	}

	if payload, err := json.Marshal(result); err == nil {
		if err := s.cache.Set(ctx, key, payload, s.listTTL); err != nil {
			s.log.Debug("Failed to cache report page", zap.Error(err))
		}
	}

	return result, nil
}

func (s *Service) ExportCSV(ctx context.Context, id string) ([]byte, string, error) {
	report, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}

	data, err := RenderCSV(report)
	if err != nil {
		return nil, "", err
	}

	telemetry.ReportExportsTotal.Inc()
	return data, ExportFilename(report), nil
}

func (s *Service) invalidateListCache(ctx context.Context) {
	// The freshest page is the one the dashboard polls; the rest age out
	// with the short list TTL.
	if err := s.cache.Delete(ctx, listCacheKey(0, s.defaultPageSize)); err != nil {
		s.log.Debug("Failed to invalidate report list cache", zap.Error(err))
	}
}

func contentCacheKey(id string) string {
	return "report:content:" + id
}

func listCacheKey(page, size int) string {
	return fmt.Sprintf("reports:page:%d:size:%d", page, size)
}

// dateOnly truncates a timestamp to its calendar date.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
