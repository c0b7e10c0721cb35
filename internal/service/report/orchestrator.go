package report

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/seu-repo/nutritrack/internal/adapter/queue"
	"github.com/seu-repo/nutritrack/internal/domain"
	"github.com/seu-repo/nutritrack/internal/observability/telemetry"
)

const finalizeTimeout = 10 * time.Second

// generate runs the whole aggregation for one report: concurrent fan-out
// over the metric sources, joined under a single deadline, followed by
// exactly one terminal write. Runs on its own goroutine; the Create
// caller has already returned.
func (s *Service) generate(reportID string) {
	defer func() {
		if rec := recover(); rec != nil {
			s.log.Error("Report aggregation panicked",
				zap.String("report_id", reportID),
				zap.Any("panic", rec),
			)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	report, err := s.reports.FindByID(ctx, reportID)
	if err != nil {
		s.log.Error("Failed to load report for aggregation", zap.String("report_id", reportID), zap.Error(err))
		return
	}
	if report == nil {
		// Racy create/delete; nothing to do.
		s.log.Warn("Report vanished before aggregation started", zap.String("report_id", reportID))
		return
	}

	if err := report.Transition(domain.ReportStatusProcessing); err != nil {
		s.log.Warn("Report not in a runnable state",
			zap.String("report_id", reportID),
			zap.String("status", string(report.Status)),
		)
		return
	}
	// Claim the record for this run; the terminal CAS checks the token so
	// a run superseded by an in-place refresh cannot commit.
	report.RunID = uuid.New().String()
	if err := s.reports.Update(ctx, report); err != nil {
		s.log.Error("Failed to mark report as processing", zap.String("report_id", reportID), zap.Error(err))
		return
	}
	s.notifyStatus(report)

	telemetry.ReportsProcessing.Inc()
	defer telemetry.ReportsProcessing.Dec()

	started := time.Now()
	from, to := periodWindow(report.PeriodStart, report.PeriodEnd)

	var (
		newUsers    int64
		newProducts int64
		newRations  int64
		activeUsers int64
		totalMeals  int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		newUsers, err = s.stats.CountNewUsers(gctx, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		newProducts, err = s.stats.CountNewProducts(gctx, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		newRations, err = s.stats.CountNewDailyRations(gctx, from, to)
		return err
	})
	g.Go(func() error {
		// Two-step unit: the meal count is scoped to exactly the set of
		// active users resolved first.
		ids, err := s.stats.FindActiveUserIDs(gctx, from, to)
		if err != nil {
			return err
		}
		activeUsers = int64(len(ids))
		totalMeals, err = s.stats.CountMealsByUsers(gctx, ids, from, to)
		return err
	})

	if err := g.Wait(); err != nil {
		s.finalizeFailure(report, started, err)
		return
	}

	avg := 0.0
	if activeUsers > 0 {
		avg = float64(totalMeals) / float64(activeUsers)
	}

	elapsed := time.Since(started)
	report.Metrics = &domain.ReportMetrics{
		NewUsers:              newUsers,
		NewProducts:           newProducts,
		NewDailyRations:       newRations,
		ActiveUsers:           activeUsers,
		AvgMealsPerActiveUser: avg,
		TotalMeals:            totalMeals,
	}
	report.Content = renderContent(report, report.Metrics, elapsed)
	s.finalizeTerminal(report, domain.ReportStatusCompleted, elapsed)
}

func (s *Service) finalizeFailure(report *domain.Report, started time.Time, cause error) {
	elapsed := time.Since(started)
	s.log.Error("Report aggregation failed",
		zap.String("report_id", report.ID),
		zap.Duration("elapsed", elapsed),
		zap.Error(cause),
	)
	report.Metrics = nil
	report.Content = renderError(report, cause)
	s.finalizeTerminal(report, domain.ReportStatusError, elapsed)
}

// finalizeTerminal commits the terminal state exactly once. The
// aggregation context may already be past its deadline, so persistence
// uses a fresh context; the status compare-and-set in the repository
// keeps a late run from overwriting an already-committed outcome.
func (s *Service) finalizeTerminal(report *domain.Report, next domain.ReportStatus, elapsed time.Duration) {
	if err := report.Transition(next); err != nil {
		s.log.Warn("Report already finalized", zap.String("report_id", report.ID))
		return
	}
	now := time.Now()
	report.CompletedAt = &now
	ms := elapsed.Milliseconds()
	report.TotalExecutionTimeMs = &ms

	ctx, cancel := context.WithTimeout(context.Background(), finalizeTimeout)
	defer cancel()

	applied, err := s.reports.FinalizeIfStatus(ctx, report, domain.ReportStatusProcessing)
	if err != nil {
		s.log.Error("Failed to persist report outcome", zap.String("report_id", report.ID), zap.Error(err))
		return
	}
	if !applied {
		return
	}

	outcome := "completed"
	subject := queue.SubjectReportCompleted
	if next == domain.ReportStatusError {
		outcome = "error"
		subject = queue.SubjectReportFailed
	}
	telemetry.ReportRunsTotal.WithLabelValues(outcome).Inc()
	telemetry.ReportGenerationDuration.Observe(elapsed.Seconds())

	s.invalidateListCache(ctx)
	if err := s.cache.Delete(ctx, contentCacheKey(report.ID)); err != nil {
		s.log.Debug("Failed to invalidate report content cache", zap.Error(err))
	}

	s.publishLifecycleEvent(subject, report)
	s.notifyStatus(report)

	s.log.Info("Report finalized",
		zap.String("report_id", report.ID),
		zap.String("status", string(report.Status)),
		zap.Int64("execution_ms", ms),
	)
}

type lifecycleEvent struct {
	ReportID        string    `json:"report_id"`
	Status          string    `json:"status"`
	PeriodStart     time.Time `json:"period_start"`
	PeriodEnd       time.Time `json:"period_end"`
	ExecutionTimeMs int64     `json:"execution_time_ms"`
}

func (s *Service) publishLifecycleEvent(subject string, report *domain.Report) {
	if s.mq == nil {
		return
	}
	var ms int64
	if report.TotalExecutionTimeMs != nil {
		ms = *report.TotalExecutionTimeMs
	}
	payload, err := json.Marshal(lifecycleEvent{
		ReportID:        report.ID,
		Status:          string(report.Status),
		PeriodStart:     report.PeriodStart,
		PeriodEnd:       report.PeriodEnd,
		ExecutionTimeMs: ms,
	})
	if err != nil {
		return
	}
	if err := s.mq.Publish(subject, payload); err != nil {
		s.log.Warn("Failed to publish report lifecycle event",
			zap.String("subject", subject),
			zap.Error(err),
		)
	}
}

func (s *Service) notifyStatus(report *domain.Report) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastStatus(report.ID, string(report.Status))
}

// periodWindow converts the inclusive calendar-date period into the
// half-open absolute time window [start of first day, start of the day
// after the last day).
func periodWindow(periodStart, periodEnd time.Time) (time.Time, time.Time) {
	from := dateOnly(periodStart)
	to := dateOnly(periodEnd).AddDate(0, 0, 1)
	return from, to
}
