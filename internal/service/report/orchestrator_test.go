package report

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seu-repo/nutritrack/internal/adapter/queue"
	"github.com/seu-repo/nutritrack/internal/domain"
	"github.com/seu-repo/nutritrack/internal/mocks"
	"github.com/seu-repo/nutritrack/pkg/config"
)

func seedCreatedReport(repo *memoryReportRepository, id string) *domain.Report {
	report := &domain.Report{
		ID:          id,
		PeriodStart: date("2024-01-01"),
		PeriodEnd:   date("2024-01-31"),
		Status:      domain.ReportStatusCreated,
		CreatedAt:   date("2024-02-01"),
	}
	repo.put(report)
	return report
}

func TestGenerate_Completes(t *testing.T) {
	repo := newMemoryReportRepository()
	stats := &stubStatsRepository{
		newUsers:    3,
		newProducts: 5,
		newRations:  4,
		activeIDs:   []string{"u1", "u2"},
		totalMeals:  6,
	}
	svc, mq := newTestService(t, repo, stats)
	seedCreatedReport(repo, "r1")

	svc.generate("r1")

	final := repo.get("r1")
	require.NotNil(t, final)
	assert.Equal(t, domain.ReportStatusCompleted, final.Status)
	require.NotNil(t, final.Metrics)
	assert.Equal(t, int64(3), final.Metrics.NewUsers)
	assert.Equal(t, int64(5), final.Metrics.NewProducts)
	assert.Equal(t, int64(4), final.Metrics.NewDailyRations)
	assert.Equal(t, int64(2), final.Metrics.ActiveUsers)
	assert.Equal(t, int64(6), final.Metrics.TotalMeals)
	assert.InDelta(t, 3.0, final.Metrics.AvgMealsPerActiveUser, 0.001)
	require.NotNil(t, final.CompletedAt)
	require.NotNil(t, final.TotalExecutionTimeMs)

	assert.Contains(t, final.Content, LabelNewUsers)
	assert.Contains(t, final.Content, LabelNewProducts)
	assert.Contains(t, final.Content, LabelNewDailyRations)
	assert.Contains(t, final.Content, LabelActiveUsers)
	assert.Contains(t, final.Content, LabelAvgMeals)
	assert.Contains(t, final.Content, LabelTotalMeals)
	assert.Contains(t, final.Content, "3.00")

	published := mq.Published(queue.SubjectReportCompleted)
	require.Len(t, published, 1)
	var event struct {
		ReportID string `json:"report_id"`
		Status   string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(published[0], &event))
	assert.Equal(t, "r1", event.ReportID)
	assert.Equal(t, string(domain.ReportStatusCompleted), event.Status)
}

func TestGenerate_NoActiveUsers(t *testing.T) {
	repo := newMemoryReportRepository()
	svc, _ := newTestService(t, repo, &stubStatsRepository{newUsers: 1})
	seedCreatedReport(repo, "r1")

	svc.generate("r1")

	final := repo.get("r1")
	require.NotNil(t, final)
	assert.Equal(t, domain.ReportStatusCompleted, final.Status)
	require.NotNil(t, final.Metrics)
	assert.Equal(t, int64(0), final.Metrics.ActiveUsers)
	assert.Equal(t, int64(0), final.Metrics.TotalMeals)
	assert.Equal(t, 0.0, final.Metrics.AvgMealsPerActiveUser)
}

func TestGenerate_SourceFailure(t *testing.T) {
	repo := newMemoryReportRepository()
	stats := &stubStatsRepository{
		newUsers:       3,
		newProductsErr: assert.AnError,
	}
	svc, mq := newTestService(t, repo, stats)
	seedCreatedReport(repo, "r1")

	svc.generate("r1")

	final := repo.get("r1")
	require.NotNil(t, final)
	assert.Equal(t, domain.ReportStatusError, final.Status)
	assert.Nil(t, final.Metrics, "partial results must not survive a failed run")
	assert.NotEmpty(t, final.Content)
	require.NotNil(t, final.CompletedAt)

	assert.Len(t, mq.Published(queue.SubjectReportFailed), 1)
	assert.Empty(t, mq.Published(queue.SubjectReportCompleted))
}

func TestGenerate_DeadlineExceeded(t *testing.T) {
	repo := newMemoryReportRepository()
	block := make(chan struct{})
	defer close(block)
	stats := &stubStatsRepository{blockNewUsers: block}

	mq := mocks.NewMockMessageQueue()
	svc := NewService(
		repo, stats, mocks.NewMockCache(), mq, nil,
		config.ReportsConfig{Timeout: 50 * time.Millisecond},
		config.CacheConfig{},
		zap.NewNop(),
	).(*Service)
	seedCreatedReport(repo, "r1")

	svc.generate("r1")

	final := repo.get("r1")
	require.NotNil(t, final)
	assert.Equal(t, domain.ReportStatusError, final.Status)
	assert.Nil(t, final.Metrics)
	assert.NotEmpty(t, final.Content)
}

func TestGenerate_LateRunDoesNotOverwrite(t *testing.T) {
	repo := newMemoryReportRepository()
	block := make(chan struct{})
	stats := &stubStatsRepository{blockNewUsers: block, activeIDs: []string{"u1"}, totalMeals: 9}
	svc, mq := newTestService(t, repo, stats)
	seedCreatedReport(repo, "r1")

	done := make(chan struct{})
	go func() {
		svc.generate("r1")
		close(done)
	}()

	// Wait until the run is in flight, then finalize the record out from
	// under it, as a competing refresh would.
	deadline := time.Now().Add(2 * time.Second)
	for {
		if r := repo.get("r1"); r != nil && r.Status == domain.ReportStatusProcessing {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("report never entered processing")
		}
		time.Sleep(5 * time.Millisecond)
	}
	now := time.Now()
	repo.put(&domain.Report{
		ID:          "r1",
		PeriodStart: date("2024-01-01"),
		PeriodEnd:   date("2024-01-31"),
		Status:      domain.ReportStatusError,
		Content:     "committed outcome",
		CompletedAt: &now,
	})

	close(block)
	<-done

	final := repo.get("r1")
	require.NotNil(t, final)
	assert.Equal(t, domain.ReportStatusError, final.Status)
	assert.Equal(t, "committed outcome", final.Content)
	assert.Nil(t, final.Metrics)
	assert.Empty(t, mq.Published(queue.SubjectReportCompleted))
}

func TestGenerate_SupersededRunCannotCommit(t *testing.T) {
	repo := newMemoryReportRepository()
	block := make(chan struct{})
	stats := &stubStatsRepository{blockNewUsers: block, activeIDs: []string{"u1"}, totalMeals: 4}
	svc, mq := newTestService(t, repo, stats)
	seedCreatedReport(repo, "r1")

	done := make(chan struct{})
	go func() {
		svc.generate("r1")
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		if r := repo.get("r1"); r != nil && r.Status == domain.ReportStatusProcessing {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("report never entered processing")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// An in-place refresh reset the record and a second run claimed it
	// under a new token while the first is still blocked.
	claimed := repo.get("r1")
	claimed.RunID = "successor-run"
	claimed.Content = ""
	repo.put(claimed)

	close(block)
	<-done

	final := repo.get("r1")
	require.NotNil(t, final)
	assert.Equal(t, domain.ReportStatusProcessing, final.Status, "stale run must not finalize the successor's window")
	assert.Equal(t, "successor-run", final.RunID)
	assert.Empty(t, final.Content)
	assert.Empty(t, mq.Published(queue.SubjectReportCompleted))
}

func TestGenerate_MissingReport(t *testing.T) {
	repo := newMemoryReportRepository()
	svc, mq := newTestService(t, repo, &stubStatsRepository{})

	svc.generate("missing")

	assert.Equal(t, 0, repo.count())
	assert.Empty(t, mq.Published(queue.SubjectReportCompleted))
	assert.Empty(t, mq.Published(queue.SubjectReportFailed))
}

func TestGenerate_SkipsTerminalReport(t *testing.T) {
	repo := newMemoryReportRepository()
	svc, mq := newTestService(t, repo, &stubStatsRepository{newUsers: 7})

	repo.put(&domain.Report{
		ID:          "r1",
		PeriodStart: date("2024-01-01"),
		PeriodEnd:   date("2024-01-31"),
		Status:      domain.ReportStatusCompleted,
		Content:     "already done",
	})

	svc.generate("r1")

	final := repo.get("r1")
	assert.Equal(t, "already done", final.Content)
	assert.Empty(t, mq.Published(queue.SubjectReportCompleted))
}

func TestPeriodWindow(t *testing.T) {
	from, to := periodWindow(
		time.Date(2024, 1, 1, 15, 30, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 8, 0, 0, 0, time.UTC),
	)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), to)
}
