package domain

import (
	"errors"
	"time"
)

type ReportStatus string

const (
	ReportStatusCreated    ReportStatus = "CREATED"
	ReportStatusProcessing ReportStatus = "PROCESSING"
	ReportStatusCompleted  ReportStatus = "COMPLETED"
	ReportStatusError      ReportStatus = "ERROR"
)

var (
	ErrInvalidPeriod      = errors.New("period start must not be after period end")
	ErrDuplicatePeriod    = errors.New("a report for this period already exists")
	ErrReportNotFound     = errors.New("report not found")
	ErrReportNotCompleted = errors.New("report is not completed")
	ErrInvalidTransition  = errors.New("invalid report status transition")
)

// ReportMetrics holds the aggregated values of one successful run. A
// report carries either all of them or none; failed runs leave the
// pointer nil.
type ReportMetrics struct {
	NewUsers              int64   `json:"new_users"`
	NewProducts           int64   `json:"new_products"`
	NewDailyRations       int64   `json:"new_daily_rations"`
	ActiveUsers           int64   `json:"active_users"`
	AvgMealsPerActiveUser float64 `json:"avg_meals_per_active_user"`
	TotalMeals            int64   `json:"total_meals"`
}

// Report is one statistics report request over an inclusive calendar
// period. Identified by its period: at most one report exists per
// (PeriodStart, PeriodEnd) pair.
type Report struct {
	ID          string       `json:"id" gorm:"primaryKey"`
	PeriodStart time.Time    `json:"period_start" gorm:"index:idx_reports_period,unique"`
	PeriodEnd   time.Time    `json:"period_end" gorm:"index:idx_reports_period,unique"`
	Status      ReportStatus `json:"status" gorm:"index"`
	Content     string       `json:"content,omitempty" gorm:"type:text"`

	// RunID identifies the aggregation run currently owning the record.
	// Stamped fresh on every PROCESSING transition; the terminal write is
	// conditioned on it, so a run superseded by an in-place refresh
	// cannot commit a stale outcome.
	RunID string `json:"-" gorm:"column:run_id"`

	Metrics *ReportMetrics `json:"metrics,omitempty" gorm:"embedded;embeddedPrefix:metric_"`

	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
	TotalExecutionTimeMs *int64     `json:"total_execution_time_ms,omitempty"`
}

// CanTransition reports whether the status machine allows moving to
// next. The machine only moves forward; terminal states never leave.
func (s ReportStatus) CanTransition(next ReportStatus) bool {
	switch s {
	case ReportStatusCreated:
		return next == ReportStatusProcessing
	case ReportStatusProcessing:
		return next == ReportStatusCompleted || next == ReportStatusError
	default:
		return false
	}
}

func (s ReportStatus) IsTerminal() bool {
	return s == ReportStatusCompleted || s == ReportStatusError
}

// Transition applies a status change, enforcing the machine.
func (r *Report) Transition(next ReportStatus) error {
	if !r.Status.CanTransition(next) {
		return ErrInvalidTransition
	}
	r.Status = next
	r.UpdatedAt = time.Now()
	return nil
}

// ResetForRerun clears a report back to its freshly-created shape so the
// same period can be regenerated under the same id. Used for periods
// that are still accumulating data.
func (r *Report) ResetForRerun() {
	now := time.Now()
	r.Status = ReportStatusCreated
	r.Content = ""
	r.RunID = ""
	r.Metrics = nil
	r.CompletedAt = nil
	r.TotalExecutionTimeMs = nil
	r.CreatedAt = now
	r.UpdatedAt = now
}
