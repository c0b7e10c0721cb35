package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/seu-repo/nutritrack/internal/domain"
)

const dateLayout = "2006-01-02"

// Metric labels shared by the rendered content and the CSV export.
const (
	LabelNewUsers        = "New registered users"
	LabelNewProducts     = "New products"
	LabelNewDailyRations = "New daily rations"
	LabelActiveUsers     = "Active users"
	LabelAvgMeals        = "Average meals per active user"
	LabelTotalMeals      = "Total meals logged"
)

// renderContent produces the stored human-readable report body. Pure.
func renderContent(r *domain.Report, m *domain.ReportMetrics, elapsed time.Duration) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Usage statistics report\n")
	fmt.Fprintf(&b, "Period: %s - %s\n\n",
		r.PeriodStart.Format(dateLayout), r.PeriodEnd.Format(dateLayout))
	fmt.Fprintf(&b, "%s: %d\n", LabelNewUsers, m.NewUsers)
	fmt.Fprintf(&b, "%s: %d\n", LabelNewProducts, m.NewProducts)
	fmt.Fprintf(&b, "%s: %d\n", LabelNewDailyRations, m.NewDailyRations)
	fmt.Fprintf(&b, "%s: %d\n", LabelActiveUsers, m.ActiveUsers)
	fmt.Fprintf(&b, "%s: %d\n", LabelTotalMeals, m.TotalMeals)
	fmt.Fprintf(&b, "%s: %.2f\n\n", LabelAvgMeals, m.AvgMealsPerActiveUser)
	fmt.Fprintf(&b, "Generated in %d ms\n", elapsed.Milliseconds())
	return b.String()
}

// renderError produces the body stored on a failed run. Pure.
func renderError(r *domain.Report, cause error) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Usage statistics report\n")
	fmt.Fprintf(&b, "Period: %s - %s\n\n",
		r.PeriodStart.Format(dateLayout), r.PeriodEnd.Format(dateLayout))
	fmt.Fprintf(&b, "Report generation failed: %v\n", cause)
	fmt.Fprintf(&b, "Create a new report request to retry.\n")
	return b.String()
}

// RenderCSV renders the downloadable row-per-metric export. Only valid
// for completed reports.
func RenderCSV(r *domain.Report) ([]byte, error) {
	if r.Status != domain.ReportStatusCompleted || r.Metrics == nil {
		return nil, domain.ErrReportNotCompleted
	}
	m := r.Metrics

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	records := [][]string{
		{"Parameter", "Value", "Unit", "Note"},
		{"Period start", r.PeriodStart.Format(dateLayout), "date", "inclusive"},
		{"Period end", r.PeriodEnd.Format(dateLayout), "date", "inclusive"},
		{"Status", string(r.Status), "-", ""},
		{"Created at", r.CreatedAt.Format(time.RFC3339), "timestamp", ""},
		{"Completed at", formatTimePtr(r.CompletedAt), "timestamp", ""},
		{LabelNewUsers, strconv.FormatInt(m.NewUsers, 10), "count", "accounts registered within the period"},
		{LabelNewProducts, strconv.FormatInt(m.NewProducts, 10), "count", "catalog items added within the period"},
		{LabelNewDailyRations, strconv.FormatInt(m.NewDailyRations, 10), "count", "diary days created within the period"},
		{LabelActiveUsers, strconv.FormatInt(m.ActiveUsers, 10), "count", "users with at least one meal logged"},
		{LabelTotalMeals, strconv.FormatInt(m.TotalMeals, 10), "count", "meals logged by active users"},
		{LabelAvgMeals, strconv.FormatFloat(m.AvgMealsPerActiveUser, 'f', 2, 64), "meals/user", ""},
		{"Execution time", formatInt64Ptr(r.TotalExecutionTimeMs), "ms", "aggregation wall-clock time"},
	}

	if err := w.WriteAll(records); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportFilename encodes the period and creation timestamp.
func ExportFilename(r *domain.Report) string {
	return fmt.Sprintf("report_%s_%s_%s.csv",
		r.PeriodStart.Format(dateLayout),
		r.PeriodEnd.Format(dateLayout),
		r.CreatedAt.Format("20060102-150405"),
	)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func formatInt64Ptr(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}
