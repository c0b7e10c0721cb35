package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seu-repo/nutritrack/internal/adapter/http/fiber/middleware"
	"github.com/seu-repo/nutritrack/internal/domain"
	"github.com/seu-repo/nutritrack/internal/mocks"
	"github.com/seu-repo/nutritrack/internal/ports"
)

func newTestApp(service *mocks.MockReportService) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(zap.NewNop()),
	})
	h := NewReportHandler(service, zap.NewNop())

	v1 := app.Group("/api/v1")
	reports := v1.Group("/reports")
	reports.Post("/", h.Create)
	reports.Get("/", h.List)
	reports.Get("/check", h.Check)
	reports.Get("/:id", h.Get)
	reports.Get("/:id/status", h.Status)
	reports.Get("/:id/content", h.Content)
	reports.Get("/:id/data", h.Data)
	reports.Get("/:id/download", h.Download)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func get(t *testing.T, app *fiber.App, path string) *http.Response {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestReportHandler_Create(t *testing.T) {
	service := &mocks.MockReportService{
		CreateFunc: func(ctx context.Context, periodStart, periodEnd time.Time) (*domain.Report, error) {
			return &domain.Report{
				ID:          "r1",
				PeriodStart: periodStart,
				PeriodEnd:   periodEnd,
				Status:      domain.ReportStatusCreated,
			}, nil
		},
	}
	app := newTestApp(service)

	resp := postJSON(t, app, "/api/v1/reports/", CreateReportRequest{
		PeriodStart: "2024-01-01",
		PeriodEnd:   "2024-01-31",
	})
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	var body CreateReportResponse
	decode(t, resp, &body)
	assert.Equal(t, "r1", body.ReportID)
	assert.Equal(t, string(domain.ReportStatusCreated), body.Status)
	assert.Equal(t, "2024-01-01", body.PeriodStart)
	assert.Equal(t, "2024-01-31", body.PeriodEnd)
}

func TestReportHandler_Create_BadDates(t *testing.T) {
	app := newTestApp(&mocks.MockReportService{})

	resp := postJSON(t, app, "/api/v1/reports/", CreateReportRequest{
		PeriodStart: "01/01/2024",
		PeriodEnd:   "2024-01-31",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, app, "/api/v1/reports/", CreateReportRequest{
		PeriodStart: "2024-01-01",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestReportHandler_Create_DomainErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"inverted period", domain.ErrInvalidPeriod, fiber.StatusBadRequest},
		{"duplicate period", domain.ErrDuplicatePeriod, fiber.StatusConflict},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			service := &mocks.MockReportService{
				CreateFunc: func(ctx context.Context, periodStart, periodEnd time.Time) (*domain.Report, error) {
					return nil, tc.err
				},
			}
			app := newTestApp(service)

			resp := postJSON(t, app, "/api/v1/reports/", CreateReportRequest{
				PeriodStart: "2024-01-01",
				PeriodEnd:   "2024-01-31",
			})
			assert.Equal(t, tc.code, resp.StatusCode)
		})
	}
}

func TestReportHandler_Status(t *testing.T) {
	service := &mocks.MockReportService{
		StatusFunc: func(ctx context.Context, id string) (domain.ReportStatus, error) {
			if id != "r1" {
				return "", domain.ErrReportNotFound
			}
			return domain.ReportStatusProcessing, nil
		},
	}
	app := newTestApp(service)

	resp := get(t, app, "/api/v1/reports/r1/status")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, string(domain.ReportStatusProcessing), body["status"])

	resp = get(t, app, "/api/v1/reports/missing/status")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestReportHandler_Content(t *testing.T) {
	service := &mocks.MockReportService{
		ContentFunc: func(ctx context.Context, id string) (string, error) {
			return "report body", nil
		},
	}
	app := newTestApp(service)

	resp := get(t, app, "/api/v1/reports/r1/content")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "report body", string(body))
}

func TestReportHandler_Check(t *testing.T) {
	service := &mocks.MockReportService{
		IsPeriodTakenFunc: func(ctx context.Context, periodStart, periodEnd time.Time) (bool, error) {
			return true, nil
		},
	}
	app := newTestApp(service)

	resp := get(t, app, "/api/v1/reports/check?period_start=2024-01-01&period_end=2024-01-31")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var body map[string]bool
	decode(t, resp, &body)
	assert.True(t, body["exists"])

	resp = get(t, app, "/api/v1/reports/check?period_start=bogus&period_end=2024-01-31")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestReportHandler_List(t *testing.T) {
	var gotPage, gotSize int
	service := &mocks.MockReportService{
		ListPageFunc: func(ctx context.Context, page, size int) (*ports.ReportPage, error) {
			gotPage, gotSize = page, size
			return &ports.ReportPage{
				Reports:    []domain.Report{{ID: "r1"}},
				Page:       page,
				Size:       16,
				TotalCount: 1,
			}, nil
		},
	}
	app := newTestApp(service)

	resp := get(t, app, "/api/v1/reports/?page=2&size=32")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, gotPage)
	assert.Equal(t, 32, gotSize)

	var body ports.ReportPage
	decode(t, resp, &body)
	assert.Equal(t, int64(1), body.TotalCount)
	require.Len(t, body.Reports, 1)
	assert.Equal(t, "r1", body.Reports[0].ID)
}

func TestReportHandler_Download(t *testing.T) {
	service := &mocks.MockReportService{
		ExportCSVFunc: func(ctx context.Context, id string) ([]byte, string, error) {
			return []byte("Parameter,Value,Unit,Note\n"), "report_2024-01-01_2024-01-31_20240201-102959.csv", nil
		},
	}
	app := newTestApp(service)

	resp := get(t, app, "/api/v1/reports/r1/download")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "attachment")
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), ".csv")

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Parameter,Value,Unit,Note\n", string(body))
}

func TestReportHandler_Download_NotCompleted(t *testing.T) {
	service := &mocks.MockReportService{
		ExportCSVFunc: func(ctx context.Context, id string) ([]byte, string, error) {
			return nil, "", domain.ErrReportNotCompleted
		},
	}
	app := newTestApp(service)

	resp := get(t, app, "/api/v1/reports/r1/download")
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}
