package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/nutritrack/internal/ports"
)

const dateLayout = "2006-01-02"

type ReportHandler struct {
	service ports.ReportService
	log     *zap.Logger
}

func NewReportHandler(service ports.ReportService, log *zap.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		log:     log,
	}
}

type CreateReportRequest struct {
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
}

type CreateReportResponse struct {
	ReportID    string `json:"report_id"`
	Status      string `json:"status"`
	Message     string `json:"message"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
}

func (h *ReportHandler) Create(c *fiber.Ctx) error {
	var req CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	periodStart, err := time.Parse(dateLayout, req.PeriodStart)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid period_start, expected YYYY-MM-DD"})
	}
	periodEnd, err := time.Parse(dateLayout, req.PeriodEnd)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid period_end, expected YYYY-MM-DD"})
	}

	report, err := h.service.Create(c.Context(), periodStart, periodEnd)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusAccepted).JSON(CreateReportResponse{
		ReportID:    report.ID,
		Status:      string(report.Status),
		Message:     "Report generation started",
		PeriodStart: report.PeriodStart.Format(dateLayout),
		PeriodEnd:   report.PeriodEnd.Format(dateLayout),
	})
}

func (h *ReportHandler) Status(c *fiber.Ctx) error {
	id := c.Params("id")
	status, err := h.service.Status(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": status})
}

func (h *ReportHandler) Content(c *fiber.Ctx) error {
	id := c.Params("id")
	content, err := h.service.Content(c.Context(), id)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(content)
}

func (h *ReportHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")
	report, err := h.service.GetByID(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(report)
}

func (h *ReportHandler) Data(c *fiber.Ctx) error {
	id := c.Params("id")
	data, err := h.service.GetData(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(data)
}

func (h *ReportHandler) Check(c *fiber.Ctx) error {
	periodStart, err := time.Parse(dateLayout, c.Query("period_start"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid period_start, expected YYYY-MM-DD"})
	}
	periodEnd, err := time.Parse(dateLayout, c.Query("period_end"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid period_end, expected YYYY-MM-DD"})
	}

	exists, err := h.service.IsPeriodTaken(c.Context(), periodStart, periodEnd)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"exists": exists})
}

func (h *ReportHandler) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 0)
	size := c.QueryInt("size", 0)

	result, err := h.service.ListPage(c.Context(), page, size)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func (h *ReportHandler) Download(c *fiber.Ctx) error {
	id := c.Params("id")
	data, filename, err := h.service.ExportCSV(c.Context(), id)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Send(data)
}
