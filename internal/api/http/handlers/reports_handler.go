package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/inventory-service/internal/api/dto"
	"github.com/spec-kit/inventory-service/internal/domain"
	"github.com/spec-kit/inventory-service/internal/repository"
)

// ReportService is the subset of service.ReportService the handler drives.
type ReportService interface {
	Stock(ctx context.Context) (*domain.StockSummary, error)
	Movements(ctx context.Context, from, to time.Time) (*domain.MovementSummary, error)
	Holdings(ctx context.Context, userID string) ([]domain.Holding, error)
}

// AuditService is the subset of service.AuditService the handler drives.
type AuditService interface {
	List(ctx context.Context, filter repository.AuditFilter) ([]domain.AuditEntry, error)
}

// ReportsHandler exposes HR reports and the audit log.
type ReportsHandler struct {
	reports ReportService
	audit   AuditService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reports ReportService, audit AuditService) *ReportsHandler {
	return &ReportsHandler{reports: reports, audit: audit}
}

// Stock handles GET /api/reports/stock.
func (h *ReportsHandler) Stock(c *fiber.Ctx) error {
	summary, err := h.reports.Stock(c.UserContext())
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewStockReportResponse(summary))
}

// Movements handles GET /api/reports/movements?from=&to=.
func (h *ReportsHandler) Movements(c *fiber.Ctx) error {
	from, err := parseTime("from", c.Query("from"))
	if err != nil {
		return err
	}
	to, err := parseTime("to", c.Query("to"))
	if err != nil {
		return err
	}
	summary, err := h.reports.Movements(c.UserContext(), from, to)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewMovementReportResponse(summary))
}

// Holdings handles GET /api/reports/holdings?userId=.
func (h *ReportsHandler) Holdings(c *fiber.Ctx) error {
	userID, err := queryID(c, "userId")
	if err != nil {
		return err
	}
	holdings, err := h.reports.Holdings(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewHoldingList(holdings))
}

// Audit handles GET /api/audit?entityType=&entityId=&actorId=.
func (h *ReportsHandler) Audit(c *fiber.Ctx) error {
	page := parsePage(c)
	entries, err := h.audit.List(c.UserContext(), repository.AuditFilter{
		EntityType: c.Query("entityType"),
		EntityID:   c.Query("entityId"),
		ActorID:    c.Query("actorId"),
		Page:       page,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAuditList(entries), "meta": pageMeta(page, nil)})
}
