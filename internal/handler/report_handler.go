package handler

import (
	"go-stock-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ReportHandler struct {
	service service.ReportService
}

func NewReportHandler(s service.ReportService) *ReportHandler {
	return &ReportHandler{service: s}
}

// Overview is the main page: the catalog page next to the caller's stock report.
// When the caller has no stock, "report" is null and "actions" is all there is to offer.
// GET /api/v1/overview?q=&page=&page_size=
func (h *ReportHandler) Overview(c *fiber.Ctx) error {
	owner, ok := currentUser(c)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	ov, err := h.service.Overview(&owner, c.Query("q"), c.QueryInt("page", 1), c.QueryInt("page_size", service.DefaultPageSize))
	if err != nil {
		return respondError(c, err, "Failed to build overview")
	}
	return c.JSON(ov)
}

// Search filters the global catalog. The report is attached only for signed-in callers.
// GET /api/v1/search?q=
func (h *ReportHandler) Search(c *fiber.Ctx) error {
	var owner *uuid.UUID
	if id, ok := currentUser(c); ok {
		owner = &id
	}

	ov, err := h.service.Overview(owner, c.Query("q"), c.QueryInt("page", 1), c.QueryInt("page_size", service.DefaultPageSize))
	if err != nil {
		return respondError(c, err, "Failed to search products")
	}
	return c.JSON(ov)
}
