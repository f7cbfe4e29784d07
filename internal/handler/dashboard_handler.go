package handler

import (
	"go-stock-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(s service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// GetDailyIntake returns units added per day for charts
// Query params: days (default 7)
func (h *DashboardHandler) GetDailyIntake(c *fiber.Ctx) error {
	owner, ok := currentUser(c)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	days := c.QueryInt("days", 7)
	if days <= 0 {
		days = 7
	}

	data, err := h.service.GetDailyIntake(owner, days)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch daily intake"})
	}

	return c.JSON(fiber.Map{
		"period": days,
		"data":   data,
	})
}

// GetLedgerStats returns the caller's overview statistics
func (h *DashboardHandler) GetLedgerStats(c *fiber.Ctx) error {
	owner, ok := currentUser(c)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	stats, err := h.service.GetLedgerStats(owner)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch dashboard stats"})
	}
	return c.JSON(stats)
}
