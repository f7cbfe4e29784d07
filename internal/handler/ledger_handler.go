package handler

import (
	"go-stock-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type LedgerHandler struct {
	service service.LedgerService
}

func NewLedgerHandler(s service.LedgerService) *LedgerHandler {
	return &LedgerHandler{service: s}
}

// POST /api/v1/stock
func (h *LedgerHandler) CreateEntry(c *fiber.Ctx) error {
	owner, ok := currentUser(c)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}
	var req service.CreateEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	entry, err := h.service.CreateEntry(owner, &req)
	if err != nil {
		return respondError(c, err, "Failed to add stock entry")
	}
	return c.Status(201).JSON(fiber.Map{"message": "Stock entry added", "data": entry})
}

// PUT /api/v1/stock/:id
func (h *LedgerHandler) UpdateEntry(c *fiber.Ctx) error {
	owner, ok := currentUser(c)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid stock entry ID"})
	}
	var req service.UpdateEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	entry, err := h.service.UpdateEntry(id, owner, &req)
	if err != nil {
		return respondError(c, err, "Failed to update stock entry")
	}
	return c.JSON(fiber.Map{"message": "Stock entry updated", "data": entry})
}

// DELETE /api/v1/stock/:id
func (h *LedgerHandler) DeleteEntry(c *fiber.Ctx) error {
	owner, ok := currentUser(c)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid stock entry ID"})
	}

	if err := h.service.DeleteEntry(id, owner); err != nil {
		return respondError(c, err, "Failed to delete stock entry")
	}
	return c.JSON(fiber.Map{"message": "Stock entry deleted"})
}

// GET /api/v1/products/:slug/stock
func (h *LedgerHandler) ProductEntries(c *fiber.Ctx) error {
	owner, ok := currentUser(c)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	detail, err := h.service.ProductEntries(owner, c.Params("slug"))
	if err != nil {
		return respondError(c, err, "Failed to fetch stock entries")
	}
	return c.JSON(detail)
}

