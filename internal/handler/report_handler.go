package handler

import (
	"go-pos-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	service service.ReportService
}

func NewReportHandler(s service.ReportService) *ReportHandler {
	return &ReportHandler{service: s}
}

// GetLowStock returns products with stock_qty <= 2.
// With format=csv the report is written under /exports and its name returned.
func (h *ReportHandler) GetLowStock(c *fiber.Ctx) error {
	if c.Query("format") == "csv" {
		name, err := h.service.ExportLowStock(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{
			"message":  "CSV generated",
			"filename": name,
			"url":      "/exports/" + name,
		})
	}

	products, err := h.service.LowStock(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

// GetSummary returns overview stats for the catalog
func (h *ReportHandler) GetSummary(c *fiber.Ctx) error {
	stats, err := h.service.Summary(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

func (h *ReportHandler) GetReconcile(c *fiber.Ctx) error {
	discrepancies, err := h.service.Reconcile(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"balanced":      len(discrepancies) == 0,
		"discrepancies": discrepancies,
	})
}
