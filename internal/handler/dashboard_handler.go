package handler

import (
	"go-price-pilot/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(s service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// GetCatalogStats returns overview statistics of the loaded catalog
func (h *DashboardHandler) GetCatalogStats(c *fiber.Ctx) error {
	return c.JSON(h.service.GetCatalogStats())
}
