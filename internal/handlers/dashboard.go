package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"photofolio_api/internal/services"
)

// DashboardHandler serves the admin statistics aggregation endpoint.
type DashboardHandler struct {
	stats *services.DashboardService
}

func NewDashboardHandler(stats *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{stats: stats}
}

func (h *DashboardHandler) Stats(c echo.Context) error {
	stats, err := h.stats.GetStats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}
