package handler

import (
	"go-asso-stock/internal/middleware"
	"go-asso-stock/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(s service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// GetOverview returns the headline counters and total stock value
func (h *DashboardHandler) GetOverview(c *fiber.Ctx) error {
	stats, err := h.service.OverviewStats(c.UserContext(), middleware.Scope(c))
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, stats)
}

// GetCategoryDistribution returns product counts per category
// Query params: top (default from config)
func (h *DashboardHandler) GetCategoryDistribution(c *fiber.Ctx) error {
	top := c.QueryInt("top", 0)

	counts, err := h.service.CategoryDistribution(c.UserContext(), middleware.Scope(c), top)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, counts)
}

func (h *DashboardHandler) GetStockSummary(c *fiber.Ctx) error {
	summary, err := h.service.StockSummary(c.UserContext(), middleware.Scope(c))
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, summary)
}

// GetRecentTransactions
// Query params: limit (default from config)
func (h *DashboardHandler) GetRecentTransactions(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)

	transactions, err := h.service.RecentTransactions(c.UserContext(), middleware.Scope(c), limit)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, transactions)
}

// GetStockMovement returns stock movement data for charts
// Query params: days (default 7)
func (h *DashboardHandler) GetStockMovement(c *fiber.Ctx) error {
	days := c.QueryInt("days", 7)

	data, err := h.service.StockMovement(c.UserContext(), middleware.Scope(c), days)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{
		"period": len(data),
		"data":   data,
	})
}
