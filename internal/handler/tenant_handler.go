package handler

import (
	"go-asso-stock/internal/middleware"
	"go-asso-stock/internal/service"

	"github.com/gofiber/fiber/v2"
)

type TenantHandler struct {
	service service.TenantService
}

func NewTenantHandler(s service.TenantService) *TenantHandler {
	return &TenantHandler{service: s}
}

// Me returns the association the caller was resolved to
// GET /api/v1/me
func (h *TenantHandler) Me(c *fiber.Ctx) error {
	email, _ := c.Locals(middleware.LocalEmail).(string)
	tenant, err := h.service.Get(c.UserContext(), email)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, tenant)
}
