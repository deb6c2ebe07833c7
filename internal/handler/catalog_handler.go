package handler

import (
	"go-asso-stock/internal/middleware"
	"go-asso-stock/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CatalogHandler struct {
	service service.CatalogService
}

func NewCatalogHandler(s service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: s}
}

// GET /api/v1/categories
func (h *CatalogHandler) GetCategories(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories(c.UserContext(), middleware.Scope(c))
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, categories)
}

// POST /api/v1/categories
func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var req service.CategoryInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	category, err := h.service.CreateCategory(c.UserContext(), middleware.Scope(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusCreated, category)
}

// PUT /api/v1/categories/:id
func (h *CatalogHandler) UpdateCategory(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "Invalid category ID")
	}
	var req service.CategoryInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	category, err := h.service.UpdateCategory(c.UserContext(), middleware.Scope(c), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, category)
}

// DELETE /api/v1/categories/:id
func (h *CatalogHandler) DeleteCategory(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "Invalid category ID")
	}
	if err := h.service.DeleteCategory(c.UserContext(), middleware.Scope(c), id); err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, nil)
}

// GET /api/v1/products
func (h *CatalogHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.UserContext(), middleware.Scope(c))
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, products)
}

// GET /api/v1/products/:id
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "Invalid product ID")
	}
	product, err := h.service.GetProduct(c.UserContext(), middleware.Scope(c), id)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, product)
}

// POST /api/v1/products
func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.CreateProductInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	product, err := h.service.CreateProduct(c.UserContext(), middleware.Scope(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusCreated, product)
}

// PUT /api/v1/products/:id
func (h *CatalogHandler) UpdateProduct(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "Invalid product ID")
	}
	var req service.UpdateProductInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	product, err := h.service.UpdateProduct(c.UserContext(), middleware.Scope(c), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, product)
}

// DELETE /api/v1/products/:id
func (h *CatalogHandler) DeleteProduct(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "Invalid product ID")
	}
	if err := h.service.DeleteProduct(c.UserContext(), middleware.Scope(c), id); err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, nil)
}
