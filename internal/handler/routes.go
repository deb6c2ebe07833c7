package handler

import "github.com/gofiber/fiber/v2"

type Handlers struct {
	Tenant    *TenantHandler
	Catalog   *CatalogHandler
	Ledger    *LedgerHandler
	Dashboard *DashboardHandler
	Upload    *UploadHandler
}

// RegisterRoutes mounts the API on router, which must already carry the
// tenant middleware.
func RegisterRoutes(router fiber.Router, h *Handlers) {
	router.Get("/me", h.Tenant.Me)

	// Categories
	router.Get("/categories", h.Catalog.GetCategories)
	router.Post("/categories", h.Catalog.CreateCategory)
	router.Put("/categories/:id", h.Catalog.UpdateCategory)
	router.Delete("/categories/:id", h.Catalog.DeleteCategory)

	// Products
	router.Get("/products", h.Catalog.GetProducts)
	router.Post("/products", h.Catalog.CreateProduct)
	router.Get("/products/:id", h.Catalog.GetProduct)
	router.Put("/products/:id", h.Catalog.UpdateProduct)
	router.Delete("/products/:id", h.Catalog.DeleteProduct)

	// Stock ledger
	router.Post("/products/:id/replenish", h.Ledger.Replenish)
	router.Post("/stock/deduct", h.Ledger.Deduct)
	router.Get("/transactions", h.Ledger.GetTransactions)
	router.Get("/transactions/:id", h.Ledger.GetTransaction)
	router.Get("/ledger/audit", h.Ledger.Audit)

	// Dashboard
	router.Get("/dashboard/overview", h.Dashboard.GetOverview)
	router.Get("/dashboard/categories", h.Dashboard.GetCategoryDistribution)
	router.Get("/dashboard/stock-summary", h.Dashboard.GetStockSummary)
	router.Get("/dashboard/recent-transactions", h.Dashboard.GetRecentTransactions)
	router.Get("/dashboard/stock-movement", h.Dashboard.GetStockMovement)

	// Images
	if h.Upload != nil {
		router.Post("/uploads", h.Upload.Upload)
		router.Delete("/uploads", h.Upload.Delete)
	}
}
