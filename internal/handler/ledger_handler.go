package handler

import (
	"time"

	"go-asso-stock/internal/middleware"
	"go-asso-stock/internal/repository"
	"go-asso-stock/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

type LedgerHandler struct {
	service service.LedgerService
}

func NewLedgerHandler(s service.LedgerService) *LedgerHandler {
	return &LedgerHandler{service: s}
}

type ReplenishRequest struct {
	Quantity int `json:"quantity"`
}

type DeductRequest struct {
	Items []service.DeductItem `json:"items"`
}

// Replenish adds stock to one product
// POST /api/v1/products/:id/replenish
func (h *LedgerHandler) Replenish(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "Invalid product ID")
	}
	var req ReplenishRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	entry, err := h.service.Replenish(c.UserContext(), middleware.Scope(c), id, req.Quantity)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusCreated, entry)
}

// Deduct removes stock for a batch of products, all or nothing
// POST /api/v1/stock/deduct
func (h *LedgerHandler) Deduct(c *fiber.Ctx) error {
	var req DeductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	entries, err := h.service.DeductBatch(c.UserContext(), middleware.Scope(c), req.Items)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusCreated, entries)
}

// GetTransactions lists ledger lines newest first
// Query params: product_id, from, to (YYYY-MM-DD or RFC3339; a bare "to"
// date includes the whole day), limit (default 0, meaning all), offset
func (h *LedgerHandler) GetTransactions(c *fiber.Ctx) error {
	filter := repository.TransactionFilter{
		Limit:  c.QueryInt("limit", 0),
		Offset: c.QueryInt("offset", 0),
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return badRequest(c, "limit and offset must not be negative")
	}

	if raw := c.Query("product_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return badRequest(c, "Invalid product ID")
		}
		filter.ProductID = id
	}

	var err error
	if filter.From, err = parseTimeParam(c.Query("from"), false); err != nil {
		return badRequest(c, "Invalid from date")
	}
	if filter.To, err = parseTimeParam(c.Query("to"), true); err != nil {
		return badRequest(c, "Invalid to date")
	}

	transactions, err := h.service.ListTransactions(c.UserContext(), middleware.Scope(c), filter)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, transactions)
}

// parseTimeParam accepts RFC3339 or a bare date in server local time.
// With endOfDay a bare date covers the whole day.
func parseTimeParam(raw string, endOfDay bool) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	day, err := time.ParseInLocation(dateLayout, raw, time.Local)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		return day.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
	}
	return day, nil
}

// GET /api/v1/transactions/:id
func (h *LedgerHandler) GetTransaction(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "Invalid transaction ID")
	}

	transaction, err := h.service.GetTransaction(c.UserContext(), middleware.Scope(c), id)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, transaction)
}

// Audit reports products whose quantity disagrees with the ledger
// GET /api/v1/ledger/audit
func (h *LedgerHandler) Audit(c *fiber.Ctx) error {
	violations, err := h.service.VerifyInvariant(c.UserContext(), middleware.Scope(c))
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{
		"consistent": len(violations) == 0,
		"violations": violations,
	})
}
