package handler

import (
	"errors"

	"go-asso-stock/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// statusOf maps a service error kind to its HTTP status
func statusOf(kind service.ErrorKind) int {
	switch kind {
	case service.KindPrecondition:
		return fiber.StatusBadRequest
	case service.KindNotFound:
		return fiber.StatusNotFound
	case service.KindInsufficientStock, service.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func respond(c *fiber.Ctx, status int, data interface{}) error {
	body := fiber.Map{"success": true}
	if data != nil {
		body["data"] = data
	}
	return c.Status(status).JSON(body)
}

// fail renders err as {success:false, kind, reason}. Store failures keep
// their cause out of the response body.
func fail(c *fiber.Ctx, err error) error {
	kind := service.KindOf(err)
	reason := "internal error"
	var appErr *service.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		reason = appErr.Message
	}
	return c.Status(statusOf(kind)).JSON(fiber.Map{
		"success": false,
		"kind":    kind,
		"reason":  reason,
	})
}

func badRequest(c *fiber.Ctx, reason string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"kind":    service.KindPrecondition,
		"reason":  reason,
	})
}

func parseID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("id"))
	return id, err == nil
}
