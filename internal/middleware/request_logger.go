package middleware

import (
	"strconv"
	"time"

	"go-asso-stock/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestLogger logs every request with zap and records its HTTP metrics.
// Metrics are labelled with the route pattern, not the raw path.
func RequestLogger(log *zap.Logger, m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// Let the app error handler pick the status before we read it
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				log.Error("error handler failed", zap.Error(herr), zap.NamedError("cause", err))
				if serr := c.SendStatus(fiber.StatusInternalServerError); serr != nil {
					log.Error("failed to send error status", zap.Error(serr))
				}
			}
		}
		elapsed := time.Since(start)
		status := c.Response().StatusCode()

		m.ObserveHTTP(c.Method(), c.Route().Path, strconv.Itoa(status), elapsed)

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", elapsed),
			zap.String("ip", c.IP()),
		}
		if rid, ok := c.Locals("requestid").(string); ok {
			fields = append(fields, zap.String("request_id", rid))
		}
		if tenantID, ok := c.Locals(LocalTenantID).(uuid.UUID); ok {
			fields = append(fields, zap.Stringer("tenant_id", tenantID))
		}

		switch {
		case status >= fiber.StatusInternalServerError:
			log.Error("request", fields...)
		case status >= fiber.StatusBadRequest:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
		return nil
	}
}
