package middleware

import (
	"strings"

	"go-asso-stock/internal/service"
	"go-asso-stock/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Context keys set by RequireTenant
const (
	LocalTenantID = "tenant_id"
	LocalEmail    = "user_email"
	LocalName     = "user_name"
)

func unauthorized(c *fiber.Ctx, reason string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"kind":    "unauthorized",
		"reason":  reason,
	})
}

// RequireTenant validates the identity token and resolves the caller's
// association, creating it on first contact. Browsers cannot set headers
// on a websocket upgrade, so a token query parameter is accepted when no
// Authorization header is present.
func RequireTenant(tokens *jwt.Manager, tenants service.TenantService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Query("token")
		if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return unauthorized(c, "Invalid authorization format. Use: Bearer <token>")
			}
			tokenString = parts[1]
		}
		if tokenString == "" {
			return unauthorized(c, jwt.ErrMissingToken.Error())
		}

		claims, err := tokens.ValidateToken(tokenString)
		if err != nil {
			return unauthorized(c, err.Error())
		}

		tenant, err := tenants.ResolveOrCreate(c.UserContext(), claims.Email, claims.Name)
		if err != nil {
			if service.KindOf(err) == service.KindStore {
				log.Error("association lookup failed", zap.String("email", claims.Email), zap.Error(err))
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"success": false,
					"kind":    service.KindStore,
					"reason":  "failed to resolve association",
				})
			}
			return unauthorized(c, service.ErrNoAssociation.Message)
		}

		c.Locals(LocalTenantID, tenant.ID)
		c.Locals(LocalEmail, tenant.Email)
		c.Locals(LocalName, tenant.Name)

		return c.Next()
	}
}

// Scope returns the tenant scope resolved by RequireTenant. Outside a
// protected route the scope carries uuid.Nil and every service refuses it.
func Scope(c *fiber.Ctx) service.Scope {
	tenantID, _ := c.Locals(LocalTenantID).(uuid.UUID)
	email, _ := c.Locals(LocalEmail).(string)
	return service.Scope{TenantID: tenantID, Actor: email}
}
