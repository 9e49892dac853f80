package admin

import (
	"github.com/bookmarksdev/api/internal/types"
	"github.com/gofiber/fiber/v2"
)

type Config struct {
	PrincipalCtxName string
	// Optional override to check a custom permission instead of the admin flag
	HasAccess func(p types.Principal) bool
}

// New rejects requests whose principal is not an administrator.
func New(config Config) fiber.Handler {
	key := config.PrincipalCtxName
	if key == "" {
		key = types.PrincipalCtxName
	}
	hasAccess := config.HasAccess
	if hasAccess == nil {
		hasAccess = types.Principal.IsAdmin
	}

	return func(c *fiber.Ctx) error {
		principal, ok := c.Locals(key).(types.Principal)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"code":    "UNAUTHORIZED",
				"message": "missing principal",
			})
		}
		if !hasAccess(principal) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"code":    "FORBIDDEN",
				"message": "admin access required",
			})
		}
		return c.Next()
	}
}
