package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/tidianesow/medical-e-academy/internal/utils"
)

// RequireRole lets the request through only when the authenticated caller
// holds one of roles. It must run after JWTProtected.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		if normalized := strings.ToLower(strings.TrimSpace(role)); normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		if _, ok := c.Locals("user_id").(uint); !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}
		role, _ := c.Locals("user_role").(string)
		if _, ok := allowed[strings.ToLower(role)]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}
