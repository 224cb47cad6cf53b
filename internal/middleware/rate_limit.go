package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/tidianesow/medical-e-academy/internal/utils"
)

// RateLimit throttles a route group per authenticated user, or per client IP
// for anonymous callers.
func RateLimit(identifier string, max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		max = 30
	}
	if window <= 0 {
		window = time.Minute
	}

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			if userID, ok := c.Locals("user_id").(uint); ok && userID > 0 {
				return fmt.Sprintf("%s:user:%d", identifier, userID)
			}
			return fmt.Sprintf("%s:ip:%s", identifier, c.IP())
		},
		LimitReached: func(c *fiber.Ctx) error {
			return utils.SendError(c, fiber.StatusTooManyRequests, "too many requests, slow down")
		},
	})
}
