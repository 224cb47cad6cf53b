package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const correlationHeader = "X-Correlation-ID"

type correlationIDKey struct{}

// CorrelationID reuses the caller's correlation id or mints one, echoes it
// back and stores it on the request's user context.
func CorrelationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := strings.TrimSpace(c.Get(correlationHeader))
		if id == "" {
			id = strings.TrimSpace(c.Get(fiber.HeaderXRequestID))
		}
		if id == "" {
			id = uuid.NewString()
		}

		c.Locals("correlation_id", id)
		c.Set(correlationHeader, id)
		c.SetUserContext(ContextWithCorrelation(c.UserContext(), id))

		return c.Next()
	}
}

// CorrelationIDFromContext extracts the correlation id, if present.
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationIDKey{}).(string)
	return id
}

// GetCorrelationID returns the correlation id bound to the active request.
func GetCorrelationID(c *fiber.Ctx) string {
	if c == nil {
		return ""
	}
	if id, ok := c.Locals("correlation_id").(string); ok {
		return id
	}
	return CorrelationIDFromContext(c.UserContext())
}

// ContextWithCorrelation attaches a correlation id to ctx.
func ContextWithCorrelation(ctx context.Context, correlationID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	correlationID = strings.TrimSpace(correlationID)
	if correlationID == "" {
		return ctx
	}
	return context.WithValue(ctx, correlationIDKey{}, correlationID)
}
