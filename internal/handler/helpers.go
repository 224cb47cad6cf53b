package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/tidianesow/medical-e-academy/internal/middleware"
	"github.com/tidianesow/medical-e-academy/internal/utils"
)

// RouteGuards carries the auth middlewares handlers attach to their routes.
type RouteGuards struct {
	// Authenticated requires a valid bearer token.
	Authenticated fiber.Handler
	// Optional binds the caller when a valid token is present.
	Optional fiber.Handler
	// Teacher requires the teacher role and must follow Authenticated.
	Teacher fiber.Handler
	// Grading throttles the grading endpoints.
	Grading fiber.Handler
}

func userIDFromContext(c *fiber.Ctx) uint {
	if id, ok := c.Locals("user_id").(uint); ok {
		return id
	}
	return 0
}

func userRoleFromContext(c *fiber.Ctx) string {
	if role, ok := c.Locals("user_role").(string); ok {
		return role
	}
	return ""
}

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	raw := strings.TrimSpace(c.Params(name))
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || value == 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return uint(value), nil
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

func sendValidationError(c *fiber.Ctx, err error) error {
	return utils.Fail(c, fiber.StatusBadRequest, "invalid request", utils.ValidationDetails(err))
}
