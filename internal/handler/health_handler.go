package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tidianesow/medical-e-academy/internal/config"
	"github.com/tidianesow/medical-e-academy/internal/utils"
)

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Service     string    `json:"service"`
	Environment string    `json:"environment"`
}

// HealthCheck reports liveness with the service identity.
func HealthCheck(cfg config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return utils.SendSuccess(c, "service healthy", HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
		})
	}
}

// Welcome answers the root path with a plain-text banner.
func Welcome(cfg config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendString("Welcome to the " + cfg.AppName)
	}
}
