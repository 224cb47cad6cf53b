package handler_test

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/tidianesow/medical-e-academy/internal/config"
	"github.com/tidianesow/medical-e-academy/internal/handler"
)

func TestHealthCheck(t *testing.T) {
	cfg := config.Config{AppName: "Medical e-Academy API", AppEnv: "test"}

	app := fiber.New()
	app.Get("/api/v1/health", handler.HealthCheck(cfg))
	app.Get("/", handler.Welcome(cfg))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/health", nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Success bool                   `json:"success"`
		Data    handler.HealthResponse `json:"data"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.True(t, payload.Success)
	assert.Equal(t, "ok", payload.Data.Status)
	assert.Equal(t, cfg.AppName, payload.Data.Service)
	assert.Equal(t, cfg.AppEnv, payload.Data.Environment)
	assert.WithinDuration(t, time.Now().UTC(), payload.Data.Timestamp, 2*time.Second)

	resp, err = app.Test(httptest.NewRequest("GET", "/", nil), -1)
	assert.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), cfg.AppName)
}
