package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/tidianesow/medical-e-academy/internal/config"
	"github.com/tidianesow/medical-e-academy/internal/observability"
)

func TestRegisterServesAmbientRoutes(t *testing.T) {
	app := fiber.New()
	Register(app, config.Config{AppName: "Medical e-Academy API"}, Dependencies{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "Medical e-Academy API", resp.Header.Get("X-Application"))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	observability.GradedAnswers().WithLabelValues("submit", "good").Inc()
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "mea_graded_answers_total")
}

func TestWithDefaultsDeniesMissingAuthGuards(t *testing.T) {
	guards := withDefaults(Dependencies{}.Guards)

	app := fiber.New()
	app.Get("/private", guards.Authenticated, func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/open", guards.Optional, guards.Grading, func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/private", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/open", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
