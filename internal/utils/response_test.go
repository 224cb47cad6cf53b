package utils_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/tidianesow/medical-e-academy/internal/utils"
)

func TestSendSuccessWithStatusDefaults(t *testing.T) {
	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "", map[string]int{"grade": 88})
	})

	resp := performRequest(t, app, http.MethodPost, "/")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var payload struct {
		Success bool           `json:"success"`
		Message string         `json:"message"`
		Data    map[string]int `json:"data"`
	}
	decode(t, resp, &payload)

	require.True(t, payload.Success)
	require.Equal(t, "success", payload.Message)
	require.Equal(t, 88, payload.Data["grade"])
}

func TestFailIncludesDetails(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		details := map[string]string{"field": "exercise_id"}
		return utils.Fail(c, fiber.StatusBadRequest, "invalid payload", details)
	})

	resp := performRequest(t, app, http.MethodGet, "/")
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var payload struct {
		Success bool                   `json:"success"`
		Message string                 `json:"message"`
		Details map[string]string      `json:"details"`
		Data    map[string]interface{} `json:"data"`
	}
	decode(t, resp, &payload)

	require.False(t, payload.Success)
	require.Equal(t, "invalid payload", payload.Message)
	require.Equal(t, "exercise_id", payload.Details["field"])
	require.Nil(t, payload.Data)
}

func TestSendErrorOmitsDetails(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return utils.SendError(c, fiber.StatusNotFound, "")
	})

	resp := performRequest(t, app, http.MethodGet, "/")
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var payload map[string]interface{}
	decode(t, resp, &payload)
	require.Equal(t, "error", payload["message"])
	require.NotContains(t, payload, "details")
}

func TestValidationDetails(t *testing.T) {
	type request struct {
		ExerciseID uint   `json:"exercise_id" validate:"required"`
		Answer     string `json:"answer" validate:"required"`
	}

	err := utils.NewValidator().Struct(request{ExerciseID: 1})
	require.Equal(t, map[string]string{"answer": "required"}, utils.ValidationDetails(err))
	require.Nil(t, utils.ValidationDetails(nil))
}

func performRequest(t *testing.T, app *fiber.App, method, path string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}
