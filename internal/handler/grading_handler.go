package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/tidianesow/medical-e-academy/internal/dto"
	"github.com/tidianesow/medical-e-academy/internal/service"
	"github.com/tidianesow/medical-e-academy/internal/utils"
)

// GradingHandler exposes answer grading.
type GradingHandler struct {
	service service.GradingService
	logger  zerolog.Logger
}

// NewGradingHandler constructs the handler.
func NewGradingHandler(service service.GradingService, logger zerolog.Logger) *GradingHandler {
	return &GradingHandler{
		service: service,
		logger:  logger.With().Str("component", "grading_handler").Logger(),
	}
}

// Register wires the grading endpoints into the router group.
func (h *GradingHandler) Register(router fiber.Router, guards RouteGuards) {
	router.Post("/submit", guards.Optional, guards.Grading, h.submit)
	router.Post("/evaluate", guards.Optional, guards.Grading, h.evaluate)
}

func (h *GradingHandler) submit(c *fiber.Ctx) error {
	var payload dto.GradeSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.service.Submit(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "answer graded", response)
}

func (h *GradingHandler) evaluate(c *fiber.Ctx) error {
	var payload dto.GradeEvaluateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.service.Evaluate(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "answer evaluated", response)
}

func (h *GradingHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case isValidationError(err):
		return sendValidationError(c, err)
	case errors.Is(err, service.ErrExerciseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "exercise not found")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("grading failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to grade answer")
	}
}
