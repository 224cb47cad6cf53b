package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/tidianesow/medical-e-academy/internal/dto"
	"github.com/tidianesow/medical-e-academy/internal/models"
	"github.com/tidianesow/medical-e-academy/internal/service"
	"github.com/tidianesow/medical-e-academy/internal/utils"
)

// ExerciseHandler exposes exercise listing and teacher authoring.
type ExerciseHandler struct {
	service service.ExerciseService
	logger  zerolog.Logger
}

// NewExerciseHandler constructs the handler.
func NewExerciseHandler(service service.ExerciseService, logger zerolog.Logger) *ExerciseHandler {
	return &ExerciseHandler{
		service: service,
		logger:  logger.With().Str("component", "exercise_handler").Logger(),
	}
}

// Register wires the exercise endpoints into the router group. Register it
// after handlers owning static paths under the same group.
func (h *ExerciseHandler) Register(router fiber.Router, guards RouteGuards) {
	router.Get("", guards.Optional, h.list)
	router.Post("", guards.Authenticated, guards.Teacher, h.create)
	router.Put("/:id", guards.Authenticated, guards.Teacher, h.update)
	router.Delete("/:id", guards.Authenticated, guards.Teacher, h.delete)
}

// list shows a teacher their own exercises and everyone else the full catalog.
func (h *ExerciseHandler) list(c *fiber.Ctx) error {
	var createdBy *uint
	if userID := userIDFromContext(c); userID != 0 && userRoleFromContext(c) == models.RoleTeacher {
		createdBy = &userID
	}

	exercises, err := h.service.List(c.UserContext(), createdBy)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "exercises retrieved", exercises)
}

func (h *ExerciseHandler) create(c *fiber.Ctx) error {
	var payload dto.ExerciseRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	exercise, err := h.service.Create(c.UserContext(), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "exercise created", exercise)
}

func (h *ExerciseHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ExerciseRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	exercise, err := h.service.Update(c.UserContext(), userIDFromContext(c), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "exercise updated", exercise)
}

func (h *ExerciseHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.UserContext(), userIDFromContext(c), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "exercise deleted", nil)
}

func (h *ExerciseHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case isValidationError(err):
		return sendValidationError(c, err)
	case errors.Is(err, service.ErrExerciseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "exercise not found")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("exercise operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
