package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/tidianesow/medical-e-academy/internal/dto"
	"github.com/tidianesow/medical-e-academy/internal/service"
	"github.com/tidianesow/medical-e-academy/internal/utils"
)

// SubmissionHandler exposes graded submissions, badges and progress views.
type SubmissionHandler struct {
	submissions service.SubmissionService
	badges      service.BadgeService
	logger      zerolog.Logger
}

// NewSubmissionHandler constructs the handler.
func NewSubmissionHandler(submissions service.SubmissionService, badges service.BadgeService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		submissions: submissions,
		badges:      badges,
		logger:      logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register wires the submission endpoints into the router group.
func (h *SubmissionHandler) Register(router fiber.Router, guards RouteGuards) {
	router.Get("/submissions", guards.Authenticated, guards.Teacher, h.listForTeacher)
	router.Delete("/submissions/:id", guards.Authenticated, guards.Teacher, h.delete)
	router.Put("/submissions/:id/feedback", guards.Authenticated, guards.Teacher, h.updateFeedback)
	router.Get("/statistics", guards.Authenticated, guards.Teacher, h.statistics)

	router.Get("/my-submissions", guards.Authenticated, h.listMine)
	router.Get("/badges", guards.Authenticated, h.listBadges)
	router.Get("/student-progress", guards.Authenticated, h.progress)
}

func (h *SubmissionHandler) listForTeacher(c *fiber.Ctx) error {
	submissions, err := h.submissions.ListForTeacher(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *SubmissionHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.submissions.Delete(c.UserContext(), userIDFromContext(c), id); err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "submission deleted", nil)
}

func (h *SubmissionHandler) updateFeedback(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.FeedbackUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.submissions.UpdateFeedback(c.UserContext(), userIDFromContext(c), id, payload); err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "feedback updated", nil)
}

func (h *SubmissionHandler) statistics(c *fiber.Ctx) error {
	stats, err := h.submissions.Statistics(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "statistics retrieved", stats)
}

func (h *SubmissionHandler) listMine(c *fiber.Ctx) error {
	submissions, err := h.submissions.ListForStudent(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *SubmissionHandler) listBadges(c *fiber.Ctx) error {
	badges, err := h.badges.ListForUser(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "badges retrieved", badges)
}

func (h *SubmissionHandler) progress(c *fiber.Ctx) error {
	progress, err := h.submissions.Progress(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "progress retrieved", progress)
}

func (h *SubmissionHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case isValidationError(err):
		return sendValidationError(c, err)
	case errors.Is(err, service.ErrFeedbackEmpty):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("submission operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
