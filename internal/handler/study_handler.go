package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/tidianesow/medical-e-academy/internal/service"
	"github.com/tidianesow/medical-e-academy/internal/utils"
)

// StudyHandler exposes the DICOM study list.
type StudyHandler struct {
	service service.StudyService
	logger  zerolog.Logger
}

// NewStudyHandler constructs the handler.
func NewStudyHandler(service service.StudyService, logger zerolog.Logger) *StudyHandler {
	return &StudyHandler{
		service: service,
		logger:  logger.With().Str("component", "study_handler").Logger(),
	}
}

// Register wires the study endpoints into the router group.
func (h *StudyHandler) Register(router fiber.Router) {
	router.Get("/studies", h.list)
}

func (h *StudyHandler) list(c *fiber.Ctx) error {
	uids, err := h.service.ListStudyUIDs(c.UserContext())
	if err != nil {
		log := requestLogger(h.logger, c)
		if errors.Is(err, service.ErrStudiesUnavailable) {
			log.Warn().Err(err).Msg("imaging archive unavailable")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to retrieve DICOM studies")
		}
		log.Error().Err(err).Msg("study listing failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "studies retrieved", uids)
}
