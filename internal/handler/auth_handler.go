package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/tidianesow/medical-e-academy/internal/dto"
	"github.com/tidianesow/medical-e-academy/internal/service"
	"github.com/tidianesow/medical-e-academy/internal/utils"
)

// AuthHandler exposes registration and login.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register wires the auth endpoints into the router group.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/register", h.register)
	router.Post("/login", h.login)
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var payload dto.RegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.service.Register(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "user registered", user)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.service.Login(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "login successful", response)
}

func (h *AuthHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case isValidationError(err):
		return sendValidationError(c, err)
	case errors.Is(err, service.ErrEmailTaken):
		return utils.SendError(c, fiber.StatusBadRequest, "email already registered")
	case errors.Is(err, service.ErrInvalidCredentials):
		return utils.SendError(c, fiber.StatusBadRequest, "invalid email or password")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("auth operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
