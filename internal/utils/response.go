package utils

import "github.com/gofiber/fiber/v2"

// APIResponse is the envelope every endpoint answers with.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// SendSuccess sends a 200 envelope.
func SendSuccess(c *fiber.Ctx, message string, data interface{}) error {
	return SendSuccessWithStatus(c, fiber.StatusOK, message, data)
}

// SendSuccessWithStatus sends a success envelope with the given status code.
func SendSuccessWithStatus(c *fiber.Ctx, status int, message string, data interface{}) error {
	if message == "" {
		message = "success"
	}
	if status == 0 {
		status = fiber.StatusOK
	}

	return c.Status(status).JSON(APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// SendError sends an error envelope without details.
func SendError(c *fiber.Ctx, status int, message string) error {
	return Fail(c, status, message, nil)
}

// Fail sends an error envelope. details is omitted when nil.
func Fail(c *fiber.Ctx, status int, message string, details interface{}) error {
	if message == "" {
		message = "error"
	}

	return c.Status(status).JSON(APIResponse{
		Success: false,
		Message: message,
		Details: details,
	})
}
