package api

import (
	"github.com/gofiber/fiber/v3"

	"sold2move/internal/models"
)

// jsonData returns a 200 response with data wrapped in the standard envelope.
func jsonData(c fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{
		"data": data,
	})
}

// jsonError returns an error response with the given HTTP status code.
func jsonError(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(models.ErrorResponse{Error: message})
}

// jsonErrorDetails returns an error response carrying extra details.
func jsonErrorDetails(c fiber.Ctx, status int, message string, details any) error {
	return c.Status(status).JSON(models.ErrorResponse{Error: message, Details: details})
}
