package handler

import (
	"github.com/gofiber/fiber/v2"
)

// JSONError writes {"error": msg} with status.
func JSONError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// ValidationFailed writes a 400 response listing the failed fields.
func ValidationFailed(c *fiber.Ctx, errs []ErrorResponse) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":  "validation failed",
		"fields": errs,
	})
}

// ParamID parses the :id route parameter. Zero and non-numeric values are rejected.
func ParamID(c *fiber.Ctx) (uint64, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, false
	}

	return uint64(id), true
}
