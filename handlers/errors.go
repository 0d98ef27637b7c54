// handlers/errors.go
package handlers

import (
	"errors"

	"gamification-service/logging"
	"gamification-service/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// respondError maps a service error onto an HTTP status.
func respondError(c *fiber.Ctx, err error) error {
	switch services.KindOf(err) {
	case services.KindNotFound:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case services.KindPrecondition:
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	logging.Error().Err(err).Str("path", c.Path()).Msg("❌ request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal error",
		"cause": err.Error(),
	})
}

// parseBody decodes and validates a JSON body into dst. It writes the 400
// response itself and reports false when the request must stop.
func parseBody(c *fiber.Ctx, dst any) (bool, error) {
	if len(c.Body()) > 0 {
		if err := c.BodyParser(dst); err != nil {
			return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
				"cause": err.Error(),
			})
		}
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			details := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				details[fe.Field()] = fe.Tag()
			}
			return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "validation failed",
				"details": details,
			})
		}
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return true, nil
}
