// middleware/auth.go
package middleware

import (
	"strings"

	"gamification-service/logging"

	"github.com/gofiber/fiber/v2"
)

// LocalUserID is the fiber.Locals key holding the caller's user id.
const LocalUserID = "user_id"

// UserContextMiddleware takes the user identity the gateway forwards in
// X-User-ID. Requests without it are rejected.
func UserContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := strings.TrimSpace(c.Get("X-User-ID"))
		if userID == "" {
			logging.Warn().Str("path", c.Path()).Msg("❌ [USER_CTX] X-User-ID missing")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-User-ID, requests must come through the gateway",
			})
		}
		c.Locals(LocalUserID, userID)
		return c.Next()
	}
}

// UserID returns the id stored by UserContextMiddleware.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}
