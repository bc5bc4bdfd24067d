package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sifan077/SnipURL/internal/app/auth"
)

// UserIDKey is the locals key under which the authenticated user id is stored.
const UserIDKey = "user_id"

// Auth verifies the bearer token and stores the caller's user id in locals.
func Auth(tokens *auth.JWTManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authorization header must be in format: Bearer {token}",
			})
		}

		claims, err := tokens.Validate(parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid token",
			})
		}

		c.Locals(UserIDKey, claims.UserID)
		return c.Next()
	}
}

// UserID extracts the authenticated user id stored by Auth.
func UserID(c *fiber.Ctx) (string, bool) {
	id, ok := c.Locals(UserIDKey).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
