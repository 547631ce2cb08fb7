package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/lazos-app/lazos-api/internal/pkg/env"
)

// AdminHeader carries the moderator credential on admin routes.
const AdminHeader = "X-Admin-Password"

// RequireAdmin authenticates moderator requests against the configured
// credential. ADMIN_PASSWORD_HASH (bcrypt) wins over the plain
// ADMIN_PASSWORD; with neither set all admin routes are closed.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		supplied := strings.TrimSpace(c.Get(AdminHeader))
		if supplied == "" {
			return unauthorized(c, "Missing admin credential")
		}

		if hash := env.GetEnv("ADMIN_PASSWORD_HASH", ""); hash != "" {
			if bcrypt.CompareHashAndPassword([]byte(hash), []byte(supplied)) != nil {
				return unauthorized(c, "Invalid admin credential")
			}
			return c.Next()
		}

		plain := env.GetEnv("ADMIN_PASSWORD", "")
		if plain == "" {
			return unauthorized(c, "Admin access not configured")
		}
		if subtle.ConstantTimeCompare([]byte(plain), []byte(supplied)) != 1 {
			return unauthorized(c, "Invalid admin credential")
		}
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error":   "unauthorized",
		"message": message,
	})
}
