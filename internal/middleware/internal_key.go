package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"github.com/examforge/examforge-api/internal/utils"
)

// InternalKey guards service-to-service endpoints with a static shared
// secret carried in the x-api-key header. Comparison is constant time.
func InternalKey(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		provided := c.Get("x-api-key")
		if secret == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			return utils.SendError(c, fiber.StatusUnauthorized, "unauthorized")
		}

		return c.Next()
	}
}
