package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/examforge/examforge-api/internal/config"
)

// RateLimit bounds how fast one caller can hit the admin configuration
// surface. The window parameters come from configuration so operators can
// tune them per deployment.
func RateLimit(identifier string, cfg config.Config) fiber.Handler {
	max := cfg.AdminRateMax
	if max <= 0 {
		max = 60
	}
	window := cfg.AdminRateWindow
	if window <= 0 {
		window = time.Minute
	}

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			userID := fmt.Sprintf("%v", c.Locals("user_id"))
			if userID == "" || userID == "0" || userID == "<nil>" {
				userID = c.IP()
			}
			return fmt.Sprintf("%s:%s", identifier, userID)
		},
	})
}
