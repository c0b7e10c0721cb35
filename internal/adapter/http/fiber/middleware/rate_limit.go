package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/seu-repo/nutritrack/pkg/config"
)

// RateLimit throttles clients by IP using fiber's limiter middleware.
func RateLimit(cfg config.RateLimitingConfig) fiber.Handler {
	max := 100
	if cfg.MaxRequests > 0 {
		max = cfg.MaxRequests
	}
	window := time.Minute
	if cfg.Window > 0 {
		window = cfg.Window
	}

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests",
			})
		},
	})
}
