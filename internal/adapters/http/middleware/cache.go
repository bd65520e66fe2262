package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// NoStore marks responses as uncacheable. API payloads carry session
// tokens and per-user data.
func NoStore() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Process request first
		err := c.Next()

		c.Set(fiber.HeaderCacheControl, "no-store")
		c.Set(fiber.HeaderPragma, "no-cache")

		return err
	}
}
