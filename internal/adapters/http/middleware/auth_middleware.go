package middleware

import (
	"context"
	"errors"
	"strings"

	"orderdesk-api/internal/core/domain"
	"orderdesk-api/internal/core/services"
	"orderdesk-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const sessionKey = "session"

// Authenticator resolves a bearer token to a session
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*services.Session, error)
}

// AuthMiddleware creates authentication middleware
func AuthMiddleware(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// 1. Get token from Authorization header
		accessToken := BearerToken(c)
		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		// 2. Resolve token; absent and expired tokens look the same
		session, err := auth.Authenticate(c.Context(), accessToken)
		if err != nil {
			if errors.Is(err, domain.ErrUnauthorized) {
				return response.Unauthorized(c, "Invalid access token")
			}
			return response.FromError(c, err)
		}

		// 3. Set session in context
		c.Locals(sessionKey, session)

		return c.Next()
	}
}

// OptionalAuth sets the session when a bearer token is sent and lets
// anonymous requests through. A token that does not resolve is still a 401.
func OptionalAuth(auth Authenticator) fiber.Handler {
	required := AuthMiddleware(auth)
	return func(c *fiber.Ctx) error {
		if BearerToken(c) == "" {
			return c.Next()
		}
		return required(c)
	}
}

// BearerToken returns the token of an "Authorization: Bearer <token>" header
func BearerToken(c *fiber.Ctx) string {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}

// GetSession returns the session set by AuthMiddleware, or nil
func GetSession(c *fiber.Ctx) *services.Session {
	session, _ := c.Locals(sessionKey).(*services.Session)
	return session
}

// RoleMiddleware creates role-based authorization middleware
func RoleMiddleware(allowedRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := GetSession(c)
		if session == nil {
			return response.Unauthorized(c, "Unauthorized")
		}

		// Check if user holds one of the allowed roles
		for _, allowedRole := range allowedRoles {
			if session.HasRole(allowedRole) {
				return c.Next()
			}
		}

		return response.Forbidden(c, "You don't have permission to access this resource")
	}
}

// AdminOnly middleware allows only the admin role
func AdminOnly() fiber.Handler {
	return RoleMiddleware(domain.RoleAdmin)
}
