package handlers

import (
	"errors"
	"strings"

	"orderdesk-api/internal/adapters/http/middleware"
	"orderdesk-api/internal/core/domain"
	"orderdesk-api/internal/core/services"
	"orderdesk-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// LoginRequest represents login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles user login
// @Summary Login
// @Description Exchange credentials for an access token valid for two weeks
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} models.AccessToken
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 429 {object} response.Response
// @Router /users/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	// missing credentials fail like wrong ones
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return response.Unauthorized(c, domain.ErrLoginFailed.Error())
	}

	token, err := h.authService.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		// unknown email and wrong password look the same to the client
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrLoginFailed) {
			return response.Unauthorized(c, domain.ErrLoginFailed.Error())
		}
		return response.FromError(c, err)
	}

	return c.JSON(token)
}

// Logout handles user logout
// @Summary Logout
// @Description Destroy the bearer token. Expired tokens can still be logged out.
// @Tags Auth
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} response.Response
// @Router /users/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	token := middleware.BearerToken(c)
	if token == "" {
		return response.Unauthorized(c, "Access token required")
	}

	if err := h.authService.Logout(c.Context(), token); err != nil {
		return response.FromError(c, err)
	}

	return response.NoContent(c)
}

// Me returns the current session user
// @Summary Get current user
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} response.Response
// @Router /users/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	session := middleware.GetSession(c)
	if session == nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	return c.JSON(fiber.Map{
		"user":  session.User,
		"roles": session.Roles,
	})
}
