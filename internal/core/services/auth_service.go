package services

import (
	"context"
	"fmt"
	"time"

	"orderdesk-api/internal/adapters/persistence/models"
	"orderdesk-api/internal/adapters/persistence/repositories"
	"orderdesk-api/internal/core/domain"
	"orderdesk-api/internal/pkg/metrics"
	"orderdesk-api/internal/pkg/password"

	"github.com/sirupsen/logrus"
)

// Session is an authenticated request context
type Session struct {
	Token *models.AccessToken
	User  *models.User
	Roles []string
}

// UserID returns the id of the session owner
func (s *Session) UserID() uint {
	return s.User.ID
}

// HasRole reports whether the session owner holds role
func (s *Session) HasRole(role string) bool {
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the session owner holds the admin role
func (s *Session) IsAdmin() bool {
	return s.HasRole(domain.RoleAdmin)
}

// AuthService handles authentication business logic
type AuthService struct {
	users  *UserService
	tokens repositories.TokenStore
	ttl    time.Duration
	log    logrus.FieldLogger
}

// NewAuthService creates a new auth service. A zero ttl falls back to
// domain.SessionTTL.
func NewAuthService(
	users *UserService,
	tokens repositories.TokenStore,
	ttl time.Duration,
	log logrus.FieldLogger,
) *AuthService {
	if ttl <= 0 {
		ttl = domain.SessionTTL
	}
	return &AuthService{
		users:  users,
		tokens: tokens,
		ttl:    ttl,
		log:    log,
	}
}

// Login checks credentials and issues an access token
func (s *AuthService) Login(ctx context.Context, email, plain string) (*models.AccessToken, error) {
	user, err := s.users.FetchByEmail(ctx, email, false)
	if err != nil {
		metrics.RecordLogin(false)
		return nil, err
	}

	if !password.Verify(plain, user.Password) {
		metrics.RecordLogin(false)
		s.log.WithField("userId", user.ID).Warn("login rejected")
		return nil, domain.ErrLoginFailed
	}

	token, err := s.tokens.Create(ctx, user.ID, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	metrics.RecordLogin(true)
	s.log.WithField("userId", user.ID).Info("user logged in")
	return token, nil
}

// Logout destroys a token. Unknown tokens fail with domain.ErrLogoutFailed;
// an expired token can still be logged out.
func (s *AuthService) Logout(ctx context.Context, tokenID string) error {
	exists, err := s.tokens.Exists(ctx, tokenID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrLogoutFailed
	}
	return s.tokens.DestroyByID(ctx, tokenID)
}

// Authenticate resolves a bearer token to its session
func (s *AuthService) Authenticate(ctx context.Context, tokenID string) (*Session, error) {
	token, err := s.tokens.Resolve(ctx, tokenID)
	if err != nil {
		return nil, err
	}

	user, found, err := s.users.FetchByID(ctx, token.UserID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrUnauthorized
	}

	roles, err := s.users.RolesOf(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &Session{Token: token, User: user, Roles: roles}, nil
}

// Authorize allows admins and the owner of a resource. A nil owner is
// only reachable by admins.
func (s *AuthService) Authorize(session *Session, ownerID *uint) error {
	if session == nil {
		return domain.ErrUnauthorized
	}
	if session.IsAdmin() {
		return nil
	}
	if ownerID != nil && *ownerID == session.UserID() {
		return nil
	}
	return domain.ErrForbidden
}
