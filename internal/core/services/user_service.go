package services

import (
	"context"

	"orderdesk-api/internal/adapters/persistence/models"
	"orderdesk-api/internal/adapters/persistence/repositories"
	"orderdesk-api/internal/pkg/password"
)

// UserService handles user management business logic.
// Passwords are hashed on the way in and stripped on the way out.
type UserService struct {
	*repositories.CRUDRepository[models.User]
	userRepo repositories.UserRepository
	cost     int
}

// NewUserService creates a new user service
func NewUserService(
	crud *repositories.CRUDRepository[models.User],
	userRepo repositories.UserRepository,
) *UserService {
	return &UserService{
		CRUDRepository: crud,
		userRepo:       userRepo,
		cost:           password.DefaultCost,
	}
}

// SetHashCost changes the bcrypt cost used for new digests
func (s *UserService) SetHashCost(cost int) {
	s.cost = cost
}

// Create creates a user, hashing a textual password first
func (s *UserService) Create(ctx context.Context, data repositories.Payload) (*models.User, error) {
	data, err := s.hashPassword(data)
	if err != nil {
		return nil, err
	}
	user, err := s.CRUDRepository.Create(ctx, data)
	if err != nil {
		return nil, err
	}
	return hidePassword(user), nil
}

// FetchAll lists users without their passwords
func (s *UserService) FetchAll(ctx context.Context, filter repositories.Filter) ([]*models.User, error) {
	users, err := s.CRUDRepository.FetchAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		hidePassword(u)
	}
	return users, nil
}

// FetchByID gets a user without its password
func (s *UserService) FetchByID(ctx context.Context, id uint) (*models.User, bool, error) {
	user, found, err := s.CRUDRepository.FetchByID(ctx, id)
	return hidePassword(user), found, err
}

// UpdateByID updates a user, hashing a textual password first
func (s *UserService) UpdateByID(ctx context.Context, id uint, data repositories.Payload) (*models.User, bool, error) {
	data, err := s.hashPassword(data)
	if err != nil {
		return nil, false, err
	}
	user, found, err := s.CRUDRepository.UpdateByID(ctx, id, data)
	return hidePassword(user), found, err
}

// FetchByEmail gets a user by email. With visibility false the full record
// is returned, password digest included; that form never leaves the process.
func (s *UserService) FetchByEmail(ctx context.Context, email string, visibility bool) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if visibility {
		hidePassword(user)
	}
	return user, nil
}

// RolesOf returns the role names of a user
func (s *UserService) RolesOf(ctx context.Context, userID uint) ([]string, error) {
	return s.userRepo.RoleNames(ctx, userID)
}

// hashPassword returns a copy of data with a string password replaced by its
// digest. Absent or non-string passwords pass through.
func (s *UserService) hashPassword(data repositories.Payload) (repositories.Payload, error) {
	plain, ok := data["password"].(string)
	if !ok {
		return data, nil
	}
	digest, err := password.HashWithCost(plain, s.cost)
	if err != nil {
		return nil, err
	}

	out := make(repositories.Payload, len(data))
	for k, v := range data {
		out[k] = v
	}
	out["password"] = digest
	return out, nil
}

func hidePassword(user *models.User) *models.User {
	if user != nil {
		user.Password = ""
	}
	return user
}
