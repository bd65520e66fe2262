package repositories

import (
	"context"
	"errors"

	"orderdesk-api/internal/adapters/persistence/models"
	"orderdesk-api/internal/core/domain"

	"gorm.io/gorm"
)

// userRepository implements UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// GetByEmail gets a user by email, password digest included
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// RoleNames gets the names of the roles mapped to a user
func (r *userRepository) RoleNames(ctx context.Context, userID uint) ([]string, error) {
	names := make([]string, 0)
	err := r.db.WithContext(ctx).
		Table("roles").
		Joins("JOIN "+models.TableRoleMappings+" rm ON rm.role_id = roles.id").
		Where("rm.user_id = ?", userID).
		Order("roles.name").
		Pluck("roles.name", &names).Error
	return names, err
}
