package repositories

import (
	"context"
	"time"

	"orderdesk-api/internal/adapters/persistence/models"
	"orderdesk-api/internal/core/pricing"

	"gorm.io/gorm"
)

// TokenStore defines the session token store interface
type TokenStore interface {
	// Create issues a token for userID valid for ttl
	Create(ctx context.Context, userID uint, ttl time.Duration) (*models.AccessToken, error)
	// Exists reports presence only; expiry is not checked
	Exists(ctx context.Context, id string) (bool, error)
	// DestroyByID deletes the token; deleting an absent token is not an error
	DestroyByID(ctx context.Context, id string) error
	// Resolve returns a live token, or domain.ErrUnauthorized when it is
	// absent or expired
	Resolve(ctx context.Context, id string) (*models.AccessToken, error)
}

// UserRepository defines the lookups the CRUD engine does not cover
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	RoleNames(ctx context.Context, userID uint) ([]string, error)
}

// PricingRepository loads the products and menus of an order selection
// together with their promotion values
type PricingRepository interface {
	Products(ctx context.Context, ids []uint) ([]pricing.Product, error)
	Menus(ctx context.Context, ids []uint) ([]pricing.Menu, error)
	// WithTx binds the repository to an open transaction
	WithTx(tx *gorm.DB) PricingRepository
}
