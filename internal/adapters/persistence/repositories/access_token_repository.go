package repositories

import (
	"context"
	"errors"
	"time"

	"orderdesk-api/internal/adapters/persistence/models"
	"orderdesk-api/internal/core/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// accessTokenRepository implements TokenStore on the access_tokens table
type accessTokenRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewAccessTokenRepository creates a new database backed token store
func NewAccessTokenRepository(db *gorm.DB) TokenStore {
	return &accessTokenRepository{db: db, now: time.Now}
}

// Create persists a new token with a random id
func (r *accessTokenRepository) Create(ctx context.Context, userID uint, ttl time.Duration) (*models.AccessToken, error) {
	token := &models.AccessToken{
		ID:        uuid.New().String(),
		TTL:       int64(ttl / time.Second),
		UserID:    userID,
		CreatedAt: r.now(),
	}
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		return nil, err
	}
	return token, nil
}

// Exists checks if a token row is present
func (r *accessTokenRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.AccessToken{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// DestroyByID deletes a token
func (r *accessTokenRepository) DestroyByID(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.AccessToken{}).Error
}

// Resolve gets a token that has not expired yet
func (r *accessTokenRepository) Resolve(ctx context.Context, id string) (*models.AccessToken, error) {
	if id == "" {
		return nil, domain.ErrUnauthorized
	}

	var token models.AccessToken
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}

	if token.IsExpired(r.now()) {
		return nil, domain.ErrUnauthorized
	}
	return &token, nil
}
