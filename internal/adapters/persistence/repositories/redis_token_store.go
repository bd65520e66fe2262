package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"orderdesk-api/internal/adapters/persistence/models"
	"orderdesk-api/internal/core/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const tokenKeyPrefix = "access_token:"

// redisTokenStore implements TokenStore on Redis keys that expire with
// the token ttl
type redisTokenStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisTokenStore creates a Redis backed token store
func NewRedisTokenStore(client *redis.Client) TokenStore {
	return &redisTokenStore{client: client, now: time.Now}
}

func (s *redisTokenStore) Create(ctx context.Context, userID uint, ttl time.Duration) (*models.AccessToken, error) {
	token := &models.AccessToken{
		ID:        uuid.New().String(),
		TTL:       int64(ttl / time.Second),
		UserID:    userID,
		CreatedAt: s.now(),
	}
	b, err := json.Marshal(token)
	if err != nil {
		return nil, err
	}
	if err := s.client.Set(ctx, tokenKeyPrefix+token.ID, b, ttl).Err(); err != nil {
		return nil, err
	}
	return token, nil
}

func (s *redisTokenStore) Exists(ctx context.Context, id string) (bool, error) {
	n, err := s.client.Exists(ctx, tokenKeyPrefix+id).Result()
	return n > 0, err
}

func (s *redisTokenStore) DestroyByID(ctx context.Context, id string) error {
	return s.client.Del(ctx, tokenKeyPrefix+id).Err()
}

func (s *redisTokenStore) Resolve(ctx context.Context, id string) (*models.AccessToken, error) {
	if id == "" {
		return nil, domain.ErrUnauthorized
	}

	b, err := s.client.Get(ctx, tokenKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}

	var token models.AccessToken
	if err := json.Unmarshal(b, &token); err != nil {
		return nil, err
	}
	// Redis expiry has second granularity
	if token.IsExpired(s.now()) {
		return nil, domain.ErrUnauthorized
	}
	return &token, nil
}
