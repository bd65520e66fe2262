package services

import (
	"context"

	"orderdesk-api/internal/adapters/persistence/models"
	"orderdesk-api/internal/adapters/persistence/repositories"
)

// Note: UserService implementation is in user_service.go
// Note: OrderService implementation is in order_service.go
// Note: AuthService implementation is in auth_service.go

// CRUDService defines the resource operations served by the HTTP layer
type CRUDService[T any] interface {
	Create(ctx context.Context, data repositories.Payload) (*T, error)
	FetchAll(ctx context.Context, filter repositories.Filter) ([]*T, error)
	FetchByID(ctx context.Context, id uint) (*T, bool, error)
	UpdateByID(ctx context.Context, id uint, data repositories.Payload) (*T, bool, error)
	DestroyByID(ctx context.Context, id uint) (bool, error)
	Exists(ctx context.Context, criteria repositories.Payload) (bool, error)
	Count(ctx context.Context, filter repositories.Filter) (int64, error)
}

var (
	_ CRUDService[models.Role]      = (*repositories.CRUDRepository[models.Role])(nil)
	_ CRUDService[models.Product]   = (*repositories.CRUDRepository[models.Product])(nil)
	_ CRUDService[models.Menu]      = (*repositories.CRUDRepository[models.Menu])(nil)
	_ CRUDService[models.Promotion] = (*repositories.CRUDRepository[models.Promotion])(nil)
	_ CRUDService[models.User]      = (*UserService)(nil)
	_ CRUDService[models.Order]     = (*OrderService)(nil)
)
