package services

import (
	"time"

	"orderdesk-api/internal/adapters/persistence/models"
	"orderdesk-api/internal/adapters/persistence/repositories"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Services groups the resource services served over HTTP
type Services struct {
	Users      *UserService
	Roles      CRUDService[models.Role]
	Products   CRUDService[models.Product]
	Menus      CRUDService[models.Menu]
	Promotions CRUDService[models.Promotion]
	Orders     *OrderService
	Auth       *AuthService
	Seeder     *Seeder
}

// New wires every service on db. Sessions live in tokens for ttl.
func New(db *gorm.DB, tokens repositories.TokenStore, ttl time.Duration, log logrus.FieldLogger) *Services {
	roles := repositories.MustCRUDRepository[models.Role](db, repositories.RoleDescriptor).WithLogger(log)
	users := NewUserService(
		repositories.MustCRUDRepository[models.User](db, repositories.UserDescriptor).WithLogger(log),
		repositories.NewUserRepository(db),
	)
	orders := NewOrderService(
		repositories.MustCRUDRepository[models.Order](db, repositories.OrderDescriptor).WithLogger(log),
		repositories.NewPricingRepository(db),
		log,
	)

	return &Services{
		Users:      users,
		Roles:      roles,
		Products:   repositories.MustCRUDRepository[models.Product](db, repositories.ProductDescriptor).WithLogger(log),
		Menus:      repositories.MustCRUDRepository[models.Menu](db, repositories.MenuDescriptor).WithLogger(log),
		Promotions: repositories.MustCRUDRepository[models.Promotion](db, repositories.PromotionDescriptor).WithLogger(log),
		Orders:     orders,
		Auth:       NewAuthService(users, tokens, ttl, log),
		Seeder:     NewSeeder(roles, users, log),
	}
}
