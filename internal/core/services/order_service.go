package services

import (
	"context"

	"orderdesk-api/internal/adapters/persistence/models"
	"orderdesk-api/internal/adapters/persistence/repositories"
	"orderdesk-api/internal/core/pricing"
	"orderdesk-api/internal/pkg/metrics"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// OrderService handles orders. The price of an order is always computed
// from its selection; a client supplied price is ignored.
type OrderService struct {
	*repositories.CRUDRepository[models.Order]
	pricingRepo repositories.PricingRepository
	log         logrus.FieldLogger
}

// NewOrderService creates a new order service
func NewOrderService(
	crud *repositories.CRUDRepository[models.Order],
	pricingRepo repositories.PricingRepository,
	log logrus.FieldLogger,
) *OrderService {
	return &OrderService{
		CRUDRepository: crud,
		pricingRepo:    pricingRepo,
		log:            log,
	}
}

// Create prices the selection and creates the order with its join rows.
// The catalog is read in the insert transaction.
func (s *OrderService) Create(ctx context.Context, data repositories.Payload) (*models.Order, error) {
	order, err := s.CRUDRepository.CreateWith(ctx, data, s.reprice(ctx))
	if err != nil {
		return nil, err
	}

	metrics.RecordOrderPriced("create", order.Price)
	s.log.WithFields(logrus.Fields{"orderId": order.ID, "price": order.Price}).Debug("order created")
	return order, nil
}

// UpdateByID re-prices the order and applies the update. A selection field
// left out of data is priced from the ids currently attached.
func (s *OrderService) UpdateByID(ctx context.Context, id uint, data repositories.Payload) (*models.Order, bool, error) {
	order, found, err := s.CRUDRepository.UpdateByIDWith(ctx, id, data, s.reprice(ctx))
	if err != nil || !found {
		return nil, found, err
	}

	metrics.RecordOrderPriced("update", order.Price)
	s.log.WithFields(logrus.Fields{"orderId": id, "price": order.Price}).Debug("order updated")
	return order, true, nil
}

// Price computes the total of a selection of products and menus
func (s *OrderService) Price(ctx context.Context, productIDs, menuIDs []uint) (float64, error) {
	return price(ctx, s.pricingRepo, productIDs, menuIDs)
}

// reprice sets the order price from the selection it holds after the write
func (s *OrderService) reprice(ctx context.Context) repositories.Hook[models.Order] {
	return func(tx *gorm.DB, order *models.Order, selection map[string][]uint) error {
		total, err := price(ctx, s.pricingRepo.WithTx(tx),
			selection[repositories.FieldProductIDs], selection[repositories.FieldMenuIDs])
		if err != nil {
			return err
		}
		order.Price = total
		return nil
	}
}

func price(ctx context.Context, repo repositories.PricingRepository, productIDs, menuIDs []uint) (float64, error) {
	products, err := repo.Products(ctx, productIDs)
	if err != nil {
		return 0, err
	}
	menus, err := repo.Menus(ctx, menuIDs)
	if err != nil {
		return 0, err
	}
	return pricing.Total(products, menus), nil
}
