package repositories

import (
	"context"
	"fmt"

	"orderdesk-api/internal/adapters/persistence/models"
	"orderdesk-api/internal/core/domain"
	"orderdesk-api/internal/core/pricing"

	"gorm.io/gorm"
)

// pricingRepository implements PricingRepository interface
type pricingRepository struct {
	db *gorm.DB
}

// NewPricingRepository creates a new pricing repository
func NewPricingRepository(db *gorm.DB) PricingRepository {
	return &pricingRepository{db: db}
}

// WithTx returns a repository reading through tx
func (r *pricingRepository) WithTx(tx *gorm.DB) PricingRepository {
	return &pricingRepository{db: tx}
}

type promotionLink struct {
	OwnerID uint
	Value   float64
}

type menuLink struct {
	MenuID    uint
	ProductID uint
}

// Products loads the selected products in selection order
func (r *pricingRepository) Products(ctx context.Context, ids []uint) ([]pricing.Product, error) {
	if len(ids) == 0 {
		return []pricing.Product{}, nil
	}

	byID, err := r.products(ctx, unique(ids))
	if err != nil {
		return nil, err
	}

	out := make([]pricing.Product, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: unknown product %d", domain.ErrValidation, id)
		}
		out = append(out, p)
	}
	return out, nil
}

// Menus loads the selected menus with their products in selection order
func (r *pricingRepository) Menus(ctx context.Context, ids []uint) ([]pricing.Menu, error) {
	if len(ids) == 0 {
		return []pricing.Menu{}, nil
	}
	menuIDs := unique(ids)

	var found []uint
	if err := r.db.WithContext(ctx).Model(&models.Menu{}).Where("id IN ?", menuIDs).Pluck("id", &found).Error; err != nil {
		return nil, err
	}
	known := make(map[uint]bool, len(found))
	for _, id := range found {
		known[id] = true
	}

	var links []menuLink
	if err := r.db.WithContext(ctx).
		Table(models.TableProductMenus).
		Select("menu_id, product_id").
		Where("menu_id IN ?", menuIDs).
		Order("menu_id, product_id").
		Scan(&links).Error; err != nil {
		return nil, err
	}

	productIDs := make([]uint, 0, len(links))
	for _, l := range links {
		productIDs = append(productIDs, l.ProductID)
	}
	products, err := r.products(ctx, unique(productIDs))
	if err != nil {
		return nil, err
	}

	promos, err := r.promotions(ctx, models.TablePromotionMenus, "menu_id", menuIDs)
	if err != nil {
		return nil, err
	}

	content := make(map[uint][]pricing.Product, len(menuIDs))
	for _, l := range links {
		content[l.MenuID] = append(content[l.MenuID], products[l.ProductID])
	}

	out := make([]pricing.Menu, 0, len(ids))
	for _, id := range ids {
		if !known[id] {
			return nil, fmt.Errorf("%w: unknown menu %d", domain.ErrValidation, id)
		}
		out = append(out, pricing.Menu{
			ID:         id,
			Promotions: promos[id],
			Products:   content[id],
		})
	}
	return out, nil
}

func (r *pricingRepository) products(ctx context.Context, ids []uint) (map[uint]pricing.Product, error) {
	byID := make(map[uint]pricing.Product, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}

	var rows []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	promos, err := r.promotions(ctx, models.TablePromotionProducts, "product_id", ids)
	if err != nil {
		return nil, err
	}

	for _, p := range rows {
		byID[p.ID] = pricing.Product{ID: p.ID, Price: p.Price, Promotions: promos[p.ID]}
	}
	return byID, nil
}

// promotions gets the promotion values linked to each owner through a join table
func (r *pricingRepository) promotions(ctx context.Context, joinTable, ownerKey string, ids []uint) (map[uint][]float64, error) {
	var links []promotionLink
	err := r.db.WithContext(ctx).
		Table(joinTable+" AS link").
		Select("link."+ownerKey+" AS owner_id, promotions.value AS value").
		Joins("JOIN promotions ON promotions.id = link.promotion_id").
		Where("link."+ownerKey+" IN ?", ids).
		Order("link.promotion_id").
		Scan(&links).Error
	if err != nil {
		return nil, err
	}

	out := make(map[uint][]float64, len(ids))
	for _, l := range links {
		out[l.OwnerID] = append(out[l.OwnerID], l.Value)
	}
	return out, nil
}

func unique(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
