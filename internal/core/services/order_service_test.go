package services

import (
	"context"
	"testing"

	"orderdesk-api/internal/adapters/persistence/repositories"
	"orderdesk-api/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	productID uint
	menuID    uint
}

// seedCatalog creates a 10.0 product and a menu holding it, both promoted by 42%
func seedCatalog(t *testing.T, svc *Services) fixture {
	t.Helper()
	ctx := context.Background()

	promo, err := svc.Promotions.Create(ctx, repositories.Payload{"name": "spring", "value": 42})
	require.NoError(t, err)
	product, err := svc.Products.Create(ctx, repositories.Payload{"name": "pizza", "price": 10, "promotionIds": []uint{promo.ID}})
	require.NoError(t, err)
	menu, err := svc.Menus.Create(ctx, repositories.Payload{"name": "lunch", "productIds": []uint{product.ID}, "promotionIds": []uint{promo.ID}})
	require.NoError(t, err)

	return fixture{productID: product.ID, menuID: menu.ID}
}

func TestOrderService_CreateComputesPrice(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t)
	f := seedCatalog(t, svc)

	order, err := svc.Orders.Create(ctx, repositories.Payload{
		"price":      1,
		"productIds": []uint{f.productID},
		"menuIds":    []uint{f.menuID},
	})
	require.NoError(t, err)
	assert.InDelta(t, 9.164, order.Price, 1e-9)

	stored, found, err := svc.Orders.FetchByID(ctx, order.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.InDelta(t, 9.164, stored.Price, 1e-9)
}

func TestOrderService_EmptySelectionIsFree(t *testing.T) {
	svc := newServices(t)

	order, err := svc.Orders.Create(context.Background(), repositories.Payload{"price": 99})
	require.NoError(t, err)
	assert.Zero(t, order.Price)
}

func TestOrderService_PromotionAboveHundredGoesNegative(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t)

	promo, err := svc.Promotions.Create(ctx, repositories.Payload{"name": "too generous", "value": 150})
	require.NoError(t, err)
	product, err := svc.Products.Create(ctx, repositories.Payload{"name": "gift", "price": 10, "promotionIds": []uint{promo.ID}})
	require.NoError(t, err)

	order, err := svc.Orders.Create(ctx, repositories.Payload{"productIds": []uint{product.ID}})
	require.NoError(t, err)
	assert.InDelta(t, -5.0, order.Price, 1e-9)
}

func TestOrderService_CreateWithUnknownProduct(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t)

	_, err := svc.Orders.Create(ctx, repositories.Payload{"productIds": []uint{404}})
	assert.ErrorIs(t, err, domain.ErrValidation)

	n, err := svc.Orders.Count(ctx, repositories.Filter{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOrderService_UpdateRepricesNewSelection(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t)
	f := seedCatalog(t, svc)

	order, err := svc.Orders.Create(ctx, repositories.Payload{"productIds": []uint{f.productID}})
	require.NoError(t, err)
	assert.InDelta(t, 5.8, order.Price, 1e-9)

	updated, found, err := svc.Orders.UpdateByID(ctx, order.ID, repositories.Payload{"menuIds": []uint{f.menuID}, "price": 0})
	require.NoError(t, err)
	require.True(t, found)
	assert.InDelta(t, 9.164, updated.Price, 1e-9, "attached products are kept and the menu is added")

	updated, _, err = svc.Orders.UpdateByID(ctx, order.ID, repositories.Payload{"productIds": []uint{}})
	require.NoError(t, err)
	assert.InDelta(t, 3.364, updated.Price, 1e-9)
}

func TestOrderService_UpdateWithoutSelectionRepricesAttached(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t)
	f := seedCatalog(t, svc)

	order, err := svc.Orders.Create(ctx, repositories.Payload{"productIds": []uint{f.productID}})
	require.NoError(t, err)

	_, _, err = svc.Products.UpdateByID(ctx, f.productID, repositories.Payload{"price": 20})
	require.NoError(t, err)

	updated, found, err := svc.Orders.UpdateByID(ctx, order.ID, repositories.Payload{})
	require.NoError(t, err)
	require.True(t, found)
	assert.InDelta(t, 11.6, updated.Price, 1e-9)
}

func TestOrderService_UpdateAbsent(t *testing.T) {
	svc := newServices(t)

	order, found, err := svc.Orders.UpdateByID(context.Background(), 500000, repositories.Payload{"productIds": []uint{1}})
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, order)
}

func TestOrderService_OwnerIsKept(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t)
	userID := createUser(t, svc, "owner@example.com", "secret")

	order, err := svc.Orders.Create(ctx, repositories.Payload{"userId": userID})
	require.NoError(t, err)
	require.NotNil(t, order.UserID)
	assert.Equal(t, userID, *order.UserID)

	owned, err := svc.Orders.Count(ctx, repositories.Filter{Where: repositories.Payload{"userId": userID}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), owned)
}

func TestOrderService_FailedUpdateKeepsPriceAndSelection(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t)
	f := seedCatalog(t, svc)

	order, err := svc.Orders.Create(ctx, repositories.Payload{"productIds": []uint{f.productID}})
	require.NoError(t, err)

	_, _, err = svc.Orders.UpdateByID(ctx, order.ID, repositories.Payload{"productIds": []uint{f.productID, 404}})
	assert.ErrorIs(t, err, domain.ErrValidation)

	stored, found, err := svc.Orders.FetchByID(ctx, order.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.InDelta(t, 5.8, stored.Price, 1e-9)

	ids, err := svc.Orders.LinkedIDs(ctx, order.ID, repositories.FieldProductIDs)
	require.NoError(t, err)
	assert.Equal(t, []uint{f.productID}, ids)
}

func TestOrderService_PriceMatchesCatalogAtWrite(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t)
	f := seedCatalog(t, svc)

	order, err := svc.Orders.Create(ctx, repositories.Payload{"menuIds": []uint{f.menuID}})
	require.NoError(t, err)

	total, err := svc.Orders.Price(ctx, nil, []uint{f.menuID})
	require.NoError(t, err)
	assert.InDelta(t, total, order.Price, 1e-9)
}
