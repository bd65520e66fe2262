package repositories

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"orderdesk-api/internal/adapters/persistence/models"
	"orderdesk-api/internal/core/domain"
	"orderdesk-api/internal/pkg/logger"
	"orderdesk-api/internal/pkg/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCRUD_ValidationNamesField(t *testing.T) {
	ctx := context.Background()
	db := testdb.Open(t)
	products := MustCRUDRepository[models.Product](db, ProductDescriptor)
	users := MustCRUDRepository[models.User](db, UserDescriptor)

	_, err := products.Create(ctx, Payload{"name": "tea", "price": -1})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "price must be at least 0")

	_, err = products.Create(ctx, Payload{"price": 1})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "name is required")

	_, err = users.Create(ctx, Payload{"email": "not-an-email", "password": "digest"})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "email must be an email address")

	p, err := products.Create(ctx, Payload{"name": "tea", "price": 0})
	require.NoError(t, err)
	_, _, err = products.UpdateByID(ctx, p.ID, Payload{"name": ""})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestParseID_Range(t *testing.T) {
	_, ok := ParseID(float64(1e20))
	assert.False(t, ok)
	_, ok = ParseID(int64(MaxID) + 1)
	assert.False(t, ok)
	_, ok = ParseID(-3)
	assert.False(t, ok)

	id, ok := ParseID(float64(MaxID))
	assert.True(t, ok)
	assert.Equal(t, uint(MaxID), id)

	_, err := ParseIDs(FieldProductIDs, []any{float64(1e20)})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCRUD_HookRunsInWriteTransaction(t *testing.T) {
	ctx := context.Background()
	db := testdb.Open(t)
	products := MustCRUDRepository[models.Product](db, ProductDescriptor)
	orders := MustCRUDRepository[models.Order](db, OrderDescriptor)

	p1, err := products.Create(ctx, Payload{"name": "p1", "price": 1})
	require.NoError(t, err)
	p2, err := products.Create(ctx, Payload{"name": "p2", "price": 2})
	require.NoError(t, err)

	// the test database has a single connection, so reads must go through tx
	count := func(tx *gorm.DB, order *models.Order, selection map[string][]uint) error {
		var n int64
		if err := tx.Model(&models.Product{}).Where("id IN ?", selection[FieldProductIDs]).Count(&n).Error; err != nil {
			return err
		}
		assert.NotNil(t, selection[FieldMenuIDs])
		order.Price = float64(n)
		return nil
	}

	order, err := orders.CreateWith(ctx, Payload{"productIds": []uint{p1.ID, p2.ID}}, count)
	require.NoError(t, err)
	assert.Equal(t, 2.0, order.Price)

	// ids left out of the payload come from the current join rows
	updated, found, err := orders.UpdateByIDWith(ctx, order.ID, Payload{}, count)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 2.0, updated.Price)

	updated, _, err = orders.UpdateByIDWith(ctx, order.ID, Payload{"productIds": []uint{p2.ID}}, count)
	require.NoError(t, err)
	assert.Equal(t, 1.0, updated.Price)
}

func TestCRUD_HookErrorRollsBack(t *testing.T) {
	ctx := context.Background()
	db := testdb.Open(t)
	products := MustCRUDRepository[models.Product](db, ProductDescriptor)
	orders := MustCRUDRepository[models.Order](db, OrderDescriptor)

	p, err := products.Create(ctx, Payload{"name": "p", "price": 1})
	require.NoError(t, err)
	order, err := orders.Create(ctx, Payload{"productIds": []uint{p.ID}})
	require.NoError(t, err)

	boom := errors.New("boom")
	fail := func(*gorm.DB, *models.Order, map[string][]uint) error { return boom }

	_, _, err = orders.UpdateByIDWith(ctx, order.ID, Payload{"productIds": []uint{}}, fail)
	assert.ErrorIs(t, err, boom)
	ids, err := orders.LinkedIDs(ctx, order.ID, FieldProductIDs)
	require.NoError(t, err)
	assert.Equal(t, []uint{p.ID}, ids)

	_, err = orders.CreateWith(ctx, Payload{}, fail)
	assert.ErrorIs(t, err, boom)
	n, err := orders.Count(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	called := false
	_, found, err := orders.UpdateByIDWith(ctx, 500000, Payload{}, func(*gorm.DB, *models.Order, map[string][]uint) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, found)
	assert.False(t, called)
}

func TestCRUD_StoreErrorHidesDriverText(t *testing.T) {
	menus := MustCRUDRepository[models.Menu](testdb.Open(t), MenuDescriptor).WithLogger(logger.Discard())

	err := menus.storeError(fmt.Errorf("UNIQUE constraint failed: menus.name: %w", gorm.ErrDuplicatedKey))
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.NotContains(t, err.Error(), "menus")
	assert.NotContains(t, err.Error(), "UNIQUE")

	err = menus.storeError(fmt.Errorf("FOREIGN KEY constraint failed: %w", gorm.ErrForeignKeyViolated))
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.NotContains(t, err.Error(), "FOREIGN KEY")

	other := errors.New("disk full")
	assert.Equal(t, other, menus.storeError(other))
}

func TestPricing_WithTxReadsUncommittedRows(t *testing.T) {
	ctx := context.Background()
	db := testdb.Open(t)
	repo := NewPricingRepository(db)

	err := db.Transaction(func(tx *gorm.DB) error {
		product := &models.Product{Name: "draft", Price: 4}
		require.NoError(t, tx.Create(product).Error)

		products, err := repo.WithTx(tx).Products(ctx, []uint{product.ID})
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, 4.0, products[0].Price)
		return errors.New("rollback")
	})
	require.Error(t, err)

	n, err := MustCRUDRepository[models.Product](db, ProductDescriptor).Count(ctx, Filter{})
	require.NoError(t, err)
	assert.Zero(t, n)
}
