package service

import (
	"context"
	"testing"

	"kaiserhaus-checkout-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStockEnv() (*StockService, *fakeProductRepo) {
	products := newFakeProductRepo()
	products.put("pretzel", model.Product{Title: "Pretzel clásico", Price: 4.50, Quantity: 7, Active: true})
	products.put("retired", model.Product{Title: "Bock de invierno", Price: 12.00, Quantity: 3, Active: false})
	return NewStockService(products), products
}

func TestAddStock(t *testing.T) {
	svc, products := newStockEnv()
	ctx := context.Background()

	prod, err := svc.AddStock(ctx, model.ParseProductRef("pretzel"), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(12), prod.Quantity)
	assert.Equal(t, int64(12), products.quantity("pretzel"))

	_, err = svc.AddStock(ctx, model.ParseProductRef("pretzel"), 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = svc.AddStock(ctx, model.ParseProductRef("pretzel"), -3)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestRemoveStock(t *testing.T) {
	svc, products := newStockEnv()
	ctx := context.Background()

	prod, err := svc.RemoveStock(ctx, model.ParseProductRef("pretzel"), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(0), prod.Quantity)

	// Sin stock suficiente no se muta nada.
	_, err = svc.RemoveStock(ctx, model.ParseProductRef("pretzel"), 1)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, int64(0), products.quantity("pretzel"))
}

func TestAdjustStock_UnknownOrInactiveProduct(t *testing.T) {
	svc, _ := newStockEnv()
	ctx := context.Background()

	_, err := svc.AddStock(ctx, model.ParseProductRef("fantasma"), 1)
	assert.ErrorIs(t, err, ErrProductUnavailable)

	_, err = svc.RemoveStock(ctx, model.ParseProductRef("retired"), 1)
	assert.ErrorIs(t, err, ErrProductUnavailable)
}

func TestCheckAvailable(t *testing.T) {
	svc, _ := newStockEnv()
	ctx := context.Background()

	ok, err := svc.CheckAvailable(ctx, model.ParseProductRef("pretzel"), 7)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.CheckAvailable(ctx, model.ParseProductRef("pretzel"), 8)
	require.NoError(t, err)
	assert.False(t, ok)

	// Producto desconocido no es error, simplemente no está disponible.
	ok, err = svc.CheckAvailable(ctx, model.ParseProductRef("fantasma"), 1)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.CheckAvailable(ctx, model.ParseProductRef("pretzel"), 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestMigrateStock(t *testing.T) {
	svc, products := newStockEnv()
	ctx := context.Background()

	products.backfilled = 3
	n, err := svc.MigrateStock(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	// Idempotente: la segunda pasada ya no encuentra productos sin quantity.
	n, err = svc.MigrateStock(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}
