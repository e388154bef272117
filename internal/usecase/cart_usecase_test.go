package usecase

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vandien284/scenta-sub000/internal/blob"
	"github.com/vandien284/scenta-sub000/internal/domain"
	"github.com/vandien284/scenta-sub000/internal/repository"
)

func newCartEnv(t *testing.T, catalog []domain.Product) (domain.CartUseCase, domain.CartRepository) {
	t.Helper()
	logger := testLogger()

	productStore := blob.NewMemoryStore()
	require.NoError(t, productStore.Save(context.Background(), catalog))
	products := repository.NewBlobProductRepository(productStore, logger)
	carts := repository.NewBlobCartRepository(blob.NewMemoryStore(), logger)
	return NewCartUseCase(carts, products, logger), carts
}

func TestAddItemMergesQuantities(t *testing.T) {
	ctx := context.Background()
	uc, _ := newCartEnv(t, defaultCatalog())

	_, err := uc.AddItem(ctx, "cart-1", 1, 2)
	require.NoError(t, err)

	snapshot, err := uc.AddItem(ctx, "cart-1", 1, 3)
	require.NoError(t, err)
	require.Len(t, snapshot.Items, 1)
	assert.Equal(t, 5, snapshot.Items[0].Quantity)
	assert.Equal(t, "Cedar Candle", snapshot.Items[0].Name)
}

func TestAddItemRejectsExceedingStock(t *testing.T) {
	ctx := context.Background()
	uc, _ := newCartEnv(t, defaultCatalog())

	_, err := uc.AddItem(ctx, "cart-1", 2, 4)
	require.NoError(t, err)

	// 4 in cart + 2 more > 5 available.
	_, err = uc.AddItem(ctx, "cart-1", 2, 2)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = uc.AddItem(ctx, "cart-1", 3, 1)
	assert.ErrorIs(t, err, domain.ErrOutOfStock)

	_, err = uc.AddItem(ctx, "cart-1", 404, 1)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestUpdateItemQuantityZeroRemovesLine(t *testing.T) {
	ctx := context.Background()
	uc, _ := newCartEnv(t, defaultCatalog())

	_, err := uc.AddItem(ctx, "cart-1", 1, 2)
	require.NoError(t, err)

	snapshot, err := uc.UpdateItemQuantity(ctx, "cart-1", 1, 0)
	require.NoError(t, err)
	assert.True(t, snapshot.IsEmpty())

	_, err = uc.UpdateItemQuantity(ctx, "cart-1", 1, 1)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestGetCartReconcilesAgainstCatalog(t *testing.T) {
	ctx := context.Background()
	uc, carts := newCartEnv(t, defaultCatalog())

	// Seed a drifted snapshot directly: stale price, over-quantity, a
	// vanished product and a sold-out one.
	_, err := carts.Mutate(ctx, "cart-1", func(s *domain.CartSnapshot) {
		s.Items = []domain.CartItem{
			{ProductID: 1, Name: "Old Name", Price: decimal.NewFromInt(10), Quantity: 50},
			{ProductID: 3, Name: "Sold Out Soap", Quantity: 1},
			{ProductID: 77, Name: "Ghost", Quantity: 1},
		}
	})
	require.NoError(t, err)

	snapshot, err := uc.GetCart(ctx, "cart-1")
	require.NoError(t, err)
	require.Len(t, snapshot.Items, 1)

	item := snapshot.Items[0]
	assert.Equal(t, int64(1), item.ProductID)
	assert.Equal(t, "Cedar Candle", item.Name)
	assert.True(t, decimal.NewFromInt(90000).Equal(item.Price))
	assert.Equal(t, 8, item.Quantity) // clamped to availability

	// Reconciliation is read-time only; the stored snapshot is untouched.
	stored, err := carts.GetSnapshot(ctx, "cart-1")
	require.NoError(t, err)
	assert.Len(t, stored.Items, 3)
}

func TestClearRemovesCart(t *testing.T) {
	ctx := context.Background()
	uc, carts := newCartEnv(t, defaultCatalog())

	_, err := uc.AddItem(ctx, "cart-1", 1, 1)
	require.NoError(t, err)

	require.NoError(t, uc.Clear(ctx, "cart-1"))

	stored, err := carts.GetSnapshot(ctx, "cart-1")
	require.NoError(t, err)
	assert.True(t, stored.IsEmpty())
}
