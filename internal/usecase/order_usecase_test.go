package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vandien284/scenta-sub000/internal/blob"
	"github.com/vandien284/scenta-sub000/internal/domain"
	"github.com/vandien284/scenta-sub000/internal/repository"
)

func newOrderEnv(t *testing.T) (domain.OrderUseCase, domain.OrderRepository, domain.ProductRepository) {
	t.Helper()
	logger := testLogger()

	productStore := blob.NewMemoryStore()
	require.NoError(t, productStore.Save(context.Background(), []domain.Product{
		{ID: 1, Name: "Cedar Candle", Price: decimal.NewFromInt(90000), Quantity: 10, Sold: 5},
	}))
	products := repository.NewBlobProductRepository(productStore, logger)
	orders := repository.NewBlobOrderRepository(blob.NewMemoryStore(), logger)
	return NewOrderUseCase(orders, products, logger), orders, products
}

func storedOrder() *domain.Order {
	return &domain.Order{
		ID:             "order-1",
		Code:           "SC-20250101-AB12",
		CreatedAt:      time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC),
		CartIdentifier: "cart-1",
		PaymentMethod:  domain.PaymentMethodCOD,
		ShippingFee:    decimal.NewFromInt(30000),
		Subtotal:       decimal.NewFromInt(180000),
		Total:          decimal.NewFromInt(210000),
		Customer: domain.Customer{
			FullName: "Tran Thi B", Phone: "0912", Email: "buyer@example.com",
			AddressLine: "12 Hang Gai", Country: "Vietnam",
		},
		Items: []domain.OrderItem{{
			ProductID: 1, Name: "Cedar Candle", Quantity: 2,
			UnitPrice: decimal.NewFromInt(90000), Subtotal: decimal.NewFromInt(180000),
		}},
		Status:         domain.StatusPending,
		VerificationID: "v-1",
	}
}

func TestLookupRequiresMatchingEmail(t *testing.T) {
	ctx := context.Background()
	uc, orders, _ := newOrderEnv(t)
	_, err := orders.Append(ctx, storedOrder())
	require.NoError(t, err)

	view, err := uc.Lookup(ctx, "sc-20250101-ab12", "BUYER@example.COM")
	require.NoError(t, err)
	assert.Equal(t, "SC-20250101-AB12", view.Code)

	// A valid code with the wrong email reads as not found.
	_, err = uc.Lookup(ctx, "SC-20250101-AB12", "someone@else.com")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	_, err = uc.Lookup(ctx, "", "buyer@example.com")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestUpdateStatusNoOpWhenUnchanged(t *testing.T) {
	ctx := context.Background()
	uc, orders, _ := newOrderEnv(t)
	_, err := orders.Append(ctx, storedOrder())
	require.NoError(t, err)

	view, err := uc.UpdateStatus(ctx, "order-1", domain.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, view.Status)
}

func TestUpdateStatusConfirm(t *testing.T) {
	ctx := context.Background()
	uc, orders, _ := newOrderEnv(t)
	_, err := orders.Append(ctx, storedOrder())
	require.NoError(t, err)

	view, err := uc.UpdateStatus(ctx, "order-1", domain.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, view.Status)

	stored, err := orders.FindByID(ctx, "order-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, stored.Status)
}

func TestUpdateStatusCancelRestocks(t *testing.T) {
	ctx := context.Background()
	uc, orders, products := newOrderEnv(t)
	_, err := orders.Append(ctx, storedOrder())
	require.NoError(t, err)

	before, _ := products.GetAvailability(ctx, 1)
	require.Equal(t, 5, before.Available)

	_, err = uc.UpdateStatus(ctx, "order-1", domain.StatusCancelled)
	require.NoError(t, err)

	after, _ := products.GetAvailability(ctx, 1)
	assert.Equal(t, 7, after.Available)

	// A cancelled order stays cancelled.
	_, err = uc.UpdateStatus(ctx, "order-1", domain.StatusConfirmed)
	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newOrderEnv(t)

	_, err := uc.UpdateStatus(ctx, "order-1", domain.OrderStatus("shipped"))
	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}
