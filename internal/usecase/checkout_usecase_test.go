package usecase

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vandien284/scenta-sub000/internal/blob"
	"github.com/vandien284/scenta-sub000/internal/domain"
	"github.com/vandien284/scenta-sub000/internal/repository"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type checkoutEnv struct {
	products      domain.ProductRepository
	carts         domain.CartRepository
	orders        domain.OrderRepository
	verifications domain.VerificationRepository
	uc            domain.CheckoutUseCase
}

func newCheckoutEnv(t *testing.T, catalog []domain.Product) *checkoutEnv {
	t.Helper()
	logger := testLogger()

	productStore := blob.NewMemoryStore()
	require.NoError(t, productStore.Save(context.Background(), catalog))

	env := &checkoutEnv{
		products:      repository.NewBlobProductRepository(productStore, logger),
		carts:         repository.NewBlobCartRepository(blob.NewMemoryStore(), logger),
		orders:        repository.NewBlobOrderRepository(blob.NewMemoryStore(), logger),
		verifications: repository.NewBlobVerificationRepository(blob.NewMemoryStore(), logger),
	}
	env.uc = NewCheckoutUseCase(env.products, env.carts, env.orders, env.verifications, logger)
	return env
}

// verifiedRecord walks a record through the full verify flow and returns its id.
func (env *checkoutEnv) verifiedRecord(t *testing.T, email string) string {
	t.Helper()
	record, code, err := env.verifications.CreateRecord(context.Background(), email)
	require.NoError(t, err)
	_, err = env.verifications.Verify(context.Background(), record.ID, code)
	require.NoError(t, err)
	return record.ID
}

func (env *checkoutEnv) fillCart(t *testing.T, identifier string, items ...domain.CartItem) {
	t.Helper()
	_, err := env.carts.Mutate(context.Background(), identifier, func(s *domain.CartSnapshot) {
		s.Items = items
	})
	require.NoError(t, err)
}

func defaultCatalog() []domain.Product {
	return []domain.Product{
		{ID: 1, Name: "Cedar Candle", URL: "/p/cedar", Price: decimal.NewFromInt(90000), Quantity: 10, Sold: 2},
		{ID: 2, Name: "Rose Diffuser", URL: "/p/rose", Price: decimal.NewFromInt(150000), Quantity: 5, Sold: 0},
		{ID: 3, Name: "Sold Out Soap", URL: "/p/soap", Price: decimal.NewFromInt(40000), Quantity: 3, Sold: 3},
	}
}

func validRequest(verificationID, cartIdentifier string, selected ...int64) *domain.CheckoutRequest {
	return &domain.CheckoutRequest{
		VerificationID: verificationID,
		CartIdentifier: cartIdentifier,
		PaymentMethod:  domain.PaymentMethodCOD,
		Customer: domain.Customer{
			FullName:    "Tran Thi B",
			Phone:       "+84 912 345 678",
			Email:       "Buyer@Example.com",
			AddressLine: "12 Hang Gai",
			Country:     "Việt Nam",
		},
		SelectedProductIDs: selected,
	}
}

func TestCheckoutHappyPath(t *testing.T) {
	ctx := context.Background()
	env := newCheckoutEnv(t, defaultCatalog())
	verificationID := env.verifiedRecord(t, "buyer@example.com")
	env.fillCart(t, "cart-1",
		domain.CartItem{ProductID: 1, Name: "Cedar Candle", Price: decimal.NewFromInt(90000), Quantity: 2},
		domain.CartItem{ProductID: 2, Name: "Rose Diffuser", Price: decimal.NewFromInt(150000), Quantity: 1},
	)

	view, err := env.uc.Checkout(ctx, validRequest(verificationID, "cart-1", 1, 2))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, view.Status)
	assert.Regexp(t, `^SC-\d{8}-[A-Z0-9]{4}$`, view.Code)
	assert.Len(t, view.Items, 2)

	// subtotal = 2*90000 + 1*150000, fee = 30000 for Việt Nam.
	assert.True(t, decimal.NewFromInt(330000).Equal(view.Subtotal), "subtotal %s", view.Subtotal)
	assert.True(t, decimal.NewFromInt(30000).Equal(view.ShippingFee), "fee %s", view.ShippingFee)
	assert.True(t, view.Total.Equal(view.Subtotal.Add(view.ShippingFee)))
	assert.Equal(t, "buyer@example.com", view.Customer.Email)

	// Stock is reserved.
	a, _ := env.products.GetAvailability(ctx, 1)
	b, _ := env.products.GetAvailability(ctx, 2)
	assert.Equal(t, 6, a.Available)
	assert.Equal(t, 4, b.Available)

	// The cart is fully consumed.
	cart, err := env.carts.GetSnapshot(ctx, "cart-1")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())

	// The verification record is consumed.
	_, err = env.verifications.EnsureValid(ctx, verificationID)
	assert.ErrorIs(t, err, domain.ErrVerificationConsumed)

	// And the order is durably findable by code.
	stored, err := env.orders.FindByCode(ctx, view.Code)
	require.NoError(t, err)
	assert.Equal(t, view.ID, stored.ID)
}

func TestCheckoutKeepsUnselectedItems(t *testing.T) {
	ctx := context.Background()
	env := newCheckoutEnv(t, defaultCatalog())
	verificationID := env.verifiedRecord(t, "buyer@example.com")
	env.fillCart(t, "cart-1",
		domain.CartItem{ProductID: 1, Quantity: 2},
		domain.CartItem{ProductID: 2, Quantity: 3},
	)

	view, err := env.uc.Checkout(ctx, validRequest(verificationID, "cart-1", 1))
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, int64(1), view.Items[0].ProductID)

	// Non-selected items survive with their original quantities.
	cart, err := env.carts.GetSnapshot(ctx, "cart-1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(2), cart.Items[0].ProductID)
	assert.Equal(t, 3, cart.Items[0].Quantity)

	// Only the ordered product's stock moved.
	b, _ := env.products.GetAvailability(ctx, 2)
	assert.Equal(t, 5, b.Available)
}

func TestCheckoutSnapshotsCurrentPrice(t *testing.T) {
	ctx := context.Background()
	env := newCheckoutEnv(t, defaultCatalog())
	verificationID := env.verifiedRecord(t, "buyer@example.com")

	// Cart carries a stale price; the order must use the live catalog price.
	env.fillCart(t, "cart-1",
		domain.CartItem{ProductID: 1, Price: decimal.NewFromInt(10), Quantity: 1},
	)

	view, err := env.uc.Checkout(ctx, validRequest(verificationID, "cart-1", 1))
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.True(t, decimal.NewFromInt(90000).Equal(view.Items[0].UnitPrice))
}

func TestCheckoutValidationCollectsAllViolations(t *testing.T) {
	ctx := context.Background()
	env := newCheckoutEnv(t, defaultCatalog())

	_, err := env.uc.Checkout(ctx, &domain.CheckoutRequest{
		PaymentMethod: "card",
		Customer:      domain.Customer{Email: "not-an-email"},
	})

	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	// verification_id, cart_identifier, payment_method, full_name, phone,
	// email, address_line, country — all at once.
	assert.Len(t, validationErr.Violations, 8)
}

func TestCheckoutRejectsEmptySelection(t *testing.T) {
	ctx := context.Background()
	env := newCheckoutEnv(t, defaultCatalog())
	verificationID := env.verifiedRecord(t, "buyer@example.com")
	env.fillCart(t, "cart-1", domain.CartItem{ProductID: 1, Quantity: 1})

	_, err := env.uc.Checkout(ctx, validRequest(verificationID, "cart-1"))
	assert.ErrorIs(t, err, domain.ErrNoSelection)
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	ctx := context.Background()
	env := newCheckoutEnv(t, defaultCatalog())
	verificationID := env.verifiedRecord(t, "buyer@example.com")

	_, err := env.uc.Checkout(ctx, validRequest(verificationID, "cart-1", 1))
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
}

func TestCheckoutRejectsUnverifiedRecord(t *testing.T) {
	ctx := context.Background()
	env := newCheckoutEnv(t, defaultCatalog())
	record, _, err := env.verifications.CreateRecord(ctx, "buyer@example.com")
	require.NoError(t, err)
	env.fillCart(t, "cart-1", domain.CartItem{ProductID: 1, Quantity: 1})

	_, err = env.uc.Checkout(ctx, validRequest(record.ID, "cart-1", 1))
	assert.ErrorIs(t, err, domain.ErrVerificationUnverified)

	// Failing before the reservation step leaves stock untouched.
	a, _ := env.products.GetAvailability(ctx, 1)
	assert.Equal(t, 8, a.Available)
}

func TestCheckoutFailsWholeOrderOnQuantityExceedsStock(t *testing.T) {
	ctx := context.Background()
	env := newCheckoutEnv(t, defaultCatalog())
	verificationID := env.verifiedRecord(t, "buyer@example.com")
	env.fillCart(t, "cart-1",
		domain.CartItem{ProductID: 1, Quantity: 2},
		domain.CartItem{ProductID: 2, Quantity: 50},
	)

	_, err := env.uc.Checkout(ctx, validRequest(verificationID, "cart-1", 1, 2))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	var stockErr *domain.StockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(2), stockErr.ProductID)
	assert.Equal(t, "Rose Diffuser", stockErr.Name)
	assert.Equal(t, 5, stockErr.Available)

	// No partial order, no stock movement, verification stays usable.
	a, _ := env.products.GetAvailability(ctx, 1)
	assert.Equal(t, 8, a.Available)
	_, err = env.verifications.EnsureValid(ctx, verificationID)
	assert.NoError(t, err)
}

func TestCheckoutRejectsOutOfStockProduct(t *testing.T) {
	ctx := context.Background()
	env := newCheckoutEnv(t, defaultCatalog())
	verificationID := env.verifiedRecord(t, "buyer@example.com")
	env.fillCart(t, "cart-1", domain.CartItem{ProductID: 3, Quantity: 1})

	_, err := env.uc.Checkout(ctx, validRequest(verificationID, "cart-1", 3))
	assert.ErrorIs(t, err, domain.ErrOutOfStock)
}

func TestCheckoutRejectsVanishedProduct(t *testing.T) {
	ctx := context.Background()
	env := newCheckoutEnv(t, defaultCatalog())
	verificationID := env.verifiedRecord(t, "buyer@example.com")
	env.fillCart(t, "cart-1", domain.CartItem{ProductID: 77, Quantity: 1})

	_, err := env.uc.Checkout(ctx, validRequest(verificationID, "cart-1", 77))
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestCheckoutConsumedVerificationCannotOrderTwice(t *testing.T) {
	ctx := context.Background()
	env := newCheckoutEnv(t, defaultCatalog())
	verificationID := env.verifiedRecord(t, "buyer@example.com")
	env.fillCart(t, "cart-1",
		domain.CartItem{ProductID: 1, Quantity: 1},
		domain.CartItem{ProductID: 2, Quantity: 1},
	)

	_, err := env.uc.Checkout(ctx, validRequest(verificationID, "cart-1", 1))
	require.NoError(t, err)

	// Second checkout against the same, now consumed, record.
	_, err = env.uc.Checkout(ctx, validRequest(verificationID, "cart-1", 2))
	assert.ErrorIs(t, err, domain.ErrVerificationConsumed)

	// The failed attempt moved nothing.
	b, _ := env.products.GetAvailability(ctx, 2)
	assert.Equal(t, 5, b.Available)
}

func TestCheckoutInternationalFee(t *testing.T) {
	ctx := context.Background()
	env := newCheckoutEnv(t, defaultCatalog())
	verificationID := env.verifiedRecord(t, "buyer@example.com")
	env.fillCart(t, "cart-1", domain.CartItem{ProductID: 1, Quantity: 1})

	req := validRequest(verificationID, "cart-1", 1)
	req.Customer.Country = "France"

	view, err := env.uc.Checkout(ctx, req)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(50000).Equal(view.ShippingFee))
}

func TestCheckoutViewOmitsSecrets(t *testing.T) {
	ctx := context.Background()
	env := newCheckoutEnv(t, defaultCatalog())
	verificationID := env.verifiedRecord(t, "buyer@example.com")
	env.fillCart(t, "cart-1", domain.CartItem{ProductID: 1, Quantity: 1})

	view, err := env.uc.Checkout(ctx, validRequest(verificationID, "cart-1", 1))
	require.NoError(t, err)

	payload, err := json.Marshal(view)
	require.NoError(t, err)

	var keys map[string]any
	require.NoError(t, json.Unmarshal(payload, &keys))
	assert.NotContains(t, keys, "cart_identifier")
	assert.NotContains(t, keys, "verification_id")

	// The stored order still carries both for internal use.
	stored, err := env.orders.FindByCode(ctx, view.Code)
	require.NoError(t, err)
	assert.Equal(t, "cart-1", stored.CartIdentifier)
	assert.Equal(t, verificationID, stored.VerificationID)
}

func TestCheckoutSkipsZeroQuantityLines(t *testing.T) {
	ctx := context.Background()
	env := newCheckoutEnv(t, defaultCatalog())
	verificationID := env.verifiedRecord(t, "buyer@example.com")

	// Bypass the cart store's sanitizer to simulate a legacy snapshot.
	cartStore := blob.NewMemoryStore()
	require.NoError(t, cartStore.Save(ctx, map[string]domain.CartSnapshot{
		"cart-1": {Identifier: "cart-1", Items: []domain.CartItem{
			{ProductID: 1, Quantity: 0},
			{ProductID: 2, Quantity: 1},
		}},
	}))
	logger := testLogger()
	env.carts = repository.NewBlobCartRepository(cartStore, logger)
	env.uc = NewCheckoutUseCase(env.products, env.carts, env.orders, env.verifications, logger)

	view, err := env.uc.Checkout(ctx, validRequest(verificationID, "cart-1", 1, 2))
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, int64(2), view.Items[0].ProductID)
}

func TestCheckoutOrderCodeUsesCurrentDate(t *testing.T) {
	ctx := context.Background()
	env := newCheckoutEnv(t, defaultCatalog())
	verificationID := env.verifiedRecord(t, "buyer@example.com")
	env.fillCart(t, "cart-1", domain.CartItem{ProductID: 1, Quantity: 1})

	fixed := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	impl := env.uc.(*checkoutUseCase)
	impl.now = func() time.Time { return fixed }

	view, err := env.uc.Checkout(ctx, validRequest(verificationID, "cart-1", 1))
	require.NoError(t, err)
	assert.Regexp(t, `^SC-20250101-[A-Z0-9]{4}$`, view.Code)
	assert.Equal(t, fixed, view.CreatedAt)
}
