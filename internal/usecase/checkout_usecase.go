package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/vandien284/scenta-sub000/internal/domain"
	"github.com/vandien284/scenta-sub000/internal/shipping"
)

var _ domain.CheckoutUseCase = (*checkoutUseCase)(nil)

type checkoutUseCase struct {
	products      domain.ProductRepository
	carts         domain.CartRepository
	orders        domain.OrderRepository
	verifications domain.VerificationRepository
	log           *logrus.Logger
	now           func() time.Time
}

func NewCheckoutUseCase(
	products domain.ProductRepository,
	carts domain.CartRepository,
	orders domain.OrderRepository,
	verifications domain.VerificationRepository,
	logger *logrus.Logger,
) domain.CheckoutUseCase {
	return &checkoutUseCase{
		products:      products,
		carts:         carts,
		orders:        orders,
		verifications: verifications,
		log:           logger,
		now:           time.Now,
	}
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// validateRequest collects every violation instead of failing on the first,
// so the customer can fix the whole form at once.
func validateRequest(req *domain.CheckoutRequest) error {
	var violations []string

	if strings.TrimSpace(req.VerificationID) == "" {
		violations = append(violations, "verification_id is required")
	}
	if strings.TrimSpace(req.CartIdentifier) == "" {
		violations = append(violations, "cart_identifier is required")
	}
	if req.PaymentMethod != domain.PaymentMethodCOD {
		violations = append(violations, fmt.Sprintf("payment_method %q is not supported, only %q", req.PaymentMethod, domain.PaymentMethodCOD))
	}
	if strings.TrimSpace(req.Customer.FullName) == "" {
		violations = append(violations, "customer full_name is required")
	}
	if strings.TrimSpace(req.Customer.Phone) == "" {
		violations = append(violations, "customer phone is required")
	}
	if !emailPattern.MatchString(strings.TrimSpace(req.Customer.Email)) {
		violations = append(violations, "customer email is missing or invalid")
	}
	if strings.TrimSpace(req.Customer.AddressLine) == "" {
		violations = append(violations, "customer address_line is required")
	}
	if strings.TrimSpace(req.Customer.Country) == "" {
		violations = append(violations, "customer country is required")
	}

	if len(violations) > 0 {
		return &domain.ValidationError{Violations: violations}
	}
	return nil
}

// Checkout converts a cart, a verified email code and a product selection
// into a persisted order. Inventory is decremented before the order is
// appended, so a crash in between can never record an order against stock
// that was not reserved. Verification consumption and cart trimming come
// after the append: a failure there leaves a valid order the customer can
// still look up, at the cost of operator reconciliation.
func (uc *checkoutUseCase) Checkout(ctx context.Context, req *domain.CheckoutRequest) (*domain.OrderView, error) {
	if err := validateRequest(req); err != nil {
		uc.log.Warnf("Checkout: rejected payload: %v", err)
		return nil, err
	}

	selected := make(map[int64]bool, len(req.SelectedProductIDs))
	for _, id := range req.SelectedProductIDs {
		selected[id] = true
	}
	if len(selected) == 0 {
		return nil, domain.ErrNoSelection
	}

	// Fail fast before touching inventory.
	if _, err := uc.verifications.EnsureValid(ctx, req.VerificationID); err != nil {
		uc.log.Warnf("Checkout: verification %s rejected: %v", req.VerificationID, err)
		return nil, err
	}

	products, err := uc.products.List(ctx)
	if err != nil {
		return nil, err
	}
	catalog := make(map[int64]*domain.Product, len(products))
	for i := range products {
		catalog[products[i].ID] = &products[i]
	}

	cart, err := uc.carts.GetSnapshot(ctx, req.CartIdentifier)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, domain.ErrEmptyCart
	}

	items, subtotal, err := uc.buildOrderItems(cart, selected, catalog)
	if err != nil {
		return nil, err
	}

	fee := shipping.Fee(req.Customer.Country)
	total := subtotal.Add(fee)

	code, err := uc.orders.EnsureUniqueCode(ctx, domain.NewOrderCode(uc.now()))
	if err != nil {
		return nil, err
	}

	adjustments := make([]domain.StockAdjustment, 0, len(items))
	for _, item := range items {
		adjustments = append(adjustments, domain.StockAdjustment{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	// First durable side effect. On failure nothing has happened yet and
	// the operation fails cleanly.
	if err := uc.products.ApplyAdjustments(ctx, adjustments); err != nil {
		uc.log.Warnf("Checkout: inventory reservation failed for cart %s: %v", req.CartIdentifier, err)
		return nil, err
	}

	order := &domain.Order{
		ID:             uuid.NewString(),
		Code:           code,
		CreatedAt:      uc.now(),
		CartIdentifier: req.CartIdentifier,
		PaymentMethod:  req.PaymentMethod,
		ShippingFee:    fee,
		Subtotal:       subtotal,
		Total:          total,
		Notes:          strings.TrimSpace(req.Notes),
		Customer: domain.Customer{
			FullName:    strings.TrimSpace(req.Customer.FullName),
			Phone:       strings.TrimSpace(req.Customer.Phone),
			Email:       strings.ToLower(strings.TrimSpace(req.Customer.Email)),
			AddressLine: strings.TrimSpace(req.Customer.AddressLine),
			Country:     strings.TrimSpace(req.Customer.Country),
			City:        strings.TrimSpace(req.Customer.City),
			PostalCode:  strings.TrimSpace(req.Customer.PostalCode),
		},
		Items:          items,
		Status:         domain.StatusPending,
		VerificationID: req.VerificationID,
	}

	if _, err := uc.orders.Append(ctx, order); err != nil {
		// Stock is decremented but no order exists. Rollback is not part of
		// this design; flag for operator reconciliation.
		uc.log.Errorf("Checkout: RECONCILIATION INCIDENT: stock reserved for cart %s but order append failed: %v",
			req.CartIdentifier, err)
		return nil, fmt.Errorf("failed to persist order after reserving stock: %w", err)
	}

	if _, err := uc.verifications.Consume(ctx, req.VerificationID); err != nil {
		// Order exists; the leftover code is reusable rather than the order
		// being lost. Log and carry on.
		uc.log.Errorf("Checkout: order %s persisted but verification %s not consumed: %v",
			order.Code, req.VerificationID, err)
	}

	orderedIDs := make(map[int64]bool, len(items))
	for _, item := range items {
		orderedIDs[item.ProductID] = true
	}
	if _, err := uc.carts.Mutate(ctx, req.CartIdentifier, func(snapshot *domain.CartSnapshot) {
		kept := snapshot.Items[:0]
		for _, item := range snapshot.Items {
			if !orderedIDs[item.ProductID] {
				kept = append(kept, item)
			}
		}
		snapshot.Items = kept
	}); err != nil {
		uc.log.Errorf("Checkout: order %s persisted but cart %s not trimmed: %v",
			order.Code, req.CartIdentifier, err)
	}

	uc.log.Infof("Checkout: order %s created for %s (items %d, total %s)",
		order.Code, order.Customer.Email, len(order.Items), order.Total.String())
	return order.StripSecrets(), nil
}

// buildOrderItems filters the cart down to the selected products, checking
// each against live availability and snapshotting the current unit price.
func (uc *checkoutUseCase) buildOrderItems(
	cart *domain.CartSnapshot,
	selected map[int64]bool,
	catalog map[int64]*domain.Product,
) ([]domain.OrderItem, decimal.Decimal, error) {
	var items []domain.OrderItem
	subtotal := decimal.Zero

	for _, cartItem := range cart.Items {
		if !selected[cartItem.ProductID] {
			continue
		}
		if cartItem.Quantity <= 0 {
			continue
		}

		product, ok := catalog[cartItem.ProductID]
		if !ok {
			return nil, decimal.Zero, &domain.StockError{
				ProductID: cartItem.ProductID,
				Name:      cartItem.Name,
				Err:       domain.ErrProductNotFound,
			}
		}
		available := product.Available()
		if available <= 0 {
			return nil, decimal.Zero, &domain.StockError{
				ProductID: product.ID,
				Name:      product.Name,
				Err:       domain.ErrOutOfStock,
			}
		}
		if cartItem.Quantity > available {
			return nil, decimal.Zero, &domain.StockError{
				ProductID: product.ID,
				Name:      product.Name,
				Requested: cartItem.Quantity,
				Available: available,
				Err:       domain.ErrInsufficientStock,
			}
		}

		lineSubtotal := product.Price.Mul(decimal.NewFromInt(int64(cartItem.Quantity)))
		items = append(items, domain.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			URL:       product.URL,
			Image:     product.Image,
			Quantity:  cartItem.Quantity,
			UnitPrice: product.Price,
			Subtotal:  lineSubtotal,
		})
		subtotal = subtotal.Add(lineSubtotal)
	}

	if len(items) == 0 {
		return nil, decimal.Zero, domain.ErrNoValidItems
	}
	return items, subtotal, nil
}
