package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/vandien284/scenta-sub000/internal/domain"
)

var _ domain.OrderUseCase = (*orderUseCase)(nil)

type orderUseCase struct {
	orders   domain.OrderRepository
	products domain.ProductRepository
	log      *logrus.Logger
}

func NewOrderUseCase(orders domain.OrderRepository, products domain.ProductRepository, logger *logrus.Logger) domain.OrderUseCase {
	return &orderUseCase{orders: orders, products: products, log: logger}
}

// Lookup is the sole access control on orders: the caller must know both the
// code and the customer email. A mismatched email reads as not found so the
// response does not confirm the code exists.
func (uc *orderUseCase) Lookup(ctx context.Context, code, email string) (*domain.OrderView, error) {
	code = strings.TrimSpace(code)
	email = strings.TrimSpace(email)
	if code == "" || email == "" {
		return nil, domain.ErrOrderNotFound
	}

	order, err := uc.orders.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(order.Customer.Email, email) {
		uc.log.Warnf("Orders: lookup for %s with non-matching email", order.Code)
		return nil, domain.ErrOrderNotFound
	}
	return order.StripSecrets(), nil
}

func (uc *orderUseCase) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.OrderView, error) {
	if !domain.IsValidStatus(status) {
		return nil, &domain.ValidationError{Violations: []string{fmt.Sprintf("invalid order status %q", status)}}
	}

	order, err := uc.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status == status {
		uc.log.Infof("Orders: status of %s already %s, nothing to do", order.Code, status)
		return order.StripSecrets(), nil
	}
	if order.Status == domain.StatusCancelled {
		return nil, &domain.ValidationError{Violations: []string{"cannot change status of a cancelled order"}}
	}

	if status == domain.StatusCancelled {
		adjustments := make([]domain.StockAdjustment, 0, len(order.Items))
		for _, item := range order.Items {
			adjustments = append(adjustments, domain.StockAdjustment{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			})
		}
		if err := uc.products.Restock(ctx, adjustments); err != nil {
			// Keep going: the cancellation matters more than the counter,
			// but this needs a manual stock adjustment.
			uc.log.Errorf("Orders: failed to return stock for cancelled order %s: %v", order.Code, err)
		}
	}

	order.Status = status
	updated, err := uc.orders.Replace(ctx, order)
	if err != nil {
		return nil, err
	}

	uc.log.Infof("Orders: status of %s updated to %s", updated.Code, updated.Status)
	return updated.StripSecrets(), nil
}
