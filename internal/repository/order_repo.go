package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/vandien284/scenta-sub000/internal/blob"
	"github.com/vandien284/scenta-sub000/internal/domain"
)

var _ domain.OrderRepository = (*blobOrderRepository)(nil)

// blobOrderRepository keeps the order ledger as one document, newest first.
type blobOrderRepository struct {
	store blob.Store
	log   *logrus.Logger
	mu    sync.Mutex
}

func NewBlobOrderRepository(store blob.Store, logger *logrus.Logger) domain.OrderRepository {
	return &blobOrderRepository{store: store, log: logger}
}

func (r *blobOrderRepository) loadOrders(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	if err := r.store.Load(ctx, &orders); err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not load order ledger: %w", err)
	}
	return orders, nil
}

// Append inserts at the head of the ledger. Any existing entry sharing the
// same id or code is dropped first, so a retried submission of the same
// order replaces rather than duplicates. EnsureUniqueCode is expected to
// have prevented code collisions between distinct orders.
func (r *blobOrderRepository) Append(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	orders, err := r.loadOrders(ctx)
	if err != nil {
		return nil, err
	}

	kept := orders[:0]
	for _, existing := range orders {
		if existing.ID == order.ID || strings.EqualFold(existing.Code, order.Code) {
			r.log.Warnf("Orders: append replacing existing entry %s (code %s)", existing.ID, existing.Code)
			continue
		}
		kept = append(kept, existing)
	}

	updated := append([]domain.Order{*order}, kept...)
	if err := r.store.Save(ctx, updated); err != nil {
		return nil, fmt.Errorf("could not persist order %s: %w", order.Code, err)
	}

	r.log.Infof("Orders: appended order %s (code %s) with %d items", order.ID, order.Code, len(order.Items))
	return order, nil
}

func (r *blobOrderRepository) Replace(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	orders, err := r.loadOrders(ctx)
	if err != nil {
		return nil, err
	}

	for i := range orders {
		if orders[i].ID != order.ID {
			continue
		}
		orders[i] = *order
		if err := r.store.Save(ctx, orders); err != nil {
			return nil, fmt.Errorf("could not persist order %s: %w", order.ID, err)
		}
		r.log.Infof("Orders: replaced order %s (status %s)", order.ID, order.Status)
		return order, nil
	}
	return nil, domain.ErrOrderNotFound
}

func (r *blobOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	orders, err := r.loadOrders(ctx)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == id {
			order := orders[i]
			return &order, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (r *blobOrderRepository) FindByCode(ctx context.Context, code string) (*domain.Order, error) {
	orders, err := r.loadOrders(ctx)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if strings.EqualFold(orders[i].Code, code) {
			order := orders[i]
			return &order, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

// EnsureUniqueCode resolves base against the ledger: base itself, then
// base-01 through base-99, then base with a random 6-char suffix. The random
// fallback guarantees termination even on a pathological ledger.
func (r *blobOrderRepository) EnsureUniqueCode(ctx context.Context, base string) (string, error) {
	orders, err := r.loadOrders(ctx)
	if err != nil {
		return "", err
	}

	taken := make(map[string]bool, len(orders))
	for i := range orders {
		taken[strings.ToUpper(orders[i].Code)] = true
	}

	if !taken[strings.ToUpper(base)] {
		return base, nil
	}
	for i := 1; i <= 99; i++ {
		candidate := fmt.Sprintf("%s-%02d", base, i)
		if !taken[strings.ToUpper(candidate)] {
			r.log.Warnf("Orders: code %s taken, using %s", base, candidate)
			return candidate, nil
		}
	}
	for {
		candidate := fmt.Sprintf("%s-%s", base, domain.RandomCodeSuffix(6))
		if !taken[strings.ToUpper(candidate)] {
			r.log.Warnf("Orders: exhausted numeric suffixes for %s, using %s", base, candidate)
			return candidate, nil
		}
	}
}
