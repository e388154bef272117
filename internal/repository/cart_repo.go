package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vandien284/scenta-sub000/internal/blob"
	"github.com/vandien284/scenta-sub000/internal/domain"
)

var _ domain.CartRepository = (*blobCartRepository)(nil)

// blobCartRepository keeps every cart in one document keyed by identifier.
type blobCartRepository struct {
	store blob.Store
	log   *logrus.Logger
	now   func() time.Time
	mu    sync.Mutex
}

func NewBlobCartRepository(store blob.Store, logger *logrus.Logger) domain.CartRepository {
	return &blobCartRepository{store: store, log: logger, now: time.Now}
}

func (r *blobCartRepository) loadCarts(ctx context.Context) (map[string]domain.CartSnapshot, error) {
	carts := make(map[string]domain.CartSnapshot)
	if err := r.store.Load(ctx, &carts); err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return carts, nil
		}
		return nil, fmt.Errorf("could not load carts: %w", err)
	}
	return carts, nil
}

func (r *blobCartRepository) GetSnapshot(ctx context.Context, identifier string) (*domain.CartSnapshot, error) {
	carts, err := r.loadCarts(ctx)
	if err != nil {
		return nil, err
	}
	snapshot, ok := carts[identifier]
	if !ok {
		return &domain.CartSnapshot{Identifier: identifier}, nil
	}
	return &snapshot, nil
}

func (r *blobCartRepository) Mutate(ctx context.Context, identifier string, fn func(*domain.CartSnapshot)) (*domain.CartSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	carts, err := r.loadCarts(ctx)
	if err != nil {
		return nil, err
	}

	snapshot, ok := carts[identifier]
	if !ok {
		snapshot = domain.CartSnapshot{Identifier: identifier}
	}

	fn(&snapshot)
	sanitizeSnapshot(&snapshot)
	snapshot.Identifier = identifier
	snapshot.UpdatedAt = r.now()

	carts[identifier] = snapshot
	if err := r.store.Save(ctx, carts); err != nil {
		return nil, fmt.Errorf("could not persist cart %s: %w", identifier, err)
	}

	r.log.Debugf("Cart %s persisted with %d items", identifier, len(snapshot.Items))
	return &snapshot, nil
}

func (r *blobCartRepository) Remove(ctx context.Context, identifier string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	carts, err := r.loadCarts(ctx)
	if err != nil {
		return err
	}
	if _, ok := carts[identifier]; !ok {
		return nil
	}
	delete(carts, identifier)

	if err := r.store.Save(ctx, carts); err != nil {
		return fmt.Errorf("could not remove cart %s: %w", identifier, err)
	}
	r.log.Infof("Cart %s removed", identifier)
	return nil
}

// sanitizeSnapshot enforces the snapshot invariant: retained items always
// have a positive quantity.
func sanitizeSnapshot(snapshot *domain.CartSnapshot) {
	kept := snapshot.Items[:0]
	for _, item := range snapshot.Items {
		if item.Quantity > 0 {
			kept = append(kept, item)
		}
	}
	snapshot.Items = kept
}
