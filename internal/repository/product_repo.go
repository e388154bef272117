package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/vandien284/scenta-sub000/internal/blob"
	"github.com/vandien284/scenta-sub000/internal/domain"
)

var _ domain.ProductRepository = (*blobProductRepository)(nil)

type blobProductRepository struct {
	store blob.Store
	log   *logrus.Logger
	mu    sync.Mutex
}

func NewBlobProductRepository(store blob.Store, logger *logrus.Logger) domain.ProductRepository {
	return &blobProductRepository{store: store, log: logger}
}

func (r *blobProductRepository) loadProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := r.store.Load(ctx, &products); err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not load product catalog: %w", err)
	}
	return products, nil
}

func (r *blobProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	return r.loadProducts(ctx)
}

func (r *blobProductRepository) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	products, err := r.loadProducts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == id {
			p := products[i]
			return &p, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

func (r *blobProductRepository) GetAvailability(ctx context.Context, id int64) (*domain.Availability, error) {
	product, err := r.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.Availability{
		Price:     product.Price,
		Available: product.Available(),
	}, nil
}

// ApplyAdjustments validates every entry against one loaded catalog snapshot
// and persists once: either the whole batch commits or nothing does.
func (r *blobProductRepository) ApplyAdjustments(ctx context.Context, adjustments []domain.StockAdjustment) error {
	if len(adjustments) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	products, err := r.loadProducts(ctx)
	if err != nil {
		return err
	}

	index := make(map[int64]int, len(products))
	for i := range products {
		index[products[i].ID] = i
	}

	for _, adj := range adjustments {
		i, ok := index[adj.ProductID]
		if !ok {
			return &domain.StockError{ProductID: adj.ProductID, Err: domain.ErrProductNotFound}
		}
		p := &products[i]
		available := p.Available()
		if adj.Quantity > available {
			r.log.Warnf("Inventory: rejected adjustment for product %d (requested %d, available %d)",
				adj.ProductID, adj.Quantity, available)
			return &domain.StockError{
				ProductID: p.ID,
				Name:      p.Name,
				Requested: adj.Quantity,
				Available: available,
				Err:       domain.ErrInsufficientStock,
			}
		}
	}

	for _, adj := range adjustments {
		p := &products[index[adj.ProductID]]
		p.Sold += adj.Quantity
		r.log.Infof("Inventory: product %d sold %d more units (sold %d of %d)",
			p.ID, adj.Quantity, p.Sold, p.Quantity)
	}

	if err := r.store.Save(ctx, products); err != nil {
		return fmt.Errorf("could not persist stock adjustments: %w", err)
	}
	return nil
}

// Restock reverses sold units, clamping at zero; used when an order is
// cancelled.
func (r *blobProductRepository) Restock(ctx context.Context, adjustments []domain.StockAdjustment) error {
	if len(adjustments) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	products, err := r.loadProducts(ctx)
	if err != nil {
		return err
	}

	for _, adj := range adjustments {
		for i := range products {
			if products[i].ID != adj.ProductID {
				continue
			}
			products[i].Sold -= adj.Quantity
			if products[i].Sold < 0 {
				products[i].Sold = 0
			}
			r.log.Infof("Inventory: returned %d units of product %d to stock", adj.Quantity, adj.ProductID)
			break
		}
	}

	if err := r.store.Save(ctx, products); err != nil {
		return fmt.Errorf("could not persist restock: %w", err)
	}
	return nil
}
