package usecase

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vandien284/scenta-sub000/internal/domain"
)

var _ domain.CartUseCase = (*cartUseCase)(nil)

type cartUseCase struct {
	carts    domain.CartRepository
	products domain.ProductRepository
	log      *logrus.Logger
	now      func() time.Time
}

func NewCartUseCase(carts domain.CartRepository, products domain.ProductRepository, logger *logrus.Logger) domain.CartUseCase {
	return &cartUseCase{carts: carts, products: products, log: logger, now: time.Now}
}

// GetCart merges the stored snapshot with the live catalog. Cart items cache
// a price/name that may have drifted; reads reconcile: refresh those fields,
// clamp quantity to current availability, drop products that no longer
// exist. The reconciled view is not written back.
func (uc *cartUseCase) GetCart(ctx context.Context, identifier string) (*domain.CartSnapshot, error) {
	snapshot, err := uc.carts.GetSnapshot(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if snapshot.IsEmpty() {
		return snapshot, nil
	}

	products, err := uc.products.List(ctx)
	if err != nil {
		return nil, err
	}
	catalog := make(map[int64]*domain.Product, len(products))
	for i := range products {
		catalog[products[i].ID] = &products[i]
	}

	kept := snapshot.Items[:0]
	for _, item := range snapshot.Items {
		product, ok := catalog[item.ProductID]
		if !ok {
			uc.log.Debugf("Cart %s: dropping vanished product %d", identifier, item.ProductID)
			continue
		}
		available := product.Available()
		if available <= 0 {
			uc.log.Debugf("Cart %s: dropping out-of-stock product %d", identifier, item.ProductID)
			continue
		}
		if item.Quantity > available {
			item.Quantity = available
		}
		item.Name = product.Name
		item.URL = product.URL
		item.Image = product.Image
		item.Price = product.Price
		kept = append(kept, item)
	}
	snapshot.Items = kept
	return snapshot, nil
}

func (uc *cartUseCase) AddItem(ctx context.Context, identifier string, productID int64, quantity int) (*domain.CartSnapshot, error) {
	if quantity <= 0 {
		return nil, &domain.ValidationError{Violations: []string{"quantity must be positive"}}
	}

	product, err := uc.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	available := product.Available()
	if available <= 0 {
		return nil, &domain.StockError{ProductID: product.ID, Name: product.Name, Err: domain.ErrOutOfStock}
	}

	var stockErr error
	snapshot, err := uc.carts.Mutate(ctx, identifier, func(snapshot *domain.CartSnapshot) {
		now := uc.now()
		for i := range snapshot.Items {
			if snapshot.Items[i].ProductID != productID {
				continue
			}
			merged := snapshot.Items[i].Quantity + quantity
			if merged > available {
				stockErr = &domain.StockError{
					ProductID: product.ID,
					Name:      product.Name,
					Requested: merged,
					Available: available,
					Err:       domain.ErrInsufficientStock,
				}
				return
			}
			snapshot.Items[i].Quantity = merged
			snapshot.Items[i].UpdatedAt = now
			return
		}
		if quantity > available {
			stockErr = &domain.StockError{
				ProductID: product.ID,
				Name:      product.Name,
				Requested: quantity,
				Available: available,
				Err:       domain.ErrInsufficientStock,
			}
			return
		}
		snapshot.Items = append(snapshot.Items, domain.CartItem{
			ProductID: product.ID,
			Name:      product.Name,
			URL:       product.URL,
			Price:     product.Price,
			Image:     product.Image,
			Quantity:  quantity,
			AddedAt:   now,
			UpdatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}
	if stockErr != nil {
		return nil, stockErr
	}

	uc.log.Infof("Cart %s: added product %d x%d", identifier, productID, quantity)
	return snapshot, nil
}

func (uc *cartUseCase) UpdateItemQuantity(ctx context.Context, identifier string, productID int64, quantity int) (*domain.CartSnapshot, error) {
	if quantity < 0 {
		return nil, &domain.ValidationError{Violations: []string{"quantity cannot be negative"}}
	}

	if quantity > 0 {
		availability, err := uc.products.GetAvailability(ctx, productID)
		if err != nil {
			return nil, err
		}
		if quantity > availability.Available {
			return nil, &domain.StockError{
				ProductID: productID,
				Requested: quantity,
				Available: availability.Available,
				Err:       domain.ErrInsufficientStock,
			}
		}
	}

	var found bool
	snapshot, err := uc.carts.Mutate(ctx, identifier, func(snapshot *domain.CartSnapshot) {
		for i := range snapshot.Items {
			if snapshot.Items[i].ProductID == productID {
				// A zero quantity is pruned by the store's sanitizer.
				snapshot.Items[i].Quantity = quantity
				snapshot.Items[i].UpdatedAt = uc.now()
				found = true
				return
			}
		}
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrProductNotFound
	}
	return snapshot, nil
}

func (uc *cartUseCase) RemoveItem(ctx context.Context, identifier string, productID int64) (*domain.CartSnapshot, error) {
	return uc.carts.Mutate(ctx, identifier, func(snapshot *domain.CartSnapshot) {
		kept := snapshot.Items[:0]
		for _, item := range snapshot.Items {
			if item.ProductID != productID {
				kept = append(kept, item)
			}
		}
		snapshot.Items = kept
	})
}

func (uc *cartUseCase) Clear(ctx context.Context, identifier string) error {
	return uc.carts.Remove(ctx, identifier)
}
