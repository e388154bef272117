package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	URL      string          `json:"url"`
	Image    string          `json:"image"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Sold     int             `json:"sold"`
}

// Available is the sellable stock: total ever stocked minus cumulative sold,
// never negative.
func (p *Product) Available() int {
	if p.Quantity <= p.Sold {
		return 0
	}
	return p.Quantity - p.Sold
}

type Availability struct {
	Price     decimal.Decimal
	Available int
}

// StockAdjustment asks the inventory store to record Quantity additional
// units of ProductID as sold.
type StockAdjustment struct {
	ProductID int64
	Quantity  int
}

type ProductRepository interface {
	List(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id int64) (*Product, error)
	GetAvailability(ctx context.Context, id int64) (*Availability, error)
	// ApplyAdjustments validates every adjustment against a single catalog
	// snapshot and persists once: any shortfall fails the whole batch with
	// nothing committed.
	ApplyAdjustments(ctx context.Context, adjustments []StockAdjustment) error
	// Restock returns previously sold units to stock (order cancellation).
	Restock(ctx context.Context, adjustments []StockAdjustment) error
}
