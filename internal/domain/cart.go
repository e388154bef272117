package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type CartItem struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	URL       string          `json:"url"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Quantity  int             `json:"quantity"`
	AddedAt   time.Time       `json:"added_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CartSnapshot is the full cart state for one identifier. Items with
// quantity <= 0 are pruned on every write, so a persisted snapshot only
// ever holds positive quantities.
type CartSnapshot struct {
	Identifier string     `json:"identifier"`
	Items      []CartItem `json:"items"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (s *CartSnapshot) IsEmpty() bool {
	return len(s.Items) == 0
}

type CartRepository interface {
	// GetSnapshot returns an empty snapshot when the identifier is unknown.
	GetSnapshot(ctx context.Context, identifier string) (*CartSnapshot, error)
	// Mutate applies fn to the current snapshot, sanitizes the result
	// (dropping non-positive quantities) and persists it.
	Mutate(ctx context.Context, identifier string, fn func(*CartSnapshot)) (*CartSnapshot, error)
	Remove(ctx context.Context, identifier string) error
}
