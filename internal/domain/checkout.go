package domain

import "context"

// CheckoutRequest is the typed, not-yet-validated checkout payload.
type CheckoutRequest struct {
	VerificationID     string   `json:"verification_id"`
	CartIdentifier     string   `json:"cart_identifier"`
	PaymentMethod      string   `json:"payment_method"`
	Customer           Customer `json:"customer"`
	Notes              string   `json:"notes"`
	SelectedProductIDs []int64  `json:"selected_product_ids"`
}

type CheckoutUseCase interface {
	Checkout(ctx context.Context, req *CheckoutRequest) (*OrderView, error)
}

type OrderUseCase interface {
	// Lookup returns the stripped order only when email matches the
	// order's customer email case-insensitively; a mismatch reads as not
	// found.
	Lookup(ctx context.Context, code, email string) (*OrderView, error)
	// UpdateStatus is a no-op when the status is unchanged. Transitioning
	// to cancelled returns the ordered units to stock.
	UpdateStatus(ctx context.Context, id string, status OrderStatus) (*OrderView, error)
}

type VerificationUseCase interface {
	SendCode(ctx context.Context, email string) (*VerificationRecord, error)
	CheckCode(ctx context.Context, id, code string) (*VerificationRecord, error)
}

type CartUseCase interface {
	// GetCart reconciles the stored snapshot against the live catalog:
	// prices and names are refreshed, quantities clamped to availability,
	// vanished products dropped.
	GetCart(ctx context.Context, identifier string) (*CartSnapshot, error)
	AddItem(ctx context.Context, identifier string, productID int64, quantity int) (*CartSnapshot, error)
	UpdateItemQuantity(ctx context.Context, identifier string, productID int64, quantity int) (*CartSnapshot, error)
	RemoveItem(ctx context.Context, identifier string, productID int64) (*CartSnapshot, error)
	Clear(ctx context.Context, identifier string) error
}
