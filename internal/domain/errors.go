package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrVerificationNotFound   = errors.New("verification record not found")
	ErrVerificationExpired    = errors.New("verification code has expired")
	ErrVerificationLocked     = errors.New("verification code locked after too many failed attempts")
	ErrVerificationMismatch   = errors.New("verification code does not match")
	ErrVerificationConsumed   = errors.New("verification record already consumed")
	ErrVerificationUnverified = errors.New("verification record has not been verified")

	ErrProductNotFound   = errors.New("product not found")
	ErrOutOfStock        = errors.New("product is out of stock")
	ErrInsufficientStock = errors.New("requested quantity exceeds available stock")

	ErrEmptyCart    = errors.New("cart is empty")
	ErrNoSelection  = errors.New("no products selected for checkout")
	ErrNoValidItems = errors.New("none of the selected products can be ordered")

	ErrOrderNotFound      = errors.New("order not found")
	ErrUnsupportedPayment = errors.New("unsupported payment method")
)

// ValidationError carries every payload violation at once so the client can
// fix the whole form in a single round trip.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "invalid checkout payload: " + strings.Join(e.Violations, "; ")
}

// StockError wraps one of the stock sentinels with the product it concerns.
type StockError struct {
	ProductID int64
	Name      string
	Requested int
	Available int
	Err       error
}

func (e *StockError) Error() string {
	switch {
	case errors.Is(e.Err, ErrProductNotFound):
		return fmt.Sprintf("product %d is no longer available", e.ProductID)
	case errors.Is(e.Err, ErrOutOfStock):
		return fmt.Sprintf("product %q (id %d) is out of stock", e.Name, e.ProductID)
	default:
		return fmt.Sprintf("product %q (id %d): requested %d but only %d available",
			e.Name, e.ProductID, e.Requested, e.Available)
	}
}

func (e *StockError) Unwrap() error {
	return e.Err
}
