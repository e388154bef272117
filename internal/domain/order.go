package domain

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusCancelled OrderStatus = "cancelled"
)

func IsValidStatus(status OrderStatus) bool {
	switch status {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	default:
		return false
	}
}

const PaymentMethodCOD = "cod"

type OrderItem struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	URL       string          `json:"url"`
	Image     string          `json:"image"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type Customer struct {
	FullName    string `json:"full_name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	AddressLine string `json:"address_line"`
	Country     string `json:"country"`
	City        string `json:"city,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
}

// Order is an immutable ledger entry: after creation only Status may change,
// and only through the explicit status-update operation.
type Order struct {
	ID             string          `json:"id"`
	Code           string          `json:"code"`
	CreatedAt      time.Time       `json:"created_at"`
	CartIdentifier string          `json:"cart_identifier"`
	PaymentMethod  string          `json:"payment_method"`
	ShippingFee    decimal.Decimal `json:"shipping_fee"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Total          decimal.Decimal `json:"total"`
	Notes          string          `json:"notes"`
	Customer       Customer        `json:"customer"`
	Items          []OrderItem     `json:"items"`
	Status         OrderStatus     `json:"status"`
	VerificationID string          `json:"verification_id"`
}

// OrderView is the client-safe projection of an Order: no cart identifier,
// no verification id.
type OrderView struct {
	ID            string          `json:"id"`
	Code          string          `json:"code"`
	CreatedAt     time.Time       `json:"created_at"`
	PaymentMethod string          `json:"payment_method"`
	ShippingFee   decimal.Decimal `json:"shipping_fee"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Total         decimal.Decimal `json:"total"`
	Notes         string          `json:"notes"`
	Customer      Customer        `json:"customer"`
	Items         []OrderItem     `json:"items"`
	Status        OrderStatus     `json:"status"`
}

// StripSecrets returns the order view exposed to clients.
func (o *Order) StripSecrets() *OrderView {
	return &OrderView{
		ID:            o.ID,
		Code:          o.Code,
		CreatedAt:     o.CreatedAt,
		PaymentMethod: o.PaymentMethod,
		ShippingFee:   o.ShippingFee,
		Subtotal:      o.Subtotal,
		Total:         o.Total,
		Notes:         o.Notes,
		Customer:      o.Customer,
		Items:         o.Items,
		Status:        o.Status,
	}
}

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomCodeSuffix returns n random uppercase alphanumeric characters.
func RandomCodeSuffix(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("read random bytes: %v", err))
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf)
}

// NewOrderCode builds a base order code like SC-20250101-AB12. Uniqueness is
// the order store's job (EnsureUniqueCode).
func NewOrderCode(now time.Time) string {
	return fmt.Sprintf("SC-%s-%s", now.Format("20060102"), RandomCodeSuffix(4))
}

type OrderRepository interface {
	// Append inserts the order at the head of the ledger. An existing entry
	// sharing the same id or code is replaced instead of duplicated, which
	// makes a retried submission of the same order idempotent.
	Append(ctx context.Context, order *Order) (*Order, error)
	// Replace swaps the stored order with the same id; used only for status
	// transitions.
	Replace(ctx context.Context, order *Order) (*Order, error)
	FindByID(ctx context.Context, id string) (*Order, error)
	// FindByCode matches case-insensitively.
	FindByCode(ctx context.Context, code string) (*Order, error)
	// EnsureUniqueCode returns base if free, otherwise base-01..base-99,
	// otherwise base plus a random 6-char suffix.
	EnsureUniqueCode(ctx context.Context, base string) (string, error)
}
