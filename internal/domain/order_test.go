package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripSecretsOmitsInternalFields(t *testing.T) {
	order := &Order{
		ID:             "id-1",
		Code:           "SC-20250101-AB12",
		CreatedAt:      time.Now(),
		CartIdentifier: "cart-1",
		PaymentMethod:  PaymentMethodCOD,
		ShippingFee:    decimal.NewFromInt(30000),
		Subtotal:       decimal.NewFromInt(100000),
		Total:          decimal.NewFromInt(130000),
		Customer:       Customer{FullName: "A", Email: "a@b.vn"},
		Items:          []OrderItem{{ProductID: 1, Quantity: 1}},
		Status:         StatusPending,
		VerificationID: "v-1",
	}

	payload, err := json.Marshal(order.StripSecrets())
	require.NoError(t, err)

	var keys map[string]any
	require.NoError(t, json.Unmarshal(payload, &keys))
	assert.NotContains(t, keys, "cart_identifier")
	assert.NotContains(t, keys, "verification_id")
	assert.Contains(t, keys, "code")
	assert.Contains(t, keys, "items")
}

func TestNewOrderCodeFormat(t *testing.T) {
	now := time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC)
	code := NewOrderCode(now)
	assert.Regexp(t, `^SC-20250315-[A-Z0-9]{4}$`, code)
}

func TestIsValidStatus(t *testing.T) {
	assert.True(t, IsValidStatus(StatusPending))
	assert.True(t, IsValidStatus(StatusConfirmed))
	assert.True(t, IsValidStatus(StatusCancelled))
	assert.False(t, IsValidStatus(OrderStatus("shipped")))
	assert.False(t, IsValidStatus(OrderStatus("")))
}

func TestProductAvailableClampsAtZero(t *testing.T) {
	p := Product{Quantity: 5, Sold: 7}
	assert.Equal(t, 0, p.Available())

	p = Product{Quantity: 5, Sold: 2}
	assert.Equal(t, 3, p.Available())
}
