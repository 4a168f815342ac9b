package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMapGatewayStatus(t *testing.T) {
	tests := map[string]PaymentStatus{
		"settlement": PaymentStatusPaid,
		"capture":    PaymentStatusPaid,
		"pending":    PaymentStatusPending,
		"expire":     PaymentStatusExpired,
		"expired":    PaymentStatusExpired,
		"deny":       PaymentStatusFailed,
		"cancel":     PaymentStatusFailed,
		"failure":    PaymentStatusFailed,
		"refund":     PaymentStatusPending,
		"":           PaymentStatusPending,
	}
	for in, want := range tests {
		assert.Equal(t, want, MapGatewayStatus(in), in)
	}
}

func TestTransaction_Reusable(t *testing.T) {
	url := "https://pay.example/tok"
	empty := ""

	assert.True(t, (&Transaction{PaymentStatus: PaymentStatusPending, PaymentURL: &url}).Reusable())
	assert.False(t, (&Transaction{PaymentStatus: PaymentStatusPending}).Reusable())
	assert.False(t, (&Transaction{PaymentStatus: PaymentStatusPending, PaymentURL: &empty}).Reusable())
	assert.False(t, (&Transaction{PaymentStatus: PaymentStatusFailed, PaymentURL: &url}).Reusable())
}

func TestTransaction_AlreadyPaid(t *testing.T) {
	now := time.Now()

	assert.True(t, (&Transaction{PaymentStatus: PaymentStatusPaid, PaidAt: &now}).AlreadyPaid())
	assert.False(t, (&Transaction{PaymentStatus: PaymentStatusPaid}).AlreadyPaid())
	assert.False(t, (&Transaction{PaymentStatus: PaymentStatusPending, PaidAt: &now}).AlreadyPaid())
}
