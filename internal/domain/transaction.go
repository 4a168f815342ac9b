package domain

import (
	"encoding/json"
	"time"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
	PaymentStatusExpired PaymentStatus = "expired"
)

type Transaction struct {
	ID                   int64
	OrderID              string
	BookingID            int64
	AmountCents          int64
	PaymentStatus        PaymentStatus
	PaymentType          *string
	GatewayTransactionID *string
	GatewayToken         *string
	PaymentURL           *string
	Signature            *string
	PaidAt               *time.Time
	CallbackResponse     json.RawMessage
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Reusable reports whether the transaction still carries a live checkout session.
func (t *Transaction) Reusable() bool {
	return t.PaymentStatus == PaymentStatusPending && t.PaymentURL != nil && *t.PaymentURL != ""
}

// AlreadyPaid is true once the first paid transition has been recorded.
func (t *Transaction) AlreadyPaid() bool {
	return t.PaymentStatus == PaymentStatusPaid && t.PaidAt != nil
}

// MapGatewayStatus translates the provider's transaction_status into the internal payment status.
func MapGatewayStatus(transactionStatus string) PaymentStatus {
	switch transactionStatus {
	case "settlement", "capture":
		return PaymentStatusPaid
	case "pending":
		return PaymentStatusPending
	case "expire", "expired":
		return PaymentStatusExpired
	case "deny", "cancel", "failure":
		return PaymentStatusFailed
	default:
		return PaymentStatusPending
	}
}
