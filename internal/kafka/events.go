package kafka

import "time"

const (
	EventBookingCreated        = "booking_created"
	EventPaymentSessionCreated = "payment_session_created"
	EventPaymentStatusChanged  = "payment_status_changed"
	EventTicketsIssued         = "tickets_issued"
)

// PipelineEvent is published after a pipeline stage commits. Money fields are
// fixed-point strings.
type PipelineEvent struct {
	Type          string    `json:"type"`
	BookingID     string    `json:"booking_id"`
	EventID       int64     `json:"event_id,omitempty"`
	UserID        int64     `json:"user_id,omitempty"`
	OrderID       string    `json:"order_id,omitempty"`
	Quantity      int       `json:"quantity,omitempty"`
	Amount        string    `json:"amount,omitempty"`
	BookingStatus string    `json:"booking_status,omitempty"`
	PaymentStatus string    `json:"payment_status,omitempty"`
	TicketIDs     []string  `json:"ticket_ids,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}
