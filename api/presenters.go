package api

import (
	"time"

	"github.com/Domenick1991/ticketing/internal/domain"
)

type eventJSON struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	Location         string  `json:"location"`
	Address          string  `json:"address"`
	StartDate        *string `json:"start_date"`
	EndDate          *string `json:"end_date"`
	Price            string  `json:"price"`
	MaxParticipants  int     `json:"max_participants"`
	AvailableTickets int     `json:"available_tickets"`
	Status           string  `json:"status"`
	OrganizerID      int64   `json:"organizer_id"`
}

type pricingJSON struct {
	UnitPrice  string `json:"unit_price"`
	Subtotal   string `json:"subtotal"`
	ServiceFee string `json:"service_fee"`
	GrandTotal string `json:"grand_total"`
}

type bookingJSON struct {
	ID                int64            `json:"id"`
	BookingID         string           `json:"booking_id"`
	EventID           int64            `json:"event_id"`
	UserID            int64            `json:"user_id"`
	Status            string           `json:"status"`
	Quantity          int              `json:"quantity"`
	TotalAmount       string           `json:"total_amount"`
	CustomerName      string           `json:"customer_name"`
	CustomerEmail     string           `json:"customer_email"`
	CustomerPhone     *string          `json:"customer_phone"`
	Gender            *string          `json:"gender"`
	CreatedAt         *string          `json:"created_at"`
	Event             *eventJSON       `json:"event,omitempty"`
	Pricing           *pricingJSON     `json:"pricing,omitempty"`
	LatestTransaction *transactionJSON `json:"latest_transaction,omitempty"`
}

type transactionJSON struct {
	ID            int64   `json:"id"`
	OrderID       string  `json:"order_id"`
	Amount        string  `json:"amount"`
	PaymentStatus string  `json:"payment_status"`
	PaymentType   *string `json:"payment_type"`
	PaymentToken  *string `json:"payment_token"`
	PaymentURL    *string `json:"payment_url"`
	PaidAt        *string `json:"paid_at"`
	CreatedAt     *string `json:"created_at"`
}

type ticketJSON struct {
	ID          int64   `json:"id"`
	TicketID    string  `json:"ticket_id"`
	BookingID   int64   `json:"booking_id"`
	QRCode      string  `json:"qr_code"`
	Status      string  `json:"status"`
	CheckedInAt *string `json:"checked_in_at"`
	CheckedInBy *string `json:"checked_in_by"`
	CreatedAt   *string `json:"created_at"`
}

// isoZulu renders timestamps as RFC 3339 in UTC ("2025-12-21T10:00:00Z").
func isoZulu(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func isoZuluPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	return isoZulu(*t)
}

func toEventJSON(e *domain.Event) *eventJSON {
	if e == nil {
		return nil
	}
	return &eventJSON{
		ID:               e.ID,
		Title:            e.Title,
		Location:         e.Location,
		Address:          e.Address,
		StartDate:        isoZulu(e.StartDate),
		EndDate:          isoZulu(e.EndDate),
		Price:            domain.FormatMoney(e.PriceCents),
		MaxParticipants:  e.MaxParticipants,
		AvailableTickets: e.EffectiveAvailability(),
		Status:           string(e.Status),
		OrganizerID:      e.OrganizerID,
	}
}

func toPricingJSON(p domain.Pricing) *pricingJSON {
	return &pricingJSON{
		UnitPrice:  domain.FormatMoney(p.UnitPriceCents),
		Subtotal:   domain.FormatMoney(p.SubtotalCents),
		ServiceFee: domain.FormatMoney(p.ServiceFeeCents),
		GrandTotal: domain.FormatMoney(p.GrandTotalCents),
	}
}

func toBookingJSON(b domain.Booking) bookingJSON {
	return bookingJSON{
		ID:            b.ID,
		BookingID:     b.BookingID,
		EventID:       b.EventID,
		UserID:        b.UserID,
		Status:        string(b.Status),
		Quantity:      b.Quantity,
		TotalAmount:   domain.FormatMoney(b.TotalCents),
		CustomerName:  b.CustomerName,
		CustomerEmail: b.CustomerEmail,
		CustomerPhone: b.CustomerPhone,
		Gender:        b.Gender,
		CreatedAt:     isoZulu(b.CreatedAt),
	}
}

func toTransactionJSON(t *domain.Transaction) *transactionJSON {
	if t == nil {
		return nil
	}
	return &transactionJSON{
		ID:            t.ID,
		OrderID:       t.OrderID,
		Amount:        domain.FormatMoney(t.AmountCents),
		PaymentStatus: string(t.PaymentStatus),
		PaymentType:   t.PaymentType,
		PaymentToken:  t.GatewayToken,
		PaymentURL:    t.PaymentURL,
		PaidAt:        isoZuluPtr(t.PaidAt),
		CreatedAt:     isoZulu(t.CreatedAt),
	}
}

func toTicketJSON(t domain.Ticket) ticketJSON {
	return ticketJSON{
		ID:          t.ID,
		TicketID:    t.TicketID,
		BookingID:   t.BookingID,
		QRCode:      t.QRCode,
		Status:      string(t.Status),
		CheckedInAt: isoZuluPtr(t.CheckedInAt),
		CheckedInBy: t.CheckedInBy,
		CreatedAt:   isoZulu(t.CreatedAt),
	}
}
