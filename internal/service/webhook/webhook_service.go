package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Domenick1991/ticketing/internal/domain"
	"github.com/Domenick1991/ticketing/internal/gateway"
	"github.com/Domenick1991/ticketing/internal/idgen"
	"github.com/Domenick1991/ticketing/internal/kafka"
	"github.com/Domenick1991/ticketing/internal/repository"
	"github.com/Domenick1991/ticketing/internal/ticketcode"
)

type WebhookUseCase interface {
	HandleCallback(ctx context.Context, body []byte) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type WebhookService struct {
	store     repository.Store
	serverKey string
	encoder   ticketcode.Encoder
	producer  Producer
	topic     string
	now       func() time.Time
}

type WebhookServiceOption func(*WebhookService)

func WithEncoder(encoder ticketcode.Encoder) WebhookServiceOption {
	return func(s *WebhookService) {
		s.encoder = encoder
	}
}

func WithProducer(producer Producer, topic string) WebhookServiceOption {
	return func(s *WebhookService) {
		s.producer = producer
		s.topic = topic
	}
}

func WithClock(now func() time.Time) WebhookServiceOption {
	return func(s *WebhookService) {
		s.now = now
	}
}

func NewWebhookService(store repository.Store, serverKey string, opts ...WebhookServiceOption) *WebhookService {
	service := &WebhookService{
		store:     store,
		serverKey: serverKey,
		encoder:   ticketcode.Base64{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// outcome collects what a callback changed, for logging and events.
type outcome struct {
	booking       domain.Booking
	txn           domain.Transaction
	statusChanged bool
	tickets       []string
}

// HandleCallback reconciles one gateway notification. It returns
// domain.ErrInvalidSignature when the notification cannot be authenticated;
// every other problem is logged and swallowed so the gateway stops retrying.
func (s *WebhookService) HandleCallback(ctx context.Context, body []byte) error {
	if s.serverKey == "" {
		log.Printf("[webhook] server key not configured, ignoring notification: %s", string(body))
		return nil
	}

	n, err := gateway.ParseNotification(body)
	if err != nil {
		log.Printf("[webhook] malformed notification: %v payload=%s", err, string(body))
		return domain.ErrInvalidSignature
	}
	if !n.Verify(s.serverKey) {
		log.Printf("[webhook] invalid signature for order %q", n.OrderID)
		return domain.ErrInvalidSignature
	}

	raw := json.RawMessage(body)
	if !json.Valid(raw) {
		raw = nil
	}

	var result *outcome
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		result, err = s.reconcile(ctx, tx, n, raw)
		return err
	})
	if err != nil {
		log.Printf("[webhook] processing failed for order %q: %v payload=%s", n.OrderID, err, string(body))
		return nil
	}
	if result == nil {
		return nil
	}

	if result.statusChanged {
		s.publish(ctx, kafka.PipelineEvent{
			Type:          kafka.EventPaymentStatusChanged,
			BookingID:     result.booking.BookingID,
			EventID:       result.booking.EventID,
			UserID:        result.booking.UserID,
			OrderID:       result.txn.OrderID,
			Amount:        domain.FormatMoney(result.txn.AmountCents),
			BookingStatus: string(result.booking.Status),
			PaymentStatus: string(result.txn.PaymentStatus),
			OccurredAt:    s.now().UTC(),
		})
	}
	if len(result.tickets) > 0 {
		log.Printf("[webhook] issued %d tickets for booking %s", len(result.tickets), result.booking.BookingID)
		s.publish(ctx, kafka.PipelineEvent{
			Type:       kafka.EventTicketsIssued,
			BookingID:  result.booking.BookingID,
			EventID:    result.booking.EventID,
			UserID:     result.booking.UserID,
			OrderID:    result.txn.OrderID,
			Quantity:   len(result.tickets),
			TicketIDs:  result.tickets,
			OccurredAt: s.now().UTC(),
		})
	}
	return nil
}

func (s *WebhookService) reconcile(ctx context.Context, tx repository.Tx, n *gateway.Notification, raw json.RawMessage) (*outcome, error) {
	orderID := n.OrderID.String()

	txn, err := tx.LockTransactionByOrderID(ctx, orderID)
	if errors.Is(err, domain.ErrNotFound) {
		log.Printf("[webhook] transaction not found for order %q, payload=%s", orderID, string(raw))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	booking, err := tx.LockBooking(ctx, txn.BookingID)
	if errors.Is(err, domain.ErrNotFound) {
		log.Printf("[webhook] booking %d not found for order %q, payload=%s", txn.BookingID, orderID, string(raw))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	terminal := txn.PaymentStatus != domain.PaymentStatusPending
	expectedGross := domain.FormatMoney(booking.GrossCents())

	if n.GrossAmount.String() != expectedGross {
		log.Printf("[webhook] gross_amount mismatch order=%s expected=%s got=%s booking=%s",
			orderID, expectedGross, n.GrossAmount, booking.BookingID)
		if terminal {
			return nil, nil
		}
		txn.PaymentStatus = domain.PaymentStatusFailed
		s.applyMetadata(txn, n, raw)
		if err := tx.UpdateTransaction(ctx, txn); err != nil {
			return nil, fmt.Errorf("mark transaction failed: %w", err)
		}
		return &outcome{booking: *booking, txn: *txn, statusChanged: true}, nil
	}

	newStatus := domain.MapGatewayStatus(n.TransactionStatus.String())
	alreadyPaid := txn.AlreadyPaid()

	// Only pending transactions move; a paid one may still be refreshed by a
	// repeated paid notification so missing tickets get topped up.
	if terminal && !(alreadyPaid && newStatus == domain.PaymentStatusPaid) {
		log.Printf("[webhook] ignoring %s for order %s already %s", n.TransactionStatus, orderID, txn.PaymentStatus)
		return nil, nil
	}

	previous := txn.PaymentStatus
	txn.PaymentStatus = newStatus
	txn.AmountCents = booking.GrossCents()
	s.applyMetadata(txn, n, raw)
	if newStatus == domain.PaymentStatusPaid && !alreadyPaid {
		paidAt := s.now().UTC()
		txn.PaidAt = &paidAt
	}
	if err := tx.UpdateTransaction(ctx, txn); err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}

	result := &outcome{txn: *txn, statusChanged: previous != newStatus}
	if newStatus != domain.PaymentStatusPaid {
		result.booking = *booking
		return result, nil
	}

	if booking.Status != domain.BookingStatusConfirmed {
		if err := tx.UpdateBookingStatus(ctx, booking.ID, domain.BookingStatusConfirmed); err != nil {
			return nil, fmt.Errorf("confirm booking: %w", err)
		}
		booking.Status = domain.BookingStatusConfirmed
	}
	result.booking = *booking

	tickets, err := s.issueTickets(ctx, tx, booking)
	if err != nil {
		return nil, err
	}
	result.tickets = tickets
	return result, nil
}

func (s *WebhookService) applyMetadata(txn *domain.Transaction, n *gateway.Notification, raw json.RawMessage) {
	txn.PaymentType = optional(n.PaymentType.String())
	txn.GatewayTransactionID = optional(n.TransactionID.String())
	txn.Signature = optional(n.SignatureKey.String())
	txn.CallbackResponse = raw
}

// issueTickets creates only the tickets that are still missing. The booking
// row is locked by the caller, so concurrent deliveries see the same count.
func (s *WebhookService) issueTickets(ctx context.Context, tx repository.Tx, booking *domain.Booking) ([]string, error) {
	existing, err := tx.CountTickets(ctx, booking.ID)
	if err != nil {
		return nil, fmt.Errorf("count tickets: %w", err)
	}
	missing := booking.Quantity - existing
	if missing <= 0 {
		return nil, nil
	}

	issued := make([]string, 0, missing)
	for i := 1; i <= missing; i++ {
		ticketID, err := idgen.TicketID(booking, existing+i)
		if err != nil {
			return nil, err
		}
		code, err := s.encoder.Encode(ticketID)
		if err != nil {
			return nil, fmt.Errorf("encode ticket %s: %w", ticketID, err)
		}
		ticket := &domain.Ticket{
			TicketID:  ticketID,
			BookingID: booking.ID,
			QRCode:    code,
			Status:    domain.TicketStatusActive,
		}
		if err := tx.InsertTicket(ctx, ticket); err != nil {
			return nil, fmt.Errorf("insert ticket %s: %w", ticketID, err)
		}
		issued = append(issued, ticketID)
	}
	return issued, nil
}

func (s *WebhookService) publish(ctx context.Context, event kafka.PipelineEvent) {
	if s.producer == nil || s.topic == "" {
		return
	}
	if err := s.producer.Publish(ctx, s.topic, event.BookingID, event); err != nil {
		log.Printf("[webhook] WARNING: failed to publish %s for %s: %v", event.Type, event.BookingID, err)
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

var _ WebhookUseCase = (*WebhookService)(nil)
