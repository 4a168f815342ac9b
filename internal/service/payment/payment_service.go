package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/Domenick1991/ticketing/internal/domain"
	"github.com/Domenick1991/ticketing/internal/gateway"
	"github.com/Domenick1991/ticketing/internal/idgen"
	"github.com/Domenick1991/ticketing/internal/kafka"
	"github.com/Domenick1991/ticketing/internal/repository"
)

const (
	defaultGatewayTimeout = 20 * time.Second
	defaultLockTTL        = 30 * time.Second
	staleBatchSize        = 100
)

type PaymentUseCase interface {
	InitiatePayment(ctx context.Context, actor domain.Actor, bookingID int64) (*Result, error)
	FailStaleSessions(ctx context.Context, olderThan time.Duration) (int, error)
}

type Gateway interface {
	Configured() bool
	CreateSession(ctx context.Context, req gateway.SessionRequest) (*gateway.Session, error)
}

// Locker serializes payment initiation per booking across instances.
type Locker interface {
	AcquirePaymentLock(ctx context.Context, bookingID int64, ttl time.Duration) (token string, ok bool, err error)
	ReleasePaymentLock(ctx context.Context, bookingID int64, token string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type Result struct {
	Booking     domain.Booking
	Transaction domain.Transaction
	// Reused is set when an existing live session was returned.
	Reused bool
}

type PaymentService struct {
	store          repository.Store
	gateway        Gateway
	locker         Locker
	lockTTL        time.Duration
	gatewayTimeout time.Duration
	ids            *idgen.Generator
	producer       Producer
	topic          string
	now            func() time.Time
}

type PaymentServiceOption func(*PaymentService)

func WithLocker(locker Locker, ttl time.Duration) PaymentServiceOption {
	return func(s *PaymentService) {
		s.locker = locker
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

func WithGatewayTimeout(timeout time.Duration) PaymentServiceOption {
	return func(s *PaymentService) {
		if timeout > 0 {
			s.gatewayTimeout = timeout
		}
	}
}

func WithProducer(producer Producer, topic string) PaymentServiceOption {
	return func(s *PaymentService) {
		s.producer = producer
		s.topic = topic
	}
}

func WithClock(now func() time.Time) PaymentServiceOption {
	return func(s *PaymentService) {
		s.now = now
	}
}

func NewPaymentService(store repository.Store, gw Gateway, opts ...PaymentServiceOption) *PaymentService {
	service := &PaymentService{
		store:          store,
		gateway:        gw,
		lockTTL:        defaultLockTTL,
		gatewayTimeout: defaultGatewayTimeout,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	service.ids = idgen.NewOrderIDs(service.now)
	return service
}

// InitiatePayment creates (or reuses) a gateway checkout session for a
// pending booking. The pending transaction is committed before the gateway is
// called and the outcome is recorded in a second transaction, so no row lock
// is held across the network call.
func (s *PaymentService) InitiatePayment(ctx context.Context, actor domain.Actor, bookingID int64) (*Result, error) {
	if !actor.Is(domain.RoleUser) {
		return nil, fmt.Errorf("%w: only customers can pay for bookings", domain.ErrForbidden)
	}
	if s.gateway == nil || !s.gateway.Configured() {
		log.Printf("[payment] gateway server key is not configured")
		return nil, fmt.Errorf("%w: payment gateway is not configured", domain.ErrInternal)
	}

	if s.locker != nil {
		token, ok, err := s.locker.AcquirePaymentLock(ctx, bookingID, s.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("%w: acquire payment lock: %v", domain.ErrInternal, err)
		}
		if !ok {
			return nil, domain.NewFieldError(domain.ErrConflict, "booking", "A payment for this booking is already in progress.")
		}
		defer func() {
			if err := s.locker.ReleasePaymentLock(context.WithoutCancel(ctx), bookingID, token); err != nil {
				log.Printf("[payment] release lock for booking %d: %v", bookingID, err)
			}
		}()
	}

	var (
		booking domain.Booking
		event   domain.Event
		txn     domain.Transaction
		reused  bool
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		b, err := tx.LockBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.UserID != actor.UserID {
			return fmt.Errorf("%w: booking belongs to another user", domain.ErrForbidden)
		}
		if b.Status != domain.BookingStatusPending {
			return domain.NewFieldError(domain.ErrInvalidState, "booking", "Booking status must be pending to proceed payment.")
		}

		e, err := tx.GetEvent(ctx, b.EventID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if e == nil || e.Status != domain.EventStatusPublished {
			return domain.NewFieldError(domain.ErrInvalidState, "event", "Event is not available for payment.")
		}
		booking, event = *b, *e

		existing, err := tx.FindReusableTransaction(ctx, b.ID)
		if err != nil {
			return err
		}
		if existing != nil && existing.Reusable() {
			txn, reused = *existing, true
			return nil
		}

		orderID, err := s.ids.Next(ctx, tx)
		if err != nil {
			return err
		}
		txn = domain.Transaction{
			OrderID:       orderID,
			BookingID:     b.ID,
			AmountCents:   b.TotalCents,
			PaymentStatus: domain.PaymentStatusPending,
		}
		if err := tx.InsertTransaction(ctx, &txn); err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		if !domain.IsBusiness(err) {
			log.Printf("[payment] prepare booking=%d user=%d: %v", bookingID, actor.UserID, err)
		}
		return nil, err
	}

	if reused {
		log.Printf("[payment] reusing session %s for booking %s", txn.OrderID, booking.BookingID)
		return &Result{Booking: booking, Transaction: txn, Reused: true}, nil
	}

	gross := domain.GrossAmount(booking.GrossCents())
	req := gateway.SessionRequest{
		OrderID:     txn.OrderID,
		GrossAmount: gross,
		Customer: gateway.Customer{
			FirstName: booking.CustomerName,
			Email:     booking.CustomerEmail,
			Phone:     deref(booking.CustomerPhone),
		},
		Items: []gateway.Item{{
			ID:       "EVENT-" + strconv.FormatInt(event.ID, 10),
			Price:    gross,
			Quantity: 1,
			Name:     itemName(event.Title),
		}},
	}

	callCtx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	session, gwErr := s.gateway.CreateSession(callCtx, req)
	cancel()

	recorded, err := s.recordSession(context.WithoutCancel(ctx), txn.ID, session, gwErr)
	if err != nil {
		log.Printf("[payment] record session order=%s: %v", txn.OrderID, err)
		return nil, err
	}
	if gwErr != nil {
		log.Printf("[payment] gateway session failed order=%s: %v raw=%s", txn.OrderID, gwErr, string(recorded.CallbackResponse))
		return nil, fmt.Errorf("%w: failed to create payment session", domain.ErrGateway)
	}

	log.Printf("[payment] session created order=%s booking=%s gross=%d", txn.OrderID, booking.BookingID, gross)
	s.publish(ctx, kafka.PipelineEvent{
		Type:          kafka.EventPaymentSessionCreated,
		BookingID:     booking.BookingID,
		EventID:       booking.EventID,
		UserID:        booking.UserID,
		OrderID:       recorded.OrderID,
		Amount:        domain.FormatMoney(booking.GrossCents()),
		PaymentStatus: string(recorded.PaymentStatus),
		OccurredAt:    s.now().UTC(),
	})
	return &Result{Booking: booking, Transaction: *recorded}, nil
}

// recordSession stores the gateway outcome on the transaction created earlier.
// A failed call marks the transaction failed so the next attempt starts fresh.
func (s *PaymentService) recordSession(ctx context.Context, txnID int64, session *gateway.Session, gwErr error) (*domain.Transaction, error) {
	var recorded *domain.Transaction
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		txn, err := tx.LockTransaction(ctx, txnID)
		if err != nil {
			return err
		}
		if txn.PaymentStatus != domain.PaymentStatusPending {
			recorded = txn
			return nil
		}

		if gwErr != nil {
			txn.PaymentStatus = domain.PaymentStatusFailed
			txn.CallbackResponse = failureRaw(gwErr)
		} else {
			txn.GatewayToken = &session.Token
			txn.PaymentURL = &session.RedirectURL
			txn.CallbackResponse = session.Raw
		}
		if err := tx.UpdateTransaction(ctx, txn); err != nil {
			return fmt.Errorf("update transaction: %w", err)
		}
		recorded = txn
		return nil
	})
	return recorded, err
}

// FailStaleSessions marks pending transactions that never received a gateway
// session as failed. Such rows are left behind when the process stops between
// creating the transaction and recording the gateway response.
func (s *PaymentService) FailStaleSessions(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := s.now().Add(-olderThan)
	stale, err := s.store.ListStaleSessions(ctx, cutoff, staleBatchSize)
	if err != nil {
		return 0, err
	}

	failed := 0
	for _, candidate := range stale {
		marked := false
		err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
			txn, err := tx.LockTransaction(ctx, candidate.ID)
			if err != nil {
				return err
			}
			if txn.PaymentStatus != domain.PaymentStatusPending || txn.GatewayToken != nil || txn.PaymentURL != nil {
				return nil
			}
			txn.PaymentStatus = domain.PaymentStatusFailed
			txn.CallbackResponse = json.RawMessage(`{"error":"payment session was never recorded"}`)
			if err := tx.UpdateTransaction(ctx, txn); err != nil {
				return err
			}
			marked = true
			return nil
		})
		if err != nil {
			return failed, fmt.Errorf("fail stale session %s: %w", candidate.OrderID, err)
		}
		if marked {
			failed++
			log.Printf("[payment] marked stale session %s as failed", candidate.OrderID)
		}
	}
	return failed, nil
}

func (s *PaymentService) publish(ctx context.Context, event kafka.PipelineEvent) {
	if s.producer == nil || s.topic == "" {
		return
	}
	if err := s.producer.Publish(ctx, s.topic, event.BookingID, event); err != nil {
		log.Printf("[payment] WARNING: failed to publish %s for %s: %v", event.Type, event.BookingID, err)
	}
}

func failureRaw(err error) json.RawMessage {
	var gwErr *gateway.Error
	if errors.As(err, &gwErr) && len(gwErr.Raw) > 0 {
		return gwErr.Raw
	}
	raw, _ := json.Marshal(map[string]string{"error": err.Error()})
	return raw
}

func itemName(title string) string {
	if title == "" {
		return "Event Booking"
	}
	return title
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var _ PaymentUseCase = (*PaymentService)(nil)
