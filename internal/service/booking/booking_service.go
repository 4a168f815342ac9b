package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/ticketing/internal/domain"
	"github.com/Domenick1991/ticketing/internal/idgen"
	"github.com/Domenick1991/ticketing/internal/kafka"
	"github.com/Domenick1991/ticketing/internal/repository"
)

// ListLimit caps list endpoints; pagination is handled elsewhere.
const ListLimit = 100

var allowedGenders = map[string]bool{"Laki-Laki": true, "Perempuan": true}

type BookingUseCase interface {
	CreateBooking(ctx context.Context, actor domain.Actor, input CreateBookingInput) (*CreateBookingResult, error)
	ListUserBookings(ctx context.Context, actor domain.Actor) ([]BookingView, error)
	GetBooking(ctx context.Context, actor domain.Actor, id int64) (*BookingView, error)
}

type EventCache interface {
	InvalidateEvent(ctx context.Context, id int64) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type CreateBookingInput struct {
	EventID       int64   `json:"event_id"`
	Quantity      int     `json:"quantity"`
	CustomerName  string  `json:"customer_name"`
	CustomerEmail string  `json:"customer_email"`
	CustomerPhone *string `json:"customer_phone"`
	Gender        *string `json:"gender"`
}

type CreateBookingResult struct {
	Booking domain.Booking
	Event   domain.Event
	Pricing domain.Pricing
}

// BookingView is a booking with its latest payment attempt, if any.
type BookingView struct {
	Booking     domain.Booking
	Event       *domain.Event
	Transaction *domain.Transaction
}

type BookingService struct {
	store    repository.Store
	ids      *idgen.Generator
	cache    EventCache
	producer Producer
	topic    string
	now      func() time.Time
}

type BookingServiceOption func(*BookingService)

func WithCache(cache EventCache) BookingServiceOption {
	return func(s *BookingService) {
		s.cache = cache
	}
}

func WithProducer(producer Producer, topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.topic = topic
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func NewBookingService(store repository.Store, opts ...BookingServiceOption) *BookingService {
	service := &BookingService{store: store, now: time.Now}
	for _, opt := range opts {
		opt(service)
	}
	service.ids = idgen.NewBookingIDs(service.now)
	return service
}

func (input CreateBookingInput) Validate() error {
	verr := &domain.ValidationError{}
	if input.EventID <= 0 {
		verr.Add("event_id", "The event id field is required.")
	}
	switch {
	case input.Quantity < 1:
		verr.Add("quantity", "The quantity field must be at least 1.")
	case input.Quantity > idgen.MaxTicketsPerBooking:
		verr.Add("quantity", "The quantity field must not be greater than "+strconv.Itoa(idgen.MaxTicketsPerBooking)+".")
	}

	name := strings.TrimSpace(input.CustomerName)
	switch {
	case name == "":
		verr.Add("customer_name", "The customer name field is required.")
	case len(name) > 255:
		verr.Add("customer_name", "The customer name field must not be greater than 255 characters.")
	}

	email := strings.TrimSpace(input.CustomerEmail)
	switch {
	case email == "":
		verr.Add("customer_email", "The customer email field is required.")
	case len(email) > 255:
		verr.Add("customer_email", "The customer email field must not be greater than 255 characters.")
	case !validEmail(email):
		verr.Add("customer_email", "The customer email field must be a valid email address.")
	}

	if input.CustomerPhone != nil && len(*input.CustomerPhone) > 30 {
		verr.Add("customer_phone", "The customer phone field must not be greater than 30 characters.")
	}
	if input.Gender != nil && !allowedGenders[*input.Gender] {
		verr.Add("gender", "The selected gender is invalid.")
	}

	if verr.Empty() {
		return nil
	}
	return verr
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndex(email, "@")
	return at > 0 && strings.Contains(email[at+1:], ".")
}

func (s *BookingService) CreateBooking(ctx context.Context, actor domain.Actor, input CreateBookingInput) (*CreateBookingResult, error) {
	if !actor.Is(domain.RoleUser) {
		return nil, fmt.Errorf("%w: only customers can book tickets", domain.ErrForbidden)
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var result *CreateBookingResult
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		event, err := tx.LockEvent(ctx, input.EventID)
		if err != nil {
			return err
		}
		if event.Status != domain.EventStatusPublished {
			return domain.NewFieldError(domain.ErrInvalidState, "quantity", "Event is not available for booking.")
		}

		available := event.EffectiveAvailability()
		if input.Quantity > available {
			return domain.NewFieldError(domain.ErrConflict, "quantity",
				"Not enough tickets available. Available: "+strconv.Itoa(available)+".")
		}

		pricing := domain.NewPricing(event.PriceCents, input.Quantity)

		bookingID, err := s.ids.Next(ctx, tx)
		if err != nil {
			return err
		}
		// the last ticket id is the longest one; it must fit before payment is possible
		if _, err := idgen.TicketID(&domain.Booking{BookingID: bookingID}, input.Quantity); err != nil {
			return domain.NewFieldError(domain.ErrValidation, "quantity", "The quantity is too large for a single booking.")
		}

		booking := &domain.Booking{
			BookingID:     bookingID,
			EventID:       event.ID,
			UserID:        actor.UserID,
			Quantity:      input.Quantity,
			TotalCents:    pricing.SubtotalCents,
			CustomerName:  strings.TrimSpace(input.CustomerName),
			CustomerEmail: strings.TrimSpace(input.CustomerEmail),
			CustomerPhone: input.CustomerPhone,
			Gender:        input.Gender,
			Status:        domain.BookingStatusPending,
		}
		if err := tx.InsertBooking(ctx, booking); err != nil {
			return fmt.Errorf("insert booking: %w", err)
		}

		event.AvailableTickets = available - input.Quantity
		if err := tx.SaveEventStock(ctx, event); err != nil {
			return fmt.Errorf("update event stock: %w", err)
		}

		result = &CreateBookingResult{Booking: *booking, Event: *event, Pricing: pricing}
		return nil
	})
	if err != nil {
		if !domain.IsBusiness(err) {
			log.Printf("[booking] create failed user=%d event=%d: %v", actor.UserID, input.EventID, err)
		}
		return nil, err
	}

	log.Printf("[booking] created %s user=%d event=%d qty=%d", result.Booking.BookingID, actor.UserID, input.EventID, input.Quantity)

	if s.cache != nil {
		if err := s.cache.InvalidateEvent(ctx, result.Event.ID); err != nil {
			log.Printf("[booking] invalidate event %d cache: %v", result.Event.ID, err)
		}
	}
	s.publish(ctx, kafka.PipelineEvent{
		Type:          kafka.EventBookingCreated,
		BookingID:     result.Booking.BookingID,
		EventID:       result.Booking.EventID,
		UserID:        result.Booking.UserID,
		Quantity:      result.Booking.Quantity,
		Amount:        domain.FormatMoney(result.Booking.TotalCents),
		BookingStatus: string(result.Booking.Status),
		OccurredAt:    s.now().UTC(),
	})
	return result, nil
}

func (s *BookingService) ListUserBookings(ctx context.Context, actor domain.Actor) ([]BookingView, error) {
	if !actor.Is(domain.RoleUser) {
		return nil, fmt.Errorf("%w: only customers have bookings", domain.ErrForbidden)
	}
	bookings, err := s.store.ListBookingsByUser(ctx, actor.UserID, ListLimit)
	if err != nil {
		return nil, err
	}

	views := make([]BookingView, 0, len(bookings))
	events := make(map[int64]*domain.Event)
	for _, b := range bookings {
		view, err := s.view(ctx, b, events)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

func (s *BookingService) GetBooking(ctx context.Context, actor domain.Actor, id int64) (*BookingView, error) {
	if !actor.Is(domain.RoleAdmin) {
		return nil, fmt.Errorf("%w: admin only", domain.ErrForbidden)
	}
	b, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, *b, map[int64]*domain.Event{})
}

func (s *BookingService) view(ctx context.Context, b domain.Booking, events map[int64]*domain.Event) (*BookingView, error) {
	view := &BookingView{Booking: b}

	event, ok := events[b.EventID]
	if !ok {
		e, err := s.store.GetEvent(ctx, b.EventID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		event = e
		events[b.EventID] = e
	}
	view.Event = event

	txn, err := s.store.LatestTransaction(ctx, b.ID)
	switch {
	case err == nil:
		view.Transaction = txn
	case errors.Is(err, domain.ErrNotFound):
	default:
		return nil, err
	}
	return view, nil
}

func (s *BookingService) publish(ctx context.Context, event kafka.PipelineEvent) {
	if s.producer == nil || s.topic == "" {
		return
	}
	if err := s.producer.Publish(ctx, s.topic, event.BookingID, event); err != nil {
		log.Printf("[booking] WARNING: failed to publish %s for %s: %v", event.Type, event.BookingID, err)
	}
}

var _ BookingUseCase = (*BookingService)(nil)
