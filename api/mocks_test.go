package api

import (
	"context"
	"time"

	"github.com/Domenick1991/ticketing/internal/domain"
	"github.com/Domenick1991/ticketing/internal/service/booking"
	"github.com/Domenick1991/ticketing/internal/service/payment"
	"github.com/stretchr/testify/mock"
)

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, actor domain.Actor, input booking.CreateBookingInput) (*booking.CreateBookingResult, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.CreateBookingResult), args.Error(1)
}

func (m *MockBookingUseCase) ListUserBookings(ctx context.Context, actor domain.Actor) ([]booking.BookingView, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]booking.BookingView), args.Error(1)
}

func (m *MockBookingUseCase) GetBooking(ctx context.Context, actor domain.Actor, id int64) (*booking.BookingView, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.BookingView), args.Error(1)
}

type MockPaymentUseCase struct {
	mock.Mock
}

func (m *MockPaymentUseCase) InitiatePayment(ctx context.Context, actor domain.Actor, bookingID int64) (*payment.Result, error) {
	args := m.Called(ctx, actor, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Result), args.Error(1)
}

func (m *MockPaymentUseCase) FailStaleSessions(ctx context.Context, olderThan time.Duration) (int, error) {
	args := m.Called(ctx, olderThan)
	return args.Int(0), args.Error(1)
}

type MockWebhookUseCase struct {
	mock.Mock
}

func (m *MockWebhookUseCase) HandleCallback(ctx context.Context, body []byte) error {
	args := m.Called(ctx, body)
	return args.Error(0)
}

type MockEventUseCase struct {
	mock.Mock
}

func (m *MockEventUseCase) GetEvent(ctx context.Context, id int64) (*domain.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func (m *MockEventUseCase) UpdateCapacity(ctx context.Context, actor domain.Actor, id int64, maxParticipants int) (*domain.Event, error) {
	args := m.Called(ctx, actor, id, maxParticipants)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

type MockTicketUseCase struct {
	mock.Mock
}

func (m *MockTicketUseCase) ListUserTickets(ctx context.Context, actor domain.Actor) ([]domain.Ticket, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Ticket), args.Error(1)
}
