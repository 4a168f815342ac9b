package idgen

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/ticketing/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSequencer struct {
	mock.Mock
}

func (m *MockSequencer) NextDailySequence(ctx context.Context, scope, day string) (int, error) {
	args := m.Called(ctx, scope, day)
	return args.Int(0), args.Error(1)
}

func (m *MockSequencer) IdentifierExists(ctx context.Context, scope, value string) (bool, error) {
	args := m.Called(ctx, scope, value)
	return args.Bool(0), args.Error(1)
}

func fixedClock() time.Time {
	return time.Date(2025, 12, 21, 10, 30, 0, 0, time.UTC)
}

func TestGenerator_Next_FirstOfDay(t *testing.T) {
	seq := &MockSequencer{}
	ctx := context.Background()

	seq.On("NextDailySequence", ctx, ScopeBooking, "20251221").Return(1, nil).Once()
	seq.On("IdentifierExists", ctx, ScopeBooking, "BKG-20251221-001").Return(false, nil).Once()

	id, err := NewBookingIDs(fixedClock).Next(ctx, seq)

	require.NoError(t, err)
	assert.Equal(t, "BKG-20251221-001", id)
	seq.AssertExpectations(t)
}

func TestGenerator_Next_SkipsExisting(t *testing.T) {
	seq := &MockSequencer{}
	ctx := context.Background()

	seq.On("NextDailySequence", ctx, ScopeOrder, "20251221").Return(7, nil).Once()
	seq.On("IdentifierExists", ctx, ScopeOrder, "ORDER-20251221-007").Return(true, nil).Once()
	seq.On("NextDailySequence", ctx, ScopeOrder, "20251221").Return(8, nil).Once()
	seq.On("IdentifierExists", ctx, ScopeOrder, "ORDER-20251221-008").Return(false, nil).Once()

	id, err := NewOrderIDs(fixedClock).Next(ctx, seq)

	require.NoError(t, err)
	assert.Equal(t, "ORDER-20251221-008", id)
	seq.AssertExpectations(t)
}

func TestGenerator_Next_ExhaustsAttempts(t *testing.T) {
	seq := &MockSequencer{}
	ctx := context.Background()

	seq.On("NextDailySequence", ctx, ScopeBooking, "20251221").Return(3, nil).Times(MaxAttempts)
	seq.On("IdentifierExists", ctx, ScopeBooking, "BKG-20251221-003").Return(true, nil).Times(MaxAttempts)

	id, err := NewBookingIDs(fixedClock).Next(ctx, seq)

	assert.Empty(t, id)
	assert.ErrorIs(t, err, domain.ErrInternal)
	seq.AssertExpectations(t)
}

func TestGenerator_Next_SequenceError(t *testing.T) {
	seq := &MockSequencer{}
	ctx := context.Background()
	dbErr := errors.New("connection reset")

	seq.On("NextDailySequence", ctx, ScopeBooking, "20251221").Return(0, dbErr).Once()

	_, err := NewBookingIDs(fixedClock).Next(ctx, seq)

	assert.ErrorIs(t, err, dbErr)
	seq.AssertNotCalled(t, "IdentifierExists")
}

func TestFormat_WidensPastThreeDigits(t *testing.T) {
	assert.Equal(t, "BKG-20251221-042", Format("BKG", "20251221", 42))
	assert.Equal(t, "BKG-20251221-1042", Format("BKG", "20251221", 1042))
}

func TestTicketID(t *testing.T) {
	b := &domain.Booking{BookingID: "BKG-20251221-001"}

	first, err := TicketID(b, 1)
	require.NoError(t, err)
	second, err := TicketID(b, 2)
	require.NoError(t, err)

	assert.Equal(t, "TKT-20251221-00101", first)
	assert.Equal(t, "TKT-20251221-00102", second)
	assert.LessOrEqual(t, len(first), domain.MaxTicketIDLength)
}

func TestTicketID_TooLong(t *testing.T) {
	b := &domain.Booking{BookingID: "BKG-20251221-123456"}

	_, err := TicketID(b, 10)

	assert.ErrorIs(t, err, domain.ErrInternal)
}
