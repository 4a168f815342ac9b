package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/Domenick1991/ticketing/internal/domain"
	"github.com/Domenick1991/ticketing/internal/middleware"
	"github.com/Domenick1991/ticketing/internal/service/payment"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPaymentHandler_pay(t *testing.T) {
	mockService := &MockPaymentUseCase{}
	handler := NewPaymentHandler(mockService)

	c, w := newContext("POST", "/api/bookings/5/pay", nil)
	c.Params = gin.Params{{Key: "id", Value: "5"}}
	middleware.SetActor(c, customer)

	token := "snap-token"
	url := "https://app.sandbox.midtrans.com/snap/v2/vtweb/snap-token"
	result := &payment.Result{
		Booking: testBooking(),
		Transaction: domain.Transaction{
			ID:            3,
			OrderID:       "ORDER-20251221-001",
			BookingID:     5,
			AmountCents:   20000000,
			PaymentStatus: domain.PaymentStatusPending,
			GatewayToken:  &token,
			PaymentURL:    &url,
			CreatedAt:     time.Date(2025, 12, 21, 10, 0, 0, 0, time.UTC),
		},
	}
	mockService.On("InitiatePayment", mock.Anything, customer, int64(5)).Return(result, nil)

	handler.pay(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response paymentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "BKG-20251221-001", response.Data.Booking.BookingID)
	assert.Equal(t, "200000.00", response.Data.Booking.TotalAmount)
	require.NotNil(t, response.Data.Transaction)
	assert.Equal(t, "ORDER-20251221-001", response.Data.Transaction.OrderID)
	assert.Equal(t, "200000.00", response.Data.Transaction.Amount)
	assert.Equal(t, token, *response.Data.Transaction.PaymentToken)
	assert.Equal(t, url, *response.Links["redirect_to_payment"])

	mockService.AssertExpectations(t)
}

func TestPaymentHandler_payErrors(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "not owner",
			err:         fmt.Errorf("%w: booking belongs to another user", domain.ErrForbidden),
			wantStatus:  http.StatusForbidden,
			wantMessage: "Forbidden.",
		},
		{
			name:        "missing booking",
			err:         domain.ErrNotFound,
			wantStatus:  http.StatusNotFound,
			wantMessage: "Booking not found.",
		},
		{
			name:        "gateway rejected",
			err:         fmt.Errorf("create session: %w", domain.ErrGateway),
			wantStatus:  http.StatusBadGateway,
			wantMessage: "Failed to create payment session.",
		},
		{
			name:        "booking not pending",
			err:         domain.NewFieldError(domain.ErrInvalidState, "booking", "Booking status must be pending to proceed payment."),
			wantStatus:  http.StatusUnprocessableEntity,
			wantMessage: "Validation error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockPaymentUseCase{}
			handler := NewPaymentHandler(mockService)

			c, w := newContext("POST", "/api/bookings/5/pay", nil)
			c.Params = gin.Params{{Key: "id", Value: "5"}}
			middleware.SetActor(c, customer)
			mockService.On("InitiatePayment", mock.Anything, customer, int64(5)).Return(nil, tt.err)

			handler.pay(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			var body struct {
				Message string `json:"message"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantMessage, body.Message)
		})
	}
}
