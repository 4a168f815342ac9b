package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/ticketing/internal/domain"
	"github.com/Domenick1991/ticketing/internal/service/payment"
	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	service payment.PaymentUseCase
}

type paymentBookingJSON struct {
	ID          int64  `json:"id"`
	BookingID   string `json:"booking_id"`
	Status      string `json:"status"`
	TotalAmount string `json:"total_amount"`
}

type paymentResponse struct {
	Data struct {
		Booking     paymentBookingJSON `json:"booking"`
		Transaction *transactionJSON   `json:"transaction"`
	} `json:"data"`
	Links map[string]*string `json:"links"`
}

func NewPaymentHandler(service payment.PaymentUseCase) *PaymentHandler {
	return &PaymentHandler{service: service}
}

func (h *PaymentHandler) Register(router *gin.RouterGroup) {
	router.POST("/bookings/:id/pay", h.pay)
}

func (h *PaymentHandler) pay(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Booking not found."})
		return
	}

	res, err := h.service.InitiatePayment(c.Request.Context(), a, id)
	if err != nil {
		writeError(c, err, "Booking not found.")
		return
	}

	var resp paymentResponse
	resp.Data.Booking = paymentBookingJSON{
		ID:          res.Booking.ID,
		BookingID:   res.Booking.BookingID,
		Status:      string(res.Booking.Status),
		TotalAmount: domain.FormatMoney(res.Booking.TotalCents),
	}
	resp.Data.Transaction = toTransactionJSON(&res.Transaction)
	resp.Links = map[string]*string{"redirect_to_payment": res.Transaction.PaymentURL}

	c.JSON(http.StatusCreated, resp)
}
