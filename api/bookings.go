package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/Domenick1991/ticketing/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingResponse struct {
	Data  bookingJSON       `json:"data"`
	Links map[string]string `json:"links"`
}

type bookingListResponse struct {
	Message string        `json:"message"`
	Data    []bookingJSON `json:"data"`
}

type bookingDetailResponse struct {
	Message string      `json:"message"`
	Data    bookingJSON `json:"data"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

// Register mounts the customer routes. The group must carry JWT auth.
func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/bookings", h.create)
	router.GET("/my-bookings", h.listMine)
}

// RegisterAdmin mounts the back-office routes.
func (h *BookingHandler) RegisterAdmin(router *gin.RouterGroup) {
	router.GET("/bookings/:id", h.get)
}

func (h *BookingHandler) create(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	var input booking.CreateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	res, err := h.service.CreateBooking(c.Request.Context(), a, input)
	if err != nil {
		writeError(c, err, "Event not found.")
		return
	}

	data := toBookingJSON(res.Booking)
	data.Event = toEventJSON(&res.Event)
	data.Pricing = toPricingJSON(res.Pricing)

	c.JSON(http.StatusCreated, createBookingResponse{
		Data:  data,
		Links: map[string]string{"pay": fmt.Sprintf("/api/bookings/%d/pay", res.Booking.ID)},
	})
}

func (h *BookingHandler) listMine(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	views, err := h.service.ListUserBookings(c.Request.Context(), a)
	if err != nil {
		writeError(c, err, "Booking not found.")
		return
	}

	data := make([]bookingJSON, 0, len(views))
	for _, v := range views {
		data = append(data, viewJSON(v))
	}
	c.JSON(http.StatusOK, bookingListResponse{Message: "My bookings retrieved successfully", Data: data})
}

func (h *BookingHandler) get(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Booking not found."})
		return
	}

	view, err := h.service.GetBooking(c.Request.Context(), a, id)
	if err != nil {
		writeError(c, err, "Booking not found.")
		return
	}
	c.JSON(http.StatusOK, bookingDetailResponse{Message: "Booking retrieved successfully", Data: viewJSON(*view)})
}

func viewJSON(v booking.BookingView) bookingJSON {
	out := toBookingJSON(v.Booking)
	out.Event = toEventJSON(v.Event)
	out.LatestTransaction = toTransactionJSON(v.Transaction)
	return out
}
