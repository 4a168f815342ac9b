package api

import (
	"net/http"

	"github.com/Domenick1991/ticketing/internal/service/tickets"
	"github.com/gin-gonic/gin"
)

type TicketHandler struct {
	service tickets.TicketUseCase
}

type ticketListResponse struct {
	Message string       `json:"message"`
	Data    []ticketJSON `json:"data"`
}

func NewTicketHandler(service tickets.TicketUseCase) *TicketHandler {
	return &TicketHandler{service: service}
}

func (h *TicketHandler) Register(router *gin.RouterGroup) {
	router.GET("/my-tickets", h.listMine)
}

func (h *TicketHandler) listMine(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	list, err := h.service.ListUserTickets(c.Request.Context(), a)
	if err != nil {
		writeError(c, err, "Ticket not found.")
		return
	}

	data := make([]ticketJSON, 0, len(list))
	for _, t := range list {
		data = append(data, toTicketJSON(t))
	}
	c.JSON(http.StatusOK, ticketListResponse{Message: "My tickets retrieved successfully", Data: data})
}
