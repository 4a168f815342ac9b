package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/ticketing/internal/service/events"
	"github.com/gin-gonic/gin"
)

type EventHandler struct {
	service events.EventUseCase
}

type updateCapacityRequest struct {
	MaxParticipants *int `json:"max_participants"`
}

type eventResponse struct {
	Data *eventJSON `json:"data"`
}

func NewEventHandler(service events.EventUseCase) *EventHandler {
	return &EventHandler{service: service}
}

func (h *EventHandler) Register(router *gin.RouterGroup) {
	router.GET("/events/:id", h.get)
}

// RegisterAdmin mounts capacity management for admins and organizers.
func (h *EventHandler) RegisterAdmin(router *gin.RouterGroup) {
	router.PUT("/events/:id/capacity", h.updateCapacity)
}

func (h *EventHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Event not found."})
		return
	}

	event, err := h.service.GetEvent(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "Event not found.")
		return
	}
	c.JSON(http.StatusOK, eventResponse{Data: toEventJSON(event)})
}

func (h *EventHandler) updateCapacity(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Event not found."})
		return
	}

	var req updateCapacityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if req.MaxParticipants == nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "Validation error",
			"errors":  map[string][]string{"max_participants": {"The max participants field is required."}},
		})
		return
	}

	event, err := h.service.UpdateCapacity(c.Request.Context(), a, id, *req.MaxParticipants)
	if err != nil {
		writeError(c, err, "Event not found.")
		return
	}
	c.JSON(http.StatusOK, eventResponse{Data: toEventJSON(event)})
}
