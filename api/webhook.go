package api

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/Domenick1991/ticketing/internal/domain"
	"github.com/Domenick1991/ticketing/internal/service/webhook"
	"github.com/gin-gonic/gin"
)

const maxCallbackBody = 1 << 20

type WebhookHandler struct {
	service webhook.WebhookUseCase
}

func NewWebhookHandler(service webhook.WebhookUseCase) *WebhookHandler {
	return &WebhookHandler{service: service}
}

// Register mounts the gateway callback. It must stay unauthenticated.
func (h *WebhookHandler) Register(router *gin.RouterGroup) {
	router.POST("/payments/callback", h.callback)
}

func (h *WebhookHandler) callback(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxCallbackBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.Printf("[webhook] callback body exceeds %d bytes, rejected", tooLarge.Limit)
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"message": "Payload too large"})
			return
		}
		log.Printf("[webhook] read callback body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	if err := h.service.HandleCallback(c.Request.Context(), body); err != nil {
		if errors.Is(err, domain.ErrInvalidSignature) {
			c.JSON(http.StatusForbidden, gin.H{"message": "Invalid signature"})
			return
		}
		log.Printf("[webhook] callback error acknowledged: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "OK"})
}
