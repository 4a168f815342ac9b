package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/Domenick1991/ticketing/internal/domain"
	"github.com/Domenick1991/ticketing/internal/middleware"
	"github.com/gin-gonic/gin"
)

// writeError maps domain errors onto the HTTP contract. notFound is the
// message used for domain.ErrNotFound.
func writeError(c *gin.Context, err error, notFound string) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Validation error", "errors": verr.Fields})
		return
	}

	var ferr *domain.FieldError
	if errors.As(err, &ferr) && isUnprocessable(ferr.Kind) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "Validation error",
			"errors":  map[string][]string{ferr.Field: {ferr.Message}},
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": notFound})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": "Forbidden."})
	case isUnprocessable(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
	case errors.Is(err, domain.ErrGateway):
		c.JSON(http.StatusBadGateway, gin.H{"message": "Failed to create payment session."})
	default:
		rid, _ := c.Get("request_id")
		log.Printf("[http] %s %s failed rid=%v: %v", c.Request.Method, c.Request.URL.Path, rid, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}
}

func isUnprocessable(err error) bool {
	return errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrInvalidState) || errors.Is(err, domain.ErrConflict)
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"message": "Validation error",
		"errors":  map[string][]string{"body": {err.Error()}},
	})
}

// actor returns the authenticated caller or writes 401.
func actor(c *gin.Context) (domain.Actor, bool) {
	a, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated."})
	}
	return a, ok
}
