package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const HeaderRequestID = "X-Request-ID"

// RequestID tags every request with an id (reusing a client supplied one) and
// logs one line when the request finishes.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(HeaderRequestID, id)

		start := time.Now()
		c.Next()

		log.Printf("[http] %s %s %d %s rid=%s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start), id)
	}
}
