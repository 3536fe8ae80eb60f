package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"

// RequestID tags every request with an id, honoring one supplied by a
// trusted proxy. The id is echoed in the response header and picked up by
// the request logger and recovery middleware.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" || len(requestID) > 64 {
			requestID = uuid.NewString()
		}

		c.Set(requestIDHeader, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)

		c.Next()
	}
}

// RequestIDFrom returns the id RequestID assigned to this request.
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDHeader)
}
