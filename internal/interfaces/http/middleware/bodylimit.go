package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sellerpulse/backend/internal/interfaces/http/dto"
)

// DefaultMaxBodyBytes bounds JSON request bodies. Sync requests are two dates.
const DefaultMaxBodyBytes = 64 << 10

// BodyLimit returns a middleware that limits request body size
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeBadRequest,
				"Request body exceeds maximum allowed size",
				GetRequestID(c),
			))
			return
		}

		// streaming bodies without Content-Length are cut by the reader
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
