package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const RequestIDHeader = "X-Request-Id"

// RequestID tags each request with an id, reusing one sent by a proxy.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 64 {
			id = "req_" + uuid.NewString()
		}
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Set("request_id", id)
		c.Next()
	}
}

// Logger returns log annotated with the request id, if any.
func Logger(c *gin.Context, log *zap.Logger) *zap.Logger {
	if id := c.GetString("request_id"); id != "" {
		return log.With(zap.String("request_id", id))
	}
	return log
}
