package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	KeyRequestID     = "X-Request-ID"
	KeyCorrelationID = "X-Correlation-ID"
)

// RequestID tags every request with an id, reusing the caller's when given.
// A correlation id is propagated unchanged, or defaults to the request id.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(KeyRequestID)
		if rid == "" || len(rid) > 128 {
			rid = uuid.NewString()
		}
		cid := c.GetHeader(KeyCorrelationID)
		if cid == "" || len(cid) > 128 {
			cid = rid
		}
		c.Writer.Header().Set(KeyRequestID, rid)
		c.Writer.Header().Set(KeyCorrelationID, cid)
		c.Set(KeyRequestID, rid)
		c.Set(KeyCorrelationID, cid)
		c.Next()
	}
}
