package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"go-gin-auth-service/internal/core/metrics"
)

// Metrics records request count, latency and 5xx responses per route.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()
		m.HTTPRequests.WithLabelValues(path, c.Request.Method, strconv.Itoa(status)).Inc()
		m.HTTPLatency.WithLabelValues(path, c.Request.Method).Observe(time.Since(start).Seconds())
		if status >= 500 {
			m.HTTPErrors.WithLabelValues(path, c.Request.Method).Inc()
		}
	}
}
