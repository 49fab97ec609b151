package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/caretide/hospital-api/pkg/metrics"
)

// Metrics records per-request counters and latency. The route template
// is used instead of the raw path to keep label cardinality bounded.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		m.HTTPRequests.WithLabelValues(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		m.HTTPRequestLatency.WithLabelValues(c.Request.Method, route).
			Observe(time.Since(start).Seconds())
	}
}
