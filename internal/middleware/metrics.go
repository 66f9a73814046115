package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"taskboard-be/internal/metrics"
)

// Metrics records request count and latency per matched route. Unmatched
// paths share one label so arbitrary URLs cannot grow the series count.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		metrics.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
