package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hakwon-ops/roster-api/internal/service"
)

// Metrics returns middleware that records request duration and count per
// route. Scrapes of the metrics endpoint itself are not recorded.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil || c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		// Prefer the route template so per-date paths share one label set.
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
