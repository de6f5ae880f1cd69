package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Miraines/MoonyAndStarry/account-service/internal/metrics"
)

// Metrics records request count and latency per route. Unmatched routes are
// grouped under a single label so probes cannot inflate cardinality.
func Metrics(c *metrics.Collector) gin.HandlerFunc {
	return func(gc *gin.Context) {
		start := time.Now()
		gc.Next()

		route := gc.FullPath()
		if route == "" {
			route = "unmatched"
		}
		c.RecordRequest(gc.Request.Method, route, gc.Writer.Status(), time.Since(start))
	}
}
