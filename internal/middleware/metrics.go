package middleware

import (
	"time"

	"cicd-orchestrator/services"

	"github.com/gin-gonic/gin"
)

/**
 * HTTP request statistics middleware
 * @description
 * - Counts requests received by the HTTP server
 * - Records request handling time
 * - Separates successful and failed requests
 * - Feeds the request totals reported by the health endpoint
 */
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		statusCode := c.Writer.Status()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}

		services.IncrementRequestCount(route)
		services.RecordRequestDuration(route, duration)

		if statusCode >= 400 {
			services.IncrementErrorCount(route)
		}
	}
}

/**
 * Get total request count
 * @returns {int64} Returns total request count
 */
func GetTotalRequests() int64 {
	return services.GetTotalRequestCount()
}

/**
 * Get error request count
 * @returns {int64} Returns error request count
 */
func GetErrorRequests() int64 {
	return services.GetTotalErrorCount()
}
