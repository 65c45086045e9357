package middleware

import (
	"github.com/atelier/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// HTTPMetrics records request count, latency and in-flight gauge per route
// pattern, so label cardinality stays bounded. A nil collector disables it.
func HTTPMetrics(m *telemetry.HTTPMetrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		done := m.Begin()
		c.Next()
		done(c.Request.Method, c.FullPath(), c.Writer.Status())
	}
}
