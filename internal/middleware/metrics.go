package middleware

import (
	"time"

	"boilerplate_backend/internal/metrics"

	"github.com/gin-gonic/gin"
)

// MetricsMiddleware пишет длительность и статус каждого запроса. Путь метрик не учитывается
func MetricsMiddleware(m *metrics.Metrics, skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = true
	}

	return func(c *gin.Context) {
		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
