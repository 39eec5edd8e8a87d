package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/ikkim/cartcore-backend/internal/db"
)

// RequestQueryObserver receives the statement count of each request.
type RequestQueryObserver interface {
	ObserveRequestQueries(route string, count int64)
}

// QueryMetricsMiddleware attaches a query collector to the request context
// and logs how many statements the handler issued.
func QueryMetricsMiddleware(observer RequestQueryObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, stats := db.WithQueryStats(c.Request.Context())
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		GetLoggerFromContext(c).Debug("Request query stats", map[string]interface{}{
			"route":          route,
			"query_count":    stats.Count(),
			"query_duration": stats.Duration().String(),
		})

		if observer != nil {
			observer.ObserveRequestQueries(route, stats.Count())
		}
	}
}
