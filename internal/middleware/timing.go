package middleware

import (
	"time"

	"github.com/bizlab-kr/leadbot/internal/observability"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// StartTimeKey is the gin context key holding the request start time.
const StartTimeKey = "request_start_time"

// RequestTiming wraps the request in a span and records its duration
func RequestTiming() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Set(StartTimeKey, start)

		ctx, span := observability.Tracer().Start(c.Request.Context(), "http.request")
		span.SetAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.url", c.Request.URL.String()),
			attribute.String("http.route", c.FullPath()),
			attribute.String("http.user_agent", c.Request.UserAgent()),
			attribute.String("http.client_ip", c.ClientIP()),
		)
		defer span.End()

		c.Request = c.Request.WithContext(ctx)

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		span.SetAttributes(
			attribute.Int("http.status_code", status),
			attribute.Int64("http.duration_ms", latency.Milliseconds()),
		)
		if status >= 400 {
			span.SetAttributes(attribute.String("http.error", "true"))
		}

		// Unmatched routes are collapsed so scanners cannot blow up label cardinality.
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		observability.RequestDuration.WithLabelValues(
			route,
			c.Request.Method,
			statusLabel(status),
		).Observe(latency.Seconds())
	}
}
