// Package middleware holds the gin middleware chain: request correlation,
// observability and the token gate.
package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tokengate/tokengate/internal/infrastructure/monitoring"
	"github.com/tokengate/tokengate/pkg/constants"
	"github.com/tokengate/tokengate/pkg/logger"
)

// RequestContext stamps every request with a correlation id and the caller's
// address, on both the gin context and the request context so domain code
// and logs see the same values.
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(constants.RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header(constants.RequestIDHeader, requestID)

		ctx := c.Request.Context()
		ctx = context.WithValue(ctx, constants.ContextKeyRequestID, requestID)
		ctx = context.WithValue(ctx, constants.ContextKeyClientIP, c.ClientIP())
		c.Request = c.Request.WithContext(ctx)

		c.Set(string(constants.ContextKeyRequestID), requestID)
		c.Next()
	}
}

// Observability traces each request, records latency metrics by route
// template and writes one access log line.
func Observability(tracing *monitoring.TracingManager, metrics *monitoring.Metrics, log logger.Logger) gin.HandlerFunc {
	accessLog := log.WithComponent("http")
	return func(c *gin.Context) {
		start := time.Now()

		route := c.FullPath()
		if route == "" {
			route = "not_found"
		}

		ctx, span := tracing.StartSpan(c.Request.Context(), c.Request.Method+" "+route)
		defer span.End()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		span.SetAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
		)
		metrics.RecordHTTPRequest(c.Request.Method, route, status, duration)

		accessLog.Info(c.Request.Context(), "request handled",
			logger.String("method", c.Request.Method),
			logger.String("route", route),
			logger.Int("status", status),
			logger.Duration("duration", duration),
			logger.String("client_ip", c.ClientIP()),
		)
	}
}
