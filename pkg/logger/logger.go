// Package logger defines the structured logging interface used across the
// tokengate service. Implementations live under internal/infrastructure; this
// package only carries the contract, field constructors and value masking.
package logger

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/tokengate/tokengate/pkg/constants"
)

// ================================================================================
// Logger Interface
// ================================================================================

// Logger defines the interface for structured, context-aware logging.
type Logger interface {
	// Debug logs a debug message
	Debug(ctx context.Context, message string, fields ...Field)

	// Info logs an informational message
	Info(ctx context.Context, message string, fields ...Field)

	// Warn logs a warning message
	Warn(ctx context.Context, message string, fields ...Field)

	// Error logs an error message
	Error(ctx context.Context, message string, err error, fields ...Field)

	// Fatal logs a fatal message and exits the application
	Fatal(ctx context.Context, message string, err error, fields ...Field)

	// WithFields creates a new logger with additional base fields
	WithFields(fields ...Field) Logger

	// WithComponent creates a new logger for a specific component
	WithComponent(component string) Logger
}

// ================================================================================
// Field Type for Structured Logging
// ================================================================================

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value interface{}
}

// String creates a string field
func String(key string, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an integer field
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Int64 creates an int64 field
func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

// Bool creates a boolean field
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Error creates an error field
func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Duration creates a duration field
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

// Time creates a time field
func Time(key string, value time.Time) Field {
	return Field{Key: key, Value: value.Format(time.RFC3339)}
}

// Any creates a field with any type
func Any(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// ================================================================================
// Context Enrichment
// ================================================================================

// ContextFields extracts the request-scoped values the service propagates
// (request id, tenant, client ip, active trace) so every implementation logs
// them uniformly.
func ContextFields(ctx context.Context) []Field {
	if ctx == nil {
		return nil
	}
	var fields []Field
	if requestID, ok := ctx.Value(constants.ContextKeyRequestID).(string); ok && requestID != "" {
		fields = append(fields, String("request_id", requestID))
	}
	if tenantID, ok := ctx.Value(constants.ContextKeyTenantID).(string); ok && tenantID != "" {
		fields = append(fields, String("tenant_id", tenantID))
	}
	if clientIP, ok := ctx.Value(constants.ContextKeyClientIP).(string); ok && clientIP != "" {
		fields = append(fields, String("client_ip", clientIP))
	}
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		fields = append(fields,
			String("trace_id", spanCtx.TraceID().String()),
			String("span_id", spanCtx.SpanID().String()),
		)
	}
	return fields
}

// ================================================================================
// Sensitive Value Masking
// ================================================================================

var sensitiveKeys = []string{
	"password",
	"secret",
	"token",
	"authorization",
	"credential",
}

// SanitizeValue masks values whose keys look like credentials so raw tokens
// and secrets never reach log sinks.
func SanitizeValue(key string, value interface{}) interface{} {
	keyLower := strings.ToLower(key)
	for _, sensitive := range sensitiveKeys {
		if strings.Contains(keyLower, sensitive) {
			if str, ok := value.(string); ok && str != "" {
				return MaskString(str)
			}
			return "***REDACTED***"
		}
	}
	return value
}

// MaskString partially masks a string value, keeping just enough of the head
// and tail to correlate log lines.
func MaskString(s string) string {
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "***" + s[len(s)-4:]
}
