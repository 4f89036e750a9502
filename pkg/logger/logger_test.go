package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/tokengate/tokengate/pkg/constants"
)

func fieldMap(fields []Field) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		out[f.Key] = f.Value
	}
	return out
}

func TestContextFieldsRequestValues(t *testing.T) {
	ctx := context.WithValue(context.Background(), constants.ContextKeyRequestID, "req-1")
	ctx = context.WithValue(ctx, constants.ContextKeyTenantID, "t1")
	ctx = context.WithValue(ctx, constants.ContextKeyClientIP, "10.0.0.1")

	fields := fieldMap(ContextFields(ctx))
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "t1", fields["tenant_id"])
	assert.Equal(t, "10.0.0.1", fields["client_ip"])
	assert.NotContains(t, fields, "trace_id")
}

func TestContextFieldsActiveTrace(t *testing.T) {
	traceID, err := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("0102030405060708")
	require.NoError(t, err)

	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	fields := fieldMap(ContextFields(ctx))
	assert.Equal(t, traceID.String(), fields["trace_id"])
	assert.Equal(t, spanID.String(), fields["span_id"])
}

func TestContextFieldsEmpty(t *testing.T) {
	assert.Empty(t, ContextFields(context.Background()))
}

func TestSanitizeValue(t *testing.T) {
	tests := []struct {
		key   string
		value interface{}
		want  interface{}
	}{
		{"username", "alice", "alice"},
		{"password", "hunter2", "***"},
		{"access_token", "eyJhbGciOiJIUzI1NiJ9.payload", "eyJh***load"},
		{"refresh_secret", 42, "***REDACTED***"},
		{"status", 200, 200},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeValue(tt.key, tt.value), tt.key)
	}
}
