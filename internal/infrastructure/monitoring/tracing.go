package monitoring

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/tokengate/tokengate/pkg/logger"
)

const tracerName = "tokengate"

// TracingConfig selects the exporter and sampling behavior.
type TracingConfig struct {
	Enabled        bool    `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	JaegerEndpoint string  `json:"jaeger_endpoint" yaml:"jaeger_endpoint" mapstructure:"jaeger_endpoint"`
	ServiceName    string  `json:"service_name" yaml:"service_name" mapstructure:"service_name"`
	Environment    string  `json:"environment" yaml:"environment" mapstructure:"environment"`
	SamplingRate   float64 `json:"sampling_rate" yaml:"sampling_rate" mapstructure:"sampling_rate"`
}

// TracingManager owns the OpenTelemetry tracer provider lifecycle. When
// tracing is disabled it degrades to the no-op global tracer.
type TracingManager struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
	log      logger.Logger
}

// NewTracingManager initializes Jaeger-exported tracing per config.
func NewTracingManager(cfg TracingConfig, log logger.Logger) (*TracingManager, error) {
	if !cfg.Enabled {
		return &TracingManager{tracer: otel.Tracer(tracerName), log: log}, nil
	}

	exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(
		jaeger.WithEndpoint(cfg.JaegerEndpoint),
	))
	if err != nil {
		return nil, fmt.Errorf("create jaeger exporter: %w", err)
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = tracerName
	}
	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			attribute.String("environment", cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create tracing resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SamplingRate)),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Info(context.Background(), "tracing initialized",
		logger.String("endpoint", cfg.JaegerEndpoint),
		logger.Any("sampling_rate", cfg.SamplingRate),
	)
	return &TracingManager{
		tracer:   provider.Tracer(tracerName),
		provider: provider,
		log:      log,
	}, nil
}

// StartSpan opens a span under the current context.
func (tm *TracingManager) StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return tm.tracer.Start(ctx, name, opts...)
}

// RecordError marks the span failed with the error message.
func (tm *TracingManager) RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// Shutdown flushes pending spans.
func (tm *TracingManager) Shutdown(ctx context.Context) error {
	if tm.provider == nil {
		return nil
	}
	return tm.provider.Shutdown(ctx)
}
