// Package monitoring holds the observability implementations: the zap logger,
// Prometheus metrics and OpenTelemetry tracing.
package monitoring

import (
	"context"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tokengate/tokengate/pkg/logger"
)

var _ logger.Logger = (*zapLogger)(nil)

type zapLogger struct {
	zl    *zap.Logger
	level *zap.AtomicLevel
}

// NewZapLogger builds a JSON-encoding zap logger at the given level.
// format "console" switches to the human-readable encoder for local runs.
// The returned function changes the level at runtime; config hot-reload
// hooks into it.
func NewZapLogger(level, format string) (logger.Logger, func(level string)) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if format == "console" {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	atomicLevel := zap.NewAtomicLevelAt(parseLevel(level))
	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), atomicLevel)
	zl := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel))

	setLevel := func(level string) {
		atomicLevel.SetLevel(parseLevel(level))
	}
	return &zapLogger{zl: zl, level: &atomicLevel}, setLevel
}

func parseLevel(level string) zapcore.Level {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return parsed
}

func (l *zapLogger) Debug(ctx context.Context, message string, fields ...logger.Field) {
	l.zl.Debug(message, l.convert(ctx, nil, fields)...)
}

func (l *zapLogger) Info(ctx context.Context, message string, fields ...logger.Field) {
	l.zl.Info(message, l.convert(ctx, nil, fields)...)
}

func (l *zapLogger) Warn(ctx context.Context, message string, fields ...logger.Field) {
	l.zl.Warn(message, l.convert(ctx, nil, fields)...)
}

func (l *zapLogger) Error(ctx context.Context, message string, err error, fields ...logger.Field) {
	l.zl.Error(message, l.convert(ctx, err, fields)...)
}

func (l *zapLogger) Fatal(ctx context.Context, message string, err error, fields ...logger.Field) {
	l.zl.Fatal(message, l.convert(ctx, err, fields)...)
}

func (l *zapLogger) WithFields(fields ...logger.Field) logger.Logger {
	return &zapLogger{zl: l.zl.With(l.convert(context.Background(), nil, fields)...), level: l.level}
}

func (l *zapLogger) WithComponent(component string) logger.Logger {
	return &zapLogger{zl: l.zl.With(zap.String("component", component)), level: l.level}
}

func (l *zapLogger) convert(ctx context.Context, err error, fields []logger.Field) []zap.Field {
	zapFields := make([]zap.Field, 0, len(fields)+4)
	for _, f := range logger.ContextFields(ctx) {
		zapFields = append(zapFields, zap.Any(f.Key, f.Value))
	}
	if err != nil {
		zapFields = append(zapFields, zap.Error(err))
	}
	for _, f := range fields {
		zapFields = append(zapFields, zap.Any(f.Key, logger.SanitizeValue(f.Key, f.Value)))
	}
	return zapFields
}
