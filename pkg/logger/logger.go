package logger

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a zap.Logger with a smaller, service-oriented API.
type Logger struct {
	*zap.Logger
}

// New creates a new Logger with the given level and encoding ("json" or "console").
func New(level, encoding string) (*Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	if encoding != "" {
		cfg.Encoding = encoding
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	zl, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}

	return &Logger{zl}, nil
}

// NewNop returns a Logger that discards everything, for tests.
func NewNop() *Logger {
	return &Logger{zap.NewNop()}
}

// DebugContext logs a debug message. The context is accepted for call-site
// symmetry with request-scoped logging; request metadata is not yet attached.
func (l *Logger) DebugContext(_ context.Context, msg string, fields ...zap.Field) {
	l.Debug(msg, fields...)
}

// InfoContext logs an info message with the same contract as DebugContext.
func (l *Logger) InfoContext(_ context.Context, msg string, fields ...zap.Field) {
	l.Info(msg, fields...)
}

// ErrorContext logs an error message with the same contract as DebugContext.
func (l *Logger) ErrorContext(_ context.Context, msg string, fields ...zap.Field) {
	l.Error(msg, fields...)
}

// Field creates a field from any value.
func Field(key string, value interface{}) zap.Field {
	return zap.Any(key, value)
}

// StringField creates a string field.
func StringField(key, value string) zap.Field {
	return zap.String(key, value)
}

// IntField creates an int field.
func IntField(key string, value int) zap.Field {
	return zap.Int(key, value)
}

// Float64Field creates a float64 field.
func Float64Field(key string, value float64) zap.Field {
	return zap.Float64(key, value)
}

// ErrorField creates an error field.
func ErrorField(err error) zap.Field {
	return zap.Error(err)
}
