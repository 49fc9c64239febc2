package logging

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is an interface that abstracts logging functionality.
// Components take a Logger so tests can run them with NewNopLogger.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
	Sync() error
}

// Field represents a key-value pair for structured logging.
type Field = zap.Field

// zapLogger wraps zap.Logger to implement our Logger interface.
type zapLogger struct {
	logger *zap.Logger
}

func (l *zapLogger) Debug(msg string, fields ...Field) {
	l.logger.Debug(msg, fields...)
}

func (l *zapLogger) Info(msg string, fields ...Field) {
	l.logger.Info(msg, fields...)
}

func (l *zapLogger) Warn(msg string, fields ...Field) {
	l.logger.Warn(msg, fields...)
}

func (l *zapLogger) Error(msg string, fields ...Field) {
	l.logger.Error(msg, fields...)
}

// With creates a new logger with additional fields.
func (l *zapLogger) With(fields ...Field) Logger {
	return &zapLogger{logger: l.logger.With(fields...)}
}

// Sync flushes buffered log entries.
func (l *zapLogger) Sync() error {
	return l.logger.Sync()
}

// NewLogger creates a structured logger that writes JSON to stderr at the
// given level (debug, info, warn, error). Unknown levels fall back to info.
func NewLogger(level string) (Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.OutputPaths = []string{"stderr"}

	logger, err := config.Build()
	if err != nil {
		return nil, err
	}

	return &zapLogger{logger: logger}, nil
}

// NewNopLogger returns a Logger that discards everything.
func NewNopLogger() Logger {
	return &zapLogger{logger: zap.NewNop()}
}

// String creates a string field.
func String(key, value string) Field {
	return zap.String(key, value)
}

// Strings creates a string slice field.
func Strings(key string, values []string) Field {
	return zap.Strings(key, values)
}

// Int creates an integer field.
func Int(key string, value int) Field {
	return zap.Int(key, value)
}

// Bool creates a boolean field.
func Bool(key string, value bool) Field {
	return zap.Bool(key, value)
}

// ErrorField creates an error field.
func ErrorField(err error) Field {
	return zap.Error(err)
}

// Duration creates a duration field.
func Duration(key string, value time.Duration) Field {
	return zap.Duration(key, value)
}
