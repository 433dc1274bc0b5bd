// Package logger provides a structured logging wrapper using zap.
package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// L is the global logger instance
	L    *zap.Logger
	once sync.Once
)

// Init initializes the global logger.
// If debug is true, uses development config with DEBUG level.
// Otherwise uses production config with INFO level.
func Init(debug bool) {
	once.Do(func() {
		L = build(debug)
	})
}

func build(debug bool) *zap.Logger {
	var (
		l   *zap.Logger
		err error
	)
	if debug {
		config := zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		// keep stdout free for converted text
		config.OutputPaths = []string{"stderr"}
		l, err = config.Build()
	} else {
		config := zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		l, err = config.Build()
	}
	if err != nil {
		// Fallback to nop logger if initialization fails
		return zap.NewNop()
	}
	return l
}

// Sync flushes any buffered log entries.
// Should be called before the application exits.
func Sync() {
	if L != nil {
		_ = L.Sync()
	}
}

// Default initializes a default logger if not already initialized.
func Default() *zap.Logger {
	Init(os.Getenv("GIN_MODE") != "release" || os.Getenv("ZHCONV_DEBUG") != "")
	return L
}

// Named creates a child logger for a component.
func Named(name string) *zap.Logger {
	return Default().Named(name)
}

// With creates a child logger with additional fields.
func With(fields ...zap.Field) *zap.Logger {
	return Default().With(fields...)
}

// Debug logs a debug message.
func Debug(msg string, fields ...zap.Field) {
	Default().Debug(msg, fields...)
}

// Info logs an info message.
func Info(msg string, fields ...zap.Field) {
	Default().Info(msg, fields...)
}

// Warn logs a warning message.
func Warn(msg string, fields ...zap.Field) {
	Default().Warn(msg, fields...)
}

// Error logs an error message.
func Error(msg string, fields ...zap.Field) {
	Default().Error(msg, fields...)
}

// Fatal logs a fatal message and exits.
func Fatal(msg string, fields ...zap.Field) {
	Default().Fatal(msg, fields...)
}
