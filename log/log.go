package log

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
)

// Logger is the interface used to log panics that occur during query execution. It is settable via graphql.Logger.
type Logger interface {
	LogPanic(ctx context.Context, value interface{})
}

// LoggerFunc is a function type that implements the Logger interface.
type LoggerFunc func(ctx context.Context, value interface{})

// LogPanic calls the LoggerFunc with the given context and panic value.
func (f LoggerFunc) LogPanic(ctx context.Context, value interface{}) {
	f(ctx, value)
}

// DefaultLogger is the default logger used to log panics that occur during query execution.
// A nil Logger writes to the global zap logger.
type DefaultLogger struct {
	Logger *zap.Logger
}

// NewZapLogger logs panics to l.
func NewZapLogger(l *zap.Logger) *DefaultLogger {
	return &DefaultLogger{Logger: l}
}

// LogPanic is used to log recovered panic values that occur during query execution.
func (l *DefaultLogger) LogPanic(ctx context.Context, value interface{}) {
	const size = 64 << 10
	buf := make([]byte, size)
	buf = buf[:runtime.Stack(buf, false)]

	logger := l.Logger
	if logger == nil {
		logger = zap.L()
	}
	logger.Error("graphql: panic occurred",
		zap.String("panic", fmt.Sprint(value)),
		zap.ByteString("stack", buf),
	)
}
