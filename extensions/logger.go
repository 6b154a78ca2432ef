package extensions

import (
	"context"
	"time"

	"github.com/vektah/gqlparser/v2/ast"
	"go.uber.org/zap"

	"github.com/gqlkit/graphql/errors"
)

// Logger logs every request through zap: rejected documents at info level,
// executed operations with their duration and error count.
type Logger struct {
	// Logger defaults to the global zap logger.
	Logger *zap.Logger
}

func (l Logger) Create() Extension {
	logger := l.Logger
	if logger == nil {
		logger = zap.L()
	}
	return &requestLogger{log: logger}
}

type requestLogger struct {
	Base
	log   *zap.Logger
	start time.Time
	query string
	op    *ast.OperationDefinition
}

func (l *requestLogger) PrepareRequest(ctx context.Context, req *Request) error {
	l.start = time.Now()
	l.query = req.Query
	return nil
}

func (l *requestLogger) ParseEnd(ctx context.Context, doc *ast.QueryDocument, err *errors.QueryError) {
	if err != nil {
		l.log.Info("graphql: parse error", zap.String("query", l.query), zap.String("error", err.Message))
	}
}

func (l *requestLogger) ValidationEnd(ctx context.Context, errs []*errors.QueryError) {
	if len(errs) > 0 {
		l.log.Info("graphql: validation failed", zap.String("query", l.query), zap.Strings("errors", messages(errs)))
	}
}

func (l *requestLogger) ExecutionStart(ctx context.Context, info *ExecutionInfo) {
	l.op = info.Operation
}

func (l *requestLogger) ExecutionEnd(ctx context.Context, errs []*errors.QueryError) {
	fields := []zap.Field{
		zap.Duration("duration", time.Since(l.start)),
		zap.Int("errors", len(errs)),
	}
	if l.op != nil {
		opType := string(l.op.Operation)
		if opType == "" {
			opType = string(ast.Query)
		}
		fields = append(fields, zap.String("operation", l.op.Name), zap.String("type", opType))
	}
	if len(errs) > 0 {
		l.log.Warn("graphql: request", append(fields, zap.Strings("messages", messages(errs)))...)
		return
	}
	l.log.Info("graphql: request", fields...)
}

func messages(errs []*errors.QueryError) []string {
	out := make([]string, len(errs))
	for i, err := range errs {
		out[i] = err.Message
	}
	return out
}
