// The tracer package provides tracing functionality.
package tracer

import (
	"context"

	"github.com/gqlkit/graphql/errors"
)

type QueryFinishFunc = func([]*errors.QueryError)
type FieldFinishFunc = func(*errors.QueryError)
type ValidationFinishFunc = func([]*errors.QueryError)

type Tracer interface {
	TraceQuery(ctx context.Context, queryString string, operationName string, variables map[string]interface{}) (context.Context, QueryFinishFunc)
	TraceField(ctx context.Context, label, typeName, fieldName string, trivial bool, args map[string]interface{}) (context.Context, FieldFinishFunc)
}

type ValidationTracer interface {
	TraceValidation(ctx context.Context) ValidationFinishFunc
}
