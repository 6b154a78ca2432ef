// Package ratelimit defines the hook consulted before a validated request
// is executed.
package ratelimit

import (
	"context"

	"github.com/gqlkit/graphql/introspection"
	"github.com/gqlkit/graphql/value"
)

// RateLimiter decides whether a request is rejected. Variables are already
// coerced to the declared types described by varTypes.
type RateLimiter interface {
	LimitQuery(ctx context.Context, queryString string, operationName string, variables map[string]value.Value, varTypes map[string]*introspection.Type) bool
}

// Func adapts a function to the RateLimiter interface.
type Func func(ctx context.Context, queryString string, operationName string, variables map[string]value.Value, varTypes map[string]*introspection.Type) bool

func (f Func) LimitQuery(ctx context.Context, queryString string, operationName string, variables map[string]value.Value, varTypes map[string]*introspection.Type) bool {
	return f(ctx, queryString, operationName, variables, varTypes)
}
