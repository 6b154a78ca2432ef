package noop

import (
	"context"

	"github.com/gqlkit/graphql/introspection"
	"github.com/gqlkit/graphql/value"
)

// RateLimiter is a no-op rate limiter that does nothing.
type RateLimiter struct{}

func (r *RateLimiter) LimitQuery(ctx context.Context, queryString string, operationName string, variables map[string]value.Value, varTypes map[string]*introspection.Type) bool {
	return false
}
