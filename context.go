package graphql

import (
	"context"

	gcontext "github.com/gqlkit/graphql/internal/context"
	"github.com/gqlkit/graphql/resolvers"
)

type Context struct {
	Field resolvers.Info
}

// GraphQLContext returns the field being resolved. It returns nil outside
// of a resolver.
func GraphQLContext(ctx context.Context) *Context {
	info, found := gcontext.GraphQL(ctx)
	if !found {
		return nil
	}

	return &Context{
		Field: *info,
	}
}
