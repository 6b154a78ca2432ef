package context

import (
	"context"

	"github.com/gqlkit/graphql/resolvers"
)

type graphqlKeyType int

const graphqlFieldKey graphqlKeyType = iota

// WithGraphQLContext is used to create a new context with the field being
// resolved added to it so it can be later retrieved using `GraphQL`.
func WithGraphQLContext(ctx context.Context, field *resolvers.Info) context.Context {
	return context.WithValue(ctx, graphqlFieldKey, field)
}

// GraphQL is used to retrieve the field being resolved from the context.
func GraphQL(ctx context.Context) (field *resolvers.Info, found bool) {
	if ctx == nil {
		return
	}

	if v, ok := ctx.Value(graphqlFieldKey).(*resolvers.Info); ok {
		return v, true
	}

	return
}
