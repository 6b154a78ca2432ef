// Package directives defines user directives that wrap field resolution.
package directives

import (
	"context"

	"github.com/gqlkit/graphql/resolvers"
)

// Invocation describes one application of a directive to a field.
type Invocation struct {
	// Name of the directive without the @.
	Name string

	// Args are the coerced directive arguments.
	Args resolvers.Args

	// Params is the request of the wrapped field.
	Params *resolvers.Params
}

// Directive wraps the resolver of every field it is applied to, either in
// the schema or in the query. It may short-circuit by not calling next.
type Directive interface {
	Resolve(ctx context.Context, inv Invocation, next resolvers.Resolver) (interface{}, error)
}

// Func adapts a function to the Directive interface.
type Func func(ctx context.Context, inv Invocation, next resolvers.Resolver) (interface{}, error)

func (f Func) Resolve(ctx context.Context, inv Invocation, next resolvers.Resolver) (interface{}, error) {
	return f(ctx, inv, next)
}

// Visitor is a directive observing the field around its resolver. Before
// may reject the field; After may replace its result.
type Visitor interface {
	Before(ctx context.Context, inv Invocation) error
	After(ctx context.Context, inv Invocation, output interface{}) (interface{}, error)
}

// FromVisitor turns a Visitor into a Directive.
func FromVisitor(v Visitor) Directive {
	return Func(func(ctx context.Context, inv Invocation, next resolvers.Resolver) (interface{}, error) {
		if err := v.Before(ctx, inv); err != nil {
			return nil, err
		}
		out, err := next(ctx)
		if err != nil {
			return nil, err
		}
		return v.After(ctx, inv, out)
	})
}

// Chain builds the resolver running the invocations around next. The first
// invocation is the outermost.
func Chain(defs map[string]Directive, invs []Invocation, next resolvers.Resolver) resolvers.Resolver {
	for i := len(invs) - 1; i >= 0; i-- {
		d, ok := defs[invs[i].Name]
		if !ok {
			continue
		}
		inv, inner := invs[i], next
		next = func(ctx context.Context) (interface{}, error) {
			return d.Resolve(ctx, inv, inner)
		}
	}
	return next
}
