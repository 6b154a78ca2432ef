// Package extensions hooks into the phases of a request: preparation,
// parsing, validation, execution and the resolution of every field. An
// extension may contribute an entry to the "extensions" member of the
// response.
package extensions

import (
	"context"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/gqlkit/graphql/errors"
	"github.com/gqlkit/graphql/resolvers"
	"github.com/gqlkit/graphql/schema"
	"github.com/gqlkit/graphql/value"
)

// Request is the raw request as received by the engine. PrepareRequest may
// modify it.
type Request struct {
	Query         string
	OperationName string
	Variables     map[string]interface{}
	Extensions    map[string]interface{}
}

// ExecutionInfo describes the operation about to be executed.
type ExecutionInfo struct {
	Schema    *schema.Schema
	Document  *ast.QueryDocument
	Operation *ast.OperationDefinition
	Variables map[string]value.Value
}

// Extension receives the request lifecycle events. Embed Base to implement
// only the hooks of interest. A new instance is created for every request.
type Extension interface {
	// PrepareRequest runs before parsing. A returned error aborts the
	// request.
	PrepareRequest(ctx context.Context, req *Request) error

	ParseStart(ctx context.Context, query string)
	ParseEnd(ctx context.Context, doc *ast.QueryDocument, err *errors.QueryError)

	ValidationStart(ctx context.Context)
	ValidationEnd(ctx context.Context, errs []*errors.QueryError)

	ExecutionStart(ctx context.Context, info *ExecutionInfo)
	ExecutionEnd(ctx context.Context, errs []*errors.QueryError)

	// ResolveField wraps the resolver of every field.
	ResolveField(ctx context.Context, p *resolvers.Params, next resolvers.Resolver) (interface{}, error)

	// Result returns the response extension entry. An empty key adds
	// nothing.
	Result(ctx context.Context) (key string, value interface{})
}

// Factory creates the per-request instance of an extension.
type Factory interface {
	Create() Extension
}

// FactoryFunc adapts a function to the Factory interface.
type FactoryFunc func() Extension

func (f FactoryFunc) Create() Extension { return f() }

// Base implements every hook as a no-op.
type Base struct{}

func (Base) PrepareRequest(context.Context, *Request) error                  { return nil }
func (Base) ParseStart(context.Context, string)                              {}
func (Base) ParseEnd(context.Context, *ast.QueryDocument, *errors.QueryError) {}
func (Base) ValidationStart(context.Context)                                 {}
func (Base) ValidationEnd(context.Context, []*errors.QueryError)             {}
func (Base) ExecutionStart(context.Context, *ExecutionInfo)                  {}
func (Base) ExecutionEnd(context.Context, []*errors.QueryError)              {}
func (Base) Result(context.Context) (string, interface{})                    { return "", nil }

func (Base) ResolveField(ctx context.Context, p *resolvers.Params, next resolvers.Resolver) (interface{}, error) {
	return next(ctx)
}

// List is the set of extension instances of one request. Hooks run in list
// order; the first extension is the outermost around field resolution.
type List []Extension

// Create instantiates the extensions of a request.
func Create(factories []Factory) List {
	if len(factories) == 0 {
		return nil
	}
	l := make(List, len(factories))
	for i, f := range factories {
		l[i] = f.Create()
	}
	return l
}

func (l List) PrepareRequest(ctx context.Context, req *Request) error {
	for _, e := range l {
		if err := e.PrepareRequest(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

func (l List) ParseStart(ctx context.Context, query string) {
	for _, e := range l {
		e.ParseStart(ctx, query)
	}
}

func (l List) ParseEnd(ctx context.Context, doc *ast.QueryDocument, err *errors.QueryError) {
	for _, e := range l {
		e.ParseEnd(ctx, doc, err)
	}
}

func (l List) ValidationStart(ctx context.Context) {
	for _, e := range l {
		e.ValidationStart(ctx)
	}
}

func (l List) ValidationEnd(ctx context.Context, errs []*errors.QueryError) {
	for _, e := range l {
		e.ValidationEnd(ctx, errs)
	}
}

func (l List) ExecutionStart(ctx context.Context, info *ExecutionInfo) {
	for _, e := range l {
		e.ExecutionStart(ctx, info)
	}
}

func (l List) ExecutionEnd(ctx context.Context, errs []*errors.QueryError) {
	for _, e := range l {
		e.ExecutionEnd(ctx, errs)
	}
}

// ResolveField runs next inside every extension.
func (l List) ResolveField(ctx context.Context, p *resolvers.Params, next resolvers.Resolver) (interface{}, error) {
	for i := len(l) - 1; i >= 0; i-- {
		e, inner := l[i], next
		next = func(ctx context.Context) (interface{}, error) {
			return e.ResolveField(ctx, p, inner)
		}
	}
	return next(ctx)
}

// Result collects the response extensions. It returns nil when no extension
// contributes an entry.
func (l List) Result(ctx context.Context) map[string]interface{} {
	var out map[string]interface{}
	for _, e := range l {
		key, v := e.Result(ctx)
		if key == "" {
			continue
		}
		if out == nil {
			out = make(map[string]interface{})
		}
		out[key] = v
	}
	return out
}
