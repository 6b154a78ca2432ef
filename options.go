package graphql

import (
	"time"

	"github.com/gqlkit/graphql/directives"
	"github.com/gqlkit/graphql/errors"
	"github.com/gqlkit/graphql/extensions"
	"github.com/gqlkit/graphql/log"
	"github.com/gqlkit/graphql/ratelimit"
	"github.com/gqlkit/graphql/resolvers"
	"github.com/gqlkit/graphql/trace/tracer"
)

// SchemaOpt is an option to pass to ParseSchema or NewSchema.
type SchemaOpt func(*Schema)

// MaxDepth specifies the maximum field nesting depth in a query. The default is 0 which disables max depth checking.
func MaxDepth(n int) SchemaOpt {
	return func(s *Schema) {
		s.maxDepth = n
	}
}

// MaxComplexity rejects queries whose estimated complexity exceeds n. The
// default is 0 which disables the check.
func MaxComplexity(n int) SchemaOpt {
	return func(s *Schema) {
		s.maxComplexity = n
	}
}

// MaxRecursion rejects queries selecting the same field of the same type more
// than n times along a path.
func MaxRecursion(n int) SchemaOpt {
	return func(s *Schema) {
		s.maxRecursion = n
	}
}

// ComplexityPolicyOpt replaces the per-field cost function used by
// MaxComplexity.
func ComplexityPolicyOpt(p ComplexityPolicy) SchemaOpt {
	return func(s *Schema) {
		s.complexityPolicy = p
	}
}

// MaxParallelism specifies the maximum number of resolvers per request allowed to run in parallel. The default is 10.
func MaxParallelism(n int) SchemaOpt {
	return func(s *Schema) {
		if n > 0 {
			s.maxParallelism = n
		}
	}
}

// Tracer is used to trace queries and fields. It defaults to noop.Tracer.
// A tracer that also implements tracer.ValidationTracer traces validation.
func Tracer(t tracer.Tracer) SchemaOpt {
	return func(s *Schema) {
		s.tracer = t
		if vt, ok := t.(tracer.ValidationTracer); ok {
			s.validationTracer = vt
		}
	}
}

// ValidationTracer is used to trace validation errors.
func ValidationTracer(t tracer.ValidationTracer) SchemaOpt {
	return func(s *Schema) {
		s.validationTracer = t
	}
}

// Logger is used to log panics during query execution. It defaults to log.DefaultLogger.
func Logger(l log.Logger) SchemaOpt {
	return func(s *Schema) {
		s.logger = l
	}
}

// PanicHandler is used to customize the panic errors during query execution.
// It defaults to errors.DefaultPanicHandler.
func PanicHandler(h errors.PanicHandler) SchemaOpt {
	return func(s *Schema) {
		s.panicHandler = h
	}
}

// ResolverFactory resolves fields without an explicit resolver function. It
// defaults to resolvers.DynamicResolverFactory.
func ResolverFactory(f resolvers.ResolverFactory) SchemaOpt {
	return func(s *Schema) {
		s.resolverFactory = f
	}
}

// Directives registers the implementations of user directives by name. Each
// directive must be declared in the schema.
func Directives(defs map[string]directives.Directive) SchemaOpt {
	return func(s *Schema) {
		if s.directives == nil {
			s.directives = make(map[string]directives.Directive, len(defs))
		}
		for name, d := range defs {
			s.directives[name] = d
		}
	}
}

// Extensions adds request extensions. They run in the given order.
func Extensions(factories ...extensions.Factory) SchemaOpt {
	return func(s *Schema) {
		s.extensions = append(s.extensions, factories...)
	}
}

// RateLimiter is consulted after validation and before execution. A
// limited request fails without running any resolver.
func RateLimiter(l ratelimit.RateLimiter) SchemaOpt {
	return func(s *Schema) {
		s.rateLimiter = l
	}
}

// SubscribeResolverTimeout is an option to control the amount of time
// we allow for a single subscribe message resolver to complete it's job
// before it times out and returns an error to the subscriber.
func SubscribeResolverTimeout(timeout time.Duration) SchemaOpt {
	return func(s *Schema) {
		s.subscribeResolverTimeout = timeout
	}
}

// DisableIntrospection disables introspection queries.
func DisableIntrospection() SchemaOpt {
	return func(s *Schema) {
		s.disableIntrospection = true
	}
}

// DocumentCacheSize sets the number of parsed queries kept in memory. Zero
// disables the cache.
func DocumentCacheSize(n int) SchemaOpt {
	return func(s *Schema) {
		s.docCacheSize = n
	}
}

// UseMiddleware wraps the execution of every request. The first middleware
// is the outermost.
func UseMiddleware(m ...Middleware) SchemaOpt {
	return func(s *Schema) {
		s.middlewares = append(s.middlewares, m...)
	}
}
