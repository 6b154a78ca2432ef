// Package graphql executes GraphQL requests against a schema built with the
// schema package or parsed from SDL.
package graphql

import (
	"context"
	"encoding/json"
	"time"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/gqlkit/graphql/cachecontrol"
	"github.com/gqlkit/graphql/directives"
	"github.com/gqlkit/graphql/errors"
	"github.com/gqlkit/graphql/extensions"
	"github.com/gqlkit/graphql/internal/exec"
	"github.com/gqlkit/graphql/internal/query"
	"github.com/gqlkit/graphql/internal/validation"
	"github.com/gqlkit/graphql/introspection"
	"github.com/gqlkit/graphql/log"
	"github.com/gqlkit/graphql/ratelimit"
	ratelimitnoop "github.com/gqlkit/graphql/ratelimit/noop"
	"github.com/gqlkit/graphql/resolvers"
	"github.com/gqlkit/graphql/schema"
	"github.com/gqlkit/graphql/trace/noop"
	"github.com/gqlkit/graphql/trace/tracer"
	"github.com/gqlkit/graphql/value"
)

// ID is the GraphQL ID scalar as seen by resolvers.
type ID string

// ComplexityPolicy computes the cost of a field from its arguments and the
// cost of its selection set.
type ComplexityPolicy = validation.ComplexityPolicy

// DefaultComplexity charges 1 plus the cost of the children, unless the field
// declares a cost expression with @complexity.
var DefaultComplexity ComplexityPolicy = validation.DefaultComplexity

// ParseSchema parses a GraphQL schema and attaches the given root resolver.
// It returns an error if the schema is invalid.
func ParseSchema(schemaString string, root interface{}, opts ...SchemaOpt) (*Schema, error) {
	b := schema.NewBuilder()
	if err := b.LoadSDL(schemaString); err != nil {
		return nil, err
	}
	s, err := b.Finish()
	if err != nil {
		return nil, err
	}
	return NewSchema(s, root, opts...)
}

// MustParseSchema calls ParseSchema and panics on error.
func MustParseSchema(schemaString string, root interface{}, opts ...SchemaOpt) *Schema {
	s, err := ParseSchema(schemaString, root, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// NewSchema creates an executable schema from a finished schema snapshot.
// root is the value handed to the resolvers of the root operation types.
func NewSchema(s *schema.Schema, root interface{}, opts ...SchemaOpt) (*Schema, error) {
	sc := &Schema{
		schema:           s,
		root:             root,
		maxParallelism:   10,
		tracer:           noop.Tracer{},
		validationTracer: noop.Tracer{},
		logger:           &log.DefaultLogger{},
		panicHandler:     &errors.DefaultPanicHandler{},
		resolverFactory:  resolvers.DynamicResolverFactory(),
		rateLimiter:      &ratelimitnoop.RateLimiter{},
		docCacheSize:     defaultDocCacheSize,
	}
	for _, opt := range opts {
		opt(sc)
	}

	cache, err := newDocCache(sc.docCacheSize)
	if err != nil {
		return nil, err
	}
	sc.docs = cache

	sc.exec = sc.execute
	for i := len(sc.middlewares) - 1; i >= 0; i-- {
		sc.exec = sc.middlewares[i](sc.exec)
	}
	return sc, nil
}

// Schema represents a GraphQL schema with an optional resolver.
type Schema struct {
	schema *schema.Schema
	root   interface{}

	maxDepth                 int
	maxComplexity            int
	maxRecursion             int
	maxParallelism           int
	complexityPolicy         ComplexityPolicy
	tracer                   tracer.Tracer
	validationTracer         tracer.ValidationTracer
	logger                   log.Logger
	panicHandler             errors.PanicHandler
	resolverFactory          resolvers.ResolverFactory
	directives               map[string]directives.Directive
	extensions               []extensions.Factory
	rateLimiter              ratelimit.RateLimiter
	subscribeResolverTimeout time.Duration
	disableIntrospection     bool
	docCacheSize             int
	middlewares              []Middleware

	docs *docCache
	exec Exec
}

// Schema returns the underlying schema snapshot.
func (s *Schema) Schema() *schema.Schema {
	return s.schema
}

// Request is a GraphQL request as received by a transport.
type Request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
	Extensions    map[string]interface{} `json:"extensions"`
}

// Exec executes the given query with the schema's resolver. It panics if
// the schema was created without a resolver.
func (s *Schema) Exec(ctx context.Context, queryString string, operationName string, variables map[string]interface{}) *Response {
	if s.root == nil {
		panic("schema created without resolver, can not exec")
	}
	return s.Execute(ctx, &Request{Query: queryString, OperationName: operationName, Variables: variables})
}

// Execute runs a request through the middleware chain.
func (s *Schema) Execute(ctx context.Context, req *Request) *Response {
	return s.exec(ctx, req)
}

// Validate validates the given query against the schema.
func (s *Schema) Validate(queryString string) []*errors.QueryError {
	doc, qErr := s.parse(queryString)
	if qErr != nil {
		return []*errors.QueryError{qErr}
	}
	return s.validate(context.Background(), doc)
}

func (s *Schema) parse(queryString string) (*ast.QueryDocument, *errors.QueryError) {
	if doc, ok := s.docs.get(queryString); ok {
		return doc, nil
	}
	doc, qErr := query.Parse(queryString)
	if qErr != nil {
		return nil, qErr
	}
	s.docs.add(queryString, doc)
	return doc, nil
}

func (s *Schema) validate(ctx context.Context, doc *ast.QueryDocument) []*errors.QueryError {
	var finish tracer.ValidationFinishFunc = func([]*errors.QueryError) {}
	if s.validationTracer != nil {
		finish = s.validationTracer.TraceValidation(ctx)
	}
	errs := validation.Validate(s.schema, doc, validation.Options{
		MaxDepth:             s.maxDepth,
		DisableIntrospection: s.disableIntrospection,
	})
	finish(errs)
	return errs
}

// prepared is a request that passed parsing, validation, variable coercion
// and the admission limits.
type prepared struct {
	doc  *ast.QueryDocument
	op   *ast.OperationDefinition
	vars map[string]value.Value
}

func (s *Schema) prepare(ctx context.Context, req *Request, exts extensions.List) (*prepared, []*errors.QueryError) {
	exts.ParseStart(ctx, req.Query)
	doc, qErr := s.parse(req.Query)
	exts.ParseEnd(ctx, doc, qErr)
	if qErr != nil {
		return nil, []*errors.QueryError{qErr}
	}

	exts.ValidationStart(ctx)
	errs := s.validate(ctx, doc)
	exts.ValidationEnd(ctx, errs)
	if len(errs) != 0 {
		return nil, errs
	}

	op, err := query.GetOperation(doc, req.OperationName)
	if err != nil {
		return nil, []*errors.QueryError{errors.Errorf("%s", err)}
	}

	vars, errs := exec.CoerceVariables(s.schema, op, req.Variables)
	if len(errs) != 0 {
		return nil, errs
	}

	errs = validation.Estimate(s.schema, doc, op, vars, []validation.ComplexityEstimator{
		validation.SimpleEstimator{MaxComplexity: s.maxComplexity, Policy: s.complexityPolicy},
		validation.RecursionEstimator{MaxDepth: s.maxRecursion},
	})
	if len(errs) != 0 {
		return nil, errs
	}

	if s.rateLimiter != nil && s.rateLimiter.LimitQuery(ctx, req.Query, req.OperationName, vars, s.varTypes(op)) {
		return nil, []*errors.QueryError{rateLimitedError()}
	}

	return &prepared{doc: doc, op: op, vars: vars}, nil
}

func (s *Schema) varTypes(op *ast.OperationDefinition) map[string]*introspection.Type {
	types := make(map[string]*introspection.Type, len(op.VariableDefinitions))
	for _, vd := range op.VariableDefinitions {
		types[vd.Variable] = introspection.WrapTypeRef(s.schema, vd.Type)
	}
	return types
}

func rateLimitedError() *errors.QueryError {
	err := errors.Errorf("%s", "rate limit exceeded")
	err.Extensions = map[string]interface{}{"code": "RATE_LIMITED"}
	return err
}

func (s *Schema) request(p *prepared, exts extensions.List) *exec.Request {
	r := &exec.Request{
		Schema:                   s.schema,
		Doc:                      p.doc,
		Operation:                p.op,
		Vars:                     p.vars,
		Root:                     s.root,
		Limiter:                  make(chan struct{}, s.maxParallelism),
		Tracer:                   s.tracer,
		Logger:                   s.logger,
		PanicHandler:             s.panicHandler,
		ResolverFactory:          s.resolverFactory,
		Directives:               s.directives,
		Cache:                    &cachecontrol.Accumulator{},
		SubscribeResolverTimeout: s.subscribeResolverTimeout,
	}
	if len(exts) > 0 {
		r.FieldHook = exts.ResolveField
	}
	return r
}

// execute is the innermost Exec of the middleware chain.
func (s *Schema) execute(ctx context.Context, req *Request) *Response {
	exts := extensions.Create(s.extensions)
	extReq := &extensions.Request{
		Query:         req.Query,
		OperationName: req.OperationName,
		Variables:     req.Variables,
		Extensions:    req.Extensions,
	}
	if err := exts.PrepareRequest(ctx, extReq); err != nil {
		return &Response{Errors: []*errors.QueryError{asQueryError(err)}}
	}
	req = &Request{
		Query:         extReq.Query,
		OperationName: extReq.OperationName,
		Variables:     extReq.Variables,
		Extensions:    extReq.Extensions,
	}

	traceCtx, finish := s.tracer.TraceQuery(ctx, req.Query, req.OperationName, req.Variables)

	p, errs := s.prepare(traceCtx, req, exts)
	if len(errs) != 0 {
		finish(errs)
		return &Response{Errors: errs, Extensions: exts.Result(ctx)}
	}

	if query.OperationType(p.op) == ast.Subscription {
		errs := []*errors.QueryError{errors.Errorf("%s", "subscription operations must be executed with Subscribe")}
		finish(errs)
		return &Response{Errors: errs}
	}

	exts.ExecutionStart(traceCtx, &extensions.ExecutionInfo{
		Schema:    s.schema,
		Document:  p.doc,
		Operation: p.op,
		Variables: p.vars,
	})
	r := s.request(p, exts)
	data, errs := r.Execute(traceCtx)
	exts.ExecutionEnd(traceCtx, errs)
	finish(errs)

	resp := &Response{
		Data:         json.RawMessage(data),
		Errors:       errs,
		Extensions:   exts.Result(ctx),
		CacheControl: r.Cache.Result(),
	}
	if data == nil {
		resp.Data = json.RawMessage("null")
	}
	resp.sortErrors()
	return resp
}

func asQueryError(err error) *errors.QueryError {
	if qErr, ok := err.(*errors.QueryError); ok {
		return qErr
	}
	return errors.Errorf("%s", err)
}
