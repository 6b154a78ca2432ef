package exec

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/gqlkit/graphql/cachecontrol"
	"github.com/gqlkit/graphql/directives"
	"github.com/gqlkit/graphql/errors"
	gcontext "github.com/gqlkit/graphql/internal/context"
	"github.com/gqlkit/graphql/internal/query"
	"github.com/gqlkit/graphql/internal/selections"
	"github.com/gqlkit/graphql/introspection"
	"github.com/gqlkit/graphql/log"
	"github.com/gqlkit/graphql/resolvers"
	"github.com/gqlkit/graphql/schema"
	"github.com/gqlkit/graphql/trace/noop"
	"github.com/gqlkit/graphql/trace/tracer"
	"github.com/gqlkit/graphql/value"
)

// FieldHook wraps the resolution of every field after directives have been
// applied.
type FieldHook func(ctx context.Context, p *resolvers.Params, next resolvers.Resolver) (interface{}, error)

// Request is the state of a single operation execution.
type Request struct {
	Schema    *schema.Schema
	Doc       *ast.QueryDocument
	Operation *ast.OperationDefinition
	Vars      map[string]value.Value
	Root      interface{}

	Limiter         chan struct{}
	Tracer          tracer.Tracer
	Logger          log.Logger
	PanicHandler    errors.PanicHandler
	ResolverFactory resolvers.ResolverFactory
	Directives      map[string]directives.Directive
	FieldHook       FieldHook
	Cache           *cachecontrol.Accumulator

	// SubscribeResolverTimeout bounds the execution of one subscription
	// event. Zero disables the timeout.
	SubscribeResolverTimeout time.Duration

	mu   sync.Mutex
	Errs []*errors.QueryError
}

var defaultResolverFactory = resolvers.DynamicResolverFactory()

func (r *Request) AddError(err *errors.QueryError) {
	r.mu.Lock()
	r.Errs = append(r.Errs, err)
	r.mu.Unlock()
}

func (r *Request) handlePanic(ctx context.Context) {
	if value := recover(); value != nil {
		r.logger().LogPanic(ctx, value)
		r.AddError(r.panicHandler().MakePanicError(ctx, value))
	}
}

func (r *Request) panicError(ctx context.Context, value interface{}, n *execNode) *errors.QueryError {
	r.logger().LogPanic(ctx, value)
	err := r.panicHandler().MakePanicError(ctx, value)
	err.Path = n.fullPath()
	err.Locations = n.locations()
	return err
}

func (r *Request) logger() log.Logger {
	if r.Logger == nil {
		return &log.DefaultLogger{}
	}
	return r.Logger
}

func (r *Request) panicHandler() errors.PanicHandler {
	if r.PanicHandler == nil {
		return &errors.DefaultPanicHandler{}
	}
	return r.PanicHandler
}

func (r *Request) tracer() tracer.Tracer {
	if r.Tracer == nil {
		return noop.Tracer{}
	}
	return r.Tracer
}

func (r *Request) addHint(hint cachecontrol.CacheControl) {
	if r.Cache != nil && hint != (cachecontrol.CacheControl{}) {
		r.Cache.Add(hint)
	}
}

func (r *Request) process(ctx context.Context, nodes []*execNode) {
	queue := nodes
	for len(queue) > 0 {
		batch := queue
		queue = nil

		// run the whole batch (everything from the current level) concurrently.
		result := make(chan []*execNode, len(batch))
		for _, n := range batch {
			go func(n *execNode) {
				result <- r.step(ctx, n)
			}(n)
		}

		// wait for the batch to complete and refill the queue.
		for range batch {
			queue = append(queue, <-result...)
		}
	}
}

// step resolves and expands n and returns the children still to be
// processed.
func (r *Request) step(ctx context.Context, n *execNode) (next []*execNode) {
	defer func() {
		if v := recover(); v != nil {
			n.err = r.panicError(ctx, v, n)
			n.children = nil
			next = nil
		}
	}()

	if n.field != nil && !n.resolved {
		r.resolveNode(ctx, n)
	}
	if n.err != nil {
		return nil
	}
	return r.expand(ctx, n)
}

func (r *Request) Execute(ctx context.Context) ([]byte, []*errors.QueryError) {
	out := getBuffer()
	defer putBuffer(out)
	if r.Cache != nil {
		ctx = cachecontrol.WithAccumulator(ctx, r.Cache)
	}

	func() {
		defer r.handlePanic(ctx)
		opType := query.OperationType(r.Operation)
		root := r.Schema.RootType(opType)
		nodes := r.collectNodes(root, r.Root, r.Operation.SelectionSet, nil)

		w := newObjWriter(out)
		defer w.Flush()

		if opType == ast.Mutation || root.Serial {
			// each root field and its subtree completes before the next starts.
			for _, n := range nodes {
				r.process(ctx, []*execNode{n})
				w.Write(r, n)
			}
		} else {
			r.process(ctx, nodes)
			for _, n := range nodes {
				w.Write(r, n)
			}
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, []*errors.QueryError{errors.Errorf("%s", err)}
	}

	return copyBuffer(out), r.Errs
}

// execNode is used to build a tree structure that closely assembles the returned data. This in-memory representation
// allows nodes to be resolved in a different order (e.g. concurrently or breath-first) than they are printed (which
// is always depth-first).
type execNode struct {
	label    interface{}      // label for the full path (used in errors and debug output)
	parent   *execNode        // parent node
	children []*execNode      // child nodes
	typ      *ast.Type        // GraphQL type of the node
	field    *collectedField  // field information (nil within lists)
	objType  *schema.Object   // object type owning the field
	source   interface{}      // parent value handed to the resolver
	sels     ast.SelectionSet // merged sub-selections
	value    interface{}      // resolved value
	resolved bool             // value was set before processing
	leaf     value.Value      // serialized scalar or enum
	null     bool             // completed to null
	object   bool             // completed to an object
	err      *errors.QueryError
}

// fullPath returns the full path of the node. This path is included in all graphQL error messages.
func (n *execNode) fullPath() []interface{} {
	if n == nil {
		return nil
	}
	return append(n.parent.fullPath(), n.label)
}

// locations returns the position of the field the node belongs to.
func (n *execNode) locations() []errors.Location {
	for ; n != nil; n = n.parent {
		if n.field != nil {
			return []errors.Location{query.Location(n.field.ast.Position)}
		}
	}
	return nil
}

// collectNodes creates one node per merged field of sels applied to the
// object type t.
func (r *Request) collectNodes(t *schema.Object, source interface{}, sels ast.SelectionSet, parent *execNode) []*execNode {
	fields := r.collectFields(t, sels)
	nodes := make([]*execNode, len(fields))
	for i, f := range fields {
		nodes[i] = &execNode{
			label:   f.alias,
			parent:  parent,
			typ:     f.sf.Type,
			field:   f,
			objType: t,
			source:  source,
			sels:    f.sels,
		}
	}
	return nodes
}

func (r *Request) resolveNode(ctx context.Context, n *execNode) {
	f := n.field
	n.value, n.err = func() (result interface{}, qErr *errors.QueryError) {
		args, err := coerceArgs(r.Schema, f.sf.Args, f.ast.Arguments, r.Vars)
		if err != nil {
			return nil, r.fieldError(n, err)
		}

		p := &resolvers.Params{
			Source: n.source,
			Args:   resolvers.NewArgs(args),
			Info: resolvers.Info{
				FieldName:  f.sf.Name,
				Alias:      f.alias,
				ParentType: n.objType.Name,
				ReturnType: f.sf.Type,
				Path:       n.fullPath(),
				Field:      f.ast,
				Operation:  r.Operation,
			},
		}

		label := "GraphQL field: " + n.objType.Name + "." + f.sf.Name
		traceCtx, finish := r.tracer().TraceField(ctx, label, n.objType.Name, f.sf.Name, f.sf.Resolve == nil, p.Args.Map())
		defer func() {
			finish(qErr)
		}()

		defer func() {
			if panicValue := recover(); panicValue != nil {
				qErr = r.panicError(ctx, panicValue, n)
			}
		}()

		if err := traceCtx.Err(); err != nil {
			return nil, errors.Errorf("%s", err) // don't execute any more resolvers if context got cancelled
		}
		traceCtx = gcontext.WithGraphQLContext(traceCtx, &p.Info)
		traceCtx = selections.With(traceCtx, r.Doc, f.sels)

		next := r.bind(n, p)
		if next == nil {
			return nil, r.fieldError(n, errors.Internalf("no resolver for field %q on type %q", f.sf.Name, n.objType.Name))
		}
		invs, err := r.invocations(f, p)
		if err != nil {
			return nil, r.fieldError(n, err)
		}
		next = directives.Chain(r.Directives, invs, next)
		if r.FieldHook != nil {
			inner := next
			next = func(ctx context.Context) (interface{}, error) {
				return r.FieldHook(ctx, p, inner)
			}
		}

		if r.Limiter != nil {
			r.Limiter <- struct{}{}
			defer func() {
				<-r.Limiter
			}()
		}
		out, err := next(traceCtx)
		if err != nil {
			return nil, r.fieldError(n, err)
		}
		if f.sf.CacheControl != nil {
			r.addHint(*f.sf.CacheControl)
		}
		return out, nil
	}()
}

// bind returns the resolver of a field node, or nil when nothing can serve
// it.
func (r *Request) bind(n *execNode, p *resolvers.Params) resolvers.Resolver {
	sf := n.field.sf
	switch sf {
	case schema.TypenameField:
		name := n.objType.Name
		return func(context.Context) (interface{}, error) {
			return name, nil
		}
	case schema.SchemaField:
		return func(context.Context) (interface{}, error) {
			return introspection.WrapSchema(r.Schema), nil
		}
	case schema.TypeField:
		return func(context.Context) (interface{}, error) {
			t, ok := r.Schema.Lookup(p.Args.String("name"))
			if !ok {
				return nil, nil
			}
			return introspection.WrapType(r.Schema, t), nil
		}
	}

	if sf.Resolve != nil {
		return func(ctx context.Context) (interface{}, error) {
			return sf.Resolve(ctx, *p)
		}
	}

	factory := r.ResolverFactory
	if factory == nil || schema.IsMetaType(n.objType.Name) {
		factory = defaultResolverFactory
	}
	return factory.CreateResolver(p)
}

// invocations lists the directives wrapping a field: the ones declared on
// the schema field first, then the ones written in the query.
func (r *Request) invocations(f *collectedField, p *resolvers.Params) ([]directives.Invocation, error) {
	if len(r.Directives) == 0 {
		return nil, nil
	}

	var invs []directives.Invocation
	for _, d := range f.sf.Directives {
		if _, ok := r.Directives[d.Name]; ok {
			invs = append(invs, directives.Invocation{Name: d.Name, Args: resolvers.NewArgs(d.Args), Params: p})
		}
	}
	for _, d := range f.ast.Directives {
		if d.Name == "skip" || d.Name == "include" {
			continue
		}
		if _, ok := r.Directives[d.Name]; !ok {
			continue
		}
		var decls []*schema.InputValue
		if def := r.Schema.Directive(d.Name); def != nil {
			decls = def.Args
		}
		args, err := coerceArgs(r.Schema, decls, d.Arguments, r.Vars)
		if err != nil {
			return nil, errors.Errorf("directive @%s: %s", d.Name, err)
		}
		invs = append(invs, directives.Invocation{Name: d.Name, Args: resolvers.NewArgs(args), Params: p})
	}
	return invs, nil
}

// expand completes the resolved value of n and adds the next level of
// unresolved children. It must be called after n itself has been resolved.
func (r *Request) expand(ctx context.Context, n *execNode) []*execNode {
	if isNil(n.value) {
		n.null = true
		return nil
	}

	if n.typ.Elem != nil {
		items, err := listItems(n.value)
		if err != nil {
			n.err = r.fieldError(n, err)
			return nil
		}
		children := make([]*execNode, len(items))
		for i, item := range items {
			c := &execNode{label: i, parent: n, typ: n.typ.Elem, sels: n.sels, value: item}
			if err, ok := item.(error); ok && !isNil(item) {
				c.err = r.fieldError(c, err)
			}
			children[i] = c
		}
		n.children = children
		return children
	}

	named := r.Schema.Unwrap(n.typ)
	if schema.IsLeaf(named) {
		leaf, err := serializeLeaf(named, n.value)
		if err != nil {
			n.err = r.fieldError(n, err)
			return nil
		}
		n.leaf = leaf
		n.null = leaf.IsNull()
		return nil
	}

	obj, qErr := r.resolveObjectType(named, n.value)
	if qErr != nil {
		n.err = r.fieldError(n, qErr)
		return nil
	}
	r.addTypeHints(named, obj)

	children := r.collectNodes(obj, resolvers.Unwrap(n.value), n.sels, n)
	n.children = children
	n.object = true
	if obj.Serial {
		for _, c := range children {
			r.process(ctx, []*execNode{c})
		}
		return nil
	}
	return children
}

func (r *Request) addTypeHints(declared schema.NamedType, obj *schema.Object) {
	switch t := declared.(type) {
	case *schema.Interface:
		r.addHint(t.CacheControl)
	case *schema.Union:
		r.addHint(t.CacheControl)
	}
	r.addHint(obj.CacheControl)
}

// fieldError converts a resolver error into a field error located at n.
func (r *Request) fieldError(n *execNode, err error) *errors.QueryError {
	var qErr *errors.QueryError
	if e, ok := err.(*errors.QueryError); ok {
		c := *e
		qErr = &c
	} else {
		qErr = errors.Errorf("%s", err)
	}
	if qErr.Extensions == nil {
		var ex errors.Extensioner
		if stderrors.As(err, &ex) {
			qErr.Extensions = ex.Extensions()
		}
	}
	qErr.Path = n.fullPath()
	if len(qErr.Locations) == 0 {
		qErr.Locations = n.locations()
	}
	return qErr
}
