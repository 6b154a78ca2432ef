// Package federation turns a schema into an Apollo Federation subgraph: it
// adds the _Any and _Service types, the _Entity union and the _entities and
// _service query fields.
package federation

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/gqlkit/graphql/resolvers"
	"github.com/gqlkit/graphql/schema"
	"github.com/gqlkit/graphql/value"
)

// EntityResolver loads the entity identified by a representation. The
// representation always carries "__typename".
type EntityResolver func(ctx context.Context, representation map[string]interface{}) (interface{}, error)

// Options configure Register.
type Options struct {
	// Entities maps object type names to their resolvers. The _Entity union
	// and the _entities field are only added when it is not empty.
	Entities map[string]EntityResolver

	// MaxParallelism bounds the representations resolved concurrently. Zero
	// means no limit.
	MaxParallelism int

	// QueryType defaults to "Query".
	QueryType string
}

// Register adds the federation types and fields to b. It must be called
// after the subgraph SDL was loaded: _service returns the SDL loaded so far.
func Register(b *schema.Builder, opts Options) {
	queryType := opts.QueryType
	if queryType == "" {
		queryType = "Query"
	}

	for _, d := range directives() {
		b.RegisterDirective(d)
	}
	b.Register(&schema.Scalar{
		Name: "_Any",
		Validate: func(v value.Value) bool {
			_, ok := v.AsObject()
			return ok
		},
	})
	b.Register(&schema.Object{
		Name:   "_Service",
		Fields: []*schema.Field{{Name: "sdl", Type: schema.Named("String")}},
	})

	sdl := b.SDL()
	b.ExtendObject(queryType, &schema.Field{
		Name: "_service",
		Type: schema.NonNullOf(schema.Named("_Service")),
		Resolve: func(ctx context.Context, p resolvers.Params) (interface{}, error) {
			return map[string]interface{}{"sdl": sdl}, nil
		},
	})

	if len(opts.Entities) == 0 {
		return
	}

	names := make([]string, 0, len(opts.Entities))
	for name := range opts.Entities {
		names = append(names, name)
	}
	sort.Strings(names)
	b.Register(&schema.Union{Name: "_Entity", Types: names})

	r := &entities{resolvers: opts.Entities, limit: opts.MaxParallelism}
	b.ExtendObject(queryType, &schema.Field{
		Name: "_entities",
		Args: []*schema.InputValue{{
			Name: "representations",
			Type: schema.NonNullOf(schema.ListOf(schema.NonNullOf(schema.Named("_Any")))),
		}},
		Type:    schema.NonNullOf(schema.ListOf(schema.Named("_Entity"))),
		Resolve: r.resolve,
	})
}

func directives() []*schema.DirectiveDefinition {
	fields := func() []*schema.InputValue {
		return []*schema.InputValue{{Name: "fields", Type: schema.NonNullOf(schema.Named("String"))}}
	}
	return []*schema.DirectiveDefinition{
		{Name: "key", Args: fields(), Locations: []string{"OBJECT", "INTERFACE"}, Repeatable: true},
		{Name: "external", Locations: []string{"FIELD_DEFINITION"}},
		{Name: "requires", Args: fields(), Locations: []string{"FIELD_DEFINITION"}},
		{Name: "provides", Args: fields(), Locations: []string{"FIELD_DEFINITION"}},
		{Name: "extends", Locations: []string{"OBJECT", "INTERFACE"}},
	}
}

type entities struct {
	resolvers map[string]EntityResolver
	limit     int
}

// resolve loads every representation concurrently. A failing representation
// yields an error for its own list element only.
func (e *entities) resolve(ctx context.Context, p resolvers.Params) (interface{}, error) {
	reps := p.Args.List("representations")
	out := make([]interface{}, len(reps))

	g, gctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}
	for i, rep := range reps {
		i, rep := i, rep
		g.Go(func() error {
			out[i] = e.resolveOne(gctx, rep)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *entities) resolveOne(ctx context.Context, rep value.Value) interface{} {
	m, ok := rep.Interface().(map[string]interface{})
	if !ok {
		return fmt.Errorf("representation must be an object, got %s", rep.Kind())
	}
	typename, _ := m["__typename"].(string)
	if typename == "" {
		return fmt.Errorf("representation is missing __typename")
	}
	resolve, ok := e.resolvers[typename]
	if !ok {
		return fmt.Errorf("unknown entity type %q", typename)
	}

	v, err := resolve(ctx, m)
	if err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	return resolvers.WithType{Type: typename, Value: v}
}
