package exec

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/gqlkit/graphql/cachecontrol"
	"github.com/gqlkit/graphql/directives"
	"github.com/gqlkit/graphql/errors"
	"github.com/gqlkit/graphql/internal/query"
	"github.com/gqlkit/graphql/internal/validation"
	"github.com/gqlkit/graphql/log"
	"github.com/gqlkit/graphql/resolvers"
	"github.com/gqlkit/graphql/schema"
)

const testSDL = `
	directive @upper on FIELD_DEFINITION
	directive @suffix(text: String!) on FIELD

	interface Character {
		name: String!
	}

	type Human implements Character {
		name: String!
		height: Float
	}

	type Droid implements Character {
		name: String!
		primaryFunction: String
	}

	enum Episode { NEWHOPE EMPIRE JEDI }

	type Cached @cacheControl(maxAge: 60) {
		v: Int
	}

	type Secret @cacheControl(maxAge: 30, scope: PRIVATE) {
		v: Int
	}

	type Nested {
		required: String!
		other: String
	}

	type Query {
		hero: Character
		humans: [Human]
		episode: Episode
		favorite: Episode
		greeting: String @upper
		boom: String
		safe: String
		required: String!
		nested: Nested
		cached: Cached
		override: Cached @cacheControl(maxAge: 10, scope: PRIVATE)
		secret: Secret @cacheControl(maxAge: 100)
		slow: Int
		fast: Int
		echo(n: Int = 7): Int
	}

	type Mutation {
		step(n: Int!): Int!
	}

	type Tick {
		n: Int!
	}

	type Subscription {
		ticks: Tick!
	}
`

type tickEvent struct {
	N   int
	err error
}

func (e *tickEvent) SubscriptionError() error { return e.err }

type harness struct {
	schema *schema.Schema
	steps  []int
	calls  atomic.Int32
	events []*tickEvent
	mu     sync.Mutex
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{}

	b := schema.NewBuilder()
	require.NoError(t, b.LoadSDL(testSDL))
	b.SetEnumValue("Episode", "NEWHOPE", 4)
	b.SetResolver("Query", "boom", func(ctx context.Context, p resolvers.Params) (interface{}, error) {
		panic("boom")
	})
	b.SetResolver("Query", "echo", func(ctx context.Context, p resolvers.Params) (interface{}, error) {
		return p.Args.Int("n"), nil
	})
	b.SetResolver("Query", "slow", func(ctx context.Context, p resolvers.Params) (interface{}, error) {
		time.Sleep(30 * time.Millisecond)
		return 1, nil
	})
	b.SetResolver("Query", "fast", func(ctx context.Context, p resolvers.Params) (interface{}, error) {
		return 2, nil
	})
	b.SetResolver("Mutation", "step", func(ctx context.Context, p resolvers.Params) (interface{}, error) {
		n := int(p.Args.Int("n"))
		h.calls.Inc()
		time.Sleep(time.Duration(4-n) * 5 * time.Millisecond)
		h.mu.Lock()
		defer h.mu.Unlock()
		h.steps = append(h.steps, n)
		return n, nil
	})
	b.SetResolver("Subscription", "ticks", func(ctx context.Context, p resolvers.Params) (interface{}, error) {
		c := make(chan *tickEvent, len(h.events))
		for _, e := range h.events {
			c <- e
		}
		close(c)
		return c, nil
	})

	s, err := b.Finish()
	require.NoError(t, err)
	h.schema = s
	return h
}

func (h *harness) request(t *testing.T, q string, root interface{}) *Request {
	t.Helper()
	doc, qErr := query.Parse(q)
	require.Nil(t, qErr)
	require.Empty(t, validation.Validate(h.schema, doc, validation.Options{}))
	op, err := query.GetOperation(doc, "")
	require.NoError(t, err)
	vars, errs := CoerceVariables(h.schema, op, nil)
	require.Empty(t, errs)

	return &Request{
		Schema:    h.schema,
		Doc:       doc,
		Operation: op,
		Vars:      vars,
		Root:      root,
		Limiter:   make(chan struct{}, 10),
		Logger:    log.LoggerFunc(func(context.Context, interface{}) {}),
		Cache:     &cachecontrol.Accumulator{},
	}
}

func messages(errs []*errors.QueryError) []string {
	var out []string
	for _, err := range errs {
		out = append(out, err.Message)
	}
	return out
}

var testRoot = map[string]interface{}{
	"hero": map[string]interface{}{
		"__typename":      "Droid",
		"name":            "R2-D2",
		"primaryFunction": "Astromech",
	},
	"humans": []interface{}{
		map[string]interface{}{"name": "Luke"},
		stderrors.New("not found"),
	},
	"episode":  "EMPIRE",
	"favorite": 4,
	"greeting": "hello",
	"safe":     "ok",
	"nested":   map[string]interface{}{"other": "x"},
	"cached":   map[string]interface{}{"v": 1},
	"override": map[string]interface{}{"v": 2},
	"secret":   map[string]interface{}{"v": 3},
}

func TestExecute(t *testing.T) {
	h := newHarness(t)

	for _, tc := range []struct {
		name   string
		query  string
		data   string
		errors []string
	}{
		{
			name:  "merges fields in selection order",
			query: `{ hero { name ... on Droid { primaryFunction } ... on Human { height } } safe hero { __typename } }`,
			data:  `{"hero":{"name":"R2-D2","primaryFunction":"Astromech","__typename":"Droid"},"safe":"ok"}`,
		},
		{
			name:  "aliases",
			query: `{ a: safe b: safe }`,
			data:  `{"a":"ok","b":"ok"}`,
		},
		{
			name:  "skip and include",
			query: `{ safe @skip(if: true) episode @include(if: true) hero @include(if: false) { name } }`,
			data:  `{"episode":"EMPIRE"}`,
		},
		{
			name:  "enums from names and mapped values",
			query: `{ episode favorite }`,
			data:  `{"episode":"EMPIRE","favorite":"NEWHOPE"}`,
		},
		{
			name:  "argument defaults",
			query: `{ a: echo b: echo(n: 3) }`,
			data:  `{"a":7,"b":3}`,
		},
		{
			name:   "null propagates to the nearest nullable parent",
			query:  `{ nested { required other } safe }`,
			data:   `{"nested":null,"safe":"ok"}`,
			errors: []string{`got nil for non-null "String!"`},
		},
		{
			name:   "null propagates to data",
			query:  `{ safe required }`,
			data:   `null`,
			errors: []string{`got nil for non-null "String!"`},
		},
		{
			name:   "list element errors",
			query:  `{ humans { name } }`,
			data:   `{"humans":[{"name":"Luke"},null]}`,
			errors: []string{"not found"},
		},
		{
			name:   "panics become field errors",
			query:  `{ boom safe }`,
			data:   `{"boom":null,"safe":"ok"}`,
			errors: []string{"panic occurred: boom"},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r := h.request(t, tc.query, testRoot)
			data, errs := r.Execute(context.Background())
			assert.JSONEq(t, tc.data, string(data))
			assert.Equal(t, tc.errors, messages(errs))
		})
	}
}

func TestFieldErrorPaths(t *testing.T) {
	h := newHarness(t)

	_, errs := h.request(t, `{ humans { name } }`, testRoot).Execute(context.Background())
	require.Len(t, errs, 1)
	assert.Equal(t, []interface{}{"humans", 1}, errs[0].Path)
	assert.Equal(t, []errors.Location{{Line: 1, Column: 3}}, errs[0].Locations)

	_, errs = h.request(t, `{ nested { required } }`, testRoot).Execute(context.Background())
	require.Len(t, errs, 1)
	assert.Equal(t, []interface{}{"nested", "required"}, errs[0].Path)
}

type codedError struct{}

func (codedError) Error() string { return "denied" }

func (codedError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": "FORBIDDEN"}
}

func TestFieldErrorExtensions(t *testing.T) {
	h := newHarness(t)
	r := h.request(t, `{ safe }`, map[string]interface{}{})
	r.ResolverFactory = resolvers.ResolverFactoryFunc(func(p *resolvers.Params) resolvers.Resolver {
		return func(context.Context) (interface{}, error) {
			return nil, codedError{}
		}
	})

	data, errs := r.Execute(context.Background())
	assert.JSONEq(t, `{"safe":null}`, string(data))
	require.Len(t, errs, 1)
	assert.Equal(t, "denied", errs[0].Message)
	assert.Equal(t, map[string]interface{}{"code": "FORBIDDEN"}, errs[0].Extensions)
}

func TestUnresolvableAbstractType(t *testing.T) {
	h := newHarness(t)
	r := h.request(t, `{ hero { name } }`, map[string]interface{}{"hero": struct{ Name string }{"X"}})

	data, errs := r.Execute(context.Background())
	assert.JSONEq(t, `{"hero":null}`, string(data))
	require.Len(t, errs, 1)
	assert.True(t, errors.IsInternal(errs[0]), errs[0].Message)
}

func TestResolveTypeWithTyped(t *testing.T) {
	h := newHarness(t)
	hero := resolvers.WithType{Type: "Human", Value: map[string]interface{}{"name": "Leia", "height": 1.5}}
	r := h.request(t, `{ hero { __typename name ... on Human { height } } }`, map[string]interface{}{"hero": hero})

	data, errs := r.Execute(context.Background())
	assert.Empty(t, errs)
	assert.JSONEq(t, `{"hero":{"__typename":"Human","name":"Leia","height":1.5}}`, string(data))
}

func TestMutationsRunSerially(t *testing.T) {
	h := newHarness(t)
	r := h.request(t, `mutation { a: step(n: 1) b: step(n: 2) c: step(n: 3) }`, nil)

	data, errs := r.Execute(context.Background())
	assert.Empty(t, errs)
	assert.JSONEq(t, `{"a":1,"b":2,"c":3}`, string(data))
	assert.Equal(t, []int{1, 2, 3}, h.steps)
	assert.Equal(t, int32(3), h.calls.Load())
}

func TestDirectivesWrapResolvers(t *testing.T) {
	h := newHarness(t)
	r := h.request(t, `{ greeting @suffix(text: "!") }`, testRoot)

	var (
		mu    sync.Mutex
		order []string
	)
	record := func(name string) {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, name)
	}
	r.Directives = map[string]directives.Directive{
		"upper": directives.Func(func(ctx context.Context, inv directives.Invocation, next resolvers.Resolver) (interface{}, error) {
			record(inv.Name)
			out, err := next(ctx)
			if err != nil {
				return nil, err
			}
			return strings.ToUpper(out.(string)), nil
		}),
		"suffix": directives.Func(func(ctx context.Context, inv directives.Invocation, next resolvers.Resolver) (interface{}, error) {
			record(inv.Name)
			out, err := next(ctx)
			if err != nil {
				return nil, err
			}
			return out.(string) + inv.Args.String("text"), nil
		}),
	}

	data, errs := r.Execute(context.Background())
	assert.Empty(t, errs)
	assert.JSONEq(t, `{"greeting":"HELLO!"}`, string(data))
	assert.Equal(t, []string{"upper", "suffix"}, order)
}

func TestFieldHook(t *testing.T) {
	h := newHarness(t)
	r := h.request(t, `{ safe episode }`, testRoot)

	var fields atomic.Int32
	r.FieldHook = func(ctx context.Context, p *resolvers.Params, next resolvers.Resolver) (interface{}, error) {
		fields.Inc()
		return next(ctx)
	}

	_, errs := r.Execute(context.Background())
	assert.Empty(t, errs)
	assert.Equal(t, int32(2), fields.Load())
}

func TestCacheControl(t *testing.T) {
	h := newHarness(t)

	r := h.request(t, `{ cached { v } }`, testRoot)
	_, errs := r.Execute(context.Background())
	require.Empty(t, errs)
	assert.Equal(t, cachecontrol.CacheControl{MaxAge: 60}, r.Cache.Result())

	r = h.request(t, `{ cached { v } override { v } }`, testRoot)
	_, errs = r.Execute(context.Background())
	require.Empty(t, errs)
	assert.Equal(t, cachecontrol.CacheControl{MaxAge: 10, Scope: cachecontrol.ScopePrivate}, r.Cache.Result())
}

func TestCacheControlMergesFieldAndType(t *testing.T) {
	h := newHarness(t)

	r := h.request(t, `{ secret { v } }`, testRoot)
	_, errs := r.Execute(context.Background())
	require.Empty(t, errs)
	assert.Equal(t, "max-age=30, private", r.Cache.Result().String())
}

func TestOutputKeysFollowSelectionOrder(t *testing.T) {
	h := newHarness(t)

	r := h.request(t, `{ slow fast }`, testRoot)
	data, errs := r.Execute(context.Background())
	require.Empty(t, errs)
	assert.Equal(t, `{"slow":1,"fast":2}`, string(data))
}

func TestDynamicCacheHint(t *testing.T) {
	h := newHarness(t)
	r := h.request(t, `{ safe }`, map[string]interface{}{})
	r.ResolverFactory = resolvers.ResolverFactoryFunc(func(p *resolvers.Params) resolvers.Resolver {
		return func(ctx context.Context) (interface{}, error) {
			cachecontrol.AddHint(ctx, cachecontrol.CacheControl{MaxAge: cachecontrol.NoCache})
			return "ok", nil
		}
	})

	_, errs := r.Execute(context.Background())
	require.Empty(t, errs)
	assert.Equal(t, "no-cache", r.Cache.Result().String())
}

func TestCancelledContext(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	data, errs := h.request(t, `{ safe }`, testRoot).Execute(ctx)
	assert.Nil(t, data)
	require.Len(t, errs, 1)
	assert.Equal(t, context.Canceled.Error(), errs[0].Message)
}

func TestSubscribe(t *testing.T) {
	h := newHarness(t)
	h.events = []*tickEvent{{N: 1}, {N: 2}, {err: stderrors.New("stream broken")}, {N: 3}}

	var got []*Response
	for resp := range h.request(t, `subscription { ticks { n } }`, nil).Subscribe(context.Background()) {
		got = append(got, resp)
	}

	require.Len(t, got, 3)
	assert.JSONEq(t, `{"ticks":{"n":1}}`, string(got[0].Data))
	assert.JSONEq(t, `{"ticks":{"n":2}}`, string(got[1].Data))
	assert.Nil(t, got[2].Data)
	assert.Equal(t, []string{"stream broken"}, messages(got[2].Errors))
}

func TestSubscribeClosedSource(t *testing.T) {
	h := newHarness(t)

	c := h.request(t, `subscription { ticks { n } }`, nil).Subscribe(context.Background())
	_, ok := <-c
	assert.False(t, ok)
}

func TestCoerceVariables(t *testing.T) {
	h := newHarness(t)
	doc, qErr := query.Parse(`query Q($n: Int!, $e: Episode = JEDI, $list: [Int]) { echo(n: $n) episode favorite humans { name } }`)
	require.Nil(t, qErr)
	op := doc.Operations[0]

	vars, errs := CoerceVariables(h.schema, op, map[string]interface{}{"n": 2, "list": 5})
	require.Empty(t, errs)
	e, _ := vars["e"].AsEnum()
	assert.Equal(t, "JEDI", e)
	list, ok := vars["list"].AsList()
	require.True(t, ok, "single value is coerced to a list")
	assert.Len(t, list, 1)

	_, errs = CoerceVariables(h.schema, op, map[string]interface{}{"n": "two"})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, `Variable "$n" got invalid value`)

	_, errs = CoerceVariables(h.schema, op, nil)
	require.Len(t, errs, 1)
	assert.Equal(t, `Variable "$n" of required type "Int!" was not provided.`, errs[0].Message)
}
