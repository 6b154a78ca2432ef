package extensions

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/gqlkit/graphql/errors"
	"github.com/gqlkit/graphql/resolvers"
)

type recorder struct {
	Base
	name  string
	calls *[]string
}

func (r *recorder) ResolveField(ctx context.Context, p *resolvers.Params, next resolvers.Resolver) (interface{}, error) {
	*r.calls = append(*r.calls, r.name+" before")
	out, err := next(ctx)
	*r.calls = append(*r.calls, r.name+" after")
	return out, err
}

func (r *recorder) Result(context.Context) (string, interface{}) {
	return r.name, len(*r.calls)
}

func TestListResolveFieldOrder(t *testing.T) {
	var calls []string
	factory := func(name string) Factory {
		return FactoryFunc(func() Extension { return &recorder{name: name, calls: &calls} })
	}
	l := Create([]Factory{factory("a"), factory("b")})

	out, err := l.ResolveField(context.Background(), &resolvers.Params{}, func(context.Context) (interface{}, error) {
		calls = append(calls, "resolver")
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, out)
	assert.Equal(t, []string{"a before", "b before", "resolver", "b after", "a after"}, calls)
	assert.Equal(t, map[string]interface{}{"a": 5, "b": 5}, l.Result(context.Background()))
}

func TestEmptyList(t *testing.T) {
	l := Create(nil)
	assert.Nil(t, l)
	assert.Nil(t, l.Result(context.Background()))
	out, err := l.ResolveField(context.Background(), &resolvers.Params{}, func(context.Context) (interface{}, error) {
		return "x", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "x", out)
}

func sha(q string) string {
	sum := sha256.Sum256([]byte(q))
	return hex.EncodeToString(sum[:])
}

func TestPersistedQueries(t *testing.T) {
	const query = "{ hello }"
	pq, err := NewPersistedQueries(8)
	require.NoError(t, err)
	ctx := context.Background()

	ext := func(hash string) map[string]interface{} {
		return map[string]interface{}{
			"persistedQuery": map[string]interface{}{"version": float64(1), "sha256Hash": hash},
		}
	}

	t.Run("unknown hash", func(t *testing.T) {
		req := &Request{Extensions: ext(sha(query))}
		err := pq.Create().PrepareRequest(ctx, req)
		var qErr *errors.QueryError
		require.ErrorAs(t, err, &qErr)
		assert.Equal(t, "PersistedQueryNotFound", qErr.Message)
		assert.Equal(t, "PERSISTED_QUERY_NOT_FOUND", qErr.Extensions["code"])
	})

	t.Run("hash mismatch", func(t *testing.T) {
		req := &Request{Query: query, Extensions: ext(sha("{ other }"))}
		err := pq.Create().PrepareRequest(ctx, req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "provided sha does not match query")
	})

	t.Run("register then lookup", func(t *testing.T) {
		require.NoError(t, pq.Create().PrepareRequest(ctx, &Request{Query: query, Extensions: ext(sha(query))}))

		req := &Request{Extensions: ext(sha(query))}
		require.NoError(t, pq.Create().PrepareRequest(ctx, req))
		assert.Equal(t, query, req.Query)
	})

	t.Run("no extension", func(t *testing.T) {
		req := &Request{Query: query}
		require.NoError(t, pq.Create().PrepareRequest(ctx, req))
		assert.Equal(t, query, req.Query)
	})
}

func TestTracing(t *testing.T) {
	base := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	tick := 0
	tr := Tracing{}.Create().(*tracing)
	tr.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Millisecond)
	}
	ctx := context.Background()

	tr.ExecutionStart(ctx, &ExecutionInfo{})
	p := &resolvers.Params{Info: resolvers.Info{
		FieldName:  "hero",
		ParentType: "Query",
		ReturnType: ast.NamedType("Character", nil),
		Path:       []interface{}{"hero"},
	}}
	_, err := tr.ResolveField(ctx, p, func(context.Context) (interface{}, error) { return nil, nil })
	require.NoError(t, err)
	tr.ExecutionEnd(ctx, nil)

	key, v := tr.Result(ctx)
	require.Equal(t, "tracing", key)
	result := v.(map[string]interface{})
	assert.Equal(t, 1, result["version"])
	assert.Equal(t, int64(3*time.Millisecond), result["duration"])
	traces := result["execution"].(map[string]interface{})["resolvers"].([]resolverTrace)
	require.Len(t, traces, 1)
	assert.Equal(t, resolverTrace{
		Path:        []interface{}{"hero"},
		ParentType:  "Query",
		FieldName:   "hero",
		ReturnType:  "Character",
		StartOffset: int64(time.Millisecond),
		Duration:    int64(time.Millisecond),
	}, traces[0])
}

func TestTracingWithoutExecution(t *testing.T) {
	key, _ := Tracing{}.Create().Result(context.Background())
	assert.Empty(t, key)
}

func TestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := Logger{Logger: zap.New(core)}.Create()
	ctx := context.Background()

	require.NoError(t, l.PrepareRequest(ctx, &Request{Query: "query Q { a }"}))
	l.ExecutionStart(ctx, &ExecutionInfo{Operation: &ast.OperationDefinition{Name: "Q", Operation: ast.Query}})
	l.ExecutionEnd(ctx, []*errors.QueryError{errors.Errorf("failed")})

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "Q", fields["operation"])
	assert.Equal(t, "query", fields["type"])
	assert.Equal(t, int64(1), fields["errors"])
}

func TestLoggerValidationFailure(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := Logger{Logger: zap.New(core)}.Create()
	ctx := context.Background()

	require.NoError(t, l.PrepareRequest(ctx, &Request{Query: "{ nope }"}))
	l.ValidationEnd(ctx, []*errors.QueryError{errors.Errorf(`Cannot query field "nope" on type "Query".`)})

	require.Equal(t, 1, logs.FilterMessage("graphql: validation failed").Len())
}
