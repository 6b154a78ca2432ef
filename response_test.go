package graphql

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gqlkit/graphql/errors"
)

func TestSortErrors(t *testing.T) {
	at := func(msg string, line, col int, path ...interface{}) *errors.QueryError {
		return &errors.QueryError{Message: msg, Path: path, Locations: []errors.Location{{Line: line, Column: col}}}
	}
	r := &Response{Errors: []*errors.QueryError{
		at("b", 1, 5, "items", 10, "name"),
		at("c", 1, 1, "items", 2, "name"),
		at("d", 3, 1, "user"),
		at("a", 1, 1),
		at("e", 2, 1, "user"),
		at("f", 1, 1, "items", "count"),
	}}
	r.sortErrors()

	var got []string
	for _, err := range r.Errors {
		got = append(got, err.Message)
	}
	assert.Equal(t, []string{"a", "c", "b", "f", "e", "d"}, got)
}

func TestResponseEncodesErrorsFirst(t *testing.T) {
	b, err := json.Marshal(&Response{
		Data:   json.RawMessage(`{"a":1}`),
		Errors: []*errors.QueryError{{Message: "x"}},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"errors":[{"message":"x"}],"data":{"a":1}}`, string(b))
}

type docCacheResolver struct{}

func (docCacheResolver) Hello() string { return "world" }

func TestDocumentCache(t *testing.T) {
	s := MustParseSchema(`type Query { hello: String! }`, docCacheResolver{}, DocumentCacheSize(2))

	for _, q := range []string{`{ hello }`, `{ hello }`, `query A { hello }`} {
		resp := s.Exec(context.Background(), q, "", nil)
		require.Empty(t, resp.Errors)
	}
	assert.Equal(t, 2, s.docs.len())

	doc, ok := s.docs.get(`{ hello }`)
	require.True(t, ok)
	again, _ := s.parse(`{ hello }`)
	assert.Same(t, doc, again)

	s.Exec(context.Background(), `query B { hello }`, "", nil)
	s.Exec(context.Background(), `query C { hello }`, "", nil)
	assert.Equal(t, 2, s.docs.len())
	_, ok = s.docs.get(`{ hello }`)
	assert.False(t, ok)

	// invalid documents are never cached
	s.Exec(context.Background(), `{ hello `, "", nil)
	_, ok = s.docs.get(`{ hello `)
	assert.False(t, ok)
}

func TestDocumentCacheDisabled(t *testing.T) {
	s := MustParseSchema(`type Query { hello: String! }`, docCacheResolver{}, DocumentCacheSize(0))
	resp := s.Exec(context.Background(), `{ hello }`, "", nil)
	require.Empty(t, resp.Errors)
	assert.Equal(t, 0, s.docs.len())
}
