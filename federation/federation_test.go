package federation_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	graphql "github.com/gqlkit/graphql"
	gqlerrors "github.com/gqlkit/graphql/errors"
	"github.com/gqlkit/graphql/federation"
	"github.com/gqlkit/graphql/gqltesting"
	"github.com/gqlkit/graphql/schema"
)

const subgraphSDL = `
	type Query {
		me: User
	}

	type User @key(fields: "id") {
		id: ID!
		name: String
	}

	type Product @key(fields: "upc") {
		upc: String!
		price: Int
	}
`

type user struct {
	ID   graphql.ID
	Name string
}

type product struct {
	UPC   string
	Price int32
}

func newSchema(t *testing.T) *graphql.Schema {
	t.Helper()
	b := schema.NewBuilder()
	require.NoError(t, b.LoadSDL(subgraphSDL))
	federation.Register(b, federation.Options{
		MaxParallelism: 2,
		Entities: map[string]federation.EntityResolver{
			"User": func(ctx context.Context, rep map[string]interface{}) (interface{}, error) {
				id, _ := rep["id"].(string)
				if id == "0" {
					return nil, errors.New("user 0 is gone")
				}
				return &user{ID: graphql.ID(id), Name: "user " + id}, nil
			},
			"Product": func(ctx context.Context, rep map[string]interface{}) (interface{}, error) {
				upc, _ := rep["upc"].(string)
				return &product{UPC: upc, Price: 42}, nil
			},
		},
	})
	s, err := b.Finish()
	require.NoError(t, err)

	gs, err := graphql.NewSchema(s, struct{}{})
	require.NoError(t, err)
	return gs
}

func TestEntities(t *testing.T) {
	s := newSchema(t)
	gqltesting.RunTests(t, []*gqltesting.Test{
		{
			Schema: s,
			Query: `
				query($reps: [_Any!]!) {
					_entities(representations: $reps) {
						__typename
						... on User { id name }
						... on Product { upc price }
					}
				}
			`,
			Variables: map[string]interface{}{
				"reps": []interface{}{
					map[string]interface{}{"__typename": "User", "id": "1"},
					map[string]interface{}{"__typename": "Product", "upc": "p-1"},
				},
			},
			ExpectedResult: `{
				"_entities": [
					{"__typename": "User", "id": "1", "name": "user 1"},
					{"__typename": "Product", "upc": "p-1", "price": 42}
				]
			}`,
		},
	})
}

func TestEntityErrorsAreScopedToTheElement(t *testing.T) {
	s := newSchema(t)
	gqltesting.RunTests(t, []*gqltesting.Test{
		{
			Schema: s,
			Query: `{
				_entities(representations: [
					{__typename: "User", id: "1"},
					{__typename: "Review", id: "2"},
					{__typename: "User", id: "0"}
				]) {
					... on User { name }
				}
			}`,
			ExpectedResult: `{
				"_entities": [{"name": "user 1"}, null, null]
			}`,
			ExpectedErrors: []*gqlerrors.QueryError{
				{
					Message:   `unknown entity type "Review"`,
					Path:      []interface{}{"_entities", 1},
					Locations: []gqlerrors.Location{{Line: 2, Column: 5}},
				},
				{
					Message:   "user 0 is gone",
					Path:      []interface{}{"_entities", 2},
					Locations: []gqlerrors.Location{{Line: 2, Column: 5}},
				},
			},
		},
	})
}

func TestService(t *testing.T) {
	s := newSchema(t)
	resp := s.Exec(context.Background(), `{ _service { sdl } }`, "", nil)
	require.Empty(t, resp.Errors)
	require.JSONEq(t, `{"_service":{"sdl":`+quote(subgraphSDL)+`}}`, string(resp.Data))
}

func TestWithoutEntities(t *testing.T) {
	b := schema.NewBuilder()
	require.NoError(t, b.LoadSDL(`type Query { hello: String }`))
	federation.Register(b, federation.Options{})
	s, err := b.Finish()
	require.NoError(t, err)

	_, ok := s.Lookup("_Entity")
	require.False(t, ok)
	require.Nil(t, s.Query().Field("_entities"))
	require.NotNil(t, s.Query().Field("_service"))
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
