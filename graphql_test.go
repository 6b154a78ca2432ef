package graphql_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	graphql "github.com/gqlkit/graphql"
	gqlerrors "github.com/gqlkit/graphql/errors"
	"github.com/gqlkit/graphql/example/starwars"
	"github.com/gqlkit/graphql/gqltesting"
)

var starwarsSchema = graphql.MustParseSchema(starwars.Schema, &starwars.Resolver{})

type helloWorldResolver1 struct{}

func (r *helloWorldResolver1) Hello() string {
	return "Hello world!"
}

type helloWorldResolver2 struct{}

func (r *helloWorldResolver2) Hello(ctx context.Context) (string, error) {
	return "Hello world!", nil
}

type helloSnakeResolver struct{}

func (r *helloSnakeResolver) HelloHTML() string {
	return "Hello snake!"
}

func (r *helloSnakeResolver) SayHello(args struct{ FullName string }) string {
	return "Hello " + args.FullName + "!"
}

func TestHelloWorld(t *testing.T) {
	gqltesting.RunTests(t, []*gqltesting.Test{
		{
			Schema: graphql.MustParseSchema(`
				schema {
					query: Query
				}

				type Query {
					hello: String!
				}
			`, &helloWorldResolver1{}),
			Query: `
				{
					hello
				}
			`,
			ExpectedResult: `
				{
					"hello": "Hello world!"
				}
			`,
		},

		{
			Schema: graphql.MustParseSchema(`
				type Query {
					hello: String!
				}
			`, &helloWorldResolver2{}),
			Query: `
				{
					hello
				}
			`,
			ExpectedResult: `
				{
					"hello": "Hello world!"
				}
			`,
		},
	})
}

func TestHelloSnake(t *testing.T) {
	gqltesting.RunTests(t, []*gqltesting.Test{
		{
			Schema: graphql.MustParseSchema(`
				type Query {
					hello_html: String!
					say_hello(full_name: String!): String!
				}
			`, &helloSnakeResolver{}),
			Query: `
				{
					hello_html
					say_hello(full_name: "Rob Pike")
				}
			`,
			ExpectedResult: `
				{
					"hello_html": "Hello snake!",
					"say_hello": "Hello Rob Pike!"
				}
			`,
		},
	})
}

func TestMapResolvers(t *testing.T) {
	gqltesting.RunTests(t, []*gqltesting.Test{
		{
			Schema: graphql.MustParseSchema(`
				type Query {
					user: User
				}
				type User {
					name: String!
					tags: [String!]!
				}
			`, map[string]interface{}{
				"user": map[string]interface{}{
					"name": "gopher",
					"tags": []string{"go", "graphql"},
				},
			}),
			Query: `
				{
					user {
						name
						tags
					}
				}
			`,
			ExpectedResult: `
				{
					"user": {
						"name": "gopher",
						"tags": ["go", "graphql"]
					}
				}
			`,
		},
	})
}

func TestBasic(t *testing.T) {
	gqltesting.RunTests(t, []*gqltesting.Test{
		{
			Schema: starwarsSchema,
			Query: `
				{
					hero {
						id
						name
						friends {
							name
						}
					}
				}
			`,
			ExpectedResult: `
				{
					"hero": {
						"id": "2001",
						"name": "R2-D2",
						"friends": [
							{
								"name": "Luke Skywalker"
							},
							{
								"name": "Han Solo"
							},
							{
								"name": "Leia Organa"
							}
						]
					}
				}
			`,
		},
	})
}

func TestArguments(t *testing.T) {
	gqltesting.RunTests(t, []*gqltesting.Test{
		{
			Schema: starwarsSchema,
			Query: `
				{
					hero(episode: EMPIRE) {
						name
						appearsIn
					}
				}
			`,
			ExpectedResult: `
				{
					"hero": {
						"name": "Luke Skywalker",
						"appearsIn": ["NEWHOPE", "EMPIRE", "JEDI"]
					}
				}
			`,
		},

		{
			Schema: starwarsSchema,
			Query: `
				{
					human(id: "1000") {
						name
						height
					}
				}
			`,
			ExpectedResult: `
				{
					"human": {
						"name": "Luke Skywalker",
						"height": 1.72
					}
				}
			`,
		},

		{
			Schema: starwarsSchema,
			Query: `
				{
					human(id: "9999") {
						name
					}
				}
			`,
			ExpectedResult: `
				{
					"human": null
				}
			`,
		},
	})
}

func TestAliasesAndFragments(t *testing.T) {
	gqltesting.RunTests(t, []*gqltesting.Test{
		{
			Schema: starwarsSchema,
			Query: `
				query HumanPair($id: ID!) {
					luke: human(id: $id) {
						...HumanFields
					}
					leia: human(id: "1003") {
						...HumanFields
					}
				}

				fragment HumanFields on Human {
					name
					mass
				}
			`,
			Variables: map[string]interface{}{
				"id": "1000",
			},
			ExpectedResult: `
				{
					"luke": {
						"name": "Luke Skywalker",
						"mass": 77
					},
					"leia": {
						"name": "Leia Organa",
						"mass": 49
					}
				}
			`,
		},

		{
			Schema: starwarsSchema,
			Query: `
				{
					search(text: "an") {
						__typename
						... on Human {
							name
							height
						}
						... on Starship {
							name
							length
						}
					}
				}
			`,
			ExpectedResult: `
				{
					"search": [
						{
							"__typename": "Human",
							"name": "Han Solo",
							"height": 1.8
						},
						{
							"__typename": "Human",
							"name": "Leia Organa",
							"height": 1.5
						},
						{
							"__typename": "Starship",
							"name": "TIE Advanced x1",
							"length": 9.2
						}
					]
				}
			`,
		},
	})
}

func TestVariablesAndDirectives(t *testing.T) {
	const query = `
		query HeroName($episode: Episode, $skipName: Boolean!) {
			hero(episode: $episode) {
				id
				name @skip(if: $skipName)
			}
		}
	`
	gqltesting.RunTests(t, []*gqltesting.Test{
		{
			Schema:    starwarsSchema,
			Query:     query,
			Variables: map[string]interface{}{"episode": "JEDI", "skipName": true},
			ExpectedResult: `
				{
					"hero": {
						"id": "2001"
					}
				}
			`,
		},

		{
			Schema:    starwarsSchema,
			Query:     query,
			Variables: map[string]interface{}{"episode": "EMPIRE", "skipName": false},
			ExpectedResult: `
				{
					"hero": {
						"id": "1000",
						"name": "Luke Skywalker"
					}
				}
			`,
		},
	})
}

func TestConnections(t *testing.T) {
	gqltesting.RunTests(t, []*gqltesting.Test{
		{
			Schema: starwarsSchema,
			Query: `
				{
					hero {
						friendsConnection(first: 1) {
							totalCount
							edges {
								cursor
								node {
									name
								}
							}
							pageInfo {
								hasNextPage
							}
						}
					}
				}
			`,
			ExpectedResult: `
				{
					"hero": {
						"friendsConnection": {
							"totalCount": 3,
							"edges": [
								{
									"cursor": "Y3Vyc29yMQ==",
									"node": {
										"name": "Luke Skywalker"
									}
								}
							],
							"pageInfo": {
								"hasNextPage": true
							}
						}
					}
				}
			`,
		},
	})
}

func TestMutationsRunInOrder(t *testing.T) {
	gqltesting.RunTests(t, []*gqltesting.Test{
		{
			Schema: starwarsSchema,
			Query: `
				mutation {
					first: createReview(episode: JEDI, review: {stars: 5, commentary: "This is a great movie!"}) {
						stars
						commentary
					}
					second: createReview(episode: JEDI, review: {stars: 2}) {
						stars
					}
				}
			`,
			ExpectedResult: `
				{
					"first": {
						"stars": 5,
						"commentary": "This is a great movie!"
					},
					"second": {
						"stars": 2
					}
				}
			`,
		},

		{
			Schema: starwarsSchema,
			Query: `
				{
					reviews(episode: JEDI) {
						stars
					}
				}
			`,
			ExpectedResult: `
				{
					"reviews": [
						{"stars": 5},
						{"stars": 2}
					]
				}
			`,
		},
	})
}

type notFoundError struct {
	code string
}

func (e notFoundError) Error() string { return "not found" }

func (e notFoundError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.code}
}

type droidsResolver struct{}

type namedDroid struct {
	name string
	err  error
}

func (d *namedDroid) Name() (string, error) {
	return d.name, d.err
}

func (r *droidsResolver) Droids() []*namedDroid {
	return []*namedDroid{
		{name: "R2-D2"},
		{err: notFoundError{code: "NotFound"}},
		{name: "C-3PO"},
	}
}

func (r *droidsResolver) Quote() (*string, error) {
	return nil, errors.New("Bleep bloop")
}

func (r *droidsResolver) Panics() *string {
	panic("boom")
}

func (r *droidsResolver) Required() *string {
	return nil
}

const droidsSchema = `
	type Query {
		droids: [Droid]!
		quote: String
		panics: String
		required: String!
	}

	type Droid {
		name: String!
	}
`

func TestErrors(t *testing.T) {
	s := graphql.MustParseSchema(droidsSchema, &droidsResolver{})

	gqltesting.RunTests(t, []*gqltesting.Test{
		{
			Schema: s,
			Query:  `{ droids { name } }`,
			ExpectedResult: `
				{
					"droids": [
						{"name": "R2-D2"},
						null,
						{"name": "C-3PO"}
					]
				}
			`,
			ExpectedErrors: []*gqlerrors.QueryError{
				{
					Message:    "not found",
					Path:       []interface{}{"droids", 1, "name"},
					Locations:  []gqlerrors.Location{{Line: 1, Column: 12}},
					Extensions: map[string]interface{}{"code": "NotFound"},
				},
			},
		},

		{
			Schema: s,
			Query:  `{ quote panics }`,
			ExpectedResult: `
				{
					"quote": null,
					"panics": null
				}
			`,
			ExpectedErrors: []*gqlerrors.QueryError{
				{
					Message:   "panic occurred: boom",
					Path:      []interface{}{"panics"},
					Locations: []gqlerrors.Location{{Line: 1, Column: 9}},
				},
				{
					Message:   "Bleep bloop",
					Path:      []interface{}{"quote"},
					Locations: []gqlerrors.Location{{Line: 1, Column: 3}},
				},
			},
		},
	})
}

func TestNullPropagatesToData(t *testing.T) {
	s := graphql.MustParseSchema(droidsSchema, &droidsResolver{})

	resp := s.Exec(context.Background(), `{ quote required }`, "", nil)
	assert.Equal(t, "null", string(resp.Data))
	require.Len(t, resp.Errors, 2)
	assert.Equal(t, []interface{}{"quote"}, resp.Errors[0].Path)
	assert.Equal(t, []interface{}{"required"}, resp.Errors[1].Path)
	assert.True(t, strings.Contains(resp.Errors[1].Message, "non-null"), resp.Errors[1].Message)
}

func TestErrorsAreSorted(t *testing.T) {
	s := graphql.MustParseSchema(droidsSchema, &droidsResolver{})

	resp := s.Exec(context.Background(), `{ panics quote droids { name } }`, "", nil)
	require.Len(t, resp.Errors, 3)
	var paths []string
	for _, err := range resp.Errors {
		var segs []string
		for _, seg := range err.Path {
			segs = append(segs, fmt.Sprint(seg))
		}
		paths = append(paths, strings.Join(segs, "/"))
	}
	assert.Equal(t, []string{"droids/1/name", "panics", "quote"}, paths)
}

func TestOperationSelection(t *testing.T) {
	const query = `
		query A { hero { name } }
		query B { hero(episode: EMPIRE) { name } }
	`
	gqltesting.RunTests(t, []*gqltesting.Test{
		{
			Schema:         starwarsSchema,
			Query:          query,
			OperationName:  "B",
			ExpectedResult: `{"hero": {"name": "Luke Skywalker"}}`,
		},
	})

	resp := starwarsSchema.Exec(context.Background(), query, "", nil)
	require.Len(t, resp.Errors, 1)
	assert.Nil(t, resp.Data)

	resp = starwarsSchema.Exec(context.Background(), query, "C", nil)
	require.Len(t, resp.Errors, 1)
}

func TestInvalidVariables(t *testing.T) {
	resp := starwarsSchema.Exec(context.Background(), `
		query($id: ID!) {
			human(id: $id) { name }
		}
	`, "", nil)
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0].Message, `"$id"`)
}

func TestValidate(t *testing.T) {
	errs := starwarsSchema.Validate(`{ hero { nam } }`)
	require.Len(t, errs, 1)
	assert.Equal(t, "FieldsOnCorrectType", errs[0].Rule)
	assert.Contains(t, errs[0].Message, `Cannot query field "nam" on type "Character".`)

	assert.Empty(t, starwarsSchema.Validate(`{ hero { name } }`))

	errs = starwarsSchema.Validate(`{ hero { `)
	require.Len(t, errs, 1)
}

func TestExecWithoutResolverPanics(t *testing.T) {
	s := graphql.MustParseSchema(`type Query { hello: String }`, nil)
	assert.Panics(t, func() {
		s.Exec(context.Background(), `{ hello }`, "", nil)
	})
}

type contextResolver struct {
	t *testing.T
}

func (r *contextResolver) Hero(ctx context.Context) *contextHero {
	gctx := graphql.GraphQLContext(ctx)
	require.NotNil(r.t, gctx)
	assert.Equal(r.t, "hero", gctx.Field.FieldName)
	assert.Equal(r.t, "h", gctx.Field.Alias)
	assert.Equal(r.t, "Query", gctx.Field.ParentType)
	assert.Equal(r.t, []interface{}{"h"}, gctx.Field.Path)
	return &contextHero{}
}

type contextHero struct{}

func (h *contextHero) Name(ctx context.Context) string {
	return graphql.GraphQLContext(ctx).Field.ParentType
}

func TestGraphQLContext(t *testing.T) {
	assert.Nil(t, graphql.GraphQLContext(context.Background()))

	gqltesting.RunTests(t, []*gqltesting.Test{
		{
			Schema: graphql.MustParseSchema(`
				type Query { hero: Hero }
				type Hero { name: String! }
			`, &contextResolver{t: t}),
			Query:          `{ h: hero { name } }`,
			ExpectedResult: `{"h": {"name": "Hero"}}`,
		},
	})
}

func TestSubscriptionRejectedByExec(t *testing.T) {
	s := graphql.MustParseSchema(`
		type Query { hello: String }
		type Subscription { ticks: Int }
	`, map[string]interface{}{})

	resp := s.Exec(context.Background(), `subscription { ticks }`, "", nil)
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0].Message, "Subscribe")
}
