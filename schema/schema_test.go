package schema_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/gqlkit/graphql/cachecontrol"
	"github.com/gqlkit/graphql/schema"
	"github.com/gqlkit/graphql/value"
)

const starwarsSDL = `
schema {
	query: Query
	mutation: Mutation
}

type Query {
	hero(episode: Episode = NEWHOPE): Character
	search(text: String!, first: Int = 10): [SearchResult!]! @complexity(cost: "first * child_complexity")
	reviews: [Review] @cacheControl(maxAge: 30, scope: PRIVATE)
}

type Mutation {
	createReview(review: ReviewInput!): Review
}

interface Character {
	id: ID!
	name: String!
	friends: [Character]
}

type Human implements Character @cacheControl(maxAge: 60) {
	id: ID!
	name: String!
	friends: [Character]
	height(unit: LengthUnit = METER): Float
}

type Droid implements Character {
	id: ID!
	name: String!
	friends: [Character]
	primaryFunction: String @deprecated(reason: "use function")
}

union SearchResult = Human | Droid

enum Episode { NEWHOPE EMPIRE JEDI }

enum LengthUnit { METER FOOT }

type Review {
	stars: Int!
	commentary: String
}

input ReviewInput @oneOf {
	stars: Int
	commentary: String
}
`

func mustFinish(t *testing.T, sdl string) *schema.Schema {
	t.Helper()
	b := schema.NewBuilder()
	require.NoError(t, b.LoadSDL(sdl))
	s, err := b.Finish()
	require.NoError(t, err)
	return s
}

func TestLoadSDL(t *testing.T) {
	s := mustFinish(t, starwarsSDL)

	assert.Equal(t, "Query", s.Query().Name)
	assert.Equal(t, "Mutation", s.Mutation().Name)
	assert.Nil(t, s.Subscription())
	assert.Same(t, s.Mutation(), s.RootType(ast.Mutation))

	hero := s.Query().Field("hero")
	require.NotNil(t, hero)
	assert.Equal(t, "Character", hero.Type.String())
	require.NotNil(t, hero.Arg("episode").DefaultValue)
	assert.True(t, value.Equal(value.Enum("NEWHOPE"), *hero.Arg("episode").DefaultValue))

	reviews := s.Query().Field("reviews")
	require.NotNil(t, reviews.CacheControl)
	assert.Equal(t, cachecontrol.CacheControl{MaxAge: 30, Scope: cachecontrol.ScopePrivate}, *reviews.CacheControl)

	human, ok := s.Lookup("Human")
	require.True(t, ok)
	assert.Equal(t, 60, human.(*schema.Object).CacheControl.MaxAge)

	droid, _ := s.Lookup("Droid")
	pf := droid.(*schema.Object).Field("primaryFunction")
	assert.True(t, pf.Deprecated)
	assert.Equal(t, "use function", pf.DeprecationReason)

	input, _ := s.Lookup("ReviewInput")
	assert.True(t, input.(*schema.InputObject).OneOf)
}

func TestAppliedDirectives(t *testing.T) {
	s := mustFinish(t, `
		directive @auth(role: String!) on FIELD_DEFINITION | OBJECT
		type Query @auth(role: "user") {
			secret: String @auth(role: "admin") @cacheControl(maxAge: 5)
		}
	`)

	require.NotNil(t, s.Directive("auth"))
	require.NotNil(t, s.Directive("include"))

	assert.Len(t, s.Query().Directives, 1)

	secret := s.Query().Field("secret")
	require.Len(t, secret.Directives, 1)
	assert.Equal(t, "auth", secret.Directives[0].Name)
	args, ok := secret.Directives[0].Args.AsObject()
	require.True(t, ok)
	role, _ := args.Get("role")
	assert.True(t, value.Equal(value.String("admin"), role))
	assert.Equal(t, 5, secret.CacheControl.MaxAge)
}

func TestPossibleTypes(t *testing.T) {
	s := mustFinish(t, starwarsSDL)

	character, _ := s.Lookup("Character")
	result, _ := s.Lookup("SearchResult")
	human, _ := s.Lookup("Human")
	review, _ := s.Lookup("Review")

	names := func(objs []*schema.Object) []string {
		var out []string
		for _, o := range objs {
			out = append(out, o.Name)
		}
		return out
	}
	assert.Equal(t, []string{"Human", "Droid"}, names(s.PossibleTypes(character)))
	assert.Equal(t, []string{"Human", "Droid"}, names(s.PossibleTypes(result)))
	assert.True(t, s.IsPossibleType(character, human.(*schema.Object)))
	assert.False(t, s.IsPossibleType(result, review.(*schema.Object)))
	assert.True(t, s.Overlap(character, result))
	assert.False(t, s.Overlap(character, review))
}

func TestMetaFields(t *testing.T) {
	s := mustFinish(t, starwarsSDL)

	review, _ := s.Lookup("Review")
	assert.Same(t, schema.TypenameField, s.Field(review, "__typename"))
	assert.Same(t, schema.SchemaField, s.Field(s.Query(), "__schema"))
	assert.Nil(t, s.Field(review, "__schema"))

	_, ok := s.Lookup("__Type")
	assert.True(t, ok)
	assert.NotContains(t, s.SDL(), "__Type")
}

func TestFieldCost(t *testing.T) {
	s := mustFinish(t, starwarsSDL)
	search := s.Query().Field("search")

	args, _ := value.NewObject(value.Field{Name: "first", Value: value.Int(5)}).AsObject()
	cost, ok, err := search.Cost(args, 3)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 15, cost)

	_, ok, err = s.Query().Field("hero").Cost(nil, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRegisterIsIdempotent(t *testing.T) {
	b := schema.NewBuilder()
	b.Register(&schema.Object{Name: "Query", Fields: []*schema.Field{{Name: "a", Type: schema.Named("Int")}}})
	b.Register(&schema.Object{Name: "Query", Fields: []*schema.Field{{Name: "a", Type: schema.Named("Int")}}})
	_, err := b.Finish()
	require.NoError(t, err)
}

func TestFinishReportsAllErrors(t *testing.T) {
	b := schema.NewBuilder()
	b.Register(&schema.Object{Name: "Query", Fields: []*schema.Field{{Name: "a", Type: schema.Named("Int")}}})
	b.Register(&schema.Object{Name: "Query", Fields: []*schema.Field{{Name: "b", Type: schema.Named("Int")}}})
	require.NoError(t, b.LoadSDL(`
		type Thing implements Node { name: Missing }
		interface Node { id: ID! }
		type Bad { cost: Int @complexity(cost: "1 +") }
	`))

	_, err := b.Finish()
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{
		`type "Query" is already registered with a different definition`,
		`field Thing.name refers to unknown type "Missing"`,
		`"Thing" does not implement field "id" of interface "Node"`,
		`field Bad.cost has an invalid complexity expression`,
	} {
		assert.True(t, strings.Contains(msg, want), "missing %q in:\n%s", want, msg)
	}
}

func TestMissingQueryRoot(t *testing.T) {
	b := schema.NewBuilder()
	require.NoError(t, b.LoadSDL(`type Mutation { a: Int }`))
	_, err := b.Finish()
	assert.ErrorContains(t, err, `query root type "Query" is not registered`)
}

func TestOneOfFieldsMustBeNullable(t *testing.T) {
	b := schema.NewBuilder()
	require.NoError(t, b.LoadSDL(`
		type Query { a(in: In): Int }
		input In @oneOf { x: Int! y: String }
	`))
	_, err := b.Finish()
	assert.ErrorContains(t, err, "oneOf input field In.x must be nullable")
}

func TestExtendObject(t *testing.T) {
	b := schema.NewBuilder()
	require.NoError(t, b.LoadSDL(`type Query { a: Int }`))
	b.ExtendObject("Query", &schema.Field{Name: "b", Type: schema.Named("String")})
	require.NoError(t, b.LoadSDL(`extend type Query { c: Boolean }`))
	s, err := b.Finish()
	require.NoError(t, err)

	var names []string
	for _, f := range s.Query().Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"a", "c", "b"}, names)
}

func TestSnapshotIsIsolatedFromBuilder(t *testing.T) {
	b := schema.NewBuilder()
	q := &schema.Object{Name: "Query", Fields: []*schema.Field{{Name: "a", Type: schema.Named("Int")}}}
	b.Register(q)
	s, err := b.Finish()
	require.NoError(t, err)

	q.Fields = append(q.Fields, &schema.Field{Name: "b", Type: schema.Named("Int")})
	assert.Len(t, s.Query().Fields, 1)
}
