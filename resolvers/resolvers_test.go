package resolvers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gqlkit/graphql/value"
)

type droid struct {
	Name            string
	PrimaryFunction string `graphql:"function"`
	secret          string
}

func (d *droid) Friends(ctx context.Context, args struct{ First int32 }) ([]string, error) {
	if args.First < 0 {
		return nil, errors.New("first must be positive")
	}
	return []string{"Luke", "Leia", "Han"}[:args.First], nil
}

func (d *droid) Appears_In(args Args) []string {
	return []string{args.String("prefix") + "NEWHOPE"}
}

type dispatcher struct{}

func (dispatcher) ResolveField(ctx context.Context, p Params) (interface{}, error) {
	return "dispatched:" + p.Info.FieldName, nil
}

func resolve(t *testing.T, source interface{}, field string, args value.Value) (interface{}, error) {
	t.Helper()
	p := &Params{Source: source, Args: NewArgs(args), Info: Info{FieldName: field}}
	r := DynamicResolverFactory().CreateResolver(p)
	require.NotNil(t, r, "no resolver for %q", field)
	return r(context.Background())
}

func TestDynamicResolverFactory(t *testing.T) {
	d := &droid{Name: "R2-D2", PrimaryFunction: "Astromech", secret: "x"}

	got, err := resolve(t, d, "name", value.Null())
	require.NoError(t, err)
	assert.Equal(t, "R2-D2", got)

	got, err = resolve(t, d, "function", value.Null())
	require.NoError(t, err)
	assert.Equal(t, "Astromech", got)

	got, err = resolve(t, d, "friends", value.NewObject(value.Field{Name: "first", Value: value.Int(2)}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Luke", "Leia"}, got)

	_, err = resolve(t, d, "friends", value.NewObject(value.Field{Name: "first", Value: value.Int(-1)}))
	assert.EqualError(t, err, "first must be positive")

	got, err = resolve(t, d, "appearsIn", value.NewObject(value.Field{Name: "prefix", Value: value.String("ep:")}))
	require.NoError(t, err)
	assert.Equal(t, []string{"ep:NEWHOPE"}, got)

	got, err = resolve(t, dispatcher{}, "anything", value.Null())
	require.NoError(t, err)
	assert.Equal(t, "dispatched:anything", got)

	got, err = resolve(t, map[string]interface{}{"a": 1}, "b", value.Null())
	require.NoError(t, err)
	assert.Nil(t, got)

	obj := value.NewObject(value.Field{Name: "id", Value: value.String("1")})
	got, err = resolve(t, WithType{Type: "User", Value: obj}, "id", value.Null())
	require.NoError(t, err)
	assert.True(t, value.Equal(value.String("1"), got.(value.Value)))
}

func TestUnknownFieldHasNoResolver(t *testing.T) {
	p := &Params{Source: &droid{}, Info: Info{FieldName: "secret"}}
	assert.Nil(t, DynamicResolverFactory().CreateResolver(p))
}

func TestTypeResolverFactory(t *testing.T) {
	f := TypeResolverFactory{}
	f.Set("Query", ResolverFactoryFunc(func(p *Params) Resolver {
		return func(ctx context.Context) (interface{}, error) { return p.Info.FieldName, nil }
	}))

	r := f.CreateResolver(&Params{Info: Info{ParentType: "Query", FieldName: "hero"}})
	require.NotNil(t, r)
	got, err := r(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hero", got)

	assert.Nil(t, f.CreateResolver(&Params{Info: Info{ParentType: "Mutation"}}))
}
