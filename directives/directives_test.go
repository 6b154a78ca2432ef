package directives_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gqlkit/graphql/directives"
	"github.com/gqlkit/graphql/resolvers"
)

func trace(log *[]string, name string) directives.Directive {
	return directives.Func(func(ctx context.Context, inv directives.Invocation, next resolvers.Resolver) (interface{}, error) {
		*log = append(*log, "enter "+name)
		out, err := next(ctx)
		*log = append(*log, "exit "+name)
		return out, err
	})
}

func TestChainOrder(t *testing.T) {
	var log []string
	defs := map[string]directives.Directive{
		"a": trace(&log, "a"),
		"b": trace(&log, "b"),
	}
	r := directives.Chain(defs, []directives.Invocation{{Name: "a"}, {Name: "unknown"}, {Name: "b"}}, func(context.Context) (interface{}, error) {
		log = append(log, "resolve")
		return "x", nil
	})

	out, err := r(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "x", out)
	assert.Equal(t, []string{"enter a", "enter b", "resolve", "exit b", "exit a"}, log)
}

type upper struct{ deny bool }

func (u upper) Before(ctx context.Context, inv directives.Invocation) error {
	if u.deny {
		return errors.New("denied")
	}
	return nil
}

func (upper) After(ctx context.Context, inv directives.Invocation, output interface{}) (interface{}, error) {
	return strings.ToUpper(output.(string)), nil
}

func TestFromVisitor(t *testing.T) {
	resolve := func(context.Context) (interface{}, error) { return "hello", nil }

	out, err := directives.FromVisitor(upper{}).Resolve(context.Background(), directives.Invocation{Name: "upper"}, resolve)
	require.NoError(t, err)
	assert.Equal(t, "HELLO", out)

	_, err = directives.FromVisitor(upper{deny: true}).Resolve(context.Background(), directives.Invocation{Name: "upper"}, resolve)
	assert.EqualError(t, err, "denied")
}
