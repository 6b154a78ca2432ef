package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func FuzzParseQuery(f *testing.F) {
	f.Add(`{ hero { name } }`)
	f.Add(`query Q($id: ID!) { node(id: $id) { ... on Human { height } } }`)
	f.Fuzz(func(t *testing.T, queryStr string) {
		Parse(queryStr)
	})
}

func TestParseSyntaxError(t *testing.T) {
	_, err := Parse("{\n  hero(: 1)\n}")
	require.NotNil(t, err)
	require.Len(t, err.Locations, 1)
	assert.Equal(t, 2, err.Locations[0].Line)
	assert.Greater(t, err.Locations[0].Column, 0)
	assert.Nil(t, err.Path)
	assert.Equal(t, "SyntaxError", err.Rule)
}

func TestGetOperation(t *testing.T) {
	doc, qErr := Parse(`query A { a } query B { b }`)
	require.Nil(t, qErr)

	op, err := GetOperation(doc, "B")
	require.NoError(t, err)
	assert.Equal(t, "B", op.Name)

	_, err = GetOperation(doc, "")
	assert.EqualError(t, err, "more than one operation in query document and no operation name given")

	_, err = GetOperation(doc, "C")
	assert.EqualError(t, err, `graphql: no operation with name "C"`)
}
