package graphql

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/gqlkit/graphql/errors"
	"github.com/gqlkit/graphql/internal/query"
)

// ParseQuery parses a GraphQL query string and returns the AST root node and
// any errors. It only serves to expose the internal query.Parse function.
func ParseQuery(queryString string) (*ast.QueryDocument, *errors.QueryError) {
	return query.Parse(queryString)
}
