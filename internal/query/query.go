// Package query parses executable documents and selects operations.
package query

import (
	stderrors "errors"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/gqlkit/graphql/errors"
)

// Parse parses an executable document. A syntax error is returned as a
// single error carrying the position of the offending token.
func Parse(queryString string) (*ast.QueryDocument, *errors.QueryError) {
	doc, err := parser.ParseQuery(&ast.Source{Input: queryString})
	if err != nil {
		return nil, convertError(err)
	}
	return doc, nil
}

func convertError(err error) *errors.QueryError {
	var gqlErr *gqlerror.Error
	if !stderrors.As(err, &gqlErr) {
		return errors.Errorf("%s", err)
	}
	qe := &errors.QueryError{Message: gqlErr.Message, Err: err, Rule: "SyntaxError"}
	for _, loc := range gqlErr.Locations {
		qe.Locations = append(qe.Locations, errors.Location{Line: loc.Line, Column: loc.Column})
	}
	return qe
}

// GetOperation selects the operation to execute. An empty name selects the
// only operation of the document.
func GetOperation(doc *ast.QueryDocument, name string) (*ast.OperationDefinition, error) {
	if len(doc.Operations) == 0 {
		return nil, stderrors.New("no operations in query document")
	}
	if name == "" {
		if len(doc.Operations) > 1 {
			return nil, stderrors.New("more than one operation in query document and no operation name given")
		}
		return doc.Operations[0], nil
	}
	for _, op := range doc.Operations {
		if op.Name == name {
			return op, nil
		}
	}
	return nil, errors.Errorf("no operation with name %q", name)
}

// Location converts a parser position.
func Location(pos *ast.Position) errors.Location {
	if pos == nil {
		return errors.Location{}
	}
	return errors.Location{Line: pos.Line, Column: pos.Column}
}

// OperationType normalizes the operation kind; shorthand documents are
// queries.
func OperationType(op *ast.OperationDefinition) ast.Operation {
	if op.Operation == "" {
		return ast.Query
	}
	return op.Operation
}
