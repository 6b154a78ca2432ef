package graphql

import (
	"context"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/gqlkit/graphql/errors"
	"github.com/gqlkit/graphql/internal/query"
)

// LoggedOperation represents a summary of an operation suitable for concise
// telemetry, for example in a web server context.
type LoggedOperation struct {
	Name      string `json:",omitempty"`
	Type      ast.Operation
	Variables map[string]string `json:",omitempty"`
	Fields    []LoggedField     `json:",omitempty"`
}

// LoggedField represents a summary of a field.
type LoggedField struct {
	Name      string
	Arguments map[string]string `json:",omitempty"`
}

func logField(field *ast.Field) LoggedField {
	var args map[string]string
	if len(field.Arguments) > 0 {
		args = make(map[string]string, len(field.Arguments))
		for _, arg := range field.Arguments {
			args[arg.Name] = arg.Value.String()
		}
	}
	return LoggedField{
		Name:      field.Name,
		Arguments: args,
	}
}

func logOperations(doc *ast.QueryDocument) []LoggedOperation {
	lops := make([]LoggedOperation, len(doc.Operations))
	for i, op := range doc.Operations {
		var vars map[string]string
		for _, vd := range op.VariableDefinitions {
			if vd.DefaultValue == nil {
				continue
			}
			if vars == nil {
				vars = make(map[string]string)
			}
			vars[vd.Variable] = vd.DefaultValue.String()
		}

		fields := make([]LoggedField, 0, len(op.SelectionSet))
		for _, sel := range op.SelectionSet {
			if field, ok := sel.(*ast.Field); ok {
				fields = append(fields, logField(field))
			}
		}

		lops[i] = LoggedOperation{
			Name:      op.Name,
			Type:      query.OperationType(op),
			Variables: vars,
			Fields:    fields,
		}
	}
	return lops
}

// ValidateAndLog validates the query and simultaneously produces a loggable
// summary of the operations it contains.
func (s *Schema) ValidateAndLog(queryString string) ([]*errors.QueryError, []LoggedOperation) {
	doc, qErr := s.parse(queryString)
	if qErr != nil {
		return []*errors.QueryError{qErr}, nil
	}

	if errs := s.validate(context.Background(), doc); len(errs) != 0 {
		return errs, []LoggedOperation{}
	}
	return nil, logOperations(doc)
}
