package validation

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/gqlkit/graphql/errors"
	"github.com/gqlkit/graphql/internal/query"
	"github.com/gqlkit/graphql/schema"
	"github.com/gqlkit/graphql/value"
)

// ComplexityPolicy computes the cost of a single field from its coerced
// arguments and the summed cost of its selection set.
type ComplexityPolicy func(f *schema.Field, args *value.Object, childComplexity int) (int, error)

// DefaultComplexity evaluates the field's cost expression when it has one
// and otherwise charges 1 plus the cost of the children.
func DefaultComplexity(f *schema.Field, args *value.Object, childComplexity int) (int, error) {
	cost, ok, err := f.Cost(args, childComplexity)
	if err != nil {
		return 0, err
	}
	if ok {
		return cost, nil
	}
	return 1 + childComplexity, nil
}

type ComplexityEstimator interface {
	DoEstimate(c *opContext, sels ast.SelectionSet) bool
}

// Estimate runs the admission estimators over the selected operation. The
// variables must already be coerced.
func Estimate(s *schema.Schema, doc *ast.QueryDocument, op *ast.OperationDefinition, vars map[string]value.Value, estimators []ComplexityEstimator) []*errors.QueryError {
	c := &opContext{newContext(s, doc, Options{}), []*ast.OperationDefinition{op}}
	c.vars = vars
	for _, e := range estimators {
		if e.DoEstimate(c, op.SelectionSet) {
			break
		}
	}
	return c.errs
}

// Measure returns the complexity and depth of the selected operation.
func Measure(s *schema.Schema, doc *ast.QueryDocument, op *ast.OperationDefinition, vars map[string]value.Value, policy ComplexityPolicy) (complexity int, depth int) {
	c := &opContext{newContext(s, doc, Options{}), []*ast.OperationDefinition{op}}
	c.vars = vars
	e := SimpleEstimator{Policy: policy}
	complexity = e.estimate(c, op.SelectionSet, s.RootType(query.OperationType(op)), map[string]struct{}{})
	depth = selectionDepth(c, op.SelectionSet, map[string]struct{}{})
	return complexity, depth
}

func selectionDepth(c *opContext, sels ast.SelectionSet, visited map[string]struct{}) int {
	depth := 0
	for _, sel := range sels {
		switch sel := sel.(type) {
		case *ast.Field:
			depth = max(depth, 1+selectionDepth(c, sel.SelectionSet, visited))
		case *ast.InlineFragment:
			depth = max(depth, selectionDepth(c, sel.SelectionSet, visited))
		case *ast.FragmentSpread:
			frag := c.doc.Fragments.ForName(sel.Name)
			if frag == nil {
				continue
			}
			if _, ok := visited[sel.Name]; ok {
				continue
			}
			visited[sel.Name] = struct{}{}
			depth = max(depth, selectionDepth(c, frag.SelectionSet, visited))
			delete(visited, sel.Name)
		}
	}
	return depth
}

type SimpleEstimator struct {
	MaxComplexity int

	// Policy defaults to DefaultComplexity.
	Policy ComplexityPolicy
}

func (e SimpleEstimator) DoEstimate(c *opContext, sels ast.SelectionSet) bool {
	if e.MaxComplexity == 0 {
		return false
	}

	op := c.ops[0]
	complexity := e.estimate(c, sels, c.schema.RootType(query.OperationType(op)), map[string]struct{}{})
	if complexity > e.MaxComplexity {
		c.addErr(loc(op.Position), "MaxComplexityExceeded",
			"The query exceeds the maximum complexity of %d. Actual complexity is %d.", e.MaxComplexity, complexity)
		return true
	}

	return false
}

func (e SimpleEstimator) estimate(c *opContext, sels ast.SelectionSet, t schema.NamedType, visited map[string]struct{}) int {
	policy := e.Policy
	if policy == nil {
		policy = DefaultComplexity
	}

	complexity := 0
	for _, sel := range sels {
		switch sel := sel.(type) {
		case *ast.Field:
			f := c.lookupField(t, sel.Name)
			if f == nil {
				continue
			}
			child := 0
			if len(sel.SelectionSet) != 0 {
				child = e.estimate(c, sel.SelectionSet, c.schema.Unwrap(f.Type), visited)
			}
			cost, err := policy(f, fieldArgs(c, f, sel.Arguments), child)
			if err != nil {
				c.addErr(loc(sel.Position), "MaxComplexityEvaluationError", "Unable to evaluate complexity of field %q: %s", sel.Name, err)
				continue
			}
			complexity += cost

		case *ast.InlineFragment:
			ft := t
			if sel.TypeCondition != "" {
				ft, _ = c.schema.Lookup(sel.TypeCondition)
			}
			complexity += e.estimate(c, sel.SelectionSet, ft, visited)

		case *ast.FragmentSpread:
			frag := c.doc.Fragments.ForName(sel.Name)
			if frag == nil {
				c.addErr(loc(sel.Position), "MaxComplexityEvaluationError", "Unknown fragment %q. Unable to evaluate complexity.", sel.Name)
				continue
			}
			if _, ok := visited[sel.Name]; ok {
				continue
			}
			visited[sel.Name] = struct{}{}
			ft, _ := c.schema.Lookup(frag.TypeCondition)
			complexity += e.estimate(c, frag.SelectionSet, ft, visited)
			delete(visited, sel.Name)
		}
	}

	return complexity
}

// fieldArgs coerces the literal arguments of a field for cost expressions.
// Values that cannot be built are left out.
func fieldArgs(c *opContext, f *schema.Field, args ast.ArgumentList) *value.Object {
	b := value.NewObjectBuilder(len(f.Args))
	for _, decl := range f.Args {
		if arg := args.ForName(decl.Name); arg != nil {
			if arg.Value.Kind == ast.Variable {
				if v, ok := c.vars[arg.Value.Raw]; ok {
					b.Set(decl.Name, v)
					continue
				}
			} else if v, err := value.FromLiteral(arg.Value, c.vars); err == nil {
				b.Set(decl.Name, v)
				continue
			}
		}
		if decl.DefaultValue != nil {
			b.Set(decl.Name, *decl.DefaultValue)
		}
	}
	obj, _ := b.Build().AsObject()
	return obj
}

type RecursionEstimator struct {
	MaxDepth int
}

func (e RecursionEstimator) DoEstimate(c *opContext, sels ast.SelectionSet) bool {
	if e.MaxDepth == 0 {
		return false
	}

	return e.doRecursivelyVisitSelections(c, sels, map[string]int{}, c.schema.RootType(query.OperationType(c.ops[0])))
}

type visitedSels map[string]int

func (s visitedSels) copy() visitedSels {
	newSels := visitedSels{}
	for index, value := range s {
		newSels[index] = value
	}

	return newSels
}

func (e RecursionEstimator) doRecursivelyVisitSelections(
	c *opContext, sels ast.SelectionSet, visited visitedSels, t schema.NamedType) bool {

	exceeded := false

	for _, sel := range sels {
		switch sel := sel.(type) {
		case *ast.Field:
			if schema.IsMetaType(sel.Name) || len(sel.SelectionSet) == 0 {
				continue
			}

			f := c.lookupField(t, sel.Name)
			if f == nil {
				continue
			}
			v := visited.copy()
			typeName := f.Type.String()
			v[typeName]++

			if currentDepth := v[typeName]; currentDepth > e.MaxDepth {
				c.addErr(loc(sel.Position), "MaxDepthRecursionExceeded",
					"The query exceeds the maximum depth recursion of %d. Actual is %d.",
					e.MaxDepth, currentDepth)

				return true
			}

			exceeded = e.doRecursivelyVisitSelections(c, sel.SelectionSet, v, c.schema.Unwrap(f.Type)) || exceeded

		case *ast.InlineFragment:
			ft := t
			if sel.TypeCondition != "" {
				ft, _ = c.schema.Lookup(sel.TypeCondition)
			}
			exceeded = e.doRecursivelyVisitSelections(c, sel.SelectionSet, visited, ft) || exceeded

		case *ast.FragmentSpread:
			if frag := c.doc.Fragments.ForName(sel.Name); frag != nil {
				ft, _ := c.schema.Lookup(frag.TypeCondition)
				exceeded = e.doRecursivelyVisitSelections(c, frag.SelectionSet, visited, ft) || exceeded
			}
		}
	}

	return exceeded
}
