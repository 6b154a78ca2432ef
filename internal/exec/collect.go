package exec

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/gqlkit/graphql/schema"
	"github.com/gqlkit/graphql/value"
)

// collectedField is a response key with every selection merged into it.
type collectedField struct {
	alias string
	ast   *ast.Field // first occurrence; its arguments and directives apply
	sf    *schema.Field
	sels  ast.SelectionSet
}

// collectFields merges the selections that apply to the object type t.
// Fields keep the order of their first occurrence.
func (r *Request) collectFields(t *schema.Object, sels ast.SelectionSet) []*collectedField {
	byAlias := getFieldMap()
	defer putFieldMap(byAlias)

	var fields []*collectedField
	r.collectInto(t, sels, byAlias, &fields, make(map[string]struct{}))
	return fields
}

func (r *Request) collectInto(t *schema.Object, sels ast.SelectionSet, byAlias map[string]*collectedField, fields *[]*collectedField, visited map[string]struct{}) {
	for _, sel := range sels {
		switch sel := sel.(type) {
		case *ast.Field:
			if r.skipped(sel.Directives) {
				continue
			}
			alias := sel.Alias
			if alias == "" {
				alias = sel.Name
			}
			if f, ok := byAlias[alias]; ok {
				f.sels = append(f.sels, sel.SelectionSet...)
				continue
			}
			sf := r.Schema.Field(t, sel.Name)
			if sf == nil {
				// validation rejects unknown fields
				continue
			}
			f := &collectedField{
				alias: alias,
				ast:   sel,
				sf:    sf,
				sels:  append(ast.SelectionSet(nil), sel.SelectionSet...),
			}
			byAlias[alias] = f
			*fields = append(*fields, f)

		case *ast.InlineFragment:
			if r.skipped(sel.Directives) || !r.applies(t, sel.TypeCondition) {
				continue
			}
			r.collectInto(t, sel.SelectionSet, byAlias, fields, visited)

		case *ast.FragmentSpread:
			if r.skipped(sel.Directives) {
				continue
			}
			if _, ok := visited[sel.Name]; ok {
				continue
			}
			visited[sel.Name] = struct{}{}
			frag := r.Doc.Fragments.ForName(sel.Name)
			if frag == nil || !r.applies(t, frag.TypeCondition) {
				continue
			}
			r.collectInto(t, frag.SelectionSet, byAlias, fields, visited)
		}
	}
}

// applies reports whether a fragment with the type condition cond applies
// to objects of type t.
func (r *Request) applies(t *schema.Object, cond string) bool {
	if cond == "" || cond == t.Name {
		return true
	}
	ct, ok := r.Schema.Lookup(cond)
	return ok && r.Schema.IsPossibleType(ct, t)
}

// skipped evaluates @skip and @include.
func (r *Request) skipped(dirs ast.DirectiveList) bool {
	if d := dirs.ForName("skip"); d != nil && r.directiveIf(d) {
		return true
	}
	if d := dirs.ForName("include"); d != nil && !r.directiveIf(d) {
		return true
	}
	return false
}

func (r *Request) directiveIf(d *ast.Directive) bool {
	arg := d.Arguments.ForName("if")
	if arg == nil {
		return false
	}
	v, err := value.FromLiteral(arg.Value, r.Vars)
	if err != nil {
		return false
	}
	b, _ := v.AsBool()
	return b
}
