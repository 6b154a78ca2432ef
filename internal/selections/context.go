// Package selections is for internal use to share selection context between
// the execution engine and the public graphql package without creating an
// import cycle.
//
// The execution layer stores the merged child selection set for the field
// currently being resolved. The public API converts this into user-friendly
// helpers (SelectedFieldNames, etc.).
package selections

import (
	"context"
	"sync"

	"github.com/vektah/gqlparser/v2/ast"
)

// ctxKey is an unexported unique type used as context key.
type ctxKey struct{}

// Lazy holds raw selections and computes the flattened, deduped name list once on demand.
type Lazy struct {
	doc   *ast.QueryDocument
	raw   ast.SelectionSet
	once  sync.Once
	names []string
	set   map[string]struct{}
}

// Names returns the deduplicated child field names computing them once.
func (l *Lazy) Names() []string {
	if l == nil {
		return nil
	}
	l.compute()
	out := make([]string, len(l.names))
	copy(out, l.names)
	return out
}

// Has reports if a field name is in the selection list.
func (l *Lazy) Has(name string) bool {
	if l == nil {
		return false
	}
	l.compute()
	_, ok := l.set[name]
	return ok
}

func (l *Lazy) compute() {
	l.once.Do(func() {
		seen := make(map[string]struct{}, len(l.raw))
		ordered := make([]string, 0, len(l.raw))
		l.collectNestedPaths(&ordered, seen, "", l.raw, make(map[string]struct{}))
		l.names = ordered
		l.set = seen
	})
}

func (l *Lazy) collectNestedPaths(dst *[]string, seen map[string]struct{}, prefix string, sels ast.SelectionSet, frags map[string]struct{}) {
	for _, sel := range sels {
		switch s := sel.(type) {
		case *ast.Field:
			name := s.Name
			if len(name) >= 2 && name[:2] == "__" {
				continue
			}
			path := name
			if prefix != "" {
				path = prefix + "." + name
			}
			if _, ok := seen[path]; !ok {
				seen[path] = struct{}{}
				*dst = append(*dst, path)
			}
			if len(s.SelectionSet) > 0 {
				l.collectNestedPaths(dst, seen, path, s.SelectionSet, frags)
			}
		case *ast.InlineFragment:
			l.collectNestedPaths(dst, seen, prefix, s.SelectionSet, frags)
		case *ast.FragmentSpread:
			if _, ok := frags[s.Name]; ok {
				continue
			}
			if frag := l.doc.Fragments.ForName(s.Name); frag != nil {
				frags[s.Name] = struct{}{}
				l.collectNestedPaths(dst, seen, prefix, frag.SelectionSet, frags)
				delete(frags, s.Name)
			}
		}
	}
}

// With stores a lazy wrapper for selections in the context.
func With(ctx context.Context, doc *ast.QueryDocument, sels ast.SelectionSet) context.Context {
	if len(sels) == 0 {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, &Lazy{doc: doc, raw: sels})
}

// FromContext retrieves the lazy wrapper (may be nil).
func FromContext(ctx context.Context) *Lazy {
	v, _ := ctx.Value(ctxKey{}).(*Lazy)
	return v
}
