// Package schema holds GraphQL type descriptors. A Builder collects them
// during startup; Finish turns the builder into an immutable Schema that
// requests share without locking.
package schema

import (
	"github.com/vektah/gqlparser/v2/ast"
)

// Schema is a finished, read-only type registry.
type Schema struct {
	types          map[string]NamedType
	typeNames      []string
	directives     map[string]*DirectiveDefinition
	directiveNames []string
	possible       map[string][]*Object

	query        *Object
	mutation     *Object
	subscription *Object

	sdl string
}

// Lookup returns the named type.
func (s *Schema) Lookup(name string) (NamedType, bool) {
	t, ok := s.types[name]
	return t, ok
}

// Types returns all types in registration order.
func (s *Schema) Types() []NamedType {
	out := make([]NamedType, len(s.typeNames))
	for i, name := range s.typeNames {
		out[i] = s.types[name]
	}
	return out
}

func (s *Schema) Query() *Object        { return s.query }
func (s *Schema) Mutation() *Object     { return s.mutation }
func (s *Schema) Subscription() *Object { return s.subscription }

// RootType returns the root object for an operation kind, or nil when the
// schema does not support it.
func (s *Schema) RootType(op ast.Operation) *Object {
	switch op {
	case ast.Query, "":
		return s.query
	case ast.Mutation:
		return s.mutation
	case ast.Subscription:
		return s.subscription
	}
	return nil
}

// Directive returns the named directive definition or nil.
func (s *Schema) Directive(name string) *DirectiveDefinition {
	return s.directives[name]
}

// Directives returns all directive definitions in registration order.
func (s *Schema) Directives() []*DirectiveDefinition {
	out := make([]*DirectiveDefinition, len(s.directiveNames))
	for i, name := range s.directiveNames {
		out[i] = s.directives[name]
	}
	return out
}

// PossibleTypes returns the objects a value of t can be at runtime.
func (s *Schema) PossibleTypes(t NamedType) []*Object {
	switch t := t.(type) {
	case *Object:
		return []*Object{t}
	case *Interface, *Union:
		return s.possible[t.TypeName()]
	}
	return nil
}

// IsPossibleType reports whether obj is a possible runtime type of t.
func (s *Schema) IsPossibleType(t NamedType, obj *Object) bool {
	if t == nil || obj == nil {
		return false
	}
	if t.TypeName() == obj.Name {
		return true
	}
	for _, o := range s.possible[t.TypeName()] {
		if o.Name == obj.Name {
			return true
		}
	}
	return false
}

// Overlap reports whether two composite types share a possible runtime
// type.
func (s *Schema) Overlap(a, b NamedType) bool {
	for _, o := range s.PossibleTypes(a) {
		if s.IsPossibleType(b, o) {
			return true
		}
	}
	return false
}

// Implements reports whether the object or interface t declares iface.
func (s *Schema) Implements(t NamedType, iface string) bool {
	switch t := t.(type) {
	case *Object:
		return contains(t.Interfaces, iface)
	case *Interface:
		return contains(t.Interfaces, iface)
	}
	return false
}

// Field returns the field of a composite type, including the __typename,
// __schema and __type meta fields.
func (s *Schema) Field(t NamedType, name string) *Field {
	switch name {
	case TypenameField.Name:
		if IsComposite(t) {
			return TypenameField
		}
		return nil
	case SchemaField.Name, TypeField.Name:
		if s.query == nil || t != NamedType(s.query) {
			return nil
		}
		if name == SchemaField.Name {
			return SchemaField
		}
		return TypeField
	}
	switch t := t.(type) {
	case *Object:
		return t.Field(name)
	case *Interface:
		return t.Field(name)
	}
	return nil
}

// IsSubtype reports whether a value of type got can be used where want is
// expected.
func (s *Schema) IsSubtype(got, want *ast.Type) bool {
	return s.isSubtype(got, want)
}

func (s *Schema) isSubtype(got, want *ast.Type) bool {
	if want.NonNull {
		if !got.NonNull {
			return false
		}
		return s.isSubtype(nullable(got), nullable(want))
	}
	if got.NonNull {
		return s.isSubtype(nullable(got), want)
	}
	if want.Elem != nil {
		return got.Elem != nil && s.isSubtype(got.Elem, want.Elem)
	}
	if got.Elem != nil {
		return false
	}
	if got.NamedType == want.NamedType {
		return true
	}
	gt, ok1 := s.types[got.NamedType]
	wt, ok2 := s.types[want.NamedType]
	if !ok1 || !ok2 || !IsAbstract(wt) {
		return false
	}
	if obj, ok := gt.(*Object); ok {
		return s.IsPossibleType(wt, obj)
	}
	return s.Implements(gt, want.NamedType)
}

// SDL returns the SDL documents loaded into the builder.
func (s *Schema) SDL() string { return s.sdl }

func nullable(t *ast.Type) *ast.Type {
	if !t.NonNull {
		return t
	}
	c := *t
	c.NonNull = false
	return &c
}

// Unwrap returns the named type at the bottom of t.
func (s *Schema) Unwrap(t *ast.Type) NamedType {
	return s.types[t.Name()]
}

// Meta fields answered by the executor for every composite type (typename)
// or the query root (schema and type).
var (
	TypenameField = &Field{
		Name:        "__typename",
		Description: "The name of the current Object type at runtime.",
		Type:        NonNullOf(Named("String")),
	}
	SchemaField = &Field{
		Name:        "__schema",
		Description: "Access the current type schema of this server.",
		Type:        NonNullOf(Named("__Schema")),
	}
	TypeField = &Field{
		Name:        "__type",
		Description: "Request the type information of a single type.",
		Args:        []*InputValue{{Name: "name", Type: NonNullOf(Named("String"))}},
		Type:        Named("__Type"),
	}
)
