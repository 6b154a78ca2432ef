// Package introspection exposes a finished schema through the __Schema,
// __Type and related meta types. The executor resolves the meta fields
// through the methods of these wrappers.
package introspection

import (
	"sort"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/gqlkit/graphql/schema"
)

type Schema struct {
	schema *schema.Schema
}

// WrapSchema is only used internally.
func WrapSchema(s *schema.Schema) *Schema {
	return &Schema{s}
}

func (r *Schema) Description() *string {
	return nil
}

func (r *Schema) Types() []*Type {
	types := r.schema.Types()
	sort.SliceStable(types, func(i, j int) bool {
		return types[i].TypeName() < types[j].TypeName()
	})

	l := make([]*Type, len(types))
	for i, t := range types {
		l[i] = WrapType(r.schema, t)
	}
	return l
}

func (r *Schema) Directives() []*Directive {
	defs := r.schema.Directives()
	sort.SliceStable(defs, func(i, j int) bool {
		return defs[i].Name < defs[j].Name
	})

	l := make([]*Directive, len(defs))
	for i, d := range defs {
		l[i] = &Directive{r.schema, d}
	}
	return l
}

func (r *Schema) QueryType() *Type {
	return r.root(r.schema.Query())
}

func (r *Schema) MutationType() *Type {
	return r.root(r.schema.Mutation())
}

func (r *Schema) SubscriptionType() *Type {
	return r.root(r.schema.Subscription())
}

func (r *Schema) root(obj *schema.Object) *Type {
	if obj == nil {
		return nil
	}
	return WrapType(r.schema, obj)
}

// Type is either a named type or a list/non-null wrapper around one.
type Type struct {
	schema *schema.Schema
	named  schema.NamedType
	ref    *ast.Type
}

// WrapType is only used internally.
func WrapType(s *schema.Schema, t schema.NamedType) *Type {
	return &Type{schema: s, named: t}
}

// WrapTypeRef wraps a possibly list or non-null type reference.
func WrapTypeRef(s *schema.Schema, t *ast.Type) *Type {
	return wrapRef(s, t)
}

func wrapRef(s *schema.Schema, t *ast.Type) *Type {
	if !t.NonNull && t.Elem == nil {
		named, _ := s.Lookup(t.NamedType)
		return WrapType(s, named)
	}
	return &Type{schema: s, ref: t}
}

func (r *Type) Kind() string {
	if r.ref != nil {
		if r.ref.NonNull {
			return "NON_NULL"
		}
		return "LIST"
	}
	return string(r.named.Kind())
}

func (r *Type) Name() *string {
	if r.ref != nil {
		return nil
	}
	name := r.named.TypeName()
	return &name
}

func (r *Type) Description() *string {
	if r.ref != nil {
		return nil
	}
	return optional(r.named.TypeDescription())
}

func (r *Type) SpecifiedByURL() *string {
	if t, ok := r.named.(*schema.Scalar); ok {
		return optional(t.SpecifiedByURL)
	}
	return nil
}

func (r *Type) Fields(args struct{ IncludeDeprecated bool }) *[]*Field {
	var fields []*schema.Field
	switch t := r.named.(type) {
	case *schema.Object:
		fields = t.Fields
	case *schema.Interface:
		fields = t.Fields
	default:
		return nil
	}

	l := []*Field{}
	for _, f := range fields {
		if !f.Deprecated || args.IncludeDeprecated {
			l = append(l, &Field{r.schema, f})
		}
	}
	return &l
}

func (r *Type) Interfaces() *[]*Type {
	var names []string
	switch t := r.named.(type) {
	case *schema.Object:
		names = t.Interfaces
	case *schema.Interface:
		names = t.Interfaces
	default:
		return nil
	}

	l := []*Type{}
	for _, name := range names {
		if iface, ok := r.schema.Lookup(name); ok {
			l = append(l, WrapType(r.schema, iface))
		}
	}
	return &l
}

func (r *Type) PossibleTypes() *[]*Type {
	switch r.named.(type) {
	case *schema.Interface, *schema.Union:
	default:
		return nil
	}

	objs := r.schema.PossibleTypes(r.named)
	l := make([]*Type, len(objs))
	for i, obj := range objs {
		l[i] = WrapType(r.schema, obj)
	}
	return &l
}

func (r *Type) EnumValues(args struct{ IncludeDeprecated bool }) *[]*EnumValue {
	t, ok := r.named.(*schema.Enum)
	if !ok {
		return nil
	}

	l := []*EnumValue{}
	for _, v := range t.Values {
		if !v.Deprecated || args.IncludeDeprecated {
			l = append(l, &EnumValue{v})
		}
	}
	return &l
}

func (r *Type) InputFields(args struct{ IncludeDeprecated bool }) *[]*InputValue {
	t, ok := r.named.(*schema.InputObject)
	if !ok {
		return nil
	}

	l := inputValues(r.schema, t.Fields, args.IncludeDeprecated)
	return &l
}

func (r *Type) OfType() *Type {
	if r.ref == nil {
		return nil
	}
	if r.ref.NonNull {
		inner := *r.ref
		inner.NonNull = false
		return wrapRef(r.schema, &inner)
	}
	return wrapRef(r.schema, r.ref.Elem)
}

func (r *Type) IsOneOf() *bool {
	t, ok := r.named.(*schema.InputObject)
	if !ok {
		return nil
	}
	return &t.OneOf
}

type Field struct {
	schema *schema.Schema
	field  *schema.Field
}

func (r *Field) Name() string {
	return r.field.Name
}

func (r *Field) Description() *string {
	return optional(r.field.Description)
}

func (r *Field) Args(args struct{ IncludeDeprecated bool }) []*InputValue {
	return inputValues(r.schema, r.field.Args, args.IncludeDeprecated)
}

func (r *Field) Type() *Type {
	return wrapRef(r.schema, r.field.Type)
}

func (r *Field) IsDeprecated() bool {
	return r.field.Deprecated
}

func (r *Field) DeprecationReason() *string {
	if !r.field.Deprecated {
		return nil
	}
	return &r.field.DeprecationReason
}

type InputValue struct {
	schema *schema.Schema
	value  *schema.InputValue
}

func inputValues(s *schema.Schema, values []*schema.InputValue, includeDeprecated bool) []*InputValue {
	l := []*InputValue{}
	for _, v := range values {
		if !v.Deprecated || includeDeprecated {
			l = append(l, &InputValue{s, v})
		}
	}
	return l
}

func (r *InputValue) Name() string {
	return r.value.Name
}

func (r *InputValue) Description() *string {
	return optional(r.value.Description)
}

func (r *InputValue) Type() *Type {
	return wrapRef(r.schema, r.value.Type)
}

func (r *InputValue) DefaultValue() *string {
	if r.value.DefaultValue == nil {
		return nil
	}
	s := r.value.DefaultValue.String()
	return &s
}

func (r *InputValue) IsDeprecated() bool {
	return r.value.Deprecated
}

func (r *InputValue) DeprecationReason() *string {
	if !r.value.Deprecated {
		return nil
	}
	return &r.value.DeprecationReason
}

type EnumValue struct {
	value *schema.EnumValue
}

func (r *EnumValue) Name() string {
	return r.value.Name
}

func (r *EnumValue) Description() *string {
	return optional(r.value.Description)
}

func (r *EnumValue) IsDeprecated() bool {
	return r.value.Deprecated
}

func (r *EnumValue) DeprecationReason() *string {
	if !r.value.Deprecated {
		return nil
	}
	return &r.value.DeprecationReason
}

type Directive struct {
	schema    *schema.Schema
	directive *schema.DirectiveDefinition
}

func (r *Directive) Name() string {
	return r.directive.Name
}

func (r *Directive) Description() *string {
	return optional(r.directive.Description)
}

func (r *Directive) Locations() []string {
	return r.directive.Locations
}

func (r *Directive) Args(args struct{ IncludeDeprecated bool }) []*InputValue {
	return inputValues(r.schema, r.directive.Args, args.IncludeDeprecated)
}

func (r *Directive) IsRepeatable() bool {
	return r.directive.Repeatable
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
