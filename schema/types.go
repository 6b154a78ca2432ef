package schema

import (
	"github.com/expr-lang/expr/vm"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/gqlkit/graphql/cachecontrol"
	"github.com/gqlkit/graphql/resolvers"
	"github.com/gqlkit/graphql/value"
)

type Kind string

const (
	KindScalar      Kind = "SCALAR"
	KindObject      Kind = "OBJECT"
	KindInterface   Kind = "INTERFACE"
	KindUnion       Kind = "UNION"
	KindEnum        Kind = "ENUM"
	KindInputObject Kind = "INPUT_OBJECT"
)

// NamedType is a type descriptor held by the registry.
type NamedType interface {
	TypeName() string
	Kind() Kind
	TypeDescription() string
}

// Scalar is a leaf type.
type Scalar struct {
	Name           string
	Description    string
	SpecifiedByURL string

	// Validate reports whether an input value is acceptable for the scalar.
	// A nil Validate accepts any value.
	Validate func(v value.Value) bool

	// Serialize converts a resolver result into an output value. A nil
	// Serialize uses value.FromInterface.
	Serialize func(v interface{}) (value.Value, error)
}

// Object is an output object type.
type Object struct {
	Name         string
	Description  string
	Fields       []*Field
	Interfaces   []string
	CacheControl cachecontrol.CacheControl

	// Serial makes the executor resolve the fields of this object one
	// after another instead of concurrently. Mutation roots are always
	// serial.
	Serial bool

	Directives []*Directive

	fields       map[string]*Field
	subscription bool
}

// Interface is an abstract type implemented by objects.
type Interface struct {
	Name         string
	Description  string
	Fields       []*Field
	Interfaces   []string
	CacheControl cachecontrol.CacheControl
	Directives   []*Directive

	// ResolveType names the concrete object type of a value. It is
	// consulted after resolvers.Typed.
	ResolveType func(v interface{}) string

	fields map[string]*Field
}

// Union is an abstract type over a set of objects.
type Union struct {
	Name         string
	Description  string
	Types        []string
	CacheControl cachecontrol.CacheControl
	Directives   []*Directive
	ResolveType  func(v interface{}) string
}

type Enum struct {
	Name        string
	Description string
	Values      []*EnumValue
	Directives  []*Directive
}

// EnumValue maps an enum member name to its Go value. A nil Value maps the
// member to its name.
type EnumValue struct {
	Name              string
	Description       string
	Value             interface{}
	Deprecated        bool
	DeprecationReason string
	Directives        []*Directive
}

type InputObject struct {
	Name        string
	Description string
	Fields      []*InputValue

	// OneOf requires exactly one field to be set.
	OneOf      bool
	Directives []*Directive
}

// Field is a field of an object or interface.
type Field struct {
	Name        string
	Description string
	Args        []*InputValue
	Type        *ast.Type

	// Resolve is the explicit resolver. When nil the executor binds the
	// field to the parent value (see package resolvers).
	Resolve resolvers.Func

	// CacheControl overrides the cache hint of the returned type.
	CacheControl *cachecontrol.CacheControl

	Deprecated        bool
	DeprecationReason string

	// Complexity is an expression computing the cost of the field. It sees
	// the field arguments by name and child_complexity.
	Complexity string

	// Directives are applied in declaration order around the resolver.
	Directives []*Directive

	cost *vm.Program
}

// InputValue is an argument or an input object field.
type InputValue struct {
	Name              string
	Description       string
	Type              *ast.Type
	DefaultValue      *value.Value
	Deprecated        bool
	DeprecationReason string
	Directives        []*Directive
}

// DirectiveDefinition declares a directive usable in documents or SDL.
type DirectiveDefinition struct {
	Name        string
	Description string
	Args        []*InputValue
	Locations   []string
	Repeatable  bool
}

// Directive is a directive applied in the schema definition.
type Directive struct {
	Name string
	Args value.Value
}

func (t *Scalar) TypeName() string      { return t.Name }
func (t *Object) TypeName() string      { return t.Name }
func (t *Interface) TypeName() string   { return t.Name }
func (t *Union) TypeName() string       { return t.Name }
func (t *Enum) TypeName() string        { return t.Name }
func (t *InputObject) TypeName() string { return t.Name }

func (*Scalar) Kind() Kind      { return KindScalar }
func (*Object) Kind() Kind      { return KindObject }
func (*Interface) Kind() Kind   { return KindInterface }
func (*Union) Kind() Kind       { return KindUnion }
func (*Enum) Kind() Kind        { return KindEnum }
func (*InputObject) Kind() Kind { return KindInputObject }

func (t *Scalar) TypeDescription() string      { return t.Description }
func (t *Object) TypeDescription() string      { return t.Description }
func (t *Interface) TypeDescription() string   { return t.Description }
func (t *Union) TypeDescription() string       { return t.Description }
func (t *Enum) TypeDescription() string        { return t.Description }
func (t *InputObject) TypeDescription() string { return t.Description }

// Field returns the named field or nil.
func (t *Object) Field(name string) *Field {
	return lookupField(t.fields, t.Fields, name)
}

// IsSubscriptionRoot reports whether t is the subscription root of its
// schema.
func (t *Object) IsSubscriptionRoot() bool { return t.subscription }

func (t *Interface) Field(name string) *Field {
	return lookupField(t.fields, t.Fields, name)
}

func lookupField(index map[string]*Field, fields []*Field, name string) *Field {
	if index != nil {
		return index[name]
	}
	for _, f := range fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Value returns the member with the given name or nil.
func (t *Enum) Value(name string) *EnumValue {
	for _, v := range t.Values {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// NameOf returns the member name for a Go value produced by a resolver.
// Strings and value.Enum values match member names directly.
func (t *Enum) NameOf(v interface{}) (string, bool) {
	for _, ev := range t.Values {
		if ev.Value != nil && comparableEqual(ev.Value, v) {
			return ev.Name, true
		}
	}
	var name string
	switch v := v.(type) {
	case string:
		name = v
	case value.Value:
		if s, ok := v.AsEnum(); ok {
			name = s
		} else if s, ok := v.AsString(); ok {
			name = s
		}
	case interface{ String() string }:
		name = v.String()
	default:
		return "", false
	}
	if t.Value(name) == nil {
		return "", false
	}
	return name, true
}

func comparableEqual(a, b interface{}) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}

// Field returns the named input field or nil.
func (t *InputObject) Field(name string) *InputValue {
	return lookupInputValue(t.Fields, name)
}

// Arg returns the named argument or nil.
func (f *Field) Arg(name string) *InputValue {
	return lookupInputValue(f.Args, name)
}

// Arg returns the named argument or nil.
func (d *DirectiveDefinition) Arg(name string) *InputValue {
	return lookupInputValue(d.Args, name)
}

// CostProgram returns the compiled complexity expression, or nil.
func (f *Field) CostProgram() *vm.Program { return f.cost }

func lookupInputValue(values []*InputValue, name string) *InputValue {
	for _, v := range values {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// Named returns a reference to a named type.
func Named(name string) *ast.Type {
	return &ast.Type{NamedType: name}
}

// ListOf returns a list of t.
func ListOf(t *ast.Type) *ast.Type {
	return &ast.Type{Elem: t}
}

// NonNullOf returns the non-null variant of t.
func NonNullOf(t *ast.Type) *ast.Type {
	c := *t
	c.NonNull = true
	return &c
}

// IsLeaf reports whether t is a scalar or enum.
func IsLeaf(t NamedType) bool {
	switch t.(type) {
	case *Scalar, *Enum:
		return true
	}
	return false
}

// IsAbstract reports whether t is an interface or union.
func IsAbstract(t NamedType) bool {
	switch t.(type) {
	case *Interface, *Union:
		return true
	}
	return false
}

// IsComposite reports whether t has a selection set.
func IsComposite(t NamedType) bool {
	switch t.(type) {
	case *Object, *Interface, *Union:
		return true
	}
	return false
}

// IsInput reports whether t can be used for arguments and variables.
func IsInput(t NamedType) bool {
	switch t.(type) {
	case *Scalar, *Enum, *InputObject:
		return true
	}
	return false
}

// IsOutput reports whether t can be used as a field type.
func IsOutput(t NamedType) bool {
	_, ok := t.(*InputObject)
	return t != nil && !ok
}
