package schema

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/gqlkit/graphql/errors"
)

// Builder collects type descriptors. It is not safe for concurrent use and
// must not be used after Finish.
type Builder struct {
	types          map[string]NamedType
	order          []string
	directives     map[string]*DirectiveDefinition
	directiveOrder []string
	implements     [][2]string
	extensions     map[string][]*Field
	extensionOrder []string
	roots          map[string]string
	sdl            []string
	errs           []error
}

// NewBuilder returns a builder holding the built-in scalars, directives and
// introspection types.
func NewBuilder() *Builder {
	b := &Builder{
		types:      make(map[string]NamedType),
		directives: make(map[string]*DirectiveDefinition),
		extensions: make(map[string][]*Field),
		roots:      make(map[string]string),
	}
	for _, s := range builtinScalars() {
		b.Register(s)
	}
	for _, d := range builtinDirectives() {
		b.RegisterDirective(d)
	}
	if err := b.loadSDL(metaSDL, false); err != nil {
		panic(err)
	}
	return b
}

func (b *Builder) errorf(format string, a ...interface{}) {
	b.errs = append(b.errs, errors.Errorf(format, a...))
}

// Register adds a type. Registering the same descriptor (or an identically
// shaped one) twice is a no-op; a different shape under an existing name
// makes Finish fail.
func (b *Builder) Register(t NamedType) {
	name := t.TypeName()
	if name == "" {
		b.errorf("cannot register a %s without a name", strings.ToLower(string(t.Kind())))
		return
	}
	if existing, ok := b.types[name]; ok {
		if existing == t || shapeOf(existing) == shapeOf(t) {
			return
		}
		b.errorf("type %q is already registered with a different definition", name)
		return
	}
	b.types[name] = t
	b.order = append(b.order, name)
}

// RegisterDirective adds a directive definition.
func (b *Builder) RegisterDirective(d *DirectiveDefinition) {
	if existing, ok := b.directives[d.Name]; ok {
		if existing != d && directiveShape(existing) != directiveShape(d) {
			b.errorf("directive %q is already registered with a different definition", d.Name)
		}
		return
	}
	b.directives[d.Name] = d
	b.directiveOrder = append(b.directiveOrder, d.Name)
}

// AddImplements records that the object satisfies the interface.
func (b *Builder) AddImplements(object, iface string) {
	b.implements = append(b.implements, [2]string{object, iface})
}

// ExtendObject appends fields to an object once all types are known.
func (b *Builder) ExtendObject(name string, fields ...*Field) {
	if _, ok := b.extensions[name]; !ok {
		b.extensionOrder = append(b.extensionOrder, name)
	}
	b.extensions[name] = append(b.extensions[name], fields...)
}

// SetQuery names the query root. It defaults to "Query".
func (b *Builder) SetQuery(name string) { b.roots["query"] = name }

// SetMutation names the mutation root. It defaults to "Mutation" when such
// an object is registered.
func (b *Builder) SetMutation(name string) { b.roots["mutation"] = name }

// SetSubscription names the subscription root. It defaults to
// "Subscription" when such an object is registered.
func (b *Builder) SetSubscription(name string) { b.roots["subscription"] = name }

// Lookup returns a registered type.
func (b *Builder) Lookup(name string) (NamedType, bool) {
	t, ok := b.types[name]
	return t, ok
}

// SDL returns the SDL documents loaded so far.
func (b *Builder) SDL() string {
	return strings.Join(b.sdl, "\n")
}

// Finish verifies the registered types and returns the immutable schema.
// All problems found are reported together.
func (b *Builder) Finish() (*Schema, error) {
	s := &Schema{
		types:      make(map[string]NamedType, len(b.types)),
		directives: make(map[string]*DirectiveDefinition, len(b.directives)),
		possible:   make(map[string][]*Object),
		sdl:        strings.Join(b.sdl, "\n"),
	}

	for _, name := range b.order {
		s.types[name] = cloneType(b.types[name])
		s.typeNames = append(s.typeNames, name)
	}
	for _, name := range b.directiveOrder {
		s.directives[name] = b.directives[name]
		s.directiveNames = append(s.directiveNames, name)
	}

	for _, name := range b.extensionOrder {
		obj, ok := s.types[name].(*Object)
		if !ok {
			b.errorf("cannot extend %q: not an object type", name)
			continue
		}
		obj.Fields = append(obj.Fields, b.extensions[name]...)
	}

	for _, pair := range b.implements {
		obj, ok := s.types[pair[0]].(*Object)
		if !ok {
			b.errorf("cannot add interface %q to %q: not an object type", pair[1], pair[0])
			continue
		}
		if !contains(obj.Interfaces, pair[1]) {
			obj.Interfaces = append(obj.Interfaces, pair[1])
		}
	}

	b.finishRoots(s)
	for _, name := range s.typeNames {
		b.checkType(s, s.types[name])
	}
	for _, name := range s.directiveNames {
		b.checkDirective(s, s.directives[name])
	}

	if len(b.errs) > 0 {
		return nil, stderrors.Join(b.errs...)
	}
	return s, nil
}

func (b *Builder) finishRoots(s *Schema) {
	root := func(op, fallback string, required bool) *Object {
		name, explicit := b.roots[op]
		if !explicit {
			name = fallback
		}
		t, ok := s.types[name]
		if !ok {
			if explicit || required {
				b.errorf("%s root type %q is not registered", op, name)
			}
			return nil
		}
		obj, ok := t.(*Object)
		if !ok {
			b.errorf("%s root type %q must be an object type", op, name)
			return nil
		}
		return obj
	}
	s.query = root("query", "Query", true)
	s.mutation = root("mutation", "Mutation", false)
	s.subscription = root("subscription", "Subscription", false)
	if s.subscription != nil {
		s.subscription.subscription = true
	}
}

func (b *Builder) checkType(s *Schema, t NamedType) {
	switch t := t.(type) {
	case *Object:
		t.fields = b.checkFields(s, t.Name, t.Fields)
		for _, name := range t.Interfaces {
			iface, ok := s.types[name].(*Interface)
			if !ok {
				b.errorf("%q implements %q which is not a registered interface", t.Name, name)
				continue
			}
			b.checkImplementation(s, t.Name, t.Fields, iface)
			s.possible[name] = append(s.possible[name], t)
		}

	case *Interface:
		t.fields = b.checkFields(s, t.Name, t.Fields)
		for _, name := range t.Interfaces {
			iface, ok := s.types[name].(*Interface)
			if !ok {
				b.errorf("%q implements %q which is not a registered interface", t.Name, name)
				continue
			}
			b.checkImplementation(s, t.Name, t.Fields, iface)
		}

	case *Union:
		if len(t.Types) == 0 {
			b.errorf("union %q must define one or more member types", t.Name)
		}
		for _, name := range t.Types {
			obj, ok := s.types[name].(*Object)
			if !ok {
				b.errorf("union %q member %q is not a registered object type", t.Name, name)
				continue
			}
			s.possible[t.Name] = append(s.possible[t.Name], obj)
		}

	case *Enum:
		if len(t.Values) == 0 {
			b.errorf("enum %q must define one or more values", t.Name)
		}
		seen := make(map[string]bool)
		for _, v := range t.Values {
			if seen[v.Name] {
				b.errorf("enum %q defines value %q twice", t.Name, v.Name)
			}
			seen[v.Name] = true
		}

	case *InputObject:
		if len(t.Fields) == 0 {
			b.errorf("input object %q must define one or more fields", t.Name)
		}
		b.checkInputValues(s, "input field", t.Name, t.Fields)
		if t.OneOf {
			for _, f := range t.Fields {
				if f.Type.NonNull || f.DefaultValue != nil {
					b.errorf("oneOf input field %s.%s must be nullable and have no default value", t.Name, f.Name)
				}
			}
		}
	}
}

func (b *Builder) checkFields(s *Schema, owner string, fields []*Field) map[string]*Field {
	if len(fields) == 0 {
		b.errorf("%q must define one or more fields", owner)
	}
	index := make(map[string]*Field, len(fields))
	for _, f := range fields {
		if _, ok := index[f.Name]; ok {
			b.errorf("field %s.%s is defined twice", owner, f.Name)
			continue
		}
		index[f.Name] = f
		if f.Type == nil {
			b.errorf("field %s.%s has no type", owner, f.Name)
			continue
		}
		if t, ok := s.types[f.Type.Name()]; !ok {
			b.errorf("field %s.%s refers to unknown type %q", owner, f.Name, f.Type.Name())
		} else if !IsOutput(t) {
			b.errorf("field %s.%s cannot use input type %q", owner, f.Name, f.Type.Name())
		}
		b.checkInputValues(s, "argument", owner+"."+f.Name, f.Args)
		if err := compileCost(f); err != nil {
			b.errorf("field %s.%s has an invalid complexity expression: %v", owner, f.Name, err)
		}
	}
	return index
}

func (b *Builder) checkInputValues(s *Schema, kind, owner string, values []*InputValue) {
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if seen[v.Name] {
			b.errorf("%s %q of %s is defined twice", kind, v.Name, owner)
		}
		seen[v.Name] = true
		if v.Type == nil {
			b.errorf("%s %q of %s has no type", kind, v.Name, owner)
			continue
		}
		t, ok := s.types[v.Type.Name()]
		if !ok {
			b.errorf("%s %q of %s refers to unknown type %q", kind, v.Name, owner, v.Type.Name())
			continue
		}
		if !IsInput(t) {
			b.errorf("%s %q of %s cannot use output type %q", kind, v.Name, owner, v.Type.Name())
		}
	}
}

func (b *Builder) checkImplementation(s *Schema, owner string, fields []*Field, iface *Interface) {
	for _, want := range iface.Fields {
		got := lookupField(nil, fields, want.Name)
		if got == nil {
			b.errorf("%q does not implement field %q of interface %q", owner, want.Name, iface.Name)
			continue
		}
		if got.Type != nil && want.Type != nil && !s.isSubtype(got.Type, want.Type) {
			b.errorf("field %s.%s of type %s is not compatible with %s.%s of type %s", owner, got.Name, got.Type, iface.Name, want.Name, want.Type)
		}
	}
}

func (b *Builder) checkDirective(s *Schema, d *DirectiveDefinition) {
	if len(d.Locations) == 0 {
		b.errorf("directive %q must declare at least one location", d.Name)
	}
	b.checkInputValues(s, "argument", "@"+d.Name, d.Args)
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// shapeOf renders the structure of a type, ignoring resolvers and
// descriptions, so that equivalent registrations can be told apart from
// conflicting ones.
func shapeOf(t NamedType) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s", t.Kind(), t.TypeName())
	fields := func(fs []*Field) {
		for _, f := range fs {
			fmt.Fprintf(&sb, " %s:%s(", f.Name, f.Type)
			inputs(&sb, f.Args)
			sb.WriteString(")")
		}
	}
	switch t := t.(type) {
	case *Object:
		fields(t.Fields)
		fmt.Fprintf(&sb, " implements %v", t.Interfaces)
	case *Interface:
		fields(t.Fields)
		fmt.Fprintf(&sb, " implements %v", t.Interfaces)
	case *Union:
		fmt.Fprintf(&sb, " %v", t.Types)
	case *Enum:
		for _, v := range t.Values {
			sb.WriteString(" " + v.Name)
		}
	case *InputObject:
		inputs(&sb, t.Fields)
		fmt.Fprintf(&sb, " oneOf=%v", t.OneOf)
	}
	return sb.String()
}

func directiveShape(d *DirectiveDefinition) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "@%s(", d.Name)
	inputs(&sb, d.Args)
	fmt.Fprintf(&sb, ") repeatable=%v on %v", d.Repeatable, d.Locations)
	return sb.String()
}

func inputs(sb *strings.Builder, values []*InputValue) {
	for _, v := range values {
		fmt.Fprintf(sb, " %s:%s", v.Name, v.Type)
		if v.DefaultValue != nil {
			fmt.Fprintf(sb, "=%s", v.DefaultValue)
		}
	}
}

func cloneType(t NamedType) NamedType {
	switch t := t.(type) {
	case *Object:
		c := *t
		c.Fields = cloneFields(t.Fields)
		c.Interfaces = append([]string(nil), t.Interfaces...)
		return &c
	case *Interface:
		c := *t
		c.Fields = cloneFields(t.Fields)
		c.Interfaces = append([]string(nil), t.Interfaces...)
		return &c
	case *Union:
		c := *t
		c.Types = append([]string(nil), t.Types...)
		return &c
	case *Enum:
		c := *t
		c.Values = append([]*EnumValue(nil), t.Values...)
		return &c
	case *InputObject:
		c := *t
		c.Fields = append([]*InputValue(nil), t.Fields...)
		return &c
	case *Scalar:
		c := *t
		return &c
	}
	return t
}

func cloneFields(fields []*Field) []*Field {
	out := make([]*Field, len(fields))
	for i, f := range fields {
		c := *f
		out[i] = &c
	}
	return out
}
