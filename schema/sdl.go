package schema

import (
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/gqlkit/graphql/cachecontrol"
	"github.com/gqlkit/graphql/errors"
	"github.com/gqlkit/graphql/resolvers"
	"github.com/gqlkit/graphql/value"
)

// Directives consumed while loading SDL. They configure descriptors and are
// not kept on them.
const (
	cacheControlDirective = "cacheControl"
	complexityDirective   = "complexity"
	deprecatedDirective   = "deprecated"
	specifiedByDirective  = "specifiedBy"
	oneOfDirective        = "oneOf"
)

// LoadSDL parses a schema document and registers its definitions.
// Extensions are applied to types already registered or defined in the
// same document. Fields loaded from SDL have no resolver and are bound to
// the parent value by reflection unless SetResolver is used.
func (b *Builder) LoadSDL(sdl string) error {
	return b.loadSDL(sdl, true)
}

func (b *Builder) loadSDL(sdl string, public bool) error {
	doc, err := parser.ParseSchema(&ast.Source{Name: "schema", Input: sdl})
	if err != nil {
		return errors.Errorf("%v", err)
	}
	if public {
		b.sdl = append(b.sdl, sdl)
	}

	for _, d := range doc.Directives {
		b.RegisterDirective(b.directiveDefinition(d))
	}
	for _, def := range doc.Definitions {
		if t := b.definition(def); t != nil {
			b.Register(t)
		}
	}
	for _, ext := range doc.Extensions {
		b.extend(ext)
	}
	for _, sd := range append(doc.Schema, doc.SchemaExtension...) {
		for _, op := range sd.OperationTypes {
			b.roots[string(op.Operation)] = op.Type
		}
	}
	return nil
}

// SetResolver attaches a resolver to a field registered earlier.
func (b *Builder) SetResolver(typeName, fieldName string, fn resolvers.Func) {
	var f *Field
	switch t := b.types[typeName].(type) {
	case *Object:
		f = lookupField(nil, t.Fields, fieldName)
	case *Interface:
		f = lookupField(nil, t.Fields, fieldName)
	}
	if f == nil {
		b.errorf("cannot set resolver: %s.%s is not defined", typeName, fieldName)
		return
	}
	f.Resolve = fn
}

// SetResolveType attaches a type resolver to an interface or union.
func (b *Builder) SetResolveType(typeName string, fn func(v interface{}) string) {
	switch t := b.types[typeName].(type) {
	case *Interface:
		t.ResolveType = fn
	case *Union:
		t.ResolveType = fn
	default:
		b.errorf("cannot set type resolver: %q is not an abstract type", typeName)
	}
}

// SetScalar replaces the validator and serializer of a scalar declared in
// SDL.
func (b *Builder) SetScalar(name string, validate func(value.Value) bool, serialize func(interface{}) (value.Value, error)) {
	s, ok := b.types[name].(*Scalar)
	if !ok {
		b.errorf("cannot configure scalar %q: not a registered scalar", name)
		return
	}
	s.Validate = validate
	s.Serialize = serialize
}

// SetEnumValue maps an enum member declared in SDL to a Go value.
func (b *Builder) SetEnumValue(enum, member string, v interface{}) {
	e, ok := b.types[enum].(*Enum)
	if !ok || e.Value(member) == nil {
		b.errorf("cannot map enum value %s.%s: not defined", enum, member)
		return
	}
	e.Value(member).Value = v
}

func (b *Builder) definition(def *ast.Definition) NamedType {
	switch def.Kind {
	case ast.Scalar:
		s := &Scalar{Name: def.Name, Description: def.Description}
		if d := def.Directives.ForName(specifiedByDirective); d != nil {
			if url := d.Arguments.ForName("url"); url != nil {
				s.SpecifiedByURL = url.Value.Raw
			}
		}
		return s

	case ast.Object:
		obj := &Object{
			Name:        def.Name,
			Description: def.Description,
			Fields:      b.fields(def.Name, def.Fields),
			Interfaces:  append([]string(nil), def.Interfaces...),
			Directives:  b.appliedDirectives(def.Directives),
		}
		obj.CacheControl = b.cacheControl(def.Name, def.Directives)
		return obj

	case ast.Interface:
		return &Interface{
			Name:         def.Name,
			Description:  def.Description,
			Fields:       b.fields(def.Name, def.Fields),
			Interfaces:   append([]string(nil), def.Interfaces...),
			CacheControl: b.cacheControl(def.Name, def.Directives),
			Directives:   b.appliedDirectives(def.Directives),
		}

	case ast.Union:
		return &Union{
			Name:         def.Name,
			Description:  def.Description,
			Types:        append([]string(nil), def.Types...),
			CacheControl: b.cacheControl(def.Name, def.Directives),
			Directives:   b.appliedDirectives(def.Directives),
		}

	case ast.Enum:
		return &Enum{
			Name:        def.Name,
			Description: def.Description,
			Values:      b.enumValues(def.EnumValues),
			Directives:  b.appliedDirectives(def.Directives),
		}

	case ast.InputObject:
		return &InputObject{
			Name:        def.Name,
			Description: def.Description,
			Fields:      b.inputFields(def.Name, def.Fields),
			OneOf:       def.Directives.ForName(oneOfDirective) != nil,
			Directives:  b.appliedDirectives(def.Directives),
		}
	}
	b.errorf("unsupported definition kind %q for %q", def.Kind, def.Name)
	return nil
}

func (b *Builder) extend(ext *ast.Definition) {
	t, ok := b.types[ext.Name]
	if !ok {
		b.errorf("cannot extend %q: type is not defined", ext.Name)
		return
	}
	switch t := t.(type) {
	case *Object:
		t.Fields = append(t.Fields, b.fields(ext.Name, ext.Fields)...)
		t.Interfaces = append(t.Interfaces, ext.Interfaces...)
		t.Directives = append(t.Directives, b.appliedDirectives(ext.Directives)...)
	case *Interface:
		t.Fields = append(t.Fields, b.fields(ext.Name, ext.Fields)...)
		t.Interfaces = append(t.Interfaces, ext.Interfaces...)
	case *Union:
		t.Types = append(t.Types, ext.Types...)
	case *Enum:
		t.Values = append(t.Values, b.enumValues(ext.EnumValues)...)
	case *InputObject:
		t.Fields = append(t.Fields, b.inputFields(ext.Name, ext.Fields)...)
	case *Scalar:
		// nothing but directives can be added to a scalar
	}
}

func (b *Builder) fields(owner string, defs ast.FieldList) []*Field {
	fields := make([]*Field, 0, len(defs))
	for _, fd := range defs {
		f := &Field{
			Name:        fd.Name,
			Description: fd.Description,
			Type:        fd.Type,
			Args:        b.inputValues(owner+"."+fd.Name, fd.Arguments),
			Directives:  b.appliedDirectives(fd.Directives),
		}
		f.Deprecated, f.DeprecationReason = deprecation(fd.Directives)
		if d := fd.Directives.ForName(cacheControlDirective); d != nil {
			cc := b.cacheControl(owner+"."+fd.Name, fd.Directives)
			f.CacheControl = &cc
		}
		if d := fd.Directives.ForName(complexityDirective); d != nil {
			if cost := d.Arguments.ForName("cost"); cost != nil {
				f.Complexity = cost.Value.Raw
			}
		}
		fields = append(fields, f)
	}
	return fields
}

func (b *Builder) inputValues(owner string, defs ast.ArgumentDefinitionList) []*InputValue {
	values := make([]*InputValue, 0, len(defs))
	for _, ad := range defs {
		iv := &InputValue{
			Name:        ad.Name,
			Description: ad.Description,
			Type:        ad.Type,
			Directives:  b.appliedDirectives(ad.Directives),
		}
		iv.Deprecated, iv.DeprecationReason = deprecation(ad.Directives)
		iv.DefaultValue = b.defaultValue(owner, ad.Name, ad.DefaultValue)
		values = append(values, iv)
	}
	return values
}

func (b *Builder) inputFields(owner string, defs ast.FieldList) []*InputValue {
	values := make([]*InputValue, 0, len(defs))
	for _, fd := range defs {
		iv := &InputValue{
			Name:        fd.Name,
			Description: fd.Description,
			Type:        fd.Type,
			Directives:  b.appliedDirectives(fd.Directives),
		}
		iv.Deprecated, iv.DeprecationReason = deprecation(fd.Directives)
		iv.DefaultValue = b.defaultValue(owner, fd.Name, fd.DefaultValue)
		values = append(values, iv)
	}
	return values
}

func (b *Builder) defaultValue(owner, name string, lit *ast.Value) *value.Value {
	if lit == nil {
		return nil
	}
	v, err := value.FromLiteral(lit, nil)
	if err != nil {
		b.errorf("invalid default value for %s.%s: %v", owner, name, err)
		return nil
	}
	return &v
}

func (b *Builder) enumValues(defs ast.EnumValueList) []*EnumValue {
	values := make([]*EnumValue, 0, len(defs))
	for _, ed := range defs {
		ev := &EnumValue{
			Name:        ed.Name,
			Description: ed.Description,
			Directives:  b.appliedDirectives(ed.Directives),
		}
		ev.Deprecated, ev.DeprecationReason = deprecation(ed.Directives)
		values = append(values, ev)
	}
	return values
}

func (b *Builder) directiveDefinition(d *ast.DirectiveDefinition) *DirectiveDefinition {
	def := &DirectiveDefinition{
		Name:        d.Name,
		Description: d.Description,
		Args:        b.inputValues("@"+d.Name, d.Arguments),
		Repeatable:  d.IsRepeatable,
	}
	for _, loc := range d.Locations {
		def.Locations = append(def.Locations, string(loc))
	}
	return def
}

// appliedDirectives keeps applied directives that are not consumed by the loader.
func (b *Builder) appliedDirectives(list ast.DirectiveList) []*Directive {
	var out []*Directive
	for _, d := range list {
		switch d.Name {
		case cacheControlDirective, complexityDirective, deprecatedDirective, specifiedByDirective, oneOfDirective:
			continue
		}
		args := value.NewObjectBuilder(len(d.Arguments))
		for _, a := range d.Arguments {
			v, err := value.FromLiteral(a.Value, nil)
			if err != nil {
				b.errorf("invalid argument %q of @%s: %v", a.Name, d.Name, err)
				continue
			}
			args.Set(a.Name, v)
		}
		out = append(out, &Directive{Name: d.Name, Args: args.Build()})
	}
	return out
}

func (b *Builder) cacheControl(owner string, list ast.DirectiveList) cachecontrol.CacheControl {
	var cc cachecontrol.CacheControl
	d := list.ForName(cacheControlDirective)
	if d == nil {
		return cc
	}
	if a := d.Arguments.ForName("maxAge"); a != nil {
		v, err := value.FromLiteral(a.Value, nil)
		n, ok := v.AsInt()
		if err != nil || !ok {
			b.errorf("@cacheControl on %s: maxAge must be an Int", owner)
		}
		cc.MaxAge = int(n)
	}
	if a := d.Arguments.ForName("scope"); a != nil {
		switch a.Value.Raw {
		case "PUBLIC":
			cc.Scope = cachecontrol.ScopePublic
		case "PRIVATE":
			cc.Scope = cachecontrol.ScopePrivate
		default:
			b.errorf("@cacheControl on %s: unknown scope %q", owner, a.Value.Raw)
		}
	}
	return cc
}

func deprecation(list ast.DirectiveList) (bool, string) {
	d := list.ForName(deprecatedDirective)
	if d == nil {
		return false, ""
	}
	if a := d.Arguments.ForName("reason"); a != nil && a.Value.Kind == ast.StringValue {
		return true, a.Value.Raw
	}
	return true, "No longer supported"
}
