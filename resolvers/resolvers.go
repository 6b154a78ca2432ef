// Package resolvers defines how the executor reaches user code: the
// per-field request passed to resolvers, the capability interfaces a parent
// value can implement, and the factories that bind fields to Go values by
// reflection when no explicit resolver is registered.
package resolvers

import (
	"context"
	"reflect"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/gqlkit/graphql/value"
)

// Info describes the field being resolved.
type Info struct {
	FieldName  string
	Alias      string
	ParentType string
	ReturnType *ast.Type
	Path       []interface{}
	Field      *ast.Field
	Operation  *ast.OperationDefinition
}

// Params is the request handed to a resolver.
type Params struct {
	Source interface{}
	Args   Args
	Info   Info
}

// Func is an explicit field resolver.
type Func func(ctx context.Context, p Params) (interface{}, error)

// Resolver is a bound resolution step for one field of one parent value.
type Resolver func(ctx context.Context) (interface{}, error)

// FieldResolver is implemented by parent values that dispatch their fields
// by name themselves.
type FieldResolver interface {
	ResolveField(ctx context.Context, p Params) (interface{}, error)
}

// Typed is implemented by values returned for interface or union fields to
// name their concrete GraphQL object type.
type Typed interface {
	GraphQLType() string
}

// WithType pairs a value with its concrete GraphQL object type.
type WithType struct {
	Type  string
	Value interface{}
}

func (w WithType) GraphQLType() string { return w.Type }

// Unwrap strips WithType wrappers.
func Unwrap(v interface{}) interface{} {
	for {
		w, ok := v.(WithType)
		if !ok {
			return v
		}
		v = w.Value
	}
}

// ResolverFactory binds a field request to a Resolver. It returns nil when
// it cannot serve the request.
type ResolverFactory interface {
	CreateResolver(p *Params) Resolver
}

type ResolverFactoryFunc func(p *Params) Resolver

func (f ResolverFactoryFunc) CreateResolver(p *Params) Resolver {
	return f(p)
}

type dynamicResolverFactory struct {
	factories ResolverFactoryList
}

func (f *dynamicResolverFactory) CreateResolver(p *Params) Resolver {
	return f.factories.CreateResolver(p)
}

// DynamicResolverFactory tries, in order: FieldResolver parents, object
// values, methods, struct fields and map entries.
func DynamicResolverFactory() ResolverFactory {
	return &dynamicResolverFactory{factories: ResolverFactoryList{
		&InterfaceResolverFactory{},
		&ValueResolverFactory{},
		&MethodResolverFactory{},
		&FieldResolverFactory{},
		&MapResolverFactory{},
	}}
}

// TypeResolverFactory selects a factory by parent type name.
type TypeResolverFactory map[string]ResolverFactory

func (f TypeResolverFactory) Set(typeName string, factory ResolverFactory) {
	f[typeName] = factory
}

func (f TypeResolverFactory) CreateResolver(p *Params) Resolver {
	factory, ok := f[p.Info.ParentType]
	if !ok {
		return nil
	}
	return factory.CreateResolver(p)
}

// ResolverFactoryList uses a list of other factories to resolve requests.
// First factory that matches wins.
type ResolverFactoryList []ResolverFactory

func (l *ResolverFactoryList) Add(factory ResolverFactory) {
	*l = append(*l, factory)
}

func (l ResolverFactoryList) CreateResolver(p *Params) Resolver {
	for _, f := range l {
		if r := f.CreateResolver(p); r != nil {
			return r
		}
	}
	return nil
}

// InterfaceResolverFactory serves parents implementing FieldResolver.
type InterfaceResolverFactory struct{}

func (InterfaceResolverFactory) CreateResolver(p *Params) Resolver {
	fr, ok := Unwrap(p.Source).(FieldResolver)
	if !ok {
		return nil
	}
	params := *p
	params.Source = Unwrap(p.Source)
	return func(ctx context.Context) (interface{}, error) {
		return fr.ResolveField(ctx, params)
	}
}

// FieldResolverFactory resolves fields using struct fields on the parent
// value.
type FieldResolverFactory struct{}

func (FieldResolverFactory) CreateResolver(p *Params) Resolver {
	parent := dereference(reflect.ValueOf(Unwrap(p.Source)))
	if parent.Kind() != reflect.Struct {
		return nil
	}
	index, ok := structFieldIndex(parent.Type(), p.Info.FieldName)
	if !ok {
		return nil
	}
	child := parent.FieldByIndex(index)
	return func(ctx context.Context) (interface{}, error) {
		return child.Interface(), nil
	}
}

// MapResolverFactory resolves fields using entries in a map with string
// keys.
type MapResolverFactory struct{}

func (MapResolverFactory) CreateResolver(p *Params) Resolver {
	parent := dereference(reflect.ValueOf(Unwrap(p.Source)))
	if parent.Kind() != reflect.Map || parent.Type().Key().Kind() != reflect.String {
		return nil
	}
	entry := parent.MapIndex(reflect.ValueOf(p.Info.FieldName).Convert(parent.Type().Key()))
	return func(ctx context.Context) (interface{}, error) {
		if !entry.IsValid() {
			return nil, nil
		}
		return entry.Interface(), nil
	}
}

// ValueResolverFactory resolves fields of object values built with the
// value package.
type ValueResolverFactory struct{}

func (ValueResolverFactory) CreateResolver(p *Params) Resolver {
	v, ok := Unwrap(p.Source).(value.Value)
	if !ok {
		return nil
	}
	obj, ok := v.AsObject()
	if !ok {
		return nil
	}
	return func(ctx context.Context) (interface{}, error) {
		field, _ := obj.Get(p.Info.FieldName)
		return field, nil
	}
}

// MethodResolverFactory resolves fields using the method implemented by the
// parent value. Supported signatures take an optional context.Context, then
// an optional Args or argument struct, and return a value and an optional
// error.
type MethodResolverFactory struct{}

func (MethodResolverFactory) CreateResolver(p *Params) Resolver {
	parent := reflect.ValueOf(Unwrap(p.Source))
	if !parent.IsValid() {
		return nil
	}
	m := findMethod(parent.Type(), p.Info.FieldName)
	if m == nil {
		return nil
	}
	args := p.Args
	return func(ctx context.Context) (interface{}, error) {
		var in []reflect.Value
		if m.hasContext {
			in = append(in, reflect.ValueOf(ctx))
		}
		if m.argsType != nil {
			argValue, err := packArgs(args, m.argsType)
			if err != nil {
				return nil, err
			}
			in = append(in, argValue)
		}
		out := parent.Method(m.index).Call(in)
		if m.hasError && !out[1].IsNil() {
			return nil, out[1].Interface().(error)
		}
		return out[0].Interface(), nil
	}
}

func dereference(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}
