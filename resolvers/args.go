package resolvers

import (
	"github.com/gqlkit/graphql/value"
)

// Args are the coerced arguments of a field. Every declared argument with a
// value or default is present; omitted optional arguments are absent.
type Args struct {
	obj *value.Object
}

// NewArgs wraps an object value. Non-object values yield empty arguments.
func NewArgs(v value.Value) Args {
	obj, _ := v.AsObject()
	return Args{obj: obj}
}

func (a Args) Len() int { return a.obj.Len() }

func (a Args) Has(name string) bool { return a.obj.Has(name) }

func (a Args) Get(name string) (value.Value, bool) { return a.obj.Get(name) }

// Value returns the argument or Null when it is absent.
func (a Args) Value(name string) value.Value {
	v, _ := a.obj.Get(name)
	return v
}

func (a Args) String(name string) string {
	v := a.Value(name)
	if s, ok := v.AsString(); ok {
		return s
	}
	s, _ := v.AsEnum()
	return s
}

func (a Args) Int(name string) int64 {
	i, _ := a.Value(name).AsInt()
	return i
}

func (a Args) Float(name string) float64 {
	f, _ := a.Value(name).AsFloat()
	return f
}

func (a Args) Bool(name string) bool {
	b, _ := a.Value(name).AsBool()
	return b
}

func (a Args) List(name string) []value.Value {
	l, _ := a.Value(name).AsList()
	return l
}

// Object returns the arguments as an object value.
func (a Args) Object() value.Value {
	if a.obj == nil {
		return value.NewObject()
	}
	return value.NewObject(a.obj.Fields()...)
}

// Map converts the arguments to plain Go values.
func (a Args) Map() map[string]interface{} {
	out := make(map[string]interface{}, a.obj.Len())
	a.obj.Range(func(name string, v value.Value) bool {
		out[name] = v.Interface()
		return true
	})
	return out
}

// Decode stores the arguments into the struct pointed to by dst.
func (a Args) Decode(dst interface{}) error {
	return value.Decode(a.Object(), dst)
}
