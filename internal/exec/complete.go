package exec

import (
	"fmt"
	"reflect"

	"github.com/gqlkit/graphql/errors"
	"github.com/gqlkit/graphql/resolvers"
	"github.com/gqlkit/graphql/schema"
	"github.com/gqlkit/graphql/value"
)

// resolveObjectType finds the concrete object type of a value returned for
// the composite type t. Values name their type through resolvers.Typed, a
// "__typename" entry, the ResolveType function of the abstract type, or
// finally the name of their Go type.
func (r *Request) resolveObjectType(t schema.NamedType, v interface{}) (*schema.Object, *errors.QueryError) {
	if obj, ok := t.(*schema.Object); ok {
		return obj, nil
	}

	name := typeNameOf(t, v)
	if name == "" {
		return nil, errors.Internalf("unable to resolve the concrete type of %q for value of type %T", t.TypeName(), resolvers.Unwrap(v))
	}
	nt, ok := r.Schema.Lookup(name)
	if !ok {
		return nil, errors.Internalf("type %q returned for %q is not registered", name, t.TypeName())
	}
	obj, ok := nt.(*schema.Object)
	if !ok {
		return nil, errors.Internalf("type %q returned for %q is not an object type", name, t.TypeName())
	}
	if !r.Schema.IsPossibleType(t, obj) {
		return nil, errors.Internalf("type %q is not a possible type of %q", name, t.TypeName())
	}
	return obj, nil
}

func typeNameOf(t schema.NamedType, v interface{}) string {
	if typed, ok := v.(resolvers.Typed); ok {
		return typed.GraphQLType()
	}

	switch v := v.(type) {
	case value.Value:
		if obj, ok := v.AsObject(); ok {
			if tn, ok := obj.Get("__typename"); ok {
				s, _ := tn.AsString()
				return s
			}
		}
	case map[string]interface{}:
		if s, ok := v["__typename"].(string); ok {
			return s
		}
	}

	var resolve func(interface{}) string
	switch t := t.(type) {
	case *schema.Interface:
		resolve = t.ResolveType
	case *schema.Union:
		resolve = t.ResolveType
	}
	if resolve != nil {
		if name := resolve(v); name != "" {
			return name
		}
	}

	rt := reflect.TypeOf(v)
	for rt != nil && rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	if rt == nil {
		return ""
	}
	return rt.Name()
}

// isNil checks whatever a value is absent, a null value or a nil reference.
func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	if vv, ok := v.(value.Value); ok {
		return vv.IsNull()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return rv.IsNil()
	}
	return false
}

func deref(v interface{}) interface{} {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr {
		return v
	}
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	return rv.Interface()
}

// listItems returns the elements of a list value.
func listItems(v interface{}) ([]interface{}, error) {
	if vv, ok := v.(value.Value); ok {
		list, ok := vv.AsList()
		if !ok {
			return nil, fmt.Errorf("expected a list, got %s", vv)
		}
		items := make([]interface{}, len(list))
		for i, item := range list {
			items[i] = item
		}
		return items, nil
	}

	rv := reflect.ValueOf(deref(v))
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]interface{}, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return items, nil
	}
	return nil, fmt.Errorf("expected a list, got %T", v)
}

// serializeLeaf converts a resolver result for a scalar or enum type.
func serializeLeaf(t schema.NamedType, v interface{}) (value.Value, error) {
	v = deref(v)
	if isNil(v) {
		return value.Null(), nil
	}

	switch t := t.(type) {
	case *schema.Enum:
		name, ok := t.NameOf(v)
		if !ok {
			return value.Value{}, fmt.Errorf("Enum %q cannot represent value: %v", t.Name, v)
		}
		return value.Enum(name), nil

	case *schema.Scalar:
		if t.Serialize != nil {
			return t.Serialize(v)
		}
		if vv, ok := v.(value.Value); ok {
			return vv, nil
		}
		return value.FromInterface(v)
	}
	return value.Value{}, fmt.Errorf("type %q is not a leaf type", t.TypeName())
}
