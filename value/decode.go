package value

import (
	"fmt"
	"reflect"
	"strings"
)

// Unmarshaler is implemented by types that decode themselves from a Value.
type Unmarshaler interface {
	UnmarshalGraphQL(v Value) error
}

var (
	valueType       = reflect.TypeOf(Value{})
	unmarshalerType = reflect.TypeOf((*Unmarshaler)(nil)).Elem()
)

// Decode stores v into the value pointed to by dst. Struct fields are matched
// by their `graphql` tag, then their `json` tag, then case-insensitively by
// name. A single non-list value decodes into a one-element slice.
func Decode(v Value, dst interface{}) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("value: Decode needs a non-nil pointer, got %T", dst)
	}
	return decode(v, rv.Elem())
}

func decode(v Value, rv reflect.Value) error {
	if rv.Type() == valueType {
		rv.Set(reflect.ValueOf(v))
		return nil
	}
	if rv.CanAddr() && rv.Addr().Type().Implements(unmarshalerType) {
		if rv.Kind() == reflect.Ptr && rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		return rv.Addr().Interface().(Unmarshaler).UnmarshalGraphQL(v)
	}

	if v.IsNull() {
		rv.Set(reflect.Zero(rv.Type()))
		return nil
	}

	switch rv.Kind() {
	case reflect.Ptr:
		elem := reflect.New(rv.Type().Elem())
		if err := decode(v, elem.Elem()); err != nil {
			return err
		}
		rv.Set(elem)
		return nil

	case reflect.Interface:
		if rv.NumMethod() != 0 {
			break
		}
		rv.Set(reflect.ValueOf(v.Interface()))
		return nil

	case reflect.Bool:
		if b, ok := v.AsBool(); ok {
			rv.SetBool(b)
			return nil
		}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if i, ok := v.AsInt(); ok {
			if rv.OverflowInt(i) {
				return fmt.Errorf("value: %d overflows %s", i, rv.Type())
			}
			rv.SetInt(i)
			return nil
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if i, ok := v.AsInt(); ok && i >= 0 {
			if rv.OverflowUint(uint64(i)) {
				return fmt.Errorf("value: %d overflows %s", i, rv.Type())
			}
			rv.SetUint(uint64(i))
			return nil
		}

	case reflect.Float32, reflect.Float64:
		if f, ok := v.AsFloat(); ok {
			rv.SetFloat(f)
			return nil
		}

	case reflect.String:
		switch v.Kind() {
		case StringKind, EnumKind:
			rv.SetString(v.s)
			return nil
		}

	case reflect.Slice:
		items, ok := v.AsList()
		if !ok {
			items = []Value{v}
		}
		out := reflect.MakeSlice(rv.Type(), len(items), len(items))
		for i, item := range items {
			if err := decode(item, out.Index(i)); err != nil {
				return err
			}
		}
		rv.Set(out)
		return nil

	case reflect.Map:
		obj, ok := v.AsObject()
		if !ok || rv.Type().Key().Kind() != reflect.String {
			break
		}
		out := reflect.MakeMapWithSize(rv.Type(), obj.Len())
		var err error
		obj.Range(func(name string, item Value) bool {
			elem := reflect.New(rv.Type().Elem()).Elem()
			if err = decode(item, elem); err != nil {
				return false
			}
			out.SetMapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()), elem)
			return true
		})
		if err != nil {
			return err
		}
		rv.Set(out)
		return nil

	case reflect.Struct:
		obj, ok := v.AsObject()
		if !ok {
			break
		}
		return decodeStruct(obj, rv)
	}

	return fmt.Errorf("value: cannot decode %s %s into %s", v.Kind(), v, rv.Type())
}

func decodeStruct(obj *Object, rv reflect.Value) error {
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, ok := fieldName(sf)
		if !ok {
			continue
		}
		item, found := obj.Get(name)
		if !found {
			for _, key := range obj.Keys() {
				if strings.EqualFold(stripUnderscores(key), stripUnderscores(name)) {
					item, found = obj.Get(key)
					break
				}
			}
		}
		if !found {
			continue
		}
		if err := decode(item, rv.Field(i)); err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
	}
	return nil
}

func stripUnderscores(s string) string {
	return strings.ReplaceAll(s, "_", "")
}

func fieldName(sf reflect.StructField) (string, bool) {
	for _, key := range []string{"graphql", "json"} {
		if tag, ok := sf.Tag.Lookup(key); ok {
			name := strings.Split(tag, ",")[0]
			if name == "-" {
				return "", false
			}
			if name != "" {
				return name, true
			}
		}
	}
	return sf.Name, true
}
