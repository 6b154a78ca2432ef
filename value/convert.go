package value

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
)

// FromLiteral builds a value from a parsed GraphQL literal. Variables are
// looked up in vars; an unbound variable yields Null.
func FromLiteral(l *ast.Value, vars map[string]Value) (Value, error) {
	if l == nil {
		return Null(), nil
	}
	switch l.Kind {
	case ast.Variable:
		return vars[l.Raw], nil
	case ast.IntValue:
		i, err := strconv.ParseInt(l.Raw, 10, 64)
		if err != nil {
			return Value{}, &ParseError{Input: l.Raw, Err: err}
		}
		return Int(i), nil
	case ast.FloatValue:
		f, err := strconv.ParseFloat(l.Raw, 64)
		if err != nil {
			return Value{}, &ParseError{Input: l.Raw, Err: err}
		}
		return Float(f), nil
	case ast.StringValue, ast.BlockValue:
		return String(l.Raw), nil
	case ast.BooleanValue:
		return Bool(l.Raw == "true"), nil
	case ast.NullValue:
		return Null(), nil
	case ast.EnumValue:
		return Enum(l.Raw), nil
	case ast.ListValue:
		items := make([]Value, len(l.Children))
		for i, c := range l.Children {
			item, err := FromLiteral(c.Value, vars)
			if err != nil {
				return Value{}, err
			}
			items[i] = item
		}
		return Value{kind: ListKind, list: items}, nil
	case ast.ObjectValue:
		b := NewObjectBuilder(len(l.Children))
		for _, c := range l.Children {
			item, err := FromLiteral(c.Value, vars)
			if err != nil {
				return Value{}, err
			}
			b.Set(c.Name, item)
		}
		return b.Build(), nil
	}
	return Value{}, &ParseError{Input: l.Raw, Err: fmt.Errorf("unknown literal kind %d", l.Kind)}
}

// FromInterface converts a Go value into a Value. Maps are converted with
// sorted keys; structs use their json field names.
func FromInterface(in interface{}) (Value, error) {
	switch in := in.(type) {
	case nil:
		return Null(), nil
	case Value:
		return in, nil
	case *Value:
		if in == nil {
			return Null(), nil
		}
		return *in, nil
	case bool:
		return Bool(in), nil
	case string:
		return String(in), nil
	case int:
		return Int(int64(in)), nil
	case int32:
		return Int(int64(in)), nil
	case int64:
		return Int(in), nil
	case float64:
		return Float(in), nil
	case float32:
		return Float(float64(in)), nil
	case json.Number:
		if i, err := in.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := in.Float64()
		if err != nil {
			return Value{}, &ParseError{Input: in.String(), Err: err}
		}
		return Float(f), nil
	case json.RawMessage:
		return FromJSON(in)
	case []interface{}:
		items := make([]Value, len(in))
		for i, item := range in {
			v, err := FromInterface(item)
			if err != nil {
				return Value{}, err
			}
			items[i] = v
		}
		return Value{kind: ListKind, list: items}, nil
	case map[string]interface{}:
		keys := make([]string, 0, len(in))
		for k := range in {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b := NewObjectBuilder(len(keys))
		for _, k := range keys {
			v, err := FromInterface(in[k])
			if err != nil {
				return Value{}, err
			}
			b.Set(k, v)
		}
		return b.Build(), nil
	}
	return fromReflect(reflect.ValueOf(in))
}

func fromReflect(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return Null(), nil
		}
		return FromInterface(rv.Elem().Interface())
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Int(int64(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Null(), nil
		}
		items := make([]Value, rv.Len())
		for i := range items {
			v, err := FromInterface(rv.Index(i).Interface())
			if err != nil {
				return Value{}, err
			}
			items[i] = v
		}
		return Value{kind: ListKind, list: items}, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		if rv.IsNil() {
			return Null(), nil
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		b := NewObjectBuilder(len(keys))
		for _, k := range keys {
			v, err := FromInterface(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface())
			if err != nil {
				return Value{}, err
			}
			b.Set(k, v)
		}
		return b.Build(), nil
	case reflect.Struct:
		t := rv.Type()
		b := NewObjectBuilder(t.NumField())
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if !sf.IsExported() {
				continue
			}
			name := sf.Name
			if tag, ok := sf.Tag.Lookup("json"); ok {
				tagName := strings.Split(tag, ",")[0]
				if tagName == "-" {
					continue
				}
				if tagName != "" {
					name = tagName
				}
			}
			v, err := FromInterface(rv.Field(i).Interface())
			if err != nil {
				return Value{}, err
			}
			b.Set(name, v)
		}
		return b.Build(), nil
	}
	return Value{}, fmt.Errorf("value: cannot convert %s", rv.Type())
}
