package schema

import (
	"fmt"
	"math"
	"reflect"
	"strconv"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/gqlkit/graphql/value"
)

func builtinScalars() []*Scalar {
	return []*Scalar{
		{
			Name:        "Int",
			Description: "The `Int` scalar type represents non-fractional signed whole numeric values. Int can represent values between -(2^31) and 2^31 - 1.",
			Validate: func(v value.Value) bool {
				i, ok := v.AsInt()
				return ok && !v.IsFloat() && i >= math.MinInt32 && i <= math.MaxInt32
			},
			Serialize: serializeInt,
		},
		{
			Name:        "Float",
			Description: "The `Float` scalar type represents signed double-precision fractional values as specified by [IEEE 754](http://en.wikipedia.org/wiki/IEEE_floating_point).",
			Validate: func(v value.Value) bool {
				_, ok := v.AsFloat()
				return ok
			},
			Serialize: serializeFloat,
		},
		{
			Name:        "String",
			Description: "The `String` scalar type represents textual data, represented as UTF-8 character sequences.",
			Validate: func(v value.Value) bool {
				_, ok := v.AsString()
				return ok
			},
			Serialize: serializeString,
		},
		{
			Name:        "Boolean",
			Description: "The `Boolean` scalar type represents `true` or `false`.",
			Validate: func(v value.Value) bool {
				_, ok := v.AsBool()
				return ok
			},
			Serialize: serializeBoolean,
		},
		{
			Name:        "ID",
			Description: "The `ID` scalar type represents a unique identifier, often used to refetch an object or as key for a cache.",
			Validate: func(v value.Value) bool {
				if _, ok := v.AsString(); ok {
					return true
				}
				_, ok := v.AsInt()
				return ok && !v.IsFloat()
			},
			Serialize: serializeID,
		},
	}
}

func builtinDirectives() []*DirectiveDefinition {
	boolArg := []*InputValue{{
		Name:        "if",
		Description: "Included when true.",
		Type:        NonNullOf(Named("Boolean")),
	}}
	reason := value.String("No longer supported")
	return []*DirectiveDefinition{
		{
			Name:        "include",
			Description: "Directs the executor to include this field or fragment only when the `if` argument is true.",
			Args:        boolArg,
			Locations:   []string{string(ast.LocationField), string(ast.LocationFragmentSpread), string(ast.LocationInlineFragment)},
		},
		{
			Name:        "skip",
			Description: "Directs the executor to skip this field or fragment when the `if` argument is true.",
			Args:        []*InputValue{{Name: "if", Description: "Skipped when true.", Type: NonNullOf(Named("Boolean"))}},
			Locations:   []string{string(ast.LocationField), string(ast.LocationFragmentSpread), string(ast.LocationInlineFragment)},
		},
		{
			Name:        "deprecated",
			Description: "Marks an element of a GraphQL schema as no longer supported.",
			Args:        []*InputValue{{Name: "reason", Type: Named("String"), DefaultValue: &reason}},
			Locations:   []string{string(ast.LocationFieldDefinition), string(ast.LocationArgumentDefinition), string(ast.LocationInputFieldDefinition), string(ast.LocationEnumValue)},
		},
		{
			Name:        "specifiedBy",
			Description: "Exposes a URL that specifies the behavior of this scalar.",
			Args:        []*InputValue{{Name: "url", Type: NonNullOf(Named("String"))}},
			Locations:   []string{string(ast.LocationScalar)},
		},
		{
			Name:        "oneOf",
			Description: "Indicates exactly one field must be supplied and this field must not be `null`.",
			Locations:   []string{string(ast.LocationInputObject)},
		},
	}
}

func serializeInt(v interface{}) (value.Value, error) {
	var i int64
	switch v := v.(type) {
	case value.Value:
		n, ok := v.AsInt()
		if !ok {
			return value.Value{}, fmt.Errorf("Int cannot represent non-integer value: %s", v)
		}
		i = n
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			i = rv.Int()
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if rv.Uint() > math.MaxInt32 {
				return value.Value{}, fmt.Errorf("Int cannot represent non 32-bit signed integer value: %v", v)
			}
			i = int64(rv.Uint())
		case reflect.Float32, reflect.Float64:
			f := rv.Float()
			if f != math.Trunc(f) {
				return value.Value{}, fmt.Errorf("Int cannot represent non-integer value: %v", v)
			}
			i = int64(f)
		default:
			return value.Value{}, fmt.Errorf("Int cannot represent value: %v", v)
		}
	}
	if i < math.MinInt32 || i > math.MaxInt32 {
		return value.Value{}, fmt.Errorf("Int cannot represent non 32-bit signed integer value: %d", i)
	}
	return value.Int(i), nil
}

func serializeFloat(v interface{}) (value.Value, error) {
	if vv, ok := v.(value.Value); ok {
		f, ok := vv.AsFloat()
		if !ok {
			return value.Value{}, fmt.Errorf("Float cannot represent non numeric value: %s", vv)
		}
		return value.Float(f), nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return value.Float(rv.Float()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return value.Float(float64(rv.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return value.Float(float64(rv.Uint())), nil
	}
	return value.Value{}, fmt.Errorf("Float cannot represent non numeric value: %v", v)
}

func serializeString(v interface{}) (value.Value, error) {
	switch v := v.(type) {
	case string:
		return value.String(v), nil
	case value.Value:
		if s, ok := v.AsString(); ok {
			return value.String(s), nil
		}
		if s, ok := v.AsEnum(); ok {
			return value.String(s), nil
		}
		return value.Value{}, fmt.Errorf("String cannot represent value: %s", v)
	case fmt.Stringer:
		return value.String(v.String()), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String {
		return value.String(rv.String()), nil
	}
	return value.Value{}, fmt.Errorf("String cannot represent value: %v", v)
}

func serializeBoolean(v interface{}) (value.Value, error) {
	switch v := v.(type) {
	case bool:
		return value.Bool(v), nil
	case value.Value:
		if b, ok := v.AsBool(); ok {
			return value.Bool(b), nil
		}
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Bool {
		return value.Bool(rv.Bool()), nil
	}
	return value.Value{}, fmt.Errorf("Boolean cannot represent a non boolean value: %v", v)
}

func serializeID(v interface{}) (value.Value, error) {
	if vv, ok := v.(value.Value); ok {
		if i, ok := vv.AsInt(); ok && !vv.IsFloat() {
			return value.String(strconv.FormatInt(i, 10)), nil
		}
		return serializeString(vv)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return value.String(strconv.FormatInt(rv.Int(), 10)), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return value.String(strconv.FormatUint(rv.Uint(), 10)), nil
	}
	return serializeString(v)
}
