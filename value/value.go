// Package value holds the tagged union used for GraphQL values throughout the
// engine: argument literals, coerced variables and the response data tree.
//
// Values are immutable once built. Object values keep field insertion order,
// which is also the order they serialize in.
package value

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
)

type Kind uint8

const (
	NullKind Kind = iota
	BooleanKind
	NumberKind
	StringKind
	EnumKind
	ListKind
	ObjectKind
)

func (k Kind) String() string {
	switch k {
	case NullKind:
		return "Null"
	case BooleanKind:
		return "Boolean"
	case NumberKind:
		return "Number"
	case StringKind:
		return "String"
	case EnumKind:
		return "Enum"
	case ListKind:
		return "List"
	case ObjectKind:
		return "Object"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a GraphQL value. The zero Value is Null.
type Value struct {
	kind    Kind
	b       bool
	isFloat bool
	i       int64
	f       float64
	s       string
	list    []Value
	obj     *Object
}

func Null() Value { return Value{} }

func Bool(b bool) Value { return Value{kind: BooleanKind, b: b} }

func Int(i int64) Value { return Value{kind: NumberKind, i: i} }

func Float(f float64) Value { return Value{kind: NumberKind, isFloat: true, f: f} }

func String(s string) Value { return Value{kind: StringKind, s: s} }

func Enum(name string) Value { return Value{kind: EnumKind, s: name} }

// List builds a list value. The items slice is copied.
func List(items ...Value) Value {
	l := make([]Value, len(items))
	copy(l, items)
	return Value{kind: ListKind, list: l}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == NullKind }

func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == BooleanKind
}

// AsInt returns the integer held by v. Floats with an integral value are
// accepted.
func (v Value) AsInt() (int64, bool) {
	if v.kind != NumberKind {
		return 0, false
	}
	if !v.isFloat {
		return v.i, true
	}
	if v.f != math.Trunc(v.f) || v.f > math.MaxInt64 || v.f < math.MinInt64 {
		return 0, false
	}
	return int64(v.f), true
}

func (v Value) AsFloat() (float64, bool) {
	if v.kind != NumberKind {
		return 0, false
	}
	if v.isFloat {
		return v.f, true
	}
	return float64(v.i), true
}

// IsFloat reports whether v is a number that was built from a float.
func (v Value) IsFloat() bool { return v.kind == NumberKind && v.isFloat }

func (v Value) AsString() (string, bool) {
	return v.s, v.kind == StringKind
}

func (v Value) AsEnum() (string, bool) {
	return v.s, v.kind == EnumKind
}

// AsList returns the list items. The returned slice must not be modified.
func (v Value) AsList() ([]Value, bool) {
	return v.list, v.kind == ListKind
}

func (v Value) AsObject() (*Object, bool) {
	return v.obj, v.kind == ObjectKind && v.obj != nil
}

// Interface converts v into plain Go values: nil, bool, int64, float64,
// string, []interface{} and map[string]interface{}.
func (v Value) Interface() interface{} {
	switch v.kind {
	case BooleanKind:
		return v.b
	case NumberKind:
		if v.isFloat {
			return v.f
		}
		return v.i
	case StringKind, EnumKind:
		return v.s
	case ListKind:
		out := make([]interface{}, len(v.list))
		for i, item := range v.list {
			out[i] = item.Interface()
		}
		return out
	case ObjectKind:
		out := make(map[string]interface{}, v.obj.Len())
		for _, f := range v.obj.fields {
			out[f.Name] = f.Value.Interface()
		}
		return out
	default:
		return nil
	}
}

// String renders v in GraphQL literal syntax.
func (v Value) String() string {
	var buf bytes.Buffer
	v.writeLiteral(&buf)
	return buf.String()
}

func (v Value) writeLiteral(buf *bytes.Buffer) {
	switch v.kind {
	case NullKind:
		buf.WriteString("null")
	case BooleanKind:
		buf.WriteString(strconv.FormatBool(v.b))
	case NumberKind:
		buf.WriteString(v.numberText())
	case StringKind:
		buf.WriteString(strconv.Quote(v.s))
	case EnumKind:
		buf.WriteString(v.s)
	case ListKind:
		buf.WriteByte('[')
		for i, item := range v.list {
			if i > 0 {
				buf.WriteString(", ")
			}
			item.writeLiteral(buf)
		}
		buf.WriteByte(']')
	case ObjectKind:
		buf.WriteByte('{')
		for i, f := range v.obj.fields {
			if i > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(f.Name)
			buf.WriteString(": ")
			f.Value.writeLiteral(buf)
		}
		buf.WriteByte('}')
	}
}

func (v Value) numberText() string {
	if v.isFloat {
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	}
	return strconv.FormatInt(v.i, 10)
}

// Equal reports whether a and b are structurally equal. Numbers compare by
// numeric value; objects compare by key set and per-key value.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case NullKind:
		return true
	case BooleanKind:
		return a.b == b.b
	case NumberKind:
		if !a.isFloat && !b.isFloat {
			return a.i == b.i
		}
		af, _ := a.AsFloat()
		bf, _ := b.AsFloat()
		return af == bf
	case StringKind, EnumKind:
		return a.s == b.s
	case ListKind:
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if !Equal(a.list[i], b.list[i]) {
				return false
			}
		}
		return true
	case ObjectKind:
		if a.obj.Len() != b.obj.Len() {
			return false
		}
		for _, f := range a.obj.fields {
			other, ok := b.obj.Get(f.Name)
			if !ok || !Equal(f.Value, other) {
				return false
			}
		}
		return true
	}
	return false
}

// ParseError is returned when a value cannot be constructed from its input.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("value: cannot parse %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
