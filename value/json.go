package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/buger/jsonparser"
)

// MarshalJSON writes v as JSON. Object keys are written in insertion order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteJSON appends the JSON encoding of v to buf.
func (v Value) WriteJSON(buf *bytes.Buffer) error {
	return v.writeJSON(buf)
}

func (v Value) writeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case NullKind:
		buf.WriteString("null")
	case BooleanKind:
		if v.b {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case NumberKind:
		if v.isFloat && (math.IsNaN(v.f) || math.IsInf(v.f, 0)) {
			return fmt.Errorf("value: %v is not representable in JSON", v.f)
		}
		buf.WriteString(v.numberText())
	case StringKind, EnumKind:
		writeJSONString(buf, v.s)
	case ListKind:
		buf.WriteByte('[')
		for i, item := range v.list {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case ObjectKind:
		buf.WriteByte('{')
		for i, f := range v.obj.fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeJSONString(buf, f.Name)
			buf.WriteByte(':')
			if err := f.Value.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s) // strings always encode
	buf.Truncate(buf.Len() - 1)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := FromJSON(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// FromJSON decodes a JSON document, keeping object key order.
func FromJSON(data []byte) (Value, error) {
	raw, typ, _, err := jsonparser.Get(data)
	if err != nil {
		return Value{}, &ParseError{Input: string(data), Err: err}
	}
	v, err := fromJSON(raw, typ)
	if err != nil {
		return Value{}, &ParseError{Input: string(data), Err: err}
	}
	return v, nil
}

func fromJSON(data []byte, typ jsonparser.ValueType) (Value, error) {
	switch typ {
	case jsonparser.Null:
		return Null(), nil

	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(data)
		if err != nil {
			return Value{}, err
		}
		return Bool(b), nil

	case jsonparser.Number:
		if i, err := jsonparser.ParseInt(data); err == nil {
			return Int(i), nil
		}
		f, err := jsonparser.ParseFloat(data)
		if err != nil {
			return Value{}, err
		}
		return Float(f), nil

	case jsonparser.String:
		s, err := jsonparser.ParseString(data)
		if err != nil {
			return Value{}, err
		}
		return String(s), nil

	case jsonparser.Array:
		items := []Value{}
		var itemErr error
		_, err := jsonparser.ArrayEach(data, func(raw []byte, t jsonparser.ValueType, _ int, err error) {
			if itemErr != nil {
				return
			}
			if err != nil {
				itemErr = err
				return
			}
			item, err := fromJSON(raw, t)
			if err != nil {
				itemErr = err
				return
			}
			items = append(items, item)
		})
		if err != nil {
			return Value{}, err
		}
		if itemErr != nil {
			return Value{}, itemErr
		}
		return Value{kind: ListKind, list: items}, nil

	case jsonparser.Object:
		b := NewObjectBuilder(4)
		err := jsonparser.ObjectEach(data, func(key []byte, raw []byte, t jsonparser.ValueType, _ int) error {
			name, err := jsonparser.ParseString(key)
			if err != nil {
				return err
			}
			item, err := fromJSON(raw, t)
			if err != nil {
				return err
			}
			b.Set(name, item)
			return nil
		})
		if err != nil {
			return Value{}, err
		}
		return b.Build(), nil
	}

	return Value{}, fmt.Errorf("unexpected JSON token %q", data)
}
