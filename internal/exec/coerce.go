package exec

import (
	"fmt"
	"strconv"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/gqlkit/graphql/errors"
	"github.com/gqlkit/graphql/internal/query"
	"github.com/gqlkit/graphql/schema"
	"github.com/gqlkit/graphql/value"
)

// CoerceVariables converts the raw request variables of op to the declared
// types. Omitted variables take their default; omitted variables without a
// default are left out of the result.
func CoerceVariables(s *schema.Schema, op *ast.OperationDefinition, raw map[string]interface{}) (map[string]value.Value, []*errors.QueryError) {
	vars := make(map[string]value.Value, len(op.VariableDefinitions))
	var errs []*errors.QueryError
	for _, vd := range op.VariableDefinitions {
		in, ok := raw[vd.Variable]
		if !ok {
			switch {
			case vd.DefaultValue != nil:
				def, err := value.FromLiteral(vd.DefaultValue, nil)
				if err != nil {
					errs = append(errs, variableError(vd, "has an invalid default value: %s", err))
					continue
				}
				vars[vd.Variable] = def
			case vd.Type.NonNull:
				errs = append(errs, variableError(vd, "of required type %q was not provided.", vd.Type))
			}
			continue
		}

		v, err := value.FromInterface(in)
		if err != nil {
			errs = append(errs, variableError(vd, "got invalid value: %s", err))
			continue
		}
		c, err := coerceValue(s, v, vd.Type, "")
		if err != nil {
			errs = append(errs, variableError(vd, "got invalid value %s; %s", v, err))
			continue
		}
		vars[vd.Variable] = c
	}
	return vars, errs
}

func variableError(vd *ast.VariableDefinition, format string, a ...interface{}) *errors.QueryError {
	err := errors.Errorf("Variable %q "+format, append([]interface{}{"$" + vd.Variable}, a...)...)
	err.Locations = []errors.Location{query.Location(vd.Position)}
	return err
}

// coerceArgs builds the argument object of a field or directive in
// declaration order.
func coerceArgs(s *schema.Schema, decls []*schema.InputValue, args ast.ArgumentList, vars map[string]value.Value) (value.Value, error) {
	b := value.NewObjectBuilder(len(decls))
	for _, decl := range decls {
		if arg := args.ForName(decl.Name); arg != nil {
			var (
				v       value.Value
				present = true
			)
			if arg.Value.Kind == ast.Variable {
				v, present = vars[arg.Value.Raw]
			} else {
				lit, err := value.FromLiteral(arg.Value, vars)
				if err != nil {
					return value.Value{}, fmt.Errorf("argument %q: %w", decl.Name, err)
				}
				v = lit
			}
			if present {
				c, err := coerceValue(s, v, decl.Type, "")
				if err != nil {
					return value.Value{}, fmt.Errorf("argument %q has invalid value %s: %w", decl.Name, v, err)
				}
				b.Set(decl.Name, c)
				continue
			}
		}
		switch {
		case decl.DefaultValue != nil:
			b.Set(decl.Name, *decl.DefaultValue)
		case decl.Type.NonNull:
			return value.Value{}, fmt.Errorf("argument %q of type %q is required but not provided", decl.Name, decl.Type)
		}
	}
	return b.Build(), nil
}

func coerceValue(s *schema.Schema, v value.Value, t *ast.Type, path string) (value.Value, error) {
	if v.IsNull() {
		if t.NonNull {
			return value.Value{}, pathError(path, "Expected non-nullable type %q not to be null.", t)
		}
		return value.Null(), nil
	}

	if t.Elem != nil {
		items, ok := v.AsList()
		if !ok {
			// a single value is accepted as a list of one
			item, err := coerceValue(s, v, t.Elem, path)
			if err != nil {
				return value.Value{}, err
			}
			return value.List(item), nil
		}
		out := make([]value.Value, len(items))
		for i, item := range items {
			c, err := coerceValue(s, item, t.Elem, path+"["+strconv.Itoa(i)+"]")
			if err != nil {
				return value.Value{}, err
			}
			out[i] = c
		}
		return value.List(out...), nil
	}

	named, ok := s.Lookup(t.NamedType)
	if !ok {
		return value.Value{}, pathError(path, "Unknown type %q.", t.NamedType)
	}
	switch named := named.(type) {
	case *schema.Scalar:
		if named.Validate != nil && !named.Validate(v) {
			return value.Value{}, pathError(path, "Expected type %q, found %s.", named.Name, v)
		}
		switch named.Name {
		case "ID":
			if i, ok := v.AsInt(); ok {
				return value.String(strconv.FormatInt(i, 10)), nil
			}
		case "Float":
			if f, ok := v.AsFloat(); ok {
				return value.Float(f), nil
			}
		}
		return v, nil

	case *schema.Enum:
		name, ok := v.AsEnum()
		if !ok {
			name, ok = v.AsString()
		}
		if !ok || named.Value(name) == nil {
			return value.Value{}, pathError(path, "Expected type %q, found %s.", named.Name, v)
		}
		return value.Enum(name), nil

	case *schema.InputObject:
		obj, ok := v.AsObject()
		if !ok {
			return value.Value{}, pathError(path, "Expected type %q to be an object.", named.Name)
		}
		for _, key := range obj.Keys() {
			if named.Field(key) == nil {
				return value.Value{}, pathError(path, "Field %q is not defined by type %q.", key, named.Name)
			}
		}
		b := value.NewObjectBuilder(len(named.Fields))
		set := 0
		for _, f := range named.Fields {
			fieldPath := f.Name
			if path != "" {
				fieldPath = path + "." + f.Name
			}
			item, ok := obj.Get(f.Name)
			if !ok {
				switch {
				case f.DefaultValue != nil:
					b.Set(f.Name, *f.DefaultValue)
				case f.Type.NonNull:
					return value.Value{}, pathError(fieldPath, "Expected non-nullable type %q to be provided.", f.Type)
				}
				continue
			}
			c, err := coerceValue(s, item, f.Type, fieldPath)
			if err != nil {
				return value.Value{}, err
			}
			if !c.IsNull() {
				set++
			}
			b.Set(f.Name, c)
		}
		if named.OneOf && (set != 1 || obj.Len() != 1) {
			return value.Value{}, pathError(path, "Oneof input objects requires have exactly one field")
		}
		return b.Build(), nil
	}

	return value.Value{}, pathError(path, "Type %q is not an input type.", t.NamedType)
}

func pathError(path string, format string, a ...interface{}) error {
	msg := fmt.Sprintf(format, a...)
	if path == "" {
		return fmt.Errorf("%s", msg)
	}
	return fmt.Errorf("In field %q: %s", path, msg)
}
