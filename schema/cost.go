package schema

import (
	"fmt"
	"math"

	"github.com/expr-lang/expr"

	"github.com/gqlkit/graphql/value"
)

// ChildComplexity is the name under which a cost expression sees the
// complexity of the field's selection set.
const ChildComplexity = "child_complexity"

func costEnv(f *Field, args *value.Object, child int) map[string]interface{} {
	env := make(map[string]interface{}, len(f.Args)+1)
	for _, a := range f.Args {
		var v value.Value
		if args != nil {
			v, _ = args.Get(a.Name)
		}
		env[a.Name] = costArg(a, v)
	}
	env[ChildComplexity] = child
	return env
}

func costArg(a *InputValue, v value.Value) interface{} {
	if a.Type.Elem != nil {
		l, _ := v.AsList()
		return len(l)
	}
	switch a.Type.Name() {
	case "Int":
		i, _ := v.AsInt()
		return int(i)
	case "Float":
		f, _ := v.AsFloat()
		return f
	case "Boolean":
		b, _ := v.AsBool()
		return b
	case "String", "ID":
		if s, ok := v.AsString(); ok {
			return s
		}
		if i, ok := v.AsInt(); ok {
			return fmt.Sprint(i)
		}
		return ""
	}
	return v.Interface()
}

func compileCost(f *Field) error {
	if f.Complexity == "" {
		return nil
	}
	program, err := expr.Compile(f.Complexity, expr.Env(costEnv(f, nil, 0)))
	if err != nil {
		return err
	}
	f.cost = program
	return nil
}

// Cost evaluates the complexity expression of f. It reports false when the
// field has no expression.
func (f *Field) Cost(args *value.Object, child int) (int, bool, error) {
	if f.cost == nil {
		return 0, false, nil
	}
	out, err := expr.Run(f.cost, costEnv(f, args, child))
	if err != nil {
		return 0, true, err
	}
	switch n := out.(type) {
	case int:
		return n, true, nil
	case int64:
		return int(n), true, nil
	case float64:
		return int(math.Ceil(n)), true, nil
	}
	return 0, true, fmt.Errorf("complexity of %q evaluated to %T, want a number", f.Name, out)
}
