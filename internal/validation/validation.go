package validation

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/gqlkit/graphql/errors"
	"github.com/gqlkit/graphql/internal/query"
	"github.com/gqlkit/graphql/schema"
	"github.com/gqlkit/graphql/value"
)

type varSet map[*ast.VariableDefinition]struct{}

type selectionPair struct{ a, b ast.Selection }

type nameSet map[string]errors.Location

type fieldInfo struct {
	sf     *schema.Field
	parent schema.NamedType
}

// Options configure the rules run by Validate.
type Options struct {
	// MaxDepth rejects documents nesting fields deeper than the limit. Zero
	// disables the check.
	MaxDepth int

	// DisableIntrospection makes __schema and __type unknown fields.
	DisableIntrospection bool
}

type context struct {
	schema           *schema.Schema
	doc              *ast.QueryDocument
	errs             []*errors.QueryError
	opErrs           map[*ast.OperationDefinition][]*errors.QueryError
	usedVars         map[*ast.OperationDefinition]varSet
	fieldMap         map[*ast.Field]fieldInfo
	overlapValidated map[selectionPair]struct{}
	opts             Options
	vars             map[string]value.Value
}

func (c *context) addErr(loc errors.Location, rule string, format string, a ...interface{}) {
	c.addErrMultiLoc([]errors.Location{loc}, rule, format, a...)
}

func (c *context) addErrMultiLoc(locs []errors.Location, rule string, format string, a ...interface{}) {
	c.errs = append(c.errs, &errors.QueryError{
		Message:   fmt.Sprintf(format, a...),
		Locations: locs,
		Rule:      rule,
	})
}

type opContext struct {
	*context
	ops []*ast.OperationDefinition
}

func newContext(s *schema.Schema, doc *ast.QueryDocument, opts Options) *context {
	return &context{
		schema:           s,
		doc:              doc,
		opErrs:           make(map[*ast.OperationDefinition][]*errors.QueryError),
		usedVars:         make(map[*ast.OperationDefinition]varSet),
		fieldMap:         make(map[*ast.Field]fieldInfo),
		overlapValidated: make(map[selectionPair]struct{}),
		opts:             opts,
	}
}

func loc(pos *ast.Position) errors.Location {
	return query.Location(pos)
}

// Validate runs every rule over the document and returns all violations.
func Validate(s *schema.Schema, doc *ast.QueryDocument, opts Options) []*errors.QueryError {
	c := newContext(s, doc, opts)

	opNames := make(nameSet)
	fragUsedBy := make(map[*ast.FragmentDefinition][]*ast.OperationDefinition)
	for _, op := range doc.Operations {
		c.usedVars[op] = make(varSet)
		opc := &opContext{c, []*ast.OperationDefinition{op}}

		// Check if max depth is exceeded, if it's set. If max depth is exceeded,
		// don't continue to validate the document and exit early.
		if validateMaxDepth(opc, op.SelectionSet, nil, 1) {
			return c.errs
		}

		if op.Name == "" && len(doc.Operations) != 1 {
			c.addErr(loc(op.Position), "LoneAnonymousOperation", "This anonymous operation must be the only defined operation.")
		}
		if op.Name != "" {
			validateName(c, opNames, op.Name, loc(op.Position), "UniqueOperationNames", "operation")
		}

		opType := query.OperationType(op)
		validateDirectives(opc, strings.ToUpper(string(opType)), op.Directives)

		varNames := make(nameSet)
		for _, v := range op.VariableDefinitions {
			validateName(c, varNames, v.Variable, loc(v.Position), "UniqueVariableNames", "variable")
			validateDirectives(opc, string(ast.LocationVariableDefinition), v.Directives)

			t := resolveType(c, v.Type)
			if t != nil && !schema.IsInput(t) {
				c.addErr(loc(v.Type.Position), "VariablesAreInputTypes", "Variable %q cannot be non-input type %q.", "$"+v.Variable, v.Type)
			}
			if t != nil && t.TypeName() == "Upload" && opType != ast.Mutation {
				c.addErr(loc(v.Position), "UploadFile", "The Upload type is only allowed to be defined on a mutation")
			}

			if v.DefaultValue != nil {
				validateLiteral(opc, v.DefaultValue)
				if t != nil {
					if ok, reason := validateValueType(opc, v.DefaultValue, v.Type); !ok {
						c.addErr(loc(v.DefaultValue.Position), "DefaultValuesOfCorrectType", "Variable %q of type %q has invalid default value %s.\n%s", "$"+v.Variable, v.Type, v.DefaultValue, reason)
					}
				}
			}
		}

		entryPoint := s.RootType(opType)
		if entryPoint == nil {
			c.addErr(loc(op.Position), "KnownOperationTypes", "Schema is not configured for %ss.", opType)
		} else {
			validateSelectionSet(opc, op.SelectionSet, entryPoint)
		}
		if opType == ast.Subscription {
			validateSingleRootField(opc, op)
		}

		fragUsed := make(map[*ast.FragmentDefinition]struct{})
		markUsedFragments(c, op.SelectionSet, fragUsed)
		for frag := range fragUsed {
			fragUsedBy[frag] = append(fragUsedBy[frag], op)
		}
	}

	fragNames := make(nameSet)
	fragVisited := make(map[*ast.FragmentDefinition]struct{})
	for _, frag := range doc.Fragments {
		opc := &opContext{c, fragUsedBy[frag]}

		validateName(c, fragNames, frag.Name, loc(frag.Position), "UniqueFragmentNames", "fragment")
		validateDirectives(opc, string(ast.LocationFragmentDefinition), frag.Directives)

		t := resolveTypeName(c, frag.TypeCondition, frag.Position)
		// continue even if t is nil
		if t != nil && !schema.IsComposite(t) {
			c.addErr(loc(frag.Position), "FragmentsOnCompositeTypes", "Fragment %q cannot condition on non composite type %q.", frag.Name, t.TypeName())
			continue
		}

		validateSelectionSet(opc, frag.SelectionSet, t)

		if _, ok := fragVisited[frag]; !ok {
			detectFragmentCycle(c, frag.SelectionSet, fragVisited, nil, map[string]int{frag.Name: 0})
		}
	}

	for _, frag := range doc.Fragments {
		if len(fragUsedBy[frag]) == 0 {
			c.addErr(loc(frag.Position), "NoUnusedFragments", "Fragment %q is never used.", frag.Name)
		}
	}

	for _, op := range doc.Operations {
		c.errs = append(c.errs, c.opErrs[op]...)

		opUsedVars := c.usedVars[op]
		for _, v := range op.VariableDefinitions {
			if _, ok := opUsedVars[v]; !ok {
				opSuffix := ""
				if op.Name != "" {
					opSuffix = fmt.Sprintf(" in operation %q", op.Name)
				}
				c.addErr(loc(v.Position), "NoUnusedVariables", "Variable %q is never used%s.", "$"+v.Variable, opSuffix)
			}
		}
	}

	return c.errs
}

func validateSingleRootField(c *opContext, op *ast.OperationDefinition) {
	keys := make(map[string]struct{})
	var collect func(sels ast.SelectionSet, visited map[string]struct{})
	collect = func(sels ast.SelectionSet, visited map[string]struct{}) {
		for _, sel := range sels {
			switch sel := sel.(type) {
			case *ast.Field:
				keys[sel.Alias] = struct{}{}
			case *ast.InlineFragment:
				collect(sel.SelectionSet, visited)
			case *ast.FragmentSpread:
				if _, ok := visited[sel.Name]; ok {
					continue
				}
				visited[sel.Name] = struct{}{}
				if frag := c.doc.Fragments.ForName(sel.Name); frag != nil {
					collect(frag.SelectionSet, visited)
				}
			}
		}
	}
	collect(op.SelectionSet, make(map[string]struct{}))
	if len(keys) > 1 {
		name := "Anonymous Subscription"
		if op.Name != "" {
			name = fmt.Sprintf("Subscription %q", op.Name)
		}
		c.addErr(loc(op.Position), "SingleFieldSubscriptions", "%s must select only one top level field.", name)
	}
}

// validates the query doesn't go deeper than maxDepth (if set). Returns whether
// or not query validated max depth to avoid excessive recursion.
//
// The visited map is necessary to ensure that max depth validation does not get stuck in cyclical
// fragment spreads.
func validateMaxDepth(c *opContext, sels ast.SelectionSet, visited map[*ast.FragmentDefinition]struct{}, depth int) bool {
	// maxDepth checking is turned off when maxDepth is 0
	if c.opts.MaxDepth == 0 {
		return false
	}

	exceededMaxDepth := false
	if visited == nil {
		visited = map[*ast.FragmentDefinition]struct{}{}
	}

	for _, sel := range sels {
		switch sel := sel.(type) {
		case *ast.Field:
			if depth > c.opts.MaxDepth {
				exceededMaxDepth = true
				c.addErr(loc(sel.Position), "MaxDepthExceeded", "Field %q has depth %d that exceeds max depth %d", sel.Name, depth, c.opts.MaxDepth)
				continue
			}
			exceededMaxDepth = validateMaxDepth(c, sel.SelectionSet, visited, depth+1) || exceededMaxDepth

		case *ast.InlineFragment:
			// Depth is not checked because inline fragments resolve to other fields which are checked.
			// Depth is not incremented because inline fragments have the same depth as neighboring fields
			exceededMaxDepth = validateMaxDepth(c, sel.SelectionSet, visited, depth) || exceededMaxDepth

		case *ast.FragmentSpread:
			// Depth is not checked because fragments resolve to other fields which are checked.
			frag := c.doc.Fragments.ForName(sel.Name)
			if frag == nil {
				// In case of unknown fragment (invalid request), ignore max depth evaluation
				c.addErr(loc(sel.Position), "MaxDepthEvaluationError", "Unknown fragment %q. Unable to evaluate depth.", sel.Name)
				continue
			}

			if _, ok := visited[frag]; ok {
				// we've already seen this fragment, don't check depth again.
				continue
			}
			visited[frag] = struct{}{}

			// Depth is not incremented because fragments have the same depth as surrounding fields
			exceededMaxDepth = validateMaxDepth(c, frag.SelectionSet, visited, depth) || exceededMaxDepth
		}
	}

	return exceededMaxDepth
}

func validateSelectionSet(c *opContext, sels ast.SelectionSet, t schema.NamedType) {
	for _, sel := range sels {
		validateSelection(c, sel, t)
	}

	for i, a := range sels {
		for _, b := range sels[i+1:] {
			c.validateOverlap(a, b, nil, nil)
		}
	}
}

func (c *context) lookupField(t schema.NamedType, name string) *schema.Field {
	if t == nil {
		return nil
	}
	if c.opts.DisableIntrospection && (name == schema.SchemaField.Name || name == schema.TypeField.Name) {
		return nil
	}
	return c.schema.Field(t, name)
}

func validateSelection(c *opContext, sel ast.Selection, t schema.NamedType) {
	switch sel := sel.(type) {
	case *ast.Field:
		validateDirectives(c, string(ast.LocationField), sel.Directives)

		fieldName := sel.Name
		f := c.lookupField(t, fieldName)
		if f == nil && t != nil {
			suggestion := makeSuggestion("Did you mean", fieldNames(t), fieldName)
			c.addErr(loc(sel.Position), "FieldsOnCorrectType", "Cannot query field %q on type %q.%s", fieldName, t.TypeName(), suggestion)
		}
		c.fieldMap[sel] = fieldInfo{sf: f, parent: t}

		validateArgumentLiterals(c, sel.Arguments)
		if f != nil {
			validateArgumentTypes(c, sel.Arguments, f.Args, loc(sel.Position),
				func() string { return fmt.Sprintf("field %q of type %q", fieldName, t.TypeName()) },
				func() string { return fmt.Sprintf("Field %q", fieldName) },
			)
		}

		var ft schema.NamedType
		if f != nil {
			ft = c.schema.Unwrap(f.Type)
			sf := ft != nil && schema.IsComposite(ft)
			if sf && len(sel.SelectionSet) == 0 {
				c.addErr(loc(sel.Position), "ScalarLeafs", "Field %q of type %q must have a selection of subfields. Did you mean \"%s { ... }\"?", fieldName, f.Type, fieldName)
			}
			if !sf && len(sel.SelectionSet) != 0 {
				c.addErr(loc(sel.SelectionSet[0].GetPosition()), "ScalarLeafs", "Field %q must not have a selection since type %q has no subfields.", fieldName, f.Type)
				return
			}
		}
		if len(sel.SelectionSet) != 0 {
			validateSelectionSet(c, sel.SelectionSet, ft)
		}

	case *ast.InlineFragment:
		validateDirectives(c, string(ast.LocationInlineFragment), sel.Directives)
		if sel.TypeCondition != "" {
			fragTyp := resolveTypeName(c.context, sel.TypeCondition, sel.Position)
			if fragTyp != nil && t != nil && schema.IsComposite(fragTyp) && !c.schema.Overlap(t, fragTyp) {
				c.addErr(loc(sel.Position), "PossibleFragmentSpreads", "Fragment cannot be spread here as objects of type %q can never be of type %q.", t.TypeName(), fragTyp.TypeName())
			}
			t = fragTyp
			// continue even if t is nil
		}
		if t != nil && !schema.IsComposite(t) {
			c.addErr(loc(sel.Position), "FragmentsOnCompositeTypes", "Fragment cannot condition on non composite type %q.", t.TypeName())
			return
		}
		validateSelectionSet(c, sel.SelectionSet, t)

	case *ast.FragmentSpread:
		validateDirectives(c, string(ast.LocationFragmentSpread), sel.Directives)
		frag := c.doc.Fragments.ForName(sel.Name)
		if frag == nil {
			c.addErr(loc(sel.Position), "KnownFragmentNames", "Unknown fragment %q.", sel.Name)
			return
		}
		fragTyp, ok := c.schema.Lookup(frag.TypeCondition)
		if ok && t != nil && schema.IsComposite(fragTyp) && !c.schema.Overlap(t, fragTyp) {
			c.addErr(loc(sel.Position), "PossibleFragmentSpreads", "Fragment %q cannot be spread here as objects of type %q can never be of type %q.", frag.Name, t.TypeName(), fragTyp.TypeName())
		}

	default:
		panic("unreachable")
	}
}

func fieldNames(t schema.NamedType) []string {
	var fields []*schema.Field
	switch t := t.(type) {
	case *schema.Object:
		fields = t.Fields
	case *schema.Interface:
		fields = t.Fields
	}
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

func markUsedFragments(c *context, sels ast.SelectionSet, fragUsed map[*ast.FragmentDefinition]struct{}) {
	for _, sel := range sels {
		switch sel := sel.(type) {
		case *ast.Field:
			if len(sel.SelectionSet) != 0 {
				markUsedFragments(c, sel.SelectionSet, fragUsed)
			}

		case *ast.InlineFragment:
			markUsedFragments(c, sel.SelectionSet, fragUsed)

		case *ast.FragmentSpread:
			frag := c.doc.Fragments.ForName(sel.Name)
			if frag == nil {
				continue
			}

			if _, ok := fragUsed[frag]; ok {
				continue
			}

			fragUsed[frag] = struct{}{}
			markUsedFragments(c, frag.SelectionSet, fragUsed)

		default:
			panic("unreachable")
		}
	}
}

func detectFragmentCycle(c *context, sels ast.SelectionSet, fragVisited map[*ast.FragmentDefinition]struct{}, spreadPath []*ast.FragmentSpread, spreadPathIndex map[string]int) {
	for _, sel := range sels {
		detectFragmentCycleSel(c, sel, fragVisited, spreadPath, spreadPathIndex)
	}
}

func detectFragmentCycleSel(c *context, sel ast.Selection, fragVisited map[*ast.FragmentDefinition]struct{}, spreadPath []*ast.FragmentSpread, spreadPathIndex map[string]int) {
	switch sel := sel.(type) {
	case *ast.Field:
		if len(sel.SelectionSet) != 0 {
			detectFragmentCycle(c, sel.SelectionSet, fragVisited, spreadPath, spreadPathIndex)
		}

	case *ast.InlineFragment:
		detectFragmentCycle(c, sel.SelectionSet, fragVisited, spreadPath, spreadPathIndex)

	case *ast.FragmentSpread:
		frag := c.doc.Fragments.ForName(sel.Name)
		if frag == nil {
			return
		}

		spreadPath = append(spreadPath, sel)
		if i, ok := spreadPathIndex[frag.Name]; ok {
			cyclePath := spreadPath[i:]
			via := ""
			if len(cyclePath) > 1 {
				names := make([]string, len(cyclePath)-1)
				for i, frag := range cyclePath[:len(cyclePath)-1] {
					names[i] = frag.Name
				}
				via = " via " + strings.Join(names, ", ")
			}

			locs := make([]errors.Location, len(cyclePath))
			for i, frag := range cyclePath {
				locs[i] = loc(frag.Position)
			}
			c.addErrMultiLoc(locs, "NoFragmentCycles", "Cannot spread fragment %q within itself%s.", frag.Name, via)
			return
		}

		if _, ok := fragVisited[frag]; ok {
			return
		}
		fragVisited[frag] = struct{}{}

		spreadPathIndex[frag.Name] = len(spreadPath)
		detectFragmentCycle(c, frag.SelectionSet, fragVisited, spreadPath, spreadPathIndex)
		delete(spreadPathIndex, frag.Name)

	default:
		panic("unreachable")
	}
}

func (c *context) validateOverlap(a, b ast.Selection, reasons *[]string, locs *[]errors.Location) {
	if a == b {
		return
	}

	if _, ok := c.overlapValidated[selectionPair{a, b}]; ok {
		return
	}
	c.overlapValidated[selectionPair{a, b}] = struct{}{}
	c.overlapValidated[selectionPair{b, a}] = struct{}{}

	switch a := a.(type) {
	case *ast.Field:
		switch b := b.(type) {
		case *ast.Field:
			if loc(b.Position).Before(loc(a.Position)) {
				a, b = b, a
			}
			if reasons2, locs2 := c.validateFieldOverlap(a, b); len(reasons2) != 0 {
				locs2 = append(locs2, loc(a.Position), loc(b.Position))
				if reasons == nil {
					c.addErrMultiLoc(locs2, "OverlappingFieldsCanBeMerged", "Fields %q conflict because %s. Use different aliases on the fields to fetch both if this was intentional.", a.Alias, strings.Join(reasons2, " and "))
					return
				}
				for _, r := range reasons2 {
					*reasons = append(*reasons, fmt.Sprintf("subfields %q conflict because %s", a.Alias, r))
				}
				*locs = append(*locs, locs2...)
			}

		case *ast.InlineFragment:
			for _, sel := range b.SelectionSet {
				c.validateOverlap(a, sel, reasons, locs)
			}

		case *ast.FragmentSpread:
			if frag := c.doc.Fragments.ForName(b.Name); frag != nil {
				for _, sel := range frag.SelectionSet {
					c.validateOverlap(a, sel, reasons, locs)
				}
			}

		default:
			panic("unreachable")
		}

	case *ast.InlineFragment:
		for _, sel := range a.SelectionSet {
			c.validateOverlap(sel, b, reasons, locs)
		}

	case *ast.FragmentSpread:
		if frag := c.doc.Fragments.ForName(a.Name); frag != nil {
			for _, sel := range frag.SelectionSet {
				c.validateOverlap(sel, b, reasons, locs)
			}
		}

	default:
		panic("unreachable")
	}
}

func (c *context) validateFieldOverlap(a, b *ast.Field) ([]string, []errors.Location) {
	if a.Alias != b.Alias {
		return nil, nil
	}

	if asf := c.fieldMap[a].sf; asf != nil {
		if bsf := c.fieldMap[b].sf; bsf != nil {
			if !c.typesCompatible(asf.Type, bsf.Type) {
				return []string{fmt.Sprintf("they return conflicting types %s and %s", asf.Type, bsf.Type)}, nil
			}
		}
	}

	at := c.fieldMap[a].parent
	bt := c.fieldMap[b].parent
	if at == nil || bt == nil || at == bt || !isObject(at) || !isObject(bt) {
		if a.Name != b.Name {
			return []string{fmt.Sprintf("%s and %s are different fields", a.Name, b.Name)}, nil
		}

		if argumentsConflict(a.Arguments, b.Arguments) {
			return []string{"they have differing arguments"}, nil
		}
	}

	var reasons []string
	var locs []errors.Location
	for _, a2 := range a.SelectionSet {
		for _, b2 := range b.SelectionSet {
			c.validateOverlap(a2, b2, &reasons, &locs)
		}
	}
	return reasons, locs
}

func isObject(t schema.NamedType) bool {
	_, ok := t.(*schema.Object)
	return ok
}

func argumentsConflict(a, b ast.ArgumentList) bool {
	if len(a) != len(b) {
		return true
	}
	for _, argA := range a {
		argB := b.ForName(argA.Name)
		if argB == nil || !sameLiteral(argA.Value, argB.Value) {
			return true
		}
	}
	return false
}

func sameLiteral(a, b *ast.Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind || a.Raw != b.Raw || len(a.Children) != len(b.Children) {
		return false
	}
	if a.Kind == ast.ObjectValue {
		for _, ca := range a.Children {
			cb := b.Children.ForName(ca.Name)
			if cb == nil || !sameLiteral(ca.Value, cb) {
				return false
			}
		}
		return true
	}
	for i := range a.Children {
		if !sameLiteral(a.Children[i].Value, b.Children[i].Value) {
			return false
		}
	}
	return true
}

func resolveType(c *context, t *ast.Type) schema.NamedType {
	return resolveTypeName(c, t.Name(), t.Position)
}

func resolveTypeName(c *context, name string, pos *ast.Position) schema.NamedType {
	t, ok := c.schema.Lookup(name)
	if !ok {
		c.addErr(loc(pos), "KnownTypeNames", "Unknown type %q.", name)
		return nil
	}
	return t
}

func validateDirectives(c *opContext, location string, directives ast.DirectiveList) {
	directiveNames := make(nameSet)
	for _, d := range directives {
		dirName := d.Name
		validateArgumentLiterals(c, d.Arguments)

		dd := c.schema.Directive(dirName)
		if dd == nil {
			c.addErr(loc(d.Position), "KnownDirectives", "Unknown directive %q.", dirName)
			continue
		}

		if !dd.Repeatable {
			validateNameCustomMsg(c.context, directiveNames, dirName, loc(d.Position), "UniqueDirectivesPerLocation", func() string {
				return fmt.Sprintf("The directive %q can only be used once at this location.", dirName)
			})
		}

		locOK := false
		for _, allowedLoc := range dd.Locations {
			if location == allowedLoc {
				locOK = true
				break
			}
		}
		if !locOK {
			c.addErr(loc(d.Position), "KnownDirectives", "Directive %q may not be used on %s.", dirName, location)
		}

		validateArgumentTypes(c, d.Arguments, dd.Args, loc(d.Position),
			func() string { return fmt.Sprintf("directive %q", "@"+dirName) },
			func() string { return fmt.Sprintf("Directive %q", "@"+dirName) },
		)
	}
}

func validateName(c *context, set nameSet, name string, l errors.Location, rule string, kind string) {
	validateNameCustomMsg(c, set, name, l, rule, func() string {
		return fmt.Sprintf("There can be only one %s named %q.", kind, name)
	})
}

func validateNameCustomMsg(c *context, set nameSet, name string, l errors.Location, rule string, msg func() string) {
	if prev, ok := set[name]; ok {
		c.addErrMultiLoc([]errors.Location{prev, l}, rule, "%s", msg())
		return
	}
	set[name] = l
}

func validateArgumentTypes(c *opContext, args ast.ArgumentList, argDecls []*schema.InputValue, l errors.Location, owner1, owner2 func() string) {
	for _, selArg := range args {
		arg := lookupInputValue(argDecls, selArg.Name)
		if arg == nil {
			names := make([]string, len(argDecls))
			for i, a := range argDecls {
				names[i] = a.Name
			}
			suggestion := makeSuggestion("Did you mean", names, selArg.Name)
			c.addErr(loc(selArg.Position), "KnownArgumentNames", "Unknown argument %q on %s.%s", selArg.Name, owner1(), suggestion)
			continue
		}
		value := selArg.Value
		if ok, reason := validateValueType(c, value, arg.Type); !ok {
			c.addErr(loc(value.Position), "ArgumentsOfCorrectType", "Argument %q has invalid value %s.\n%s", arg.Name, value, reason)
		}
	}
	for _, decl := range argDecls {
		if decl.Type.NonNull && decl.DefaultValue == nil {
			if args.ForName(decl.Name) == nil {
				c.addErr(l, "ProvidedNonNullArguments", "%s argument %q of type %q is required but not provided.", owner2(), decl.Name, decl.Type)
			}
		}
	}
}

func lookupInputValue(values []*schema.InputValue, name string) *schema.InputValue {
	for _, v := range values {
		if v.Name == name {
			return v
		}
	}
	return nil
}

func validateArgumentLiterals(c *opContext, args ast.ArgumentList) {
	argNames := make(nameSet)
	for _, arg := range args {
		validateName(c.context, argNames, arg.Name, loc(arg.Position), "UniqueArgumentNames", "argument")
		validateLiteral(c, arg.Value)
	}
}

func validateLiteral(c *opContext, l *ast.Value) {
	if l == nil {
		return
	}
	switch l.Kind {
	case ast.ObjectValue:
		fieldNames := make(nameSet)
		for _, f := range l.Children {
			validateName(c.context, fieldNames, f.Name, loc(f.Position), "UniqueInputFieldNames", "input field")
			validateLiteral(c, f.Value)
		}
	case ast.ListValue:
		for _, entry := range l.Children {
			validateLiteral(c, entry.Value)
		}
	case ast.Variable:
		for _, op := range c.ops {
			v := op.VariableDefinitions.ForName(l.Raw)
			if v == nil {
				byOp := ""
				if op.Name != "" {
					byOp = fmt.Sprintf(" by operation %q", op.Name)
				}
				c.opErrs[op] = append(c.opErrs[op], &errors.QueryError{
					Message:   fmt.Sprintf("Variable %q is not defined%s.", "$"+l.Raw, byOp),
					Locations: []errors.Location{loc(l.Position), loc(op.Position)},
					Rule:      "NoUndefinedVariables",
				})
				continue
			}
			c.usedVars[op][v] = struct{}{}
		}
	}
}

func validateValueType(c *opContext, v *ast.Value, t *ast.Type) (bool, string) {
	if v.Kind == ast.Variable {
		for _, op := range c.ops {
			if v2 := op.VariableDefinitions.ForName(v.Raw); v2 != nil {
				t2 := v2.Type
				if !t2.NonNull && v2.DefaultValue != nil && v2.DefaultValue.Kind != ast.NullValue {
					t2 = schema.NonNullOf(t2)
				}
				if _, known := c.schema.Lookup(t2.Name()); known && !c.typeCanBeUsedAs(t2, t) {
					c.addErrMultiLoc([]errors.Location{loc(v2.Position), loc(v.Position)}, "VariablesInAllowedPosition", "Variable %q of type %q used in position expecting type %q.", "$"+v.Raw, t2, t)
				}
			}
		}
		return true, ""
	}

	if t.NonNull {
		if isNull(v) {
			return false, fmt.Sprintf("Expected %q, found null.", t)
		}
		nt := *t
		nt.NonNull = false
		t = &nt
	}
	if isNull(v) {
		return true, ""
	}

	if t.Elem != nil {
		if v.Kind != ast.ListValue {
			return validateValueType(c, v, t.Elem) // single value instead of list
		}
		for i, entry := range v.Children {
			if ok, reason := validateValueType(c, entry.Value, t.Elem); !ok {
				return false, fmt.Sprintf("In element #%d: %s", i, reason)
			}
		}
		return true, ""
	}

	named, ok := c.schema.Lookup(t.NamedType)
	if !ok {
		return true, ""
	}
	switch named := named.(type) {
	case *schema.Scalar, *schema.Enum:
		if validateBasicLit(v, named) {
			return true, ""
		}
		return false, fmt.Sprintf("Expected type %q, found %s.", t, v)

	case *schema.InputObject:
		if v.Kind != ast.ObjectValue {
			return false, fmt.Sprintf("Expected %q, found not an object.", t)
		}
		for _, f := range v.Children {
			name := f.Name
			iv := named.Field(name)
			if iv == nil {
				names := make([]string, len(named.Fields))
				for i, fd := range named.Fields {
					names[i] = fd.Name
				}
				return false, fmt.Sprintf("In field %q: Unknown field.%s", name, makeSuggestion("Did you mean", names, name))
			}
			if ok, reason := validateValueType(c, f.Value, iv.Type); !ok {
				return false, fmt.Sprintf("In field %q: %s", name, reason)
			}
		}
		for _, iv := range named.Fields {
			if v.Children.ForName(iv.Name) == nil && iv.Type.NonNull && iv.DefaultValue == nil {
				return false, fmt.Sprintf("In field %q: Expected %q, found null.", iv.Name, iv.Type)
			}
		}
		if named.OneOf {
			return validateOneOf(c, v, named)
		}
		return true, ""
	}

	return false, fmt.Sprintf("Expected type %q, found %s.", t, v)
}

func validateOneOf(c *opContext, v *ast.Value, t *schema.InputObject) (bool, string) {
	if len(v.Children) != 1 {
		return false, fmt.Sprintf("Oneof input object %q requires exactly one field.", t.Name)
	}
	f := v.Children[0]
	if isNull(f.Value) {
		return false, fmt.Sprintf("Oneof input object %q requires that field %q must not be null.", t.Name, f.Name)
	}
	if f.Value.Kind == ast.Variable {
		for _, op := range c.ops {
			if vd := op.VariableDefinitions.ForName(f.Value.Raw); vd != nil && !vd.Type.NonNull {
				return false, fmt.Sprintf("Variable %q must be non-nullable to be used for oneof input object field %q.", "$"+f.Value.Raw, f.Name)
			}
		}
	}
	return true, ""
}

func validateBasicLit(v *ast.Value, t schema.NamedType) bool {
	switch t := t.(type) {
	case *schema.Scalar:
		switch t.Name {
		case "Int":
			return v.Kind == ast.IntValue && validateBuiltInScalar(v.Raw, "Int")
		case "Float":
			return (v.Kind == ast.IntValue || v.Kind == ast.FloatValue) && validateBuiltInScalar(v.Raw, "Float")
		case "String":
			return v.Kind == ast.StringValue || v.Kind == ast.BlockValue
		case "Boolean":
			return v.Kind == ast.BooleanValue
		case "ID":
			return (v.Kind == ast.IntValue && validateBuiltInScalar(v.Raw, "Int")) || v.Kind == ast.StringValue
		default:
			if t.Validate == nil {
				return true
			}
			val, err := value.FromLiteral(v, nil)
			return err == nil && t.Validate(val)
		}

	case *schema.Enum:
		if v.Kind != ast.EnumValue {
			return false
		}
		return t.Value(v.Raw) != nil
	}

	return false
}

func validateBuiltInScalar(v string, n string) bool {
	switch n {
	case "Int":
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return false
		}
		return f >= math.MinInt32 && f <= math.MaxInt32
	case "Float":
		f, fe := strconv.ParseFloat(v, 64)
		return fe == nil && f <= math.MaxFloat64
	default:
		return false
	}
}

func isNull(lit *ast.Value) bool {
	return lit == nil || lit.Kind == ast.NullValue
}

func (c *context) typesCompatible(a, b *ast.Type) bool {
	aIsList, bIsList := a.Elem != nil, b.Elem != nil
	if aIsList || bIsList {
		return aIsList && bIsList && a.NonNull == b.NonNull && c.typesCompatible(a.Elem, b.Elem)
	}
	if a.NonNull != b.NonNull {
		return false
	}

	at, _ := c.schema.Lookup(a.NamedType)
	bt, _ := c.schema.Lookup(b.NamedType)
	if (at != nil && schema.IsLeaf(at)) || (bt != nil && schema.IsLeaf(bt)) {
		return a.NamedType == b.NamedType
	}

	return true
}

func (c *context) typeCanBeUsedAs(t, as *ast.Type) bool {
	if as.NonNull {
		if !t.NonNull {
			return false // nullable can not be used as non-null
		}
	}
	if t.Elem != nil || as.Elem != nil {
		if t.Elem != nil && as.Elem != nil {
			return c.typeCanBeUsedAs(t.Elem, as.Elem)
		}
		// a single value may be passed where a list is expected
		return t.Elem == nil && c.typeCanBeUsedAs(t, as.Elem)
	}
	return t.NamedType == as.NamedType
}
