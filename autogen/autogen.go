// Package autogen generates Go model types from a GraphQL schema.
package autogen

import (
	"bytes"
	"fmt"
	"go/format"
	"os"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/gqlkit/graphql/schema"
)

// GenFile writes the models of the SDL in inputFile to outputFile as package
// packageName.
func GenFile(inputFile, outputFile, packageName string) error {
	sdl, err := os.ReadFile(inputFile)
	if err != nil {
		return err
	}
	src, err := GenString(string(sdl), packageName)
	if err != nil {
		return err
	}
	return os.WriteFile(outputFile, src, 0o644)
}

// GenString parses sdl and returns the formatted Go source of its models.
func GenString(sdl, packageName string) ([]byte, error) {
	b := schema.NewBuilder()
	if err := b.LoadSDL(sdl); err != nil {
		return nil, err
	}
	s, err := b.Finish()
	if err != nil {
		return nil, err
	}
	return GenSchema(s, packageName)
}

// GenSchema renders a struct per object, interface and input object and a
// string type with constants per enum. Built-in and introspection types are
// skipped.
func GenSchema(s *schema.Schema, packageName string) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "// Code generated by gqlengine gen. DO NOT EDIT.\n\npackage %s\n", packageName)

	for _, t := range s.Types() {
		if strings.HasPrefix(t.TypeName(), "__") {
			continue
		}
		switch t := t.(type) {
		case *schema.Object:
			if isRoot(s, t) {
				continue
			}
			genStruct(&buf, s, t.Name, t.Description, outputFields(t.Fields))
		case *schema.Interface:
			genStruct(&buf, s, t.Name, t.Description, outputFields(t.Fields))
		case *schema.InputObject:
			genStruct(&buf, s, t.Name, t.Description, inputFields(t.Fields))
		case *schema.Enum:
			genEnum(&buf, t)
		}
	}

	out, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("autogen: %w", err)
	}
	return out, nil
}

func isRoot(s *schema.Schema, obj *schema.Object) bool {
	return obj == s.Query() || obj == s.Mutation() || obj == s.Subscription()
}

type field struct {
	name, desc string
	typ        *ast.Type
}

func outputFields(fields []*schema.Field) []field {
	out := make([]field, len(fields))
	for i, f := range fields {
		out[i] = field{f.Name, f.Description, f.Type}
	}
	return out
}

func inputFields(fields []*schema.InputValue) []field {
	out := make([]field, len(fields))
	for i, f := range fields {
		out[i] = field{f.Name, f.Description, f.Type}
	}
	return out
}

func genStruct(buf *bytes.Buffer, s *schema.Schema, name, desc string, fields []field) {
	buf.WriteString("\n")
	writeComment(buf, "", desc)
	fmt.Fprintf(buf, "type %s struct {\n", name)
	for _, f := range fields {
		writeComment(buf, "\t", f.desc)
		fmt.Fprintf(buf, "\t%s %s `json:%q`\n", GoName(f.name), GoType(s, f.typ), f.name)
	}
	buf.WriteString("}\n")
}

func genEnum(buf *bytes.Buffer, e *schema.Enum) {
	buf.WriteString("\n")
	writeComment(buf, "", e.Description)
	fmt.Fprintf(buf, "type %s string\n\nconst (\n", e.Name)
	for _, v := range e.Values {
		writeComment(buf, "\t", v.Description)
		fmt.Fprintf(buf, "\t%s%s %s = %q\n", e.Name, GoName(strings.ToLower(v.Name)), e.Name, v.Name)
	}
	buf.WriteString(")\n")
}

func writeComment(buf *bytes.Buffer, indent, desc string) {
	if desc == "" {
		return
	}
	for _, line := range strings.Split(strings.TrimSpace(desc), "\n") {
		fmt.Fprintf(buf, "%s// %s\n", indent, strings.TrimSpace(line))
	}
}

var initialisms = map[string]string{
	"id":   "ID",
	"ip":   "IP",
	"url":  "URL",
	"http": "HTTP",
	"json": "JSON",
}

// GoName converts a GraphQL name (camelCase or snake_case) to an exported Go
// identifier.
func GoName(name string) string {
	var words []string
	start := 0
	for i := 1; i <= len(name); i++ {
		if i == len(name) || name[i] == '_' || (name[i] >= 'A' && name[i] <= 'Z') {
			if w := strings.Trim(name[start:i], "_"); w != "" {
				words = append(words, w)
			}
			start = i
		}
	}
	var out strings.Builder
	for _, w := range words {
		if s, ok := initialisms[strings.ToLower(w)]; ok {
			out.WriteString(s)
			continue
		}
		out.WriteString(strings.ToUpper(w[:1]) + w[1:])
	}
	return out.String()
}

var builtinScalars = map[string]string{
	"String":  "string",
	"ID":      "string",
	"Int":     "int32",
	"Float":   "float64",
	"Boolean": "bool",
}

// GoType maps a GraphQL type reference to a Go type. Nullable named types
// become pointers and nullable lists become nil slices.
func GoType(s *schema.Schema, t *ast.Type) string {
	if t.Elem != nil {
		return "[]" + GoType(s, t.Elem)
	}
	name := t.NamedType
	if goName, ok := builtinScalars[name]; ok {
		name = goName
	} else if nt, ok := s.Lookup(name); ok && nt.Kind() == schema.KindScalar {
		return "interface{}"
	}
	if t.NonNull {
		return name
	}
	return "*" + name
}
