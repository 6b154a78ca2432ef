package schema

import (
	_ "embed"
	"strings"
)

//go:embed meta.graphql
var metaSDL string

// IsMetaType reports whether name is one of the introspection types.
func IsMetaType(name string) bool {
	return strings.HasPrefix(name, "__")
}
