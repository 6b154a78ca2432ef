package extensions

import (
	"context"

	"github.com/gqlkit/graphql/internal/validation"
)

// Analyzer reports the complexity and depth of every executed operation
// under the "analyzer" key.
type Analyzer struct {
	// Policy defaults to the cost expressions of the schema.
	Policy validation.ComplexityPolicy
}

func (a Analyzer) Create() Extension {
	return &analyzer{policy: a.Policy}
}

type analyzer struct {
	Base
	policy     validation.ComplexityPolicy
	measured   bool
	complexity int
	depth      int
}

func (a *analyzer) ExecutionStart(ctx context.Context, info *ExecutionInfo) {
	a.complexity, a.depth = validation.Measure(info.Schema, info.Document, info.Operation, info.Variables, a.policy)
	a.measured = true
}

func (a *analyzer) Result(context.Context) (string, interface{}) {
	if !a.measured {
		return "", nil
	}
	return "analyzer", map[string]int{
		"complexity": a.complexity,
		"depth":      a.depth,
	}
}
