package extensions

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gqlkit/graphql/errors"
	"github.com/gqlkit/graphql/resolvers"
)

// Tracing records resolver timings in the Apollo tracing format under the
// "tracing" key.
type Tracing struct{}

func (Tracing) Create() Extension {
	return &tracing{now: time.Now}
}

type resolverTrace struct {
	Path        []interface{} `json:"path"`
	ParentType  string        `json:"parentType"`
	FieldName   string        `json:"fieldName"`
	ReturnType  string        `json:"returnType"`
	StartOffset int64         `json:"startOffset"`
	Duration    int64         `json:"duration"`
}

type tracing struct {
	Base
	now func() time.Time

	mu        sync.Mutex
	start     time.Time
	end       time.Time
	resolvers []resolverTrace
}

func (t *tracing) ExecutionStart(context.Context, *ExecutionInfo) {
	t.start = t.now()
}

func (t *tracing) ExecutionEnd(context.Context, []*errors.QueryError) {
	t.end = t.now()
}

func (t *tracing) ResolveField(ctx context.Context, p *resolvers.Params, next resolvers.Resolver) (interface{}, error) {
	begin := t.now()
	out, err := next(ctx)
	end := t.now()

	rt := resolverTrace{
		Path:        p.Info.Path,
		ParentType:  p.Info.ParentType,
		FieldName:   p.Info.FieldName,
		StartOffset: begin.Sub(t.start).Nanoseconds(),
		Duration:    end.Sub(begin).Nanoseconds(),
	}
	if p.Info.ReturnType != nil {
		rt.ReturnType = p.Info.ReturnType.String()
	}

	t.mu.Lock()
	t.resolvers = append(t.resolvers, rt)
	t.mu.Unlock()
	return out, err
}

func (t *tracing) Result(context.Context) (string, interface{}) {
	if t.start.IsZero() {
		return "", nil
	}
	if t.end.IsZero() {
		t.end = t.now()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	sort.SliceStable(t.resolvers, func(i, j int) bool {
		return t.resolvers[i].StartOffset < t.resolvers[j].StartOffset
	})
	return "tracing", map[string]interface{}{
		"version":   1,
		"startTime": t.start.UTC().Format(time.RFC3339Nano),
		"endTime":   t.end.UTC().Format(time.RFC3339Nano),
		"duration":  t.end.Sub(t.start).Nanoseconds(),
		"execution": map[string]interface{}{
			"resolvers": t.resolvers,
		},
	}
}
