package graphql

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/gqlkit/graphql/cachecontrol"
	"github.com/gqlkit/graphql/errors"
)

// Response represents a typical response of a GraphQL server. It may be encoded to JSON directly or
// it may be further processed to a custom response type, for example to include custom error data.
// Errors are intentionally serialized first based on the advice in https://github.com/facebook/graphql/commit/7b40390d48680b15cb93e02d46ac5eb249689876#diff-757cea6edf0288677a9eea4cfc801d87R107
type Response struct {
	Errors     []*errors.QueryError   `json:"errors,omitempty"`
	Data       json.RawMessage        `json:"data,omitempty"`
	Extensions map[string]interface{} `json:"extensions,omitempty"`

	// CacheControl is the merged cache policy of the executed fields.
	CacheControl cachecontrol.CacheControl `json:"-"`
}

// sortErrors orders errors by path, then by location. Errors without a path
// come first.
func (r *Response) sortErrors() {
	sort.SliceStable(r.Errors, func(i, j int) bool {
		a, b := r.Errors[i], r.Errors[j]
		if c := comparePaths(a.Path, b.Path); c != 0 {
			return c < 0
		}
		return firstLocation(a).Before(firstLocation(b))
	})
}

func firstLocation(err *errors.QueryError) errors.Location {
	if len(err.Locations) == 0 {
		return errors.Location{}
	}
	return err.Locations[0]
}

// comparePaths compares paths segment by segment. List indices sort
// numerically and before field names.
func comparePaths(a, b []interface{}) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := compareSegments(a[i], b[i]); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}

func compareSegments(a, b interface{}) int {
	ai, aIsIndex := a.(int)
	bi, bIsIndex := b.(int)
	switch {
	case aIsIndex && bIsIndex:
		return ai - bi
	case aIsIndex:
		return -1
	case bIsIndex:
		return 1
	}
	as, bs := fmt.Sprint(a), fmt.Sprint(b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	}
	return 0
}
