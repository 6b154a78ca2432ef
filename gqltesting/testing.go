// Package gqltesting runs table tests of GraphQL requests against a schema.
package gqltesting

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	graphql "github.com/gqlkit/graphql"
	"github.com/gqlkit/graphql/errors"
)

// Test is a GraphQL test case to be used with RunTest(s).
type Test struct {
	Context        context.Context
	Schema         *graphql.Schema
	Query          string
	OperationName  string
	Variables      map[string]interface{}
	ExpectedResult string
	ExpectedErrors []*errors.QueryError
}

// RunTests runs the given GraphQL test cases as subtests.
func RunTests(t *testing.T, tests []*Test) {
	t.Helper()
	if len(tests) == 1 {
		RunTest(t, tests[0])
		return
	}

	for i, test := range tests {
		t.Run(strconv.Itoa(i+1), func(t *testing.T) {
			t.Helper()
			RunTest(t, test)
		})
	}
}

// RunTest runs a single GraphQL test case.
func RunTest(t *testing.T, test *Test) {
	t.Helper()
	if test.Context == nil {
		test.Context = context.Background()
	}
	result := test.Schema.Exec(test.Context, test.Query, test.OperationName, test.Variables)

	checkErrors(t, test.ExpectedErrors, result.Errors)
	checkData(t, test.ExpectedResult, result.Data)
}

// TestResponse is one expected response of a subscription.
type TestResponse struct {
	Data   json.RawMessage
	Errors []*errors.QueryError
}

// TestSubscription is a GraphQL subscription test case to be used with
// RunSubscribe(s).
type TestSubscription struct {
	Name            string
	Context         context.Context
	Schema          *graphql.Schema
	Query           string
	OperationName   string
	Variables       map[string]interface{}
	ExpectedResults []TestResponse
}

// RunSubscribes runs the given subscription test cases as subtests.
func RunSubscribes(t *testing.T, tests []*TestSubscription) {
	for i, test := range tests {
		name := test.Name
		if name == "" {
			name = strconv.Itoa(i + 1)
		}
		t.Run(name, func(t *testing.T) {
			RunSubscribe(t, test)
		})
	}
}

// RunSubscribe reads the whole stream of a subscription and compares every
// response in order.
func RunSubscribe(t *testing.T, test *TestSubscription) {
	t.Helper()
	if test.Context == nil {
		test.Context = context.Background()
	}
	c, err := test.Schema.Subscribe(test.Context, test.Query, test.OperationName, test.Variables)
	if err != nil {
		t.Fatal(err)
	}

	var results []*graphql.Response
	for res := range c {
		results = append(results, res)
	}

	if len(results) != len(test.ExpectedResults) {
		t.Fatalf("got %d responses, want %d", len(results), len(test.ExpectedResults))
	}
	for i, want := range test.ExpectedResults {
		checkErrors(t, want.Errors, results[i].Errors)
		checkData(t, string(want.Data), results[i].Data)
	}
}

func checkData(t *testing.T, want string, got json.RawMessage) {
	t.Helper()
	if want == "" {
		if len(got) != 0 && string(got) != "null" {
			t.Fatalf("got: %s, want: null", got)
		}
		return
	}

	wantValue, err := decode([]byte(want))
	if err != nil {
		t.Fatalf("invalid expected result: %v", err)
	}
	gotValue, err := decode(got)
	if err != nil {
		t.Fatalf("invalid result %s: %v", got, err)
	}
	if diff := cmp.Diff(wantValue, gotValue); diff != "" {
		t.Errorf("unexpected result (-want +got):\n%s", diff)
		t.Log("Got:", string(got))
	}
}

func decode(data []byte) (interface{}, error) {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func checkErrors(t *testing.T, want, got []*errors.QueryError) {
	t.Helper()
	sortErrors(want)
	sortErrors(got)

	opts := cmp.Options{
		cmpopts.IgnoreFields(errors.QueryError{}, "Err"),
		cmpopts.EquateEmpty(),
	}
	if diff := cmp.Diff(want, got, opts); diff != "" {
		t.Fatalf("unexpected errors (-want +got):\n%s", diff)
	}
}

func sortErrors(errs []*errors.QueryError) {
	if len(errs) <= 1 {
		return
	}
	sort.SliceStable(errs, func(i, j int) bool {
		return fmt.Sprint(errs[i].Path) < fmt.Sprint(errs[j].Path)
	})
}
