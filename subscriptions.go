package graphql

import (
	"context"
	stdErrors "errors"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/gqlkit/graphql/errors"
	"github.com/gqlkit/graphql/extensions"
	"github.com/gqlkit/graphql/internal/query"
)

// Subscribe returns a response channel for the given subscription with the schema's
// resolver. It returns an error if the schema was created without a resolver.
// If the context gets cancelled, the response channel will be closed and no
// further resolvers will be called. The context error will be returned as soon
// as possible (not immediately).
func (s *Schema) Subscribe(ctx context.Context, queryString string, operationName string, variables map[string]interface{}) (<-chan *Response, error) {
	if s.root == nil {
		return nil, stdErrors.New("schema created without resolver, can not subscribe")
	}
	return s.subscribe(ctx, &Request{Query: queryString, OperationName: operationName, Variables: variables}), nil
}

func (s *Schema) subscribe(ctx context.Context, req *Request) <-chan *Response {
	exts := extensions.Create(s.extensions)

	p, errs := s.prepare(ctx, req, exts)
	if len(errs) != 0 {
		return sendAndReturnClosed(&Response{Errors: errs})
	}

	if opType := query.OperationType(p.op); opType != ast.Subscription {
		return sendAndReturnClosed(&Response{Errors: []*errors.QueryError{errors.Errorf("%s: %s", "subscription unavailable for operation of type", opType)}})
	}

	r := s.request(p, exts)
	responses := r.Subscribe(ctx)
	c := make(chan *Response)
	go func() {
		defer close(c)
		for resp := range responses {
			out := &Response{
				Data:         resp.Data,
				Errors:       resp.Errors,
				CacheControl: resp.CacheControl,
			}
			out.sortErrors()
			select {
			case c <- out:
			case <-ctx.Done():
				// drain so the executor goroutine can observe the cancellation
				for range responses {
				}
				return
			}
		}
	}()

	return c
}

func sendAndReturnClosed(resp *Response) chan *Response {
	c := make(chan *Response, 1)
	c <- resp
	close(c)
	return c
}
