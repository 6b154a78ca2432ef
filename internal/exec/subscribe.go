package exec

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/gqlkit/graphql/cachecontrol"
	"github.com/gqlkit/graphql/errors"
)

type Response struct {
	Data         json.RawMessage
	Errors       []*errors.QueryError
	CacheControl cachecontrol.CacheControl
}

// Subscribe resolves the single root field of a subscription to a channel
// and executes the selection set once per received event. The returned
// channel is closed when the source closes, the context is done or a
// terminal error is delivered.
func (r *Request) Subscribe(ctx context.Context) <-chan *Response {
	var n *execNode
	func() {
		defer r.handlePanic(ctx)

		nodes := r.collectNodes(r.Schema.Subscription(), r.Root, r.Operation.SelectionSet, nil)
		if len(nodes) != 1 {
			r.AddError(errors.Errorf("%s", "can subscribe to at most one subscription at a time"))
			return
		}
		n = nodes[0]
		r.resolveNode(ctx, n)
	}()

	if n == nil {
		return sendAndReturnClosed(&Response{Errors: r.Errs})
	}
	if n.err != nil {
		errs := append(r.Errs, n.err)
		if n.typ.NonNull {
			return sendAndReturnClosed(&Response{Errors: errs})
		}
		return sendAndReturnClosed(&Response{Data: []byte(fmt.Sprintf(`{"%s":null}`, n.field.alias)), Errors: errs})
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return sendAndReturnClosed(&Response{Errors: []*errors.QueryError{errors.Errorf("%s", ctxErr)}})
	}

	c := make(chan *Response)
	if isNil(n.value) {
		close(c)
		return c
	}
	result := reflect.ValueOf(n.value)
	if result.Kind() != reflect.Chan || result.Type().ChanDir()&reflect.RecvDir == 0 {
		err := errors.Internalf("subscription field %q must resolve to a receivable channel, got %T", n.field.sf.Name, n.value)
		return sendAndReturnClosed(&Response{Errors: []*errors.QueryError{r.fieldError(n, err)}})
	}

	go func() {
		defer close(c)
		for {
			// Check subscription context
			chosen, event, ok := reflect.Select([]reflect.SelectCase{
				{
					Dir:  reflect.SelectRecv,
					Chan: reflect.ValueOf(ctx.Done()),
				},
				{
					Dir:  reflect.SelectRecv,
					Chan: result,
				},
			})
			// subscription context done or upstream closed
			if chosen == 0 || !ok {
				return
			}

			if se, ok := event.Interface().(errors.SubscriptionError); ok {
				if err := se.SubscriptionError(); err != nil {
					select {
					case <-ctx.Done():
					case c <- &Response{Errors: []*errors.QueryError{r.fieldError(n, err)}}:
					}
					return
				}
			}

			resp := r.forEvent().executeEvent(ctx, n, event.Interface())
			select {
			case <-ctx.Done():
				return
			case c <- resp:
			}
		}
	}()

	return c
}

// forEvent returns a request sharing the configuration of r with its own
// error list and cache hints.
func (r *Request) forEvent() *Request {
	return &Request{
		Schema:                   r.Schema,
		Doc:                      r.Doc,
		Operation:                r.Operation,
		Vars:                     r.Vars,
		Root:                     r.Root,
		Limiter:                  r.Limiter,
		Tracer:                   r.Tracer,
		Logger:                   r.Logger,
		PanicHandler:             r.PanicHandler,
		ResolverFactory:          r.ResolverFactory,
		Directives:               r.Directives,
		FieldHook:                r.FieldHook,
		Cache:                    &cachecontrol.Accumulator{},
		SubscribeResolverTimeout: r.SubscribeResolverTimeout,
	}
}

// executeEvent completes the subscription root field with an event value.
func (r *Request) executeEvent(ctx context.Context, root *execNode, event interface{}) *Response {
	subCtx := ctx
	if r.SubscribeResolverTimeout > 0 {
		var cancel context.CancelFunc
		subCtx, cancel = context.WithTimeout(ctx, r.SubscribeResolverTimeout)
		defer cancel()
	}
	subCtx = cachecontrol.WithAccumulator(subCtx, r.Cache)

	n := &execNode{
		label:    root.label,
		typ:      root.typ,
		field:    root.field,
		objType:  root.objType,
		source:   root.source,
		sels:     root.sels,
		value:    event,
		resolved: true,
	}

	out := getBuffer()
	defer putBuffer(out)
	func() {
		defer r.handlePanic(subCtx)

		w := newObjWriter(out)
		defer w.Flush()

		r.process(subCtx, []*execNode{n})
		w.Write(r, n)
	}()

	if err := subCtx.Err(); err != nil {
		return &Response{Errors: []*errors.QueryError{errors.Errorf("%s", err)}}
	}
	return &Response{Data: copyBuffer(out), Errors: r.Errs, CacheControl: r.Cache.Result()}
}

func sendAndReturnClosed(resp *Response) chan *Response {
	c := make(chan *Response, 1)
	c <- resp
	close(c)
	return c
}
