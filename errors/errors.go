package errors

import (
	"context"
	"fmt"
	"strings"
)

// InternalPrefix marks errors raised by the engine itself (as opposed to
// errors returned by user resolvers), e.g. a resolver claiming an
// unregistered runtime type.
const InternalPrefix = "internal: "

type QueryError struct {
	Err        error                  `json:"-"`
	Message    string                 `json:"message"`
	Locations  []Location             `json:"locations,omitempty"`
	Path       []interface{}          `json:"path,omitempty"`
	Rule       string                 `json:"-"`
	Extensions map[string]interface{} `json:"extensions,omitempty"`
}

type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

func (a Location) Before(b Location) bool {
	return a.Line < b.Line || (a.Line == b.Line && a.Column < b.Column)
}

// Errorf builds a QueryError. The first argument implementing error is kept
// as the wrapped cause.
func Errorf(format string, a ...interface{}) *QueryError {
	var err error
	for _, arg := range a {
		if e, ok := arg.(error); ok {
			err = e
			break
		}
	}

	return &QueryError{
		Err:     err,
		Message: fmt.Sprintf(format, a...),
	}
}

// Internalf builds a QueryError describing an engine invariant violation.
func Internalf(format string, a ...interface{}) *QueryError {
	err := Errorf(format, a...)
	err.Message = InternalPrefix + err.Message
	return err
}

// IsInternal reports whether err was produced by Internalf.
func IsInternal(err *QueryError) bool {
	return err != nil && strings.HasPrefix(err.Message, InternalPrefix)
}

func (err *QueryError) Error() string {
	if err == nil {
		return "<nil>"
	}
	str := fmt.Sprintf("graphql: %s", err.Message)
	for _, loc := range err.Locations {
		str += fmt.Sprintf(" (line %d, column %d)", loc.Line, loc.Column)
	}
	return str
}

func (err *QueryError) Unwrap() error {
	if err == nil {
		return nil
	}
	return err.Err
}

var _ error = &QueryError{}

// Extensioner can be implemented by resolver errors to attach structured
// metadata to the "extensions" member of the reported error.
type Extensioner interface {
	Extensions() map[string]interface{}
}

// PanicHandler converts a recovered resolver panic into a QueryError.
type PanicHandler interface {
	MakePanicError(ctx context.Context, value interface{}) *QueryError
}

// DefaultPanicHandler is the PanicHandler used when none is configured.
type DefaultPanicHandler struct{}

func (h *DefaultPanicHandler) MakePanicError(ctx context.Context, value interface{}) *QueryError {
	return Errorf("panic occurred: %v", value)
}

// SubscriptionError can be implemented by top-level resolver object to communicate to
// the library a terminal subscription error happened while the stream is still active.
//
// After a subscription has started, this is the mechanism to inform subscriber about stream
// failure in a graceful manner.
//
// **Note** This works only on the event values delivered to the subscription root field.
type SubscriptionError interface {
	// SubscriptionError is called to determined if a terminal error occurred. If the returned
	// value is nil, subscription continues normally. If the error is non-nil, the subscription is
	// assumed to have reached a terminal error, the subscription's channel is closed and the error
	// is returned to the user.
	SubscriptionError() error
}
