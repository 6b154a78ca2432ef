// Package cachecontrol merges per-field and per-type cache hints into the
// response-level hint that transport handlers expose as a Cache-Control
// header.
package cachecontrol

import (
	"context"
	"strconv"
	"sync"
)

type Scope int

// Cache control scopes.
const (
	ScopePublic Scope = iota
	ScopePrivate
)

// NoCache is the MaxAge value that disables caching entirely.
const NoCache = -1

// CacheControl is a cache hint. A zero MaxAge means no age was declared;
// NoCache wins over every other age. The zero value is a public hint
// without an age.
type CacheControl struct {
	MaxAge int
	Scope  Scope
}

// Public reports whether the hint may be stored by shared caches.
func (c CacheControl) Public() bool {
	return c.Scope == ScopePublic
}

// Merge returns the most restrictive combination of c and other: the
// smaller declared age and the private scope if either is private.
func (c CacheControl) Merge(other CacheControl) CacheControl {
	out := CacheControl{Scope: ScopePublic}
	if c.Scope == ScopePrivate || other.Scope == ScopePrivate {
		out.Scope = ScopePrivate
	}
	switch {
	case c.MaxAge == NoCache || other.MaxAge == NoCache:
		out.MaxAge = NoCache
	case other.MaxAge == 0:
		out.MaxAge = c.MaxAge
	case c.MaxAge == 0:
		out.MaxAge = other.MaxAge
	case other.MaxAge < c.MaxAge:
		out.MaxAge = other.MaxAge
	default:
		out.MaxAge = c.MaxAge
	}
	return out
}

// String resolves the HTTP Cache-Control value of the hint. It is empty
// when the hint carries no information.
func (c CacheControl) String() string {
	var s string
	switch {
	case c.MaxAge == NoCache:
		s = "no-cache"
	case c.MaxAge > 0:
		s = "max-age=" + strconv.Itoa(c.MaxAge)
	}
	if c.Scope == ScopePrivate {
		if s != "" {
			s += ", "
		}
		s += "private"
	}
	return s
}

// Accumulator merges hints reported concurrently while a request executes.
type Accumulator struct {
	mu   sync.Mutex
	hint CacheControl
	seen bool
}

func (a *Accumulator) Add(c CacheControl) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.seen {
		a.hint, a.seen = c, true
		return
	}
	a.hint = a.hint.Merge(c)
}

// Result returns the merged hint.
func (a *Accumulator) Result() CacheControl {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.hint
}

type ctxKey struct{}

// WithAccumulator extends the context with the ability to add cache hints.
func WithAccumulator(ctx context.Context, a *Accumulator) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

// AddHint applies a caching hint to the request executing with ctx. It is a
// no-op outside of a request.
func AddHint(ctx context.Context, hint CacheControl) {
	if a, ok := ctx.Value(ctxKey{}).(*Accumulator); ok {
		a.Add(hint)
	}
}
