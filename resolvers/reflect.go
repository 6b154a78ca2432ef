package resolvers

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
)

// typeCache is a copy-on-write map for reflection lookups. Reads never
// block; concurrent misses may compute the same entry twice.
type typeCache[K comparable, V any] struct {
	value atomic.Value
	mu    sync.Mutex
}

func (c *typeCache[K, V]) getOrElseUpdate(key K, create func() V) V {
	last, _ := c.value.Load().(map[K]V)
	if v, ok := last[key]; ok {
		return v
	}

	v := create()

	c.mu.Lock()
	last, _ = c.value.Load().(map[K]V)
	next := make(map[K]V, len(last)+1)
	for k, old := range last {
		next[k] = old
	}
	next[key] = v
	c.value.Store(next)
	c.mu.Unlock()
	return v
}

type lookupKey struct {
	t     reflect.Type
	field string
}

var (
	methodCache typeCache[lookupKey, *methodInfo]
	fieldCache  typeCache[lookupKey, []int]
)

type methodInfo struct {
	index      int
	hasContext bool
	argsType   reflect.Type
	hasError   bool
}

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
	argsType    = reflect.TypeOf(Args{})
)

func normalizeName(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "_", ""))
}

func findMethod(t reflect.Type, fieldName string) *methodInfo {
	return methodCache.getOrElseUpdate(lookupKey{t, fieldName}, func() *methodInfo {
		return typeMethods(t)[normalizeName(fieldName)]
	})
}

func typeMethods(t reflect.Type) map[string]*methodInfo {
	methods := map[string]*methodInfo{}
	hasReceiver := t.Kind() != reflect.Interface
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		info := &methodInfo{index: i}

		in := make([]reflect.Type, m.Type.NumIn())
		for j := range in {
			in[j] = m.Type.In(j)
		}
		if hasReceiver {
			in = in[1:]
		}

		info.hasContext = len(in) > 0 && in[0] == contextType
		if info.hasContext {
			in = in[1:]
		}

		if len(in) > 0 && isArgsType(in[0]) {
			info.argsType = in[0]
			in = in[1:]
		}

		if len(in) > 0 {
			continue
		}

		switch m.Type.NumOut() {
		case 1:
		case 2:
			if m.Type.Out(1) != errorType {
				continue
			}
			info.hasError = true
		default:
			continue
		}
		methods[normalizeName(m.Name)] = info
	}
	return methods
}

func isArgsType(t reflect.Type) bool {
	if t == argsType {
		return true
	}
	return t.Kind() == reflect.Struct || (t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Struct)
}

func packArgs(args Args, t reflect.Type) (reflect.Value, error) {
	if t == argsType {
		return reflect.ValueOf(args), nil
	}
	ptr := reflect.New(t)
	if err := args.Decode(ptr.Interface()); err != nil {
		return reflect.Value{}, fmt.Errorf("cannot bind arguments: %w", err)
	}
	return ptr.Elem(), nil
}

func structFieldIndex(t reflect.Type, fieldName string) ([]int, bool) {
	index := fieldCache.getOrElseUpdate(lookupKey{t, fieldName}, func() []int {
		want := normalizeName(fieldName)
		for _, sf := range reflect.VisibleFields(t) {
			if !sf.IsExported() || sf.Anonymous {
				continue
			}
			if tag, ok := sf.Tag.Lookup("graphql"); ok {
				if name := strings.Split(tag, ",")[0]; name != "" {
					if name == fieldName {
						return sf.Index
					}
					continue
				}
			}
			if normalizeName(sf.Name) == want {
				return sf.Index
			}
		}
		return nil
	})
	return index, index != nil
}
