// Package ctxval attaches a mutable value bag to a context, so values set
// deep in a handler are visible to middlewares holding the outer context.
package ctxval

import (
	"context"
	"sync"
)

type ctxKey struct{}

type bag struct {
	mu     sync.RWMutex
	values map[any]any
}

// Wrap returns ctx with an empty bag attached. A context that already
// carries one is returned unchanged.
func Wrap(ctx context.Context) context.Context {
	if _, ok := getBag(ctx); ok {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, &bag{values: map[any]any{}})
}

// Set stores v under k. It is a no-op on contexts that were not wrapped.
func Set[K comparable, V any](ctx context.Context, k K, v V) {
	b, ok := getBag(ctx)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.values[k] = v
}

func Get[K comparable, V any](ctx context.Context, k K) (V, bool) {
	b, ok := getBag(ctx)
	if !ok {
		return *new(V), false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.values[k].(V)
	return v, ok
}

func getBag(ctx context.Context) (*bag, bool) {
	b, ok := ctx.Value(ctxKey{}).(*bag)
	return b, ok
}
