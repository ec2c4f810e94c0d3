package container

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// Disposable is the capability interface for scoped resources that hold
// something worth releasing (connections, transactions, file handles).
// Scope.Close invokes Dispose on every cached instance that satisfies it.
type Disposable interface {
	Dispose(ctx context.Context) error
}

type scopeCtxKey struct{}

// Scope is the per-unit-of-work cache of Scoped instances. A fresh Scope is
// installed on the context at the start of each logical unit of work (one
// HTTP request, one console command run) and closed at its end. Two
// concurrently running units never share a Scope, so they never observe each
// other's scoped instances.
type Scope struct {
	mu        sync.Mutex
	instances map[reflect.Type]any
	order     []reflect.Type // insertion order; disposal runs in reverse
}

// NewScope creates an empty scope not attached to any context.
func NewScope() *Scope {
	return &Scope{instances: make(map[reflect.Type]any)}
}

// WithScope installs a fresh Scope on the context and returns both. Nested
// calls replace the scope for the derived context only.
//
//	ctx, scope := container.WithScope(r.Context())
//	defer scope.Close(ctx)
func WithScope(ctx context.Context) (context.Context, *Scope) {
	s := NewScope()
	return context.WithValue(ctx, scopeCtxKey{}, s), s
}

// ScopeFrom returns the Scope installed on ctx, if any.
func ScopeFrom(ctx context.Context) (*Scope, bool) {
	s, ok := ctx.Value(scopeCtxKey{}).(*Scope)
	return s, ok
}

func (s *Scope) get(t reflect.Type) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.instances[t]
	return v, ok
}

// put stores v for t unless another goroutine got there first, in which case
// the stored instance wins and v is discarded. Scoped identity must be stable
// within one scope.
func (s *Scope) put(t reflect.Type, v any) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.instances[t]; ok {
		return prev
	}
	s.instances[t] = v
	s.order = append(s.order, t)
	return v
}

// Len returns the number of cached instances.
func (s *Scope) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.instances)
}

// Clear discards all cached instances without disposing them.
func (s *Scope) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instances = make(map[reflect.Type]any)
	s.order = nil
}

// Close disposes every cached instance that satisfies Disposable, in reverse
// insertion order (dependents before their dependencies), then discards the
// cache. Disposal is best effort: one failing Dispose does not stop the
// others, and all failures are joined into the returned error.
//
// Callers should run Close in a defer so cancellation mid-request still
// releases scoped resources.
func (s *Scope) Close(ctx context.Context) error {
	s.mu.Lock()
	instances := s.instances
	order := s.order
	s.instances = make(map[reflect.Type]any)
	s.order = nil
	s.mu.Unlock()

	var errs []error
	for i := len(order) - 1; i >= 0; i-- {
		d, ok := instances[order[i]].(Disposable)
		if !ok {
			continue
		}
		if err := dispose(ctx, d); err != nil {
			errs = append(errs, fmt.Errorf("disposing %s: %w", order[i], err))
		}
	}
	return errors.Join(errs...)
}

// dispose calls Dispose, converting a panic into an error so one broken
// resource cannot abort cleanup of the rest.
func dispose(ctx context.Context, d Disposable) (err error) {
	defer func() {
		if rp := recover(); rp != nil {
			err = fmt.Errorf("recovered from panic: %v", rp)
		}
	}()
	return d.Dispose(ctx)
}
