package container

import (
	"context"
	"fmt"
	"reflect"
	"slices"
)

// resolveState is the per-call resolution stack, used only for cycle
// detection. A fresh one is created for every top-level Resolve so that
// concurrently resolving goroutines never see each other's in-flight types.
type resolveState struct {
	stack []reflect.Type

	// fallback is the throwaway scope used when no scope is installed on the
	// context, created lazily and shared across one top-level call so a single
	// resolution graph still sees one instance per scoped type.
	fallback *Scope
}

// Resolve builds or retrieves an instance of serviceType.
//
// The lookup order follows Laravel's container: a pending deferred provider
// for the type is loaded first, then the active binding decides the lifetime —
// singletons come from the singleton store, scoped services from the scope
// installed on ctx (see WithScope), transients are built fresh. Unknown
// concrete struct types are auto-registered as transient; unknown interfaces
// fail with UnregisteredDependencyError.
func (c *Container) Resolve(ctx context.Context, serviceType reflect.Type) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return c.resolve(ctx, serviceType, &resolveState{})
}

// Resolve is the generic entry point for resolving a service by its static
// type.
//
//	repo, err := container.Resolve[UserRepository](ctx, app.Container)
func Resolve[T any](ctx context.Context, c *Container) (T, error) {
	var zero T
	v, err := c.Resolve(ctx, TypeFor[T]())
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	typed, ok := v.(T)
	if !ok {
		return zero, newResolutionError(
			fmt.Errorf("resolved to %T, want %s", v, TypeFor[T]()),
			Transient, TypeFor[T](),
		)
	}
	return typed, nil
}

// MustResolve is like Resolve but panics on failure. Intended for bootstrap
// code where a missing binding is a programming error.
func MustResolve[T any](ctx context.Context, c *Container) T {
	v, err := Resolve[T](ctx, c)
	if err != nil {
		panic(err)
	}
	return v
}

func (c *Container) resolve(ctx context.Context, t reflect.Type, st *resolveState) (any, error) {
	if err := c.loadDeferred(ctx, t); err != nil {
		return nil, err
	}

	if i := slices.Index(st.stack, t); i >= 0 {
		cycle := append(slices.Clone(st.stack[i:]), t)
		return nil, &CircularDependencyError{Cycle: cycle}
	}
	st.stack = append(st.stack, t)
	defer func() { st.stack = st.stack[:len(st.stack)-1] }()

	reg, err := c.lookup(t)
	if err != nil {
		return nil, err
	}

	switch reg.lifetime {
	case Singleton:
		c.mu.RLock()
		v, ok := c.instances[t]
		c.mu.RUnlock()
		if ok {
			return v, nil
		}

		v, err := c.build(ctx, reg, st)
		if err != nil {
			return nil, err
		}

		// First writer wins so concurrent first resolutions agree on identity.
		c.mu.Lock()
		if prev, ok := c.instances[t]; ok {
			v = prev
		} else {
			c.instances[t] = v
		}
		c.mu.Unlock()
		return v, nil

	case Scoped:
		scope, ok := ScopeFrom(ctx)
		if !ok {
			// No scope installed: fall back to a throwaway scope so ad-hoc
			// and test resolutions stay usable. The instance is not shared
			// beyond this top-level call.
			if st.fallback == nil {
				st.fallback = NewScope()
			}
			scope = st.fallback
		}
		if v, ok := scope.get(t); ok {
			return v, nil
		}
		v, err := c.build(ctx, reg, st)
		if err != nil {
			return nil, err
		}
		return scope.put(t, v), nil

	default: // Transient
		return c.build(ctx, reg, st)
	}
}

// lookup finds the active registration for t, auto-registering unknown
// concrete struct types as implicit transients.
func (c *Container) lookup(t reflect.Type) (*registration, error) {
	c.mu.RLock()
	reg, ok := c.bindings[t]
	c.mu.RUnlock()
	if ok {
		return reg, nil
	}

	switch {
	case t.Kind() == reflect.Struct,
		t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct:
		reg = &registration{serviceType: t, lifetime: Transient, implicit: true}
		c.mu.Lock()
		if existing, ok := c.bindings[t]; ok {
			reg = existing
		} else {
			c.bindings[t] = reg
		}
		c.mu.Unlock()
		return reg, nil
	default:
		// Interfaces without a binding, and primitive or collection kinds,
		// cannot be constructed implicitly.
		return nil, &UnregisteredDependencyError{ServiceType: t}
	}
}

// build constructs one instance for a registration, recursively resolving
// constructor parameters through the same resolution stack.
func (c *Container) build(ctx context.Context, reg *registration, st *resolveState) (v any, err error) {
	defer func() {
		if rp := recover(); rp != nil {
			err = newResolutionError(
				fmt.Errorf("recovered from panic: %v", rp),
				reg.lifetime, reg.serviceType,
			)
		}
	}()

	if reg.implicit {
		return c.buildStruct(ctx, reg, st)
	}
	if !reg.ctor.IsValid() {
		return nil, newResolutionError(
			fmt.Errorf("binding has no constructor (instance was forgotten)"),
			reg.lifetime, reg.serviceType,
		)
	}

	ctorT := reg.ctor.Type()
	args := make([]reflect.Value, 0, len(reg.params)+1)
	if reg.wantsCtx {
		args = append(args, reflect.ValueOf(ctx))
	}

	for i, p := range reg.params {
		dep, err := c.resolveParam(ctx, reg.serviceType, ctorT, i, p, st)
		if err != nil {
			return nil, err
		}
		if dep == nil {
			args = append(args, reflect.Zero(p))
		} else {
			args = append(args, reflect.ValueOf(dep))
		}
	}

	out := reg.ctor.Call(args)
	if reg.returnsErr && !out[1].IsNil() {
		return nil, newResolutionError(out[1].Interface().(error), reg.lifetime, reg.serviceType)
	}
	return out[0].Interface(), nil
}

// resolveParam resolves one constructor parameter, honoring contextual
// bindings declared for the service under construction.
func (c *Container) resolveParam(
	ctx context.Context,
	owner reflect.Type,
	ctorT reflect.Type,
	index int,
	param reflect.Type,
	st *resolveState,
) (any, error) {
	if reg := c.contextualFor(owner, param); reg != nil {
		return c.build(ctx, reg, st)
	}
	if !c.Bound(param) && !injectableKind(param) {
		return nil, &ParameterError{Constructor: ctorT, Index: index, Param: param}
	}
	return c.resolve(ctx, param, st)
}

// injectableKind reports whether a type can participate in auto-wiring
// without an explicit binding. Primitive and collection kinds cannot: a
// constructor wanting an int or a string must have it bound explicitly.
func injectableKind(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Struct:
		return true
	case reflect.Pointer:
		return t.Elem().Kind() == reflect.Struct
	default:
		return false
	}
}

// buildStruct constructs an implicitly registered concrete type by filling
// its exported fields from the container. Fields of primitive kinds keep
// their zero value; interface and struct-pointer fields are resolved.
func (c *Container) buildStruct(ctx context.Context, reg *registration, st *resolveState) (any, error) {
	t := reg.serviceType
	elem := t
	ptr := t.Kind() == reflect.Pointer
	if ptr {
		elem = t.Elem()
	}

	v := reflect.New(elem).Elem()
	for i := 0; i < elem.NumField(); i++ {
		field := elem.Field(i)
		if !field.IsExported() {
			continue
		}
		ft := field.Type
		if ft == contextType {
			continue
		}
		if !c.Bound(ft) && !fieldInjectable(ft) {
			continue
		}
		dep, err := c.resolve(ctx, ft, st)
		if err != nil {
			return nil, err
		}
		if dep != nil {
			v.Field(i).Set(reflect.ValueOf(dep))
		}
	}

	if ptr {
		return v.Addr().Interface(), nil
	}
	return v.Interface(), nil
}

// fieldInjectable is stricter than injectableKind: plain struct fields are
// left alone (they are usually value state, not dependencies) unless bound.
func fieldInjectable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface:
		return true
	case reflect.Pointer:
		return t.Elem().Kind() == reflect.Struct
	default:
		return false
	}
}
