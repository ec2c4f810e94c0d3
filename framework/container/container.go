package container

import (
	"context"
	"log/slog"
	"reflect"
	"sync"
)

// Lifetime controls how long a resolved instance is reused.
type Lifetime int

const (
	// Transient services get a new instance on every resolution.
	Transient Lifetime = iota
	// Scoped services get one instance per scope (normally one HTTP request).
	Scoped
	// Singleton services get one instance for the container lifetime.
	Singleton
)

func (l Lifetime) String() string {
	switch l {
	case Transient:
		return "transient"
	case Scoped:
		return "scoped"
	case Singleton:
		return "singleton"
	default:
		return "unknown"
	}
}

var (
	errorType     = reflect.TypeOf((*error)(nil)).Elem()
	contextType   = reflect.TypeOf((*context.Context)(nil)).Elem()
	containerType = reflect.TypeOf((*Container)(nil))
)

// TypeFor returns the reflect.Type a service is keyed by. For interfaces this
// is the interface type itself, not the dynamic type of an implementation.
//
//	container.TypeFor[UserRepository]()  // UserRepository interface type
//	container.TypeFor[*SessionStore]()   // *SessionStore pointer type
func TypeFor[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// registration is one binding: how to construct a service type, and for how
// long the constructed instance lives. A service type has at most one active
// registration; re-binding replaces it.
type registration struct {
	serviceType reflect.Type
	ctor        reflect.Value
	params      []reflect.Type // constructor parameters, excluding a leading context
	lifetime    Lifetime
	wantsCtx    bool
	returnsErr  bool
	implicit    bool // auto-registered concrete type, built by field injection
	provided    bool // registered via Instance; no constructor
}

// Container is the IoC container — it mirrors Laravel's
// Illuminate\Container\Container, keyed by reflect.Type instead of strings so
// constructor parameters can drive resolution.
//
// Registration is expected to happen during bootstrap, before concurrent
// request handling begins. Resolution is safe for concurrent use.
type Container struct {
	mu         sync.RWMutex
	bindings   map[reflect.Type]*registration
	instances  map[reflect.Type]any // singleton store
	deferred   map[reflect.Type]*deferredEntry
	contextual map[reflect.Type]map[reflect.Type]*registration
	log        *slog.Logger
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger used for re-bind warnings and other diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(c *Container) { c.log = log }
}

// New creates an empty container. The container is bound to itself, so
// constructors may declare a *Container parameter.
func New(opts ...Option) *Container {
	c := &Container{
		bindings:   make(map[reflect.Type]*registration),
		instances:  make(map[reflect.Type]any),
		deferred:   make(map[reflect.Type]*deferredEntry),
		contextual: make(map[reflect.Type]map[reflect.Type]*registration),
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.bindSelf()
	return c
}

func (c *Container) bindSelf() {
	c.bindings[containerType] = &registration{
		serviceType: containerType,
		lifetime:    Singleton,
		provided:    true,
	}
	c.instances[containerType] = c
}

// Bind registers a constructor under the given lifetime. The service type is
// the constructor's first return value. Supported shapes:
//
//	func([ctx context.Context,] deps...) T
//	func([ctx context.Context,] deps...) (T, error)
//
// Re-binding an already-bound type replaces the previous binding silently
// (last write wins), with a diagnostic logged. An already-built singleton
// instance is NOT replaced until ForgetInstance is called for it.
func (c *Container) Bind(lifetime Lifetime, constructor any) error {
	if constructor == nil {
		return ErrNilConstructor
	}
	if lifetime < Transient || lifetime > Singleton {
		return LifetimeUnsupportedError(lifetime)
	}

	reg, err := newRegistration(lifetime, constructor)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if prev, ok := c.bindings[reg.serviceType]; ok && !prev.implicit {
		c.log.Warn("container: re-binding service, previous binding replaced",
			"service", reg.serviceType.String(),
			"lifetime", lifetime.String(),
		)
	}
	c.bindings[reg.serviceType] = reg
	c.mu.Unlock()

	return nil
}

// newRegistration validates a constructor function and captures its shape.
func newRegistration(lifetime Lifetime, constructor any) (*registration, error) {
	t := reflect.TypeOf(constructor)
	if t.Kind() != reflect.Func {
		return nil, newBadConstructorError(ErrNotAFunction, t)
	}
	if t.IsVariadic() {
		return nil, newBadConstructorError(ErrVariadicConstructor, t)
	}

	switch t.NumOut() {
	case 1:
		if t.Out(0).Implements(errorType) {
			return nil, newBadConstructorError(ErrNotAFunction, t)
		}
	case 2:
		if !t.Out(1).Implements(errorType) {
			return nil, newBadConstructorError(ErrNotAFunction, t)
		}
	default:
		return nil, newBadConstructorError(ErrNotAFunction, t)
	}

	reg := &registration{
		serviceType: t.Out(0),
		ctor:        reflect.ValueOf(constructor),
		lifetime:    lifetime,
		returnsErr:  t.NumOut() == 2,
	}

	for i := 0; i < t.NumIn(); i++ {
		in := t.In(i)
		if in == contextType {
			if i != 0 {
				return nil, newBadConstructorError(ErrNotAFunction, t)
			}
			reg.wantsCtx = true
			continue
		}
		reg.params = append(reg.params, in)
	}

	return reg, nil
}

// Instance registers a pre-built value as a singleton, keyed by its dynamic
// type. Use InstanceOf to key a value by an interface it implements.
func (c *Container) Instance(value any) {
	c.instance(reflect.TypeOf(value), value)
}

// InstanceOf registers a pre-built value as a singleton keyed by T.
//
//	container.InstanceOf[Mailer](c, mail.NewArrayMailer())
func InstanceOf[T any](c *Container, value T) {
	c.instance(TypeFor[T](), value)
}

func (c *Container) instance(t reflect.Type, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bindings[t] = &registration{serviceType: t, lifetime: Singleton, provided: true}
	c.instances[t] = value
}

// Bound reports whether a service type has an active binding, a singleton
// instance, or a pending deferred provider.
func (c *Container) Bound(t reflect.Type) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.bindings[t]; ok {
		return true
	}
	if _, ok := c.instances[t]; ok {
		return true
	}
	_, ok := c.deferred[t]
	return ok
}

// Resolved reports whether a singleton instance has been built for t.
func (c *Container) Resolved(t reflect.Type) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.instances[t]
	return ok
}

// ForgetInstance drops the singleton store entry for t, keeping the binding.
// The next resolution re-runs the active constructor.
func (c *Container) ForgetInstance(t reflect.Type) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.instances, t)
}

// Flush resets the container to its initial state.
func (c *Container) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bindings = make(map[reflect.Type]*registration)
	c.instances = make(map[reflect.Type]any)
	c.deferred = make(map[reflect.Type]*deferredEntry)
	c.contextual = make(map[reflect.Type]map[reflect.Type]*registration)
	c.bindSelf()
}

// Bindings returns the currently bound service types, for debugging.
func (c *Container) Bindings() []reflect.Type {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]reflect.Type, 0, len(c.bindings))
	for t := range c.bindings {
		out = append(out, t)
	}
	return out
}
