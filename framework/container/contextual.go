package container

import (
	"reflect"
)

// ContextualBuilder implements the fluent contextual binding API.
//
//	// Laravel: $app->when(PhotoController::class)->needs(Filesystem::class)->give(...)
//	c.When(container.TypeFor[*PhotoController]()).
//	    Needs(container.TypeFor[Filesystem]()).
//	    Give(func() Filesystem { return storage.NewMemory() })
type ContextualBuilder struct {
	container *Container
	concrete  reflect.Type
	needs     reflect.Type
}

// When starts a contextual binding chain for the given concrete service type.
func (c *Container) When(concrete reflect.Type) *ContextualBuilder {
	return &ContextualBuilder{container: c, concrete: concrete}
}

// Needs specifies which dependency type the concrete service overrides.
func (b *ContextualBuilder) Needs(t reflect.Type) *ContextualBuilder {
	b.needs = t
	return b
}

// Give provides the constructor used when the concrete type resolves the
// needed dependency. The constructor follows the usual Bind shapes and is
// built fresh on every resolution (transient semantics).
func (b *ContextualBuilder) Give(constructor any) error {
	if constructor == nil {
		return ErrNilConstructor
	}
	reg, err := newRegistration(Transient, constructor)
	if err != nil {
		return err
	}
	if !reg.serviceType.AssignableTo(b.needs) {
		return newBadConstructorError(
			&UnregisteredDependencyError{ServiceType: b.needs},
			reflect.TypeOf(constructor),
		)
	}

	c := b.container
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.contextual[b.concrete]; !ok {
		c.contextual[b.concrete] = make(map[reflect.Type]*registration)
	}
	c.contextual[b.concrete][b.needs] = reg
	return nil
}

// GiveValue is a shorthand for Give with a pre-built value.
func (b *ContextualBuilder) GiveValue(value any) error {
	c := b.container
	reg := &registration{serviceType: reflect.TypeOf(value), lifetime: Transient}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.contextual[b.concrete]; !ok {
		c.contextual[b.concrete] = make(map[reflect.Type]*registration)
	}
	// A valueRegistration would be overkill: wrap the value in a zero-arg
	// constructor through reflection instead.
	fnT := reflect.FuncOf(nil, []reflect.Type{reflect.TypeOf(value)}, false)
	reg.ctor = reflect.MakeFunc(fnT, func([]reflect.Value) []reflect.Value {
		return []reflect.Value{reflect.ValueOf(value)}
	})
	c.contextual[b.concrete][b.needs] = reg
	return nil
}

// contextualFor returns the contextual registration for (concrete, needs), or
// nil when the default binding applies.
func (c *Container) contextualFor(concrete, needs reflect.Type) *registration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if m, ok := c.contextual[concrete]; ok {
		return m[needs]
	}
	return nil
}
