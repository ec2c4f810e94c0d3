package container

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"sort"
)

// ServiceProvider mirrors Laravel's Illuminate\Support\ServiceProvider.
//
// Register binds services into the container. It must not resolve other
// bindings or perform I/O — that belongs in the boot phase, which runs after
// every provider has registered.
type ServiceProvider interface {
	Register(app *Container) error
}

// Bootable providers run a boot step after all providers are registered.
type Bootable interface {
	Boot(ctx context.Context, app *Container) error
}

// BootInjector providers boot through method injection: BootWith returns a
// function whose parameters are resolved by the container before the call.
//
//	func (p *MailProvider) BootWith() any {
//	    return func(cfg *config.Config, m mail.Mailer) error { ... }
//	}
type BootInjector interface {
	BootWith() any
}

// Prioritized providers control boot order: lower priority boots first.
// Providers without a priority default to 0; ties keep registration order.
type Prioritized interface {
	Priority() int
}

// DeferredProvider is a ServiceProvider that is not registered until one of
// its provided types is first resolved. Provides must declare at least one
// type; an empty list is a configuration error reported at registration.
type DeferredProvider interface {
	ServiceProvider
	Provides() []reflect.Type
}

// BaseProvider is an embeddable no-op Register, for providers that only boot.
type BaseProvider struct{}

func (BaseProvider) Register(*Container) error { return nil }

// deferredEntry is shared by every type a deferred provider supplies, so the
// provider's register and boot run exactly once no matter which provided type
// triggers the load.
type deferredEntry struct {
	provider DeferredProvider
}

// AddDeferred maps a service type to a deferred provider. It fails when the
// provider does not declare t among its provided types, or declares nothing.
func (c *Container) AddDeferred(t reflect.Type, provider DeferredProvider) error {
	provides := provider.Provides()
	if len(provides) == 0 {
		return fmt.Errorf("%w: %T", ErrNoProvides, provider)
	}
	if !slices.Contains(provides, t) {
		return fmt.Errorf("%w: %s is not among %T's provided types", ErrNotProvided, t, provider)
	}
	c.mu.Lock()
	c.deferred[t] = &deferredEntry{provider: provider}
	c.mu.Unlock()
	return nil
}

// loadDeferred triggers the deferred provider for t, if any. Every type the
// provider supplies is removed from the deferred map before its register and
// boot run, so nothing re-triggers the provider — not even resolutions made
// from inside its own boot step.
func (c *Container) loadDeferred(ctx context.Context, t reflect.Type) error {
	c.mu.Lock()
	entry, ok := c.deferred[t]
	if !ok {
		c.mu.Unlock()
		return nil
	}
	for _, provided := range entry.provider.Provides() {
		delete(c.deferred, provided)
	}
	c.mu.Unlock()

	name := fmt.Sprintf("%T", entry.provider)
	if err := entry.provider.Register(c); err != nil {
		return &ProviderError{Provider: name, Stage: "register", cause: err}
	}
	if err := c.bootProvider(ctx, entry.provider); err != nil {
		return &ProviderError{Provider: name, Stage: "boot", cause: err}
	}
	return nil
}

// bootProvider runs a provider's boot step, if it declares one.
func (c *Container) bootProvider(ctx context.Context, p ServiceProvider) error {
	if injector, ok := p.(BootInjector); ok {
		return c.Invoke(ctx, injector.BootWith())
	}
	if bootable, ok := p.(Bootable); ok {
		return bootable.Boot(ctx, c)
	}
	return nil
}

// ProviderRegistry manages registration and booting of service providers,
// mirroring Laravel's Application::registerConfiguredProviders and
// Application::bootProviders.
type ProviderRegistry struct {
	app        *Container
	eager      []ServiceProvider
	registered map[ServiceProvider]bool
	booted     bool
}

// NewProviderRegistry creates a registry bound to app.
func NewProviderRegistry(app *Container) *ProviderRegistry {
	return &ProviderRegistry{
		app:        app,
		registered: make(map[ServiceProvider]bool),
	}
}

// Register adds a provider. Eager providers register immediately; deferred
// providers are recorded against each type they provide and load on first
// resolution. Registering the same provider twice is a no-op.
func (r *ProviderRegistry) Register(provider ServiceProvider) error {
	if r.registered[provider] {
		return nil
	}
	r.registered[provider] = true

	if deferred, ok := provider.(DeferredProvider); ok {
		provides := deferred.Provides()
		if len(provides) == 0 {
			return fmt.Errorf("%w: %T", ErrNoProvides, provider)
		}
		for _, t := range provides {
			if err := r.app.AddDeferred(t, deferred); err != nil {
				return err
			}
		}
		return nil
	}

	if err := provider.Register(r.app); err != nil {
		return err
	}
	r.eager = append(r.eager, provider)

	// Late registration: a provider added after Boot() boots immediately.
	if r.booted {
		return r.app.bootProvider(context.Background(), provider)
	}
	return nil
}

// Boot runs the boot phase on all eager providers, ordered by priority
// (lower first, stable for ties). Safe to call once; repeat calls are no-ops.
func (r *ProviderRegistry) Boot(ctx context.Context) error {
	if r.booted {
		return nil
	}
	r.booted = true

	ordered := make([]ServiceProvider, len(r.eager))
	copy(ordered, r.eager)
	sort.SliceStable(ordered, func(i, j int) bool {
		return priorityOf(ordered[i]) < priorityOf(ordered[j])
	})

	for _, provider := range ordered {
		if err := r.app.bootProvider(ctx, provider); err != nil {
			return &ProviderError{Provider: fmt.Sprintf("%T", provider), Stage: "boot", cause: err}
		}
	}
	return nil
}

func priorityOf(p ServiceProvider) int {
	if prioritized, ok := p.(Prioritized); ok {
		return prioritized.Priority()
	}
	return 0
}

// Booted reports whether Boot has run.
func (r *ProviderRegistry) Booted() bool { return r.booted }

// Providers returns all registered eager providers in registration order.
func (r *ProviderRegistry) Providers() []ServiceProvider { return r.eager }
