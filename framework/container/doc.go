// Package container provides a Laravel-inspired IoC container with
// lifetime-scoped dependency resolution for Go.
//
// Services are keyed by reflect.Type and registered through constructor
// functions whose parameters declare their dependencies. Resolution walks the
// constructor graph recursively, detecting cycles along the way.
//
// # Lifetimes
//
//	Transient — a new instance on every resolution
//	Scoped    — one instance per Scope (normally one HTTP request)
//	Singleton — one instance for the container lifetime
//
// # Binding and resolving
//
//	c := container.New()
//
//	_ = c.Bind(container.Singleton, func(cfg *config.Config) (*sql.DB, error) {
//	    return sql.Open(cfg.DB.Driver, cfg.DB.DSN())
//	})
//	_ = c.Bind(container.Scoped, func(ctx context.Context, db *sql.DB) (*Session, error) {
//	    return db.BeginSession(ctx)
//	})
//	_ = c.Bind(container.Transient, func(s *Session) UserRepository {
//	    return &sqlUserRepository{session: s}
//	})
//
//	repo, err := container.Resolve[UserRepository](ctx, c)
//
// Unknown concrete struct types are auto-registered as transient and built by
// exported-field injection. Unknown interface types fail with
// UnregisteredDependencyError. A constructor parameter of type *Container
// receives the container itself.
//
// # Scopes
//
// A Scope is the per-request cache of Scoped instances. Middleware installs a
// fresh scope at the start of each request and closes it at the end:
//
//	ctx, scope := container.WithScope(r.Context())
//	defer scope.Close(ctx)
//
// Scope.Close disposes every cached instance satisfying the Disposable
// capability interface, best effort, in reverse construction order.
// Concurrent scopes are fully isolated from one another.
//
// # Service providers
//
// Providers bundle registrations and run in two phases: Register (bind only)
// then Boot, after all providers have registered. Boot order follows the
// optional Priority; boot parameters can be container-injected via BootWith.
// Deferred providers implement Provides() and load just in time, exactly
// once, when one of their provided types is first resolved.
package container
