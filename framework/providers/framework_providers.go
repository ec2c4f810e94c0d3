package providers

import (
	"log/slog"
	"os"
	"reflect"
	"time"

	"github.com/arcframework/arc/framework/auth"
	"github.com/arcframework/arc/framework/cache"
	"github.com/arcframework/arc/framework/config"
	"github.com/arcframework/arc/framework/console"
	"github.com/arcframework/arc/framework/container"
	gohttp "github.com/arcframework/arc/framework/http"
	"github.com/arcframework/arc/framework/mail"
	"github.com/arcframework/arc/framework/routing"
	"github.com/arcframework/arc/framework/storage"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider loads the application configuration from .env and
// binds *config.Config as a singleton.
//
// Laravel equivalent:
//
//	// Illuminate\Foundation\Bootstrap\LoadConfiguration
//	$app->singleton('config', fn() => new Repository($items));
type ConfigServiceProvider struct {
	container.BaseProvider
	EnvFiles []string
}

func (p *ConfigServiceProvider) Register(app *container.Container) error {
	envFiles := p.EnvFiles
	return app.Bind(container.Singleton, func() *config.Config {
		return config.Load(envFiles...)
	})
}

// Priority puts configuration ahead of every other boot step.
func (p *ConfigServiceProvider) Priority() int { return -100 }

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider registers the HTTP router with the per-request
// container scope middleware installed. chi requires middleware before any
// route, so the scope boundary is wired here rather than at serve time.
//
// Laravel equivalent:
//
//	// Illuminate\Routing\RoutingServiceProvider
//	$app->singleton('router', fn($app) => new Router($app['events'], $app));
type RoutingServiceProvider struct {
	container.BaseProvider
}

func (p *RoutingServiceProvider) Register(app *container.Container) error {
	return app.Bind(container.Singleton, func(c *container.Container) *routing.Router {
		r := routing.New()
		r.Middleware(gohttp.ScopeMiddleware(c))
		return r
	})
}

// ── CacheServiceProvider ──────────────────────────────────────────────────────

// CacheServiceProvider registers the cache store and repository.
//
// Laravel equivalent:
//
//	// Illuminate\Cache\CacheServiceProvider
//	$app->singleton('cache', fn($app) => new CacheManager($app));
type CacheServiceProvider struct {
	container.BaseProvider
}

func (p *CacheServiceProvider) Register(app *container.Container) error {
	if err := app.Bind(container.Singleton, func() cache.Store {
		return cache.NewMemoryStore()
	}); err != nil {
		return err
	}
	return app.Bind(container.Singleton, func(cfg *config.Config, store cache.Store) *cache.Repository {
		ttl := time.Duration(cfg.Cache.DefaultTTL) * time.Second
		return cache.NewRepository(store, cfg.Cache.Prefix, ttl)
	})
}

// ── StorageServiceProvider ────────────────────────────────────────────────────

// StorageServiceProvider registers the default filesystem per STORAGE_DRIVER.
//
// Laravel equivalent:
//
//	// Illuminate\Filesystem\FilesystemServiceProvider
//	$app->singleton('filesystem', fn($app) => new FilesystemManager($app));
type StorageServiceProvider struct {
	container.BaseProvider
}

func (p *StorageServiceProvider) Register(app *container.Container) error {
	return app.Bind(container.Singleton, func(cfg *config.Config) (storage.Filesystem, error) {
		switch cfg.Storage.Driver {
		case "memory":
			return storage.NewMemoryFS(), nil
		default:
			return storage.NewLocalFS(cfg.Storage.Root)
		}
	})
}

// ── AuthServiceProvider ───────────────────────────────────────────────────────

// AuthServiceProvider registers the access gate and the token guard. The app
// supplies its own auth.UserProvider binding; the guard resolves against it.
//
// Laravel equivalent:
//
//	// Illuminate\Auth\AuthServiceProvider
//	$app->singleton('auth', fn($app) => new AuthManager($app));
type AuthServiceProvider struct {
	container.BaseProvider
}

func (p *AuthServiceProvider) Register(app *container.Container) error {
	if err := app.Bind(container.Singleton, func() *auth.Gate {
		return auth.NewGate()
	}); err != nil {
		return err
	}
	return app.Bind(container.Singleton, func(users auth.UserProvider) auth.Guard {
		return auth.NewTokenGuard(users)
	})
}

// ── MailServiceProvider ───────────────────────────────────────────────────────

// MailServiceProvider registers the mailer. It is deferred: nothing loads
// until the first mail.Mailer resolution, matching Laravel's
// MailServiceProvider::provides().
type MailServiceProvider struct{}

func (p *MailServiceProvider) Register(app *container.Container) error {
	return app.Bind(container.Singleton, func(cfg *config.Config) mail.Mailer {
		switch cfg.Mail.Driver {
		case "array":
			return mail.NewArrayMailer()
		default:
			return mail.NewLogMailer(slog.Default())
		}
	})
}

func (p *MailServiceProvider) Provides() []reflect.Type {
	return []reflect.Type{container.TypeFor[mail.Mailer]()}
}

// ── ConsoleServiceProvider ────────────────────────────────────────────────────

// ConsoleServiceProvider registers the console kernel writing to stdout.
//
// Laravel equivalent:
//
//	// App\Console\Kernel registered by the framework bootstrap
type ConsoleServiceProvider struct {
	container.BaseProvider
}

func (p *ConsoleServiceProvider) Register(app *container.Container) error {
	return app.Bind(container.Singleton, func(c *container.Container) *console.Kernel {
		return console.NewKernel(c, os.Stdout)
	})
}
