package http

import (
	"log/slog"
	"net/http"

	"github.com/arcframework/arc/framework/container"
)

// ScopeMiddleware installs a fresh container scope on every request context
// and closes it (disposing scoped instances) after the handler returns. It is
// the unit-of-work boundary: scoped services resolved while handling the
// request live exactly as long as the request.
//
//	router.Middleware(gohttp.ScopeMiddleware(app.Container))
func ScopeMiddleware(c *container.Container) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, scope := container.WithScope(r.Context())
			defer func() {
				if err := scope.Close(ctx); err != nil {
					slog.Warn("request scope disposal failed", "path", r.URL.Path, "error", err)
				}
			}()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
