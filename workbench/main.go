// Command workbench is a small example application wired through the
// framework: providers, container-injected handlers, per-request scopes,
// validation and the token guard.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/arcframework/arc/framework/app"
	"github.com/arcframework/arc/framework/auth"
	"github.com/arcframework/arc/framework/cache"
	"github.com/arcframework/arc/framework/container"
	gohttp "github.com/arcframework/arc/framework/http"
	"github.com/arcframework/arc/framework/http/validation"
	"github.com/arcframework/arc/framework/routing"
)

// userStore is the demo's stand-in for a database-backed repository.
type userStore struct {
	users []map[string]any
}

func newUserStore() *userStore {
	return &userStore{users: []map[string]any{
		{"id": 1, "name": "Alice"},
		{"id": 2, "name": "Bob"},
	}}
}

func main() {
	application, err := app.New() // loads .env automatically
	if err != nil {
		slog.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}

	// App bindings on top of the framework providers.
	if err := application.Bind(container.Singleton, newUserStore); err != nil {
		slog.Error("bind failed", "error", err)
		os.Exit(1)
	}
	tokens := auth.NewStaticProvider()
	tokens.Add("local-dev-token", &auth.User{ID: "1", Name: "Alice"})
	container.InstanceOf[auth.UserProvider](application.Container, tokens)

	if err := application.Boot(context.Background()); err != nil {
		slog.Error("boot failed", "error", err)
		os.Exit(1)
	}

	c := application.Container
	r := application.Router()

	// ── Basic routes ─────────────────────────────────────────────────────────

	r.Get("/", gohttp.Handle(c, func(res *gohttp.Response) {
		res.Success(map[string]any{"message": "Welcome to Arc!"})
	}))

	// ── Route prefix (like Route::prefix('api')) ──────────────────────────────

	r.Prefix("/api/v1", func(api *routing.Router) {

		// GET /api/v1/users — cached through the repository
		api.Get("/users", gohttp.Handle(c,
			func(res *gohttp.Response, store *userStore, repo *cache.Repository) error {
				users, err := repo.Remember("users.all", func() (any, error) {
					return store.users, nil
				})
				if err != nil {
					return err
				}
				res.Success(users)
				return nil
			},
		))

		// POST /api/v1/users
		api.Post("/users", gohttp.Handle(c, func(req *gohttp.Request, res *gohttp.Response) {
			var body struct {
				Name  string `json:"name"`
				Email string `json:"email"`
				Age   string `json:"age"`
			}
			if err := req.Bind(&body); err != nil {
				res.Error(http.StatusBadRequest, err.Error())
				return
			}

			v := validation.Make(map[string]string{
				"name":  body.Name,
				"email": body.Email,
				"age":   body.Age,
			}, validation.Rules{
				"name":  "required|min:2|max:100",
				"email": "required|email",
				"age":   "required|numeric|gte:18",
			})
			if v.Fails() {
				res.ValidationError(v.Errors())
				return
			}

			res.Created(map[string]any{"name": body.Name, "email": body.Email})
		}))

		// GET /api/v1/users/{id}
		api.Get("/users/{id}", gohttp.Handle(c, func(req *gohttp.Request, res *gohttp.Response) {
			res.Success(map[string]any{"id": req.RouteParam("id")})
		}))
	})

	// ── Auth group with the token guard ───────────────────────────────────────

	guard := container.MustResolve[auth.Guard](context.Background(), c)
	r.Group(func(protected *routing.Router) {
		protected.Middleware(auth.Middleware(guard))

		protected.Get("/profile", gohttp.Handle(c, func(req *gohttp.Request, res *gohttp.Response) {
			u := auth.UserFrom(req.Context())
			res.Success(map[string]any{"user": u.Name})
		}))
	})

	if err := application.Run(context.Background()); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
