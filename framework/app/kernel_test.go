package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcframework/arc/framework/app"
	"github.com/arcframework/arc/framework/auth"
	"github.com/arcframework/arc/framework/cache"
	"github.com/arcframework/arc/framework/console"
	"github.com/arcframework/arc/framework/container"
	gohttp "github.com/arcframework/arc/framework/http"
	"github.com/arcframework/arc/framework/mail"
	"github.com/arcframework/arc/framework/storage"
)

func newApp(t *testing.T) *app.Application {
	t.Helper()
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("MAIL_DRIVER", "array")
	a, err := app.New("testdata/empty.env")
	require.NoError(t, err)
	return a
}

func TestNew_CoreServicesResolve(t *testing.T) {
	a := newApp(t)
	require.NoError(t, a.Boot(context.Background()))

	ctx := context.Background()
	assert.NotNil(t, a.Config())
	assert.NotNil(t, a.Router())
	assert.NotNil(t, a.Console())

	repo, err := container.Resolve[*cache.Repository](ctx, a.Container)
	require.NoError(t, err)
	assert.NotNil(t, repo)

	fs, err := container.Resolve[storage.Filesystem](ctx, a.Container)
	require.NoError(t, err)
	assert.NotNil(t, fs)

	gate, err := container.Resolve[*auth.Gate](ctx, a.Container)
	require.NoError(t, err)
	assert.NotNil(t, gate)

	kernel, err := container.Resolve[*console.Kernel](ctx, a.Container)
	require.NoError(t, err)
	assert.NotNil(t, kernel)
}

func TestNew_MailerIsDeferredUntilResolved(t *testing.T) {
	a := newApp(t)
	require.NoError(t, a.Boot(context.Background()))

	// Deferred: bound but not yet built.
	mailerType := container.TypeFor[mail.Mailer]()
	assert.True(t, a.Bound(mailerType))
	assert.False(t, a.Resolved(mailerType))

	m, err := container.Resolve[mail.Mailer](context.Background(), a.Container)
	require.NoError(t, err)
	_, ok := m.(*mail.ArrayMailer)
	assert.True(t, ok, "MAIL_DRIVER=array must yield the recording mailer")
}

func TestApplication_GuardResolvesAgainstAppUserProvider(t *testing.T) {
	a := newApp(t)
	require.NoError(t, a.Boot(context.Background()))

	users := auth.NewStaticProvider()
	users.Add("tok", &auth.User{ID: "1", Name: "Alice"})
	container.InstanceOf[auth.UserProvider](a.Container, users)

	guard, err := container.Resolve[auth.Guard](context.Background(), a.Container)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer tok")
	u, err := guard.Authenticate(r)
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name)
}

func TestApplication_RoutedInjectedHandler(t *testing.T) {
	a := newApp(t)
	require.NoError(t, a.Boot(context.Background()))

	router := a.Router()
	router.Get("/cache/{key}", gohttp.Handle(a.Container,
		func(req *gohttp.Request, res *gohttp.Response, repo *cache.Repository) {
			repo.Put(req.RouteParam("key"), "cached")
			v, _ := repo.Get(req.RouteParam("key"))
			res.Success(map[string]any{"value": v})
		},
	))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/cache/answer", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "cached")
}

func TestApplication_EnvironmentHelpers(t *testing.T) {
	t.Setenv("APP_ENV", "testing")
	a := newApp(t)
	require.NoError(t, a.Boot(context.Background()))

	assert.True(t, a.IsTesting())
	assert.False(t, a.IsProduction())
	assert.Equal(t, "testing", a.Environment())
}
