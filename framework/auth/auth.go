package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
)

var (
	// ErrUnauthenticated is returned when no valid credential accompanies
	// the request.
	ErrUnauthenticated = errors.New("auth: unauthenticated")
)

// User is the authenticated principal — Illuminate\Contracts\Auth\Authenticatable.
type User struct {
	ID    string
	Name  string
	Email string
}

// UserProvider retrieves users by credential — mirrors
// Illuminate\Contracts\Auth\UserProvider narrowed to token lookup.
type UserProvider interface {
	RetrieveByToken(ctx context.Context, token string) (*User, error)
}

// Guard authenticates a request — Illuminate\Contracts\Auth\Guard.
type Guard interface {
	// Authenticate returns the user for the request, or ErrUnauthenticated.
	Authenticate(r *http.Request) (*User, error)
}

// ── token guard ──────────────────────────────────────────────────────────────

// TokenGuard authenticates via "Authorization: Bearer <token>".
type TokenGuard struct {
	users UserProvider
}

// NewTokenGuard creates a guard backed by the given provider.
func NewTokenGuard(users UserProvider) *TokenGuard {
	return &TokenGuard{users: users}
}

func (g *TokenGuard) Authenticate(r *http.Request) (*User, error) {
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || token == "" {
		return nil, ErrUnauthenticated
	}
	u, err := g.users.RetrieveByToken(r.Context(), token)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUnauthenticated
	}
	return u, nil
}

// ── static provider ──────────────────────────────────────────────────────────

// StaticProvider maps fixed tokens to users, for tests and API keys.
type StaticProvider struct {
	mu    sync.RWMutex
	users map[string]*User
}

// NewStaticProvider creates an empty provider.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{users: make(map[string]*User)}
}

// Add associates a token with a user.
func (p *StaticProvider) Add(token string, u *User) {
	p.mu.Lock()
	p.users[token] = u
	p.mu.Unlock()
}

func (p *StaticProvider) RetrieveByToken(_ context.Context, token string) (*User, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.users[token], nil
}

// ── request user ─────────────────────────────────────────────────────────────

type userCtxKey struct{}

// WithUser attaches the authenticated user to ctx.
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFrom returns the authenticated user from ctx, or nil.
func UserFrom(ctx context.Context) *User {
	u, _ := ctx.Value(userCtxKey{}).(*User)
	return u
}

// Middleware rejects requests the guard cannot authenticate and attaches the
// user to the request context for handlers downstream.
func Middleware(guard Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, err := guard.Authenticate(r)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"message":"Unauthenticated."}` + "\n"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}
