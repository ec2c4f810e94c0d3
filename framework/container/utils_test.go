package container_test

import (
	"context"
	"sync/atomic"
)

// ── shared fixtures ───────────────────────────────────────────────────────────

// Engine is the long-lived fixture, registered as a singleton in most tests.
type Engine struct {
	ID int64
}

// Session is the per-request fixture. It records disposal so tests can assert
// the cleanup contract.
type Session struct {
	Engine     *Engine
	disposed   atomic.Bool
	disposeErr error
}

func (s *Session) Dispose(context.Context) error {
	s.disposed.Store(true)
	return s.disposeErr
}

// Repository is the transient fixture depending on the scoped Session.
type Repository struct {
	Session *Session
}

func newEngineCounter() (*atomic.Int64, func() *Engine) {
	var calls atomic.Int64
	return &calls, func() *Engine {
		return &Engine{ID: calls.Add(1)}
	}
}

func newSessionConstructor(calls *atomic.Int64) func(*Engine) *Session {
	return func(engine *Engine) *Session {
		if calls != nil {
			calls.Add(1)
		}
		return &Session{Engine: engine}
	}
}

func newRepository(s *Session) *Repository {
	return &Repository{Session: s}
}

// ── auto-registration fixtures ────────────────────────────────────────────────

// Widget is a plain concrete type with no dependencies; resolving it without
// a binding exercises implicit transient auto-registration.
type Widget struct {
	Label string
}

// Greeter has no binding in auto-registration tests, so resolving it must
// fail rather than fabricate an implementation.
type Greeter interface {
	Greet() string
}

type staticGreeter struct{ msg string }

func (g staticGreeter) Greet() string { return g.msg }

// ── cycle fixtures ────────────────────────────────────────────────────────────

type CycleA struct{ B *CycleB }
type CycleB struct{ A *CycleA }
type CycleC struct{ A *CycleA }
