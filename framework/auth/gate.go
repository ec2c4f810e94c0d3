package auth

import "sync"

// Ability decides whether a user may perform an action on a resource.
// resource may be nil for abilities that do not target one.
type Ability func(u *User, resource any) bool

// Gate holds named abilities — mirrors Illuminate\Auth\Access\Gate.
//
//	gate.Define("posts.update", func(u *auth.User, res any) bool {
//	    post := res.(*Post)
//	    return post.AuthorID == u.ID
//	})
//
//	if gate.Denies("posts.update", user, post) { ... }
type Gate struct {
	mu        sync.RWMutex
	abilities map[string]Ability
}

// NewGate creates an empty gate.
func NewGate() *Gate {
	return &Gate{abilities: make(map[string]Ability)}
}

// Define registers (or replaces) an ability.
func (g *Gate) Define(name string, fn Ability) {
	g.mu.Lock()
	g.abilities[name] = fn
	g.mu.Unlock()
}

// Allows reports whether u may perform the named ability. Unknown abilities
// and nil users are denied.
func (g *Gate) Allows(name string, u *User, resource any) bool {
	if u == nil {
		return false
	}
	g.mu.RLock()
	fn, ok := g.abilities[name]
	g.mu.RUnlock()
	if !ok {
		return false
	}
	return fn(u, resource)
}

// Denies is the negation of Allows.
func (g *Gate) Denies(name string, u *User, resource any) bool {
	return !g.Allows(name, u, resource)
}
