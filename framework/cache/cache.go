package cache

import (
	"sync"
	"time"
)

// Store is the cache contract — mirrors Illuminate\Contracts\Cache\Store.
type Store interface {
	// Get returns the cached value, or ok=false when missing or expired.
	Get(key string) (any, bool)
	// Put stores a value. ttl <= 0 means no expiry.
	Put(key string, value any, ttl time.Duration)
	// Forget removes a key. Returns true when the key existed.
	Forget(key string) bool
	// Flush removes every key.
	Flush()
}

// ── memory store ─────────────────────────────────────────────────────────────

type entry struct {
	value     any
	expiresAt time.Time // zero means never
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryStore is an in-process Store, safe for concurrent use. Expired
// entries are dropped lazily on read.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(key string) (any, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if e.expired(s.now()) {
		s.mu.Lock()
		// Re-check: another goroutine may have written a fresh value.
		if cur, ok := s.entries[key]; ok && cur.expired(s.now()) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

func (s *MemoryStore) Put(key string, value any, ttl time.Duration) {
	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
}

func (s *MemoryStore) Forget(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[key]
	delete(s.entries, key)
	return ok
}

func (s *MemoryStore) Flush() {
	s.mu.Lock()
	s.entries = make(map[string]entry)
	s.mu.Unlock()
}

// ── repository ───────────────────────────────────────────────────────────────

// Repository wraps a Store with the higher-level helpers Laravel exposes on
// the Cache facade (Remember, Pull, defaults).
type Repository struct {
	store      Store
	prefix     string
	defaultTTL time.Duration

	rememberMu sync.Mutex
}

// NewRepository wraps store. prefix is prepended to every key; defaultTTL
// applies when Remember is used (0 means cache forever).
func NewRepository(store Store, prefix string, defaultTTL time.Duration) *Repository {
	return &Repository{store: store, prefix: prefix, defaultTTL: defaultTTL}
}

func (r *Repository) key(k string) string { return r.prefix + k }

// Get returns the cached value for key.
func (r *Repository) Get(key string) (any, bool) {
	return r.store.Get(r.key(key))
}

// Put stores value under key with the repository's default TTL.
func (r *Repository) Put(key string, value any) {
	r.store.Put(r.key(key), value, r.defaultTTL)
}

// PutFor stores value with an explicit TTL.
func (r *Repository) PutFor(key string, value any, ttl time.Duration) {
	r.store.Put(r.key(key), value, ttl)
}

// Has reports whether key is cached and unexpired.
func (r *Repository) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Forget removes key.
func (r *Repository) Forget(key string) bool {
	return r.store.Forget(r.key(key))
}

// Flush clears the underlying store.
func (r *Repository) Flush() { r.store.Flush() }

// Pull returns and removes the value for key — Cache::pull.
func (r *Repository) Pull(key string) (any, bool) {
	v, ok := r.Get(key)
	if ok {
		r.Forget(key)
	}
	return v, ok
}

// Remember returns the cached value for key, computing and storing it with fn
// on a miss — Cache::remember. Concurrent callers for a missing key compute
// once.
func (r *Repository) Remember(key string, fn func() (any, error)) (any, error) {
	if v, ok := r.Get(key); ok {
		return v, nil
	}

	r.rememberMu.Lock()
	defer r.rememberMu.Unlock()
	if v, ok := r.Get(key); ok {
		return v, nil
	}

	v, err := fn()
	if err != nil {
		return nil, err
	}
	r.Put(key, v)
	return v, nil
}
