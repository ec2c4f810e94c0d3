package cache_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcframework/arc/framework/cache"
)

// ── MemoryStore ──────────────────────────────────────────────────────────────

func TestMemoryStore_PutGet(t *testing.T) {
	s := cache.NewMemoryStore()
	s.Put("name", "alice", 0)

	v, ok := s.Get("name")
	require.True(t, ok)
	assert.Equal(t, "alice", v)
}

func TestMemoryStore_MissingKey(t *testing.T) {
	s := cache.NewMemoryStore()
	_, ok := s.Get("missing")
	assert.False(t, ok)
}

func TestMemoryStore_Expiry(t *testing.T) {
	s := cache.NewMemoryStore()
	s.Put("fleeting", 1, time.Nanosecond)

	time.Sleep(time.Millisecond)
	_, ok := s.Get("fleeting")
	assert.False(t, ok, "expired entry must not be returned")
}

func TestMemoryStore_ZeroTTLNeverExpires(t *testing.T) {
	s := cache.NewMemoryStore()
	s.Put("forever", 1, 0)

	time.Sleep(time.Millisecond)
	_, ok := s.Get("forever")
	assert.True(t, ok)
}

func TestMemoryStore_ForgetAndFlush(t *testing.T) {
	s := cache.NewMemoryStore()
	s.Put("a", 1, 0)
	s.Put("b", 2, 0)

	assert.True(t, s.Forget("a"))
	assert.False(t, s.Forget("a"), "second Forget must report missing")

	s.Flush()
	_, ok := s.Get("b")
	assert.False(t, ok)
}

// ── Repository ───────────────────────────────────────────────────────────────

func TestRepository_PrefixIsolatesKeys(t *testing.T) {
	store := cache.NewMemoryStore()
	users := cache.NewRepository(store, "users:", 0)
	posts := cache.NewRepository(store, "posts:", 0)

	users.Put("1", "alice")
	posts.Put("1", "hello world")

	v, ok := users.Get("1")
	require.True(t, ok)
	assert.Equal(t, "alice", v)

	v, ok = posts.Get("1")
	require.True(t, ok)
	assert.Equal(t, "hello world", v)
}

func TestRepository_Pull(t *testing.T) {
	r := cache.NewRepository(cache.NewMemoryStore(), "", 0)
	r.Put("token", "abc")

	v, ok := r.Pull("token")
	require.True(t, ok)
	assert.Equal(t, "abc", v)
	assert.False(t, r.Has("token"), "Pull must remove the key")
}

func TestRepository_RememberComputesOnce(t *testing.T) {
	r := cache.NewRepository(cache.NewMemoryStore(), "", 0)

	var calls atomic.Int64
	compute := func() (any, error) {
		calls.Add(1)
		return "expensive", nil
	}

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := r.Remember("result", compute)
			assert.NoError(t, err)
			assert.Equal(t, "expensive", v)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, calls.Load(), "Remember must compute a missing key once")
}

func TestRepository_RememberErrorNotCached(t *testing.T) {
	r := cache.NewRepository(cache.NewMemoryStore(), "", 0)

	boom := errors.New("db down")
	_, err := r.Remember("k", func() (any, error) { return nil, boom })
	require.ErrorIs(t, err, boom)

	v, err := r.Remember("k", func() (any, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", v, "failed computation must not poison the key")
}
