package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ErrNotFound is returned when the requested path does not exist.
var ErrNotFound = errors.New("storage: file not found")

// Filesystem is the storage contract — mirrors
// Illuminate\Contracts\Filesystem\Filesystem, trimmed to byte operations.
type Filesystem interface {
	Put(path string, contents []byte) error
	Get(path string) ([]byte, error)
	Exists(path string) bool
	Delete(path string) error
	// Files lists the files under dir, relative paths, sorted.
	Files(dir string) ([]string, error)
}

// ── memory driver ────────────────────────────────────────────────────────────

// MemoryFS is an in-memory Filesystem for tests and ephemeral data.
type MemoryFS struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemoryFS creates an empty in-memory filesystem.
func NewMemoryFS() *MemoryFS {
	return &MemoryFS{files: make(map[string][]byte)}
}

func (m *MemoryFS) Put(path string, contents []byte) error {
	buf := make([]byte, len(contents))
	copy(buf, contents)
	m.mu.Lock()
	m.files[clean(path)] = buf
	m.mu.Unlock()
	return nil
}

func (m *MemoryFS) Get(path string) ([]byte, error) {
	m.mu.RLock()
	buf, ok := m.files[clean(path)]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	out := make([]byte, len(buf))
	copy(out, buf)
	return out, nil
}

func (m *MemoryFS) Exists(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.files[clean(path)]
	return ok
}

func (m *MemoryFS) Delete(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := clean(path)
	if _, ok := m.files[key]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	delete(m.files, key)
	return nil
}

func (m *MemoryFS) Files(dir string) ([]string, error) {
	prefix := clean(dir)
	if prefix != "" {
		prefix += "/"
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []string
	for path := range m.files {
		if strings.HasPrefix(path, prefix) {
			out = append(out, strings.TrimPrefix(path, prefix))
		}
	}
	sort.Strings(out)
	return out, nil
}

func clean(path string) string {
	return strings.Trim(filepath.ToSlash(filepath.Clean("/"+path)), "/")
}

// ── local driver ─────────────────────────────────────────────────────────────

// LocalFS stores files under a root directory on the OS filesystem. Paths are
// cleaned and confined to the root.
type LocalFS struct {
	root string
}

// NewLocalFS creates a LocalFS rooted at root, creating it if needed.
func NewLocalFS(root string) (*LocalFS, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root: %w", err)
	}
	return &LocalFS{root: root}, nil
}

func (l *LocalFS) abs(path string) string {
	return filepath.Join(l.root, filepath.FromSlash(clean(path)))
}

func (l *LocalFS) Put(path string, contents []byte) error {
	full := l.abs(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, contents, 0o644)
}

func (l *LocalFS) Get(path string) ([]byte, error) {
	buf, err := os.ReadFile(l.abs(path))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return buf, err
}

func (l *LocalFS) Exists(path string) bool {
	_, err := os.Stat(l.abs(path))
	return err == nil
}

func (l *LocalFS) Delete(path string) error {
	err := os.Remove(l.abs(path))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return err
}

func (l *LocalFS) Files(dir string) ([]string, error) {
	base := l.abs(dir)
	var out []string
	err := filepath.WalkDir(base, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(base, p)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	sort.Strings(out)
	return out, err
}
