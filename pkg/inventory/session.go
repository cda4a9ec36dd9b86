package inventory

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"

	"github.com/grovetools/idler/errors"
	"github.com/grovetools/idler/pkg/library"
	"github.com/grovetools/idler/pkg/paths"
)

// SessionStore holds the one session-scoped inventory snapshot.
type SessionStore interface {
	Load() ([]library.Item, bool)
	Save(items []library.Item) error
	Clear() error
}

// MemorySession keeps the snapshot for the life of the process.
type MemorySession struct {
	mu    sync.Mutex
	items []library.Item
	set   bool
}

// NewMemorySession returns an empty in-process session store.
func NewMemorySession() *MemorySession {
	return &MemorySession{}
}

func (m *MemorySession) Load() ([]library.Item, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items, m.set
}

func (m *MemorySession) Save(items []library.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items, m.set = items, true
	return nil
}

func (m *MemorySession) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items, m.set = nil, false
	return nil
}

// FileSession persists the snapshot under the cache directory so that several
// short-lived processes sharing a session id see one session.
type FileSession struct {
	path string
}

// NewFileSession returns a session store for id.
func NewFileSession(id string) *FileSession {
	return &FileSession{path: filepath.Join(paths.SessionDir(), id+".json")}
}

// DefaultSessionID is IDLER_SESSION when set, otherwise the parent process
// id, which ties the session to the invoking shell.
func DefaultSessionID() string {
	if id := os.Getenv("IDLER_SESSION"); id != "" {
		return id
	}
	return fmt.Sprintf("ppid-%d", os.Getppid())
}

// Path returns the snapshot file.
func (f *FileSession) Path() string {
	return f.path
}

// Load returns the snapshot. A missing or unreadable snapshot is a cold start.
func (f *FileSession) Load() ([]library.Item, bool) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, false
	}
	var items []library.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false
	}
	return items, true
}

func (f *FileSession) Save(items []library.Item) error {
	data, err := json.Marshal(items)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "marshal session snapshot")
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return errors.Wrap(err, errors.ErrCodeStateIO, "create session directory")
	}
	if err := os.WriteFile(f.path, data, 0644); err != nil {
		return errors.Wrap(err, errors.ErrCodeStateIO, "write session snapshot")
	}
	return nil
}

func (f *FileSession) Clear() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, errors.ErrCodeStateIO, "remove session snapshot")
	}
	return nil
}
