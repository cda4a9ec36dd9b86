// Package state persists idler's small durable key-value slots in a single
// YAML file under the XDG state directory.
package state

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/grovetools/idler/errors"
	"github.com/grovetools/idler/pkg/paths"
	"gopkg.in/yaml.v3"
)

// Durable slot keys. Logout clears all of them.
const (
	KeyPreferences         = "preferences"
	KeyFavorites           = "favorites"
	KeyCardFarming         = "cardFarming"
	KeyAchievementUnlocker = "achievementUnlocker"
	KeySteamCookies        = "steamCookies"
)

// AllKeys lists every durable slot.
var AllKeys = []string{
	KeyPreferences,
	KeyFavorites,
	KeyCardFarming,
	KeyAchievementUnlocker,
	KeySteamCookies,
}

// State represents the durable state as a generic map of key-value pairs.
type State map[string]interface{}

// Store reads and writes one state file. Every mutation is a full
// read-modify-write under a process-wide lock for that Store.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore returns a Store backed by path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Default returns a Store backed by <state dir>/state.yml.
func Default() *Store {
	return NewStore(paths.StateFilePath())
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load loads the state from the state file.
// Returns an empty state if the file doesn't exist.
func (s *Store) Load() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(State), nil
		}
		return nil, errors.Wrap(err, errors.ErrCodeStateIO, "read state file").WithDetail("path", s.path)
	}

	var st State
	if err := yaml.Unmarshal(data, &st); err != nil {
		return nil, errors.StateCorrupt("(file)", err).WithDetail("path", s.path)
	}

	if st == nil {
		st = make(State)
	}
	return st, nil
}

func (s *Store) save(st State) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return errors.Wrap(err, errors.ErrCodeStateIO, "create state directory")
	}

	data, err := yaml.Marshal(st)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "marshal state")
	}

	// Write-then-rename so readers never observe a half-written file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrap(err, errors.ErrCodeStateIO, "write state file")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(err, errors.ErrCodeStateIO, "replace state file")
	}
	return nil
}

// Get retrieves a value from the state by key.
// Returns the value and true if found, nil and false otherwise.
func (s *Store) Get(key string) (interface{}, bool, error) {
	st, err := s.Load()
	if err != nil {
		return nil, false, err
	}

	val, ok := st[key]
	return val, ok, nil
}

// GetString returns a string value, or "" if the key is missing or not a string.
func (s *Store) GetString(key string) (string, error) {
	val, ok, err := s.Get(key)
	if err != nil || !ok {
		return "", err
	}

	str, ok := val.(string)
	if !ok {
		return "", nil
	}
	return str, nil
}

// Decode re-encodes the value stored under key into target. Missing keys
// leave target untouched and report false.
func (s *Store) Decode(key string, target interface{}) (bool, error) {
	val, ok, err := s.Get(key)
	if err != nil || !ok {
		return false, err
	}

	data, err := yaml.Marshal(val)
	if err != nil {
		return true, errors.StateCorrupt(key, err)
	}
	if err := yaml.Unmarshal(data, target); err != nil {
		return true, errors.StateCorrupt(key, err)
	}
	return true, nil
}

// Set sets a value in the state.
func (s *Store) Set(key string, value interface{}) error {
	return s.Update(func(st State) {
		st[key] = value
	})
}

// Update applies fn to the loaded state and saves the result atomically with
// respect to other callers of this Store.
func (s *Store) Update(fn func(State)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load()
	if err != nil {
		return err
	}
	fn(st)
	return s.save(st)
}

// Delete removes a key from the state.
func (s *Store) Delete(key string) error {
	return s.Clear(key)
}

// Clear removes every given key in a single write. A corrupt state file is
// replaced rather than reported, since clearing is how a user recovers.
func (s *Store) Clear(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load()
	if err != nil {
		if !errors.Is(err, errors.ErrCodeStateCorrupt) {
			return err
		}
		st = make(State)
	}
	for _, key := range keys {
		delete(st, key)
	}
	return s.save(st)
}

// String implements fmt.Stringer for debugging output.
func (s *Store) String() string {
	return fmt.Sprintf("state.Store(%s)", s.path)
}
