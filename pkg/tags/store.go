// Package tags persists the user's tag sets: ordered collections of full game
// snapshots under the favorite, cardFarming and achievementUnlocker categories.
package tags

import (
	"context"
	"sync"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/grovetools/idler/logging"
	"github.com/grovetools/idler/pkg/library"
	"github.com/grovetools/idler/state"
)

// slotKeys maps each category to its durable state slot.
var slotKeys = map[library.Category]string{
	library.Favorite:            state.KeyFavorites,
	library.CardFarming:         state.KeyCardFarming,
	library.AchievementUnlocker: state.KeyAchievementUnlocker,
}

// SlotKey returns the state key a category is persisted under.
func SlotKey(c library.Category) string {
	return slotKeys[c]
}

// Store reads and toggles tag sets in a state.Store. Each slot holds a list
// of JSON-encoded item snapshots in insertion order.
type Store struct {
	state  *state.Store
	logger *logrus.Entry
	mu     sync.Mutex
}

// NewStore returns a tag store over st.
func NewStore(st *state.Store) *Store {
	return &Store{
		state:  st,
		logger: logging.NewLogger("tags"),
	}
}

// List returns the snapshots stored under a category. A malformed slot reads
// as empty and malformed entries are skipped; both are logged.
func (s *Store) List(c library.Category) ([]library.Item, error) {
	key, ok := slotKeys[c]
	if !ok {
		_, err := library.ParseCategory(string(c))
		return nil, err
	}

	var entries []string
	if _, err := s.state.Decode(key, &entries); err != nil {
		s.logger.WithError(err).WithField("slot", key).Warn("Tag slot is corrupt, treating as empty")
		return nil, nil
	}

	items := make([]library.Item, 0, len(entries))
	for i, entry := range entries {
		var item library.Item
		if err := json.Unmarshal([]byte(entry), &item); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"slot":  key,
				"index": i,
			}).Warn("Skipping malformed tag entry")
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// Contains reports whether appID is tagged with category c.
func (s *Store) Contains(c library.Category, appID int) (bool, error) {
	items, err := s.List(c)
	if err != nil {
		return false, err
	}
	for _, item := range items {
		if item.AppID == appID {
			return true, nil
		}
	}
	return false, nil
}

// Toggle adds item to the end of category c, or removes every snapshot with
// its id when already present. It reports whether the item is now tagged.
func (s *Store) Toggle(c library.Category, item library.Item) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.List(c)
	if err != nil {
		return false, err
	}

	kept := make([]library.Item, 0, len(items)+1)
	removed := false
	for _, existing := range items {
		if existing.AppID == item.AppID {
			removed = true
			continue
		}
		kept = append(kept, existing)
	}
	if !removed {
		kept = append(kept, item)
	}

	if err := s.write(c, kept); err != nil {
		return false, err
	}

	s.logger.WithFields(logrus.Fields{
		"category": c,
		"app_id":   item.AppID,
		"tagged":   !removed,
	}).Debug("Toggled tag")
	return !removed, nil
}

func (s *Store) write(c library.Category, items []library.Item) error {
	entries := make([]string, 0, len(items))
	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return err
		}
		entries = append(entries, string(data))
	}
	return s.state.Set(slotKeys[c], entries)
}

// Sets returns every category's snapshots.
func (s *Store) Sets() (library.TagSets, error) {
	sets := make(library.TagSets, len(library.Categories))
	for _, c := range library.Categories {
		items, err := s.List(c)
		if err != nil {
			return nil, err
		}
		sets[c] = items
	}
	return sets, nil
}

// CategoriesOf returns the categories appID is tagged with, in display order.
func CategoriesOf(sets library.TagSets, appID int) []string {
	var out []string
	for _, c := range library.Categories {
		if sets.Contains(c, appID) {
			out = append(out, string(c))
		}
	}
	return out
}

// Watch signals whenever the backing state file changes, so long-running
// consumers can reload Sets and re-derive.
func (s *Store) Watch(ctx context.Context) (<-chan struct{}, error) {
	return s.state.Watch(ctx, state.DefaultWatchDebounce, s.logger)
}
