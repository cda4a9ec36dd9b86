// Package inventory caches the owned-games list for a session and keeps the
// small durable display preferences.
package inventory

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/idler/logging"
	"github.com/grovetools/idler/pkg/library"
	"github.com/grovetools/idler/state"
)

// Fetcher retrieves the owned-games list from the remote endpoint.
type Fetcher interface {
	UserGamesList(ctx context.Context, steamID string) ([]library.Item, bool)
}

// Source says where an inventory came from.
type Source string

const (
	SourceSession Source = "session"
	SourceRemote  Source = "remote"
	SourceNone    Source = "none"
)

// Preferences is the durable display-preference slot.
type Preferences struct {
	SortStyle string `yaml:"sortStyle,omitempty"`
	ShowStats bool   `yaml:"showStats"`
}

// Cache is the two-tier inventory cache.
type Cache struct {
	fetcher Fetcher
	session SessionStore
	state   *state.Store
	logger  *logrus.Entry
}

// NewCache wires a cache. A nil session uses an in-process store.
func NewCache(fetcher Fetcher, session SessionStore, st *state.Store) *Cache {
	if session == nil {
		session = NewMemorySession()
	}
	return &Cache{
		fetcher: fetcher,
		session: session,
		state:   st,
		logger:  logging.NewLogger("inventory"),
	}
}

// Session returns the session tier.
func (c *Cache) Session() SessionStore {
	return c.session
}

// Inventory returns the session snapshot when one exists, otherwise fetches
// and stores it. A failed fetch returns SourceNone and leaves the session
// empty so the next call retries.
func (c *Cache) Inventory(ctx context.Context, steamID string) ([]library.Item, Source) {
	if items, ok := c.session.Load(); ok {
		c.logger.WithField("count", len(items)).Debug("Using session inventory")
		return items, SourceSession
	}

	items, ok := c.fetcher.UserGamesList(ctx, steamID)
	if !ok {
		c.logger.WithField("steam_id", steamID).Info("Inventory unavailable; profile may be private")
		return nil, SourceNone
	}

	if err := c.session.Save(items); err != nil {
		c.logger.WithError(err).Warn("Failed to store session inventory")
	}
	c.logger.WithField("count", len(items)).Debug("Fetched inventory")
	return items, SourceRemote
}

// Refresh drops the session snapshot and fetches again.
func (c *Cache) Refresh(ctx context.Context, steamID string) ([]library.Item, Source) {
	if err := c.session.Clear(); err != nil {
		c.logger.WithError(err).Warn("Failed to clear session inventory")
	}
	return c.Inventory(ctx, steamID)
}

// Preferences reads the durable preferences. A malformed slot reads as the
// zero value.
func (c *Cache) Preferences() Preferences {
	var p Preferences
	if _, err := c.state.Decode(state.KeyPreferences, &p); err != nil {
		c.logger.WithError(err).Warn("Preferences are corrupt, using defaults")
		return Preferences{}
	}
	return p
}

// SortStyle resolves the stored default sort style, falling back to fallback
// when none is stored or the stored name is unknown.
func (c *Cache) SortStyle(fallback library.SortStyle) library.SortStyle {
	name := c.Preferences().SortStyle
	if name == "" {
		return fallback
	}
	style, err := library.ParseSortStyle(name)
	if err != nil {
		c.logger.WithField("sort_style", name).Warn("Ignoring unknown stored sort style")
		return fallback
	}
	return style
}

// SetSortStyle stores style as the default.
func (c *Cache) SetSortStyle(style library.SortStyle) error {
	p := c.Preferences()
	p.SortStyle = style.String()
	return c.state.Set(state.KeyPreferences, p)
}

// ToggleShowStats flips the stats-panel preference and returns the new value.
func (c *Cache) ToggleShowStats() (bool, error) {
	p := c.Preferences()
	p.ShowStats = !p.ShowStats
	if err := c.state.Set(state.KeyPreferences, p); err != nil {
		return false, err
	}
	return p.ShowStats, nil
}
