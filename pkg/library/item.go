// Package library derives the ordered, filtered and paged views of a game
// library from a raw inventory snapshot and the user's tag sets.
package library

import (
	"github.com/goccy/go-json"
)

// Item is one owned game. Items are immutable once fetched; identity is AppID.
type Item struct {
	AppID      int
	Name       string
	Minutes    int
	LastPlayed int64
}

// Hours returns whole hours played, rounded down.
func (i Item) Hours() int {
	if i.Minutes <= 0 {
		return 0
	}
	return i.Minutes / 60
}

// wireItem is the shape used by the remote endpoint and by persisted tag
// snapshots.
type wireItem struct {
	Game struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"game"`
	Minutes             int   `json:"minutes"`
	LastPlayedTimestamp int64 `json:"lastPlayedTimestamp"`
}

// MarshalJSON encodes the item in its wire shape.
func (i Item) MarshalJSON() ([]byte, error) {
	var w wireItem
	w.Game.ID = i.AppID
	w.Game.Name = i.Name
	w.Minutes = i.Minutes
	w.LastPlayedTimestamp = i.LastPlayed
	return json.Marshal(w)
}

// UnmarshalJSON decodes the wire shape.
func (i *Item) UnmarshalJSON(data []byte) error {
	var w wireItem
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*i = Item{
		AppID:      w.Game.ID,
		Name:       w.Game.Name,
		Minutes:    w.Minutes,
		LastPlayed: w.LastPlayedTimestamp,
	}
	return nil
}

// IDs returns the app ids of items in order.
func IDs(items []Item) []int {
	ids := make([]int, len(items))
	for i, item := range items {
		ids[i] = item.AppID
	}
	return ids
}
