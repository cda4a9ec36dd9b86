package library

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// TagSets holds the stored snapshots of each tag category, in insertion order.
type TagSets map[Category][]Item

// Get returns the snapshots for a category (nil when empty).
func (t TagSets) Get(c Category) []Item {
	if t == nil {
		return nil
	}
	return t[c]
}

// Contains reports whether a category holds an item with the given id.
func (t TagSets) Contains(c Category, appID int) bool {
	for _, item := range t.Get(c) {
		if item.AppID == appID {
			return true
		}
	}
	return false
}

// Derive computes the candidate list for a view. It is a pure function of its
// inputs: raw and the tag slices are never modified.
//
// A SourceOverride style ignores raw entirely and uses the tag set's
// snapshots in stored order. A Comparator style stable-sorts a copy of raw.
// A non-blank query then keeps items whose case-folded name contains the
// case-folded, trimmed query.
func Derive(raw []Item, style SortStyle, tags TagSets, query string) []Item {
	var candidates []Item

	switch s := style.(type) {
	case SourceOverride:
		src := tags.Get(s.Category)
		candidates = make([]Item, len(src))
		copy(candidates, src)
	case Comparator:
		candidates = make([]Item, len(raw))
		copy(candidates, raw)
		sortItems(candidates, s)
	default:
		candidates = make([]Item, len(raw))
		copy(candidates, raw)
	}

	return Filter(candidates, query)
}

func sortItems(items []Item, c Comparator) {
	var less func(a, b Item) bool

	switch c.Field {
	case FieldName:
		col := collate.New(language.Und, collate.IgnoreCase)
		less = func(a, b Item) bool {
			return col.CompareString(a.Name, b.Name) < 0
		}
	case FieldPlaytime:
		less = func(a, b Item) bool { return a.Minutes < b.Minutes }
	case FieldLastPlayed:
		less = func(a, b Item) bool { return a.LastPlayed < b.LastPlayed }
	default:
		return
	}

	if c.Direction == Descending {
		asc := less
		less = func(a, b Item) bool { return asc(b, a) }
	}

	sort.SliceStable(items, func(i, j int) bool {
		return less(items[i], items[j])
	})
}

// Filter returns the items whose case-folded name contains the case-folded,
// trimmed query. A blank query returns items unchanged. Filter is idempotent.
func Filter(items []Item, query string) []Item {
	q := strings.TrimSpace(query)
	if q == "" {
		return items
	}

	fold := cases.Fold()
	needle := fold.String(q)

	out := make([]Item, 0, len(items))
	for _, item := range items {
		if strings.Contains(fold.String(item.Name), needle) {
			out = append(out, item)
		}
	}
	return out
}
