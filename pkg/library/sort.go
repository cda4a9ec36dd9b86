package library

import (
	"fmt"

	"github.com/grovetools/idler/errors"
)

// Category names a user tag set.
type Category string

const (
	Favorite            Category = "favorite"
	CardFarming         Category = "cardFarming"
	AchievementUnlocker Category = "achievementUnlocker"
)

// Categories lists every tag category.
var Categories = []Category{Favorite, CardFarming, AchievementUnlocker}

// ParseCategory validates a category name.
func ParseCategory(name string) (Category, error) {
	for _, c := range Categories {
		if string(c) == name {
			return c, nil
		}
	}
	return "", errors.InvalidInput("category", fmt.Sprintf("unknown tag category %q", name))
}

// Field is the item attribute a Comparator orders by.
type Field int

const (
	FieldName Field = iota
	FieldPlaytime
	FieldLastPlayed
)

// Direction is the order of a Comparator.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// SortStyle is either a Comparator, which reorders the inventory, or a
// SourceOverride, which replaces the inventory with a tag set.
type SortStyle interface {
	fmt.Stringer
	isSortStyle()
}

// Comparator orders the raw inventory by one field.
type Comparator struct {
	Field     Field
	Direction Direction
}

// SourceOverride substitutes a tag set's stored snapshots for the inventory.
type SourceOverride struct {
	Category Category
}

func (Comparator) isSortStyle()     {}
func (SourceOverride) isSortStyle() {}

// Named sort styles.
var (
	AlphaAsc     SortStyle = Comparator{Field: FieldName, Direction: Ascending}
	AlphaDesc    SortStyle = Comparator{Field: FieldName, Direction: Descending}
	PlaytimeDesc SortStyle = Comparator{Field: FieldPlaytime, Direction: Descending}
	PlaytimeAsc  SortStyle = Comparator{Field: FieldPlaytime, Direction: Ascending}
	Recent       SortStyle = Comparator{Field: FieldLastPlayed, Direction: Descending}

	FavoriteSource            SortStyle = SourceOverride{Category: Favorite}
	CardFarmingSource         SortStyle = SourceOverride{Category: CardFarming}
	AchievementUnlockerSource SortStyle = SourceOverride{Category: AchievementUnlocker}
)

var styleNames = []struct {
	name  string
	style SortStyle
}{
	{"alpha-asc", AlphaAsc},
	{"alpha-desc", AlphaDesc},
	{"playtime-desc", PlaytimeDesc},
	{"playtime-asc", PlaytimeAsc},
	{"recent", Recent},
	{"favorite", FavoriteSource},
	{"cardFarming", CardFarmingSource},
	{"achievementUnlocker", AchievementUnlockerSource},
}

// Short names written by older clients into persisted preferences.
var styleAliases = map[string]SortStyle{
	"a-z": AlphaAsc,
	"z-a": AlphaDesc,
	"1-0": PlaytimeDesc,
	"0-1": PlaytimeAsc,
}

// StyleNames returns the canonical sort style names in display order.
func StyleNames() []string {
	names := make([]string, len(styleNames))
	for i, s := range styleNames {
		names[i] = s.name
	}
	return names
}

// ParseSortStyle resolves a canonical name or legacy alias.
func ParseSortStyle(name string) (SortStyle, error) {
	for _, s := range styleNames {
		if s.name == name {
			return s.style, nil
		}
	}
	if style, ok := styleAliases[name]; ok {
		return style, nil
	}
	return nil, errors.InvalidInput("sort style", fmt.Sprintf("unknown sort style %q", name))
}

func (c Comparator) String() string {
	for _, s := range styleNames {
		if s.style == SortStyle(c) {
			return s.name
		}
	}
	dir := "asc"
	if c.Direction == Descending {
		dir = "desc"
	}
	return fmt.Sprintf("field%d-%s", c.Field, dir)
}

func (s SourceOverride) String() string {
	return string(s.Category)
}
