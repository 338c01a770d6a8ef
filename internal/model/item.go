package model

import (
	"fmt"
	"time"
)

// FoundItem is an object registered into inventory after being turned in.
type FoundItem struct {
	ID           int64      `json:"id"`
	Category     Category   `json:"category"`
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	Color        string     `json:"color,omitempty"`
	DateFound    time.Time  `json:"date_found"`
	Location     string     `json:"location"`
	Status       ItemStatus `json:"status"`
	RegisteredBy *int64     `json:"registered_by,omitempty"`
	HandInID     *int64     `json:"hand_in_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ItemStatus is the lifecycle state of a found item.
type ItemStatus string

// Found item statuses.
const (
	ItemStatusAvailable ItemStatus = "AVAILABLE"
	ItemStatusClaimed   ItemStatus = "CLAIMED"
	ItemStatusDonated   ItemStatus = "DONATED"
)

// Valid reports whether s is a known item status.
func (s ItemStatus) Valid() bool {
	switch s {
	case ItemStatusAvailable, ItemStatusClaimed, ItemStatusDonated:
		return true
	}
	return false
}

// ParseItemStatus converts s to an ItemStatus.
func ParseItemStatus(s string) (ItemStatus, error) {
	st := ItemStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown item status %q", s)
	}
	return st, nil
}

// Category is the fixed classification shared by found items, tickets and hand-ins.
type Category string

// Categories.
const (
	CategoryElectronics Category = "ELECTRONICS"
	CategoryClothing    Category = "CLOTHING"
	CategoryIDs         Category = "IDS"
	CategoryKeys        Category = "KEYS"
	CategoryBooks       Category = "BOOKS"
	CategoryBags        Category = "BAGS"
	CategoryTumblers    Category = "TUMBLERS"
	CategoryOthers      Category = "OTHERS"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryElectronics,
	CategoryClothing,
	CategoryIDs,
	CategoryKeys,
	CategoryBooks,
	CategoryBags,
	CategoryTumblers,
	CategoryOthers,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory converts s to a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}
