package model

import (
	"fmt"
	"time"
)

// ItemKind tells whether a report is about a lost or a found object.
type ItemKind string

// Item kinds.
const (
	KindLost  ItemKind = "lost"
	KindFound ItemKind = "found"
)

// Valid reports whether k is a known kind.
func (k ItemKind) Valid() bool {
	return k == KindLost || k == KindFound
}

// Opposite returns the kind a report of kind k is matched against.
func (k ItemKind) Opposite() ItemKind {
	if k == KindLost {
		return KindFound
	}
	return KindLost
}

// Category is the fixed classification of a reported object.
type Category string

// Categories.
const (
	CategoryElectronics Category = "electronics"
	CategoryDocuments   Category = "documents"
	CategoryAccessories Category = "accessories"
	CategoryKeys        Category = "keys"
	CategoryClothing    Category = "clothing"
	CategoryOther       Category = "other"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryElectronics,
	CategoryDocuments,
	CategoryAccessories,
	CategoryKeys,
	CategoryClothing,
	CategoryOther,
}

// Valid reports whether c is one of Categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ItemStatus is the lifecycle state of an item report.
//
//	reported -> matched -> under_review -> returned
//	under_review -> matched (claim rejected)
//	reported|matched -> expired (sweeper) | archived (admin)
type ItemStatus string

// Item statuses.
const (
	ItemStatusReported    ItemStatus = "reported"
	ItemStatusMatched     ItemStatus = "matched"
	ItemStatusUnderReview ItemStatus = "under_review"
	ItemStatusReturned    ItemStatus = "returned"
	ItemStatusExpired     ItemStatus = "expired"
	ItemStatusArchived    ItemStatus = "archived"
)

// Valid reports whether s is a known status.
func (s ItemStatus) Valid() bool {
	switch s {
	case ItemStatusReported, ItemStatusMatched, ItemStatusUnderReview,
		ItemStatusReturned, ItemStatusExpired, ItemStatusArchived:
		return true
	}
	return false
}

// Terminal reports whether no further transition leaves s.
func (s ItemStatus) Terminal() bool {
	return s == ItemStatusReturned || s == ItemStatusExpired || s == ItemStatusArchived
}

// CanTransition reports whether the item state machine allows from -> to.
func CanTransition(from, to ItemStatus) bool {
	switch to {
	case ItemStatusMatched:
		return from == ItemStatusReported || from == ItemStatusUnderReview
	case ItemStatusUnderReview:
		return from == ItemStatusMatched
	case ItemStatusReturned:
		return from == ItemStatusMatched || from == ItemStatusUnderReview
	case ItemStatusExpired:
		return from == ItemStatusReported || from == ItemStatusMatched
	case ItemStatusArchived:
		return from == ItemStatusReported || from == ItemStatusMatched || from == ItemStatusExpired
	}
	return false
}

// Item is a lost or found object report.
type Item struct {
	ID          string     `json:"id"`
	Kind        ItemKind   `json:"kind"`
	Category    Category   `json:"category"`
	Color       string     `json:"color,omitempty"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	EventDate   time.Time  `json:"event_date"`
	Images      []string   `json:"images"`
	Contact     string     `json:"contact,omitempty"`
	ReporterID  string     `json:"reporter_id"`
	Status      ItemStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Thumbnail returns the primary image reference, or "" when there is none.
func (i *Item) Thumbnail() string {
	if len(i.Images) == 0 {
		return ""
	}
	return i.Images[0]
}

// DateLayout is the wire format of an item's event date.
const DateLayout = "2006-01-02"

// ParseEventDate parses a YYYY-MM-DD date as midnight UTC.
func ParseEventDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: event_date must be YYYY-MM-DD", ErrValidation)
	}
	return d, nil
}
