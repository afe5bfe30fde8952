package models

import (
	"strings"
	"time"
)

// Category is the transaction type of a listing. It is a two-valued
// enum, never a boolean toggle: call sites compare against the
// constants and reject anything else at the boundary.
type Category string

const (
	CategorySale Category = "sale"
	CategoryRent Category = "rent"
)

// ParseCategory accepts the two category labels case-insensitively.
func ParseCategory(s string) (Category, bool) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategorySale:
		return CategorySale, true
	case CategoryRent:
		return CategoryRent, true
	}
	return "", false
}

// Equals compares categories case-insensitively.
func (c Category) Equals(other Category) bool {
	return strings.EqualFold(string(c), string(other))
}

type Listing struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	// PriceDisplay carries the locale-formatted price ("R$ 350.000,00")
	// rendered by the API; it is never stored.
	PriceDisplay string         `json:"price_display,omitempty"`
	Category     Category       `json:"category"`
	Latitude     string         `json:"latitude,omitempty"`
	Longitude    string         `json:"longitude,omitempty"`
	Images       []ListingImage `json:"images"`
	UserID       int            `json:"user_id"`
	Owner        struct {
		Name       string  `json:"name"`
		Phone      string  `json:"phone,omitempty"`
		AvatarPath *string `json:"avatar_path,omitempty"`
	} `json:"owner"`
	TeamID    *int       `json:"team_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type ListingImage struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Position int    `json:"position"`
}

// DistanceListing is a Listing annotated with the great-circle
// distance from a reference coordinate. Derived per request, never
// persisted; DistanceKm is nil when the reference location was not
// resolved or the listing has no usable coordinate.
type DistanceListing struct {
	Listing
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

type ListingFeedRequest struct {
	Category   Category
	SearchTerm string
	Latitude   string
	Longitude  string
}
