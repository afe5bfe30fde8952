package models

import "time"

// Visitor is an unauthenticated person who contacted a broker through
// a public listing form. Email is the uniqueness key: submitting the
// form again updates the existing record.
type Visitor struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         *string   `json:"phone,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	LastContactAt time.Time `json:"last_contact_at"`
}

// ContactRequest is the public contact-form payload.
type ContactRequest struct {
	ListingID int    `json:"listing_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Text      string `json:"text"`
}
