package model

import (
	"strings"
	"time"
)

// ListingKind says whether a car is offered for sale or for rent.
type ListingKind string

const (
	ListingSell ListingKind = "Sell"
	ListingRent ListingKind = "Rent"
)

// Valid reports whether k is Sell or Rent.
func (k ListingKind) Valid() bool {
	return k == ListingSell || k == ListingRent
}

// Listing is a dealer-owned car advertisement joined with its owner's display fields.
type Listing struct {
	ID             int64       `db:"id" json:"id"`
	OwnerID        int64       `db:"owner_id" json:"owner_id"`
	Name           string      `db:"name" json:"name"`
	Brand          string      `db:"brand" json:"brand"`
	Year           int         `db:"year" json:"year"`
	Kind           ListingKind `db:"kind" json:"kind"`
	Price          float64     `db:"price" json:"price"`
	PhotoReference string      `db:"photo_reference" json:"photo_reference,omitempty"`
	Description    string      `db:"description" json:"description,omitempty"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at"`
	DealerName     string      `db:"dealer_name" json:"dealer_name"`
	DealerPayout   string      `db:"dealer_payout" json:"dealer_payout"`
}

// NewListing holds the fields a dealer supplies when creating a listing.
type NewListing struct {
	Name           string   `json:"name" validate:"required,max=128"`
	Brand          string   `json:"brand" validate:"required,max=64"`
	Year           int      `json:"year" validate:"required,gt=0"`
	Kind           string   `json:"kind" validate:"required,oneof=Sell Rent"`
	Price          *float64 `json:"price" validate:"required,gt=0"`
	PhotoReference string   `json:"photo_reference" validate:"max=512"`
	Description    string   `json:"description" validate:"max=4000"`
}

// Normalize trims surrounding whitespace from the text fields.
func (n *NewListing) Normalize() {
	n.Name = strings.TrimSpace(n.Name)
	n.Brand = strings.TrimSpace(n.Brand)
	n.Kind = strings.TrimSpace(n.Kind)
	n.PhotoReference = strings.TrimSpace(n.PhotoReference)
	n.Description = strings.TrimSpace(n.Description)
}
