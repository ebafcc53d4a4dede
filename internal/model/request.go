package model

import (
	"fmt"
	"time"
)

// RequestKind is what the customer wants to do with the car.
type RequestKind string

const (
	RequestBuy  RequestKind = "Buy"
	RequestRent RequestKind = "Rent"
)

// Valid reports whether k is Buy or Rent.
func (k RequestKind) Valid() bool {
	return k == RequestBuy || k == RequestRent
}

// RequestStatus is the state of a request. Accepted and Rejected are terminal.
type RequestStatus string

const (
	StatusPending  RequestStatus = "Pending"
	StatusAccepted RequestStatus = "Accepted"
	StatusRejected RequestStatus = "Rejected"
)

// Valid reports whether s is one of the enumerated statuses.
func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible from s.
func (s RequestStatus) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// Decision is a dealer's resolution of a pending request.
type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

// Target returns the status a pending request moves to under d.
func (d Decision) Target() (RequestStatus, error) {
	switch d {
	case DecisionAccept:
		return StatusAccepted, nil
	case DecisionReject:
		return StatusRejected, nil
	}
	return "", fmt.Errorf("unknown decision %q", string(d))
}

// Transition applies d to a request currently in state from.
// Only Pending requests may be resolved.
func Transition(from RequestStatus, d Decision) (RequestStatus, error) {
	to, err := d.Target()
	if err != nil {
		return "", err
	}
	if from != StatusPending {
		return "", fmt.Errorf("cannot %s a request in state %s", d, from)
	}
	return to, nil
}

// Request ties a listing, the requesting customer and the dealer that owned
// the listing when the request was made. DealerID never changes after creation.
type Request struct {
	ID             int64         `db:"id" json:"id"`
	ListingID      int64         `db:"listing_id" json:"listing_id"`
	CustomerID     int64         `db:"customer_id" json:"customer_id"`
	DealerID       int64         `db:"dealer_id" json:"dealer_id"`
	Kind           RequestKind   `db:"kind" json:"kind"`
	Status         RequestStatus `db:"status" json:"status"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	ListingName    string        `db:"listing_name" json:"listing_name"`
	ListingBrand   string        `db:"listing_brand" json:"listing_brand"`
	ListingYear    int           `db:"listing_year" json:"listing_year"`
	ListingKind    ListingKind   `db:"listing_kind" json:"listing_kind"`
	ListingPrice   float64       `db:"listing_price" json:"listing_price"`
	CustomerName   string        `db:"customer_name" json:"customer_name"`
	CustomerPayout string        `db:"customer_payout" json:"customer_payout"`
}
