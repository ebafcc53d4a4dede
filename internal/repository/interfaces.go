package repository

import (
	"context"

	"automind-api/internal/model"
)

// AccountRepository defines account data access methods.
type AccountRepository interface {
	// CreateAccount inserts a new account. Returns ErrDuplicate if the username is taken.
	CreateAccount(ctx context.Context, account *model.Account) (int64, error)

	// GetAccount finds an account by id. Returns ErrNotFound if absent.
	GetAccount(ctx context.Context, id int64) (*model.Account, error)

	// GetAccountByUsername finds an account by its exact username.
	GetAccountByUsername(ctx context.Context, username string) (*model.Account, error)

	// ListAccounts returns every account ordered by username ascending.
	ListAccounts(ctx context.Context) ([]model.Account, error)

	// DeleteAccount removes the account and every message it sent or received
	// in one transaction. Listings and requests are left in place.
	DeleteAccount(ctx context.Context, id int64) (int64, error)
}

// MessageRepository defines direct-message data access methods.
type MessageRepository interface {
	// CreateMessage appends a message stamped with the store's clock inside the
	// inserting transaction. Returns ErrNotFound if either account is absent.
	CreateMessage(ctx context.Context, senderID, receiverID int64, content string) (*model.Message, error)

	// Thread returns every message between a and b in either direction,
	// ordered by (created_at, id) ascending.
	Thread(ctx context.Context, a, b int64) ([]model.Message, error)
}

// ListingRepository defines listing data access methods.
type ListingRepository interface {
	// CreateListing inserts a listing owned by listing.OwnerID and sets its ID and CreatedAt.
	CreateListing(ctx context.Context, listing *model.Listing) (int64, error)

	// GetListing finds a listing by id, joined with its owner's display fields.
	GetListing(ctx context.Context, id int64) (*model.Listing, error)

	// ListListings returns listings most-recent-first. ownerID 0 means all owners.
	ListListings(ctx context.Context, ownerID int64) ([]model.Listing, error)

	// DeleteListing removes the owner's listing and all requests referencing it
	// in one transaction. Returns the number of requests removed.
	DeleteListing(ctx context.Context, ownerID, listingID int64) (int64, error)
}

// RequestRepository defines buy/rent request data access methods.
type RequestRepository interface {
	// CreateRequest inserts a Pending request, freezing the listing's current
	// owner as the dealer. The pending-pair check and the insert are atomic.
	CreateRequest(ctx context.Context, listingID, customerID int64, kind model.RequestKind) (*model.Request, error)

	// GetRequest finds a request by id.
	GetRequest(ctx context.Context, id int64) (*model.Request, error)

	// ResolveRequest moves a Pending request owned by dealerID to status.
	// Returns ErrNotPending if no Pending row matched.
	ResolveRequest(ctx context.Context, id, dealerID int64, status model.RequestStatus) error

	// ListRequestsForDealer returns the dealer's requests most-recent-first,
	// optionally filtered by status.
	ListRequestsForDealer(ctx context.Context, dealerID int64, status model.RequestStatus) ([]model.Request, error)

	// ListRequestsForCustomer returns the customer's own requests most-recent-first.
	ListRequestsForCustomer(ctx context.Context, customerID int64) ([]model.Request, error)
}

// Store is the single persistent store shared by every component.
type Store interface {
	AccountRepository
	MessageRepository
	ListingRepository
	RequestRepository

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	// GetStats returns row counts for the admin dashboard.
	GetStats(ctx context.Context) (map[string]interface{}, error)

	// Close closes the store connection.
	Close() error
}
