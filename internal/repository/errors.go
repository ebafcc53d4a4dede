package repository

import "errors"

// Sentinel errors returned (possibly wrapped) by the store.
var (
	// ErrNotFound means the referenced row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate means a uniqueness constraint rejected the write.
	ErrDuplicate = errors.New("duplicate")

	// ErrPendingExists means the customer already has a pending request for the listing.
	ErrPendingExists = errors.New("pending request already exists")

	// ErrNotPending means the request left the Pending state before the update applied.
	ErrNotPending = errors.New("request is not pending")
)
