package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"automind-api/internal/model"

	"github.com/jmoiron/sqlx"
)

const requestSelect = `
	SELECT r.id, r.listing_id, r.customer_id, r.dealer_id, r.kind, r.status, r.created_at,
	       l.name AS listing_name, l.brand AS listing_brand, l.year AS listing_year,
	       l.kind AS listing_kind, l.price AS listing_price,
	       c.username AS customer_name, c.payout_identifier AS customer_payout
	FROM requests r
	JOIN listings l ON l.id = r.listing_id
	JOIN accounts c ON c.id = r.customer_id`

// requestDetailSelect reads one request with whatever display fields are
// still resolvable; it does not hide requests of deleted customers.
const requestDetailSelect = `
	SELECT r.id, r.listing_id, r.customer_id, r.dealer_id, r.kind, r.status, r.created_at,
	       COALESCE(l.name, '') AS listing_name, COALESCE(l.brand, '') AS listing_brand,
	       COALESCE(l.year, 0) AS listing_year, COALESCE(l.kind, '') AS listing_kind,
	       COALESCE(l.price, 0) AS listing_price,
	       COALESCE(c.username, '') AS customer_name, COALESCE(c.payout_identifier, '') AS customer_payout
	FROM requests r
	LEFT JOIN listings l ON l.id = r.listing_id
	LEFT JOIN accounts c ON c.id = r.customer_id`

// CreateRequest locks the listing, checks for an existing Pending request of
// the same customer and inserts the new one, all in one transaction. The
// partial unique index (where the dialect has one) rejects any insert that
// slips past the check.
func (s *SQLStore) CreateRequest(ctx context.Context, listingID, customerID int64, kind model.RequestKind) (*model.Request, error) {
	req := &model.Request{
		ListingID:  listingID,
		CustomerID: customerID,
		Kind:       kind,
		Status:     model.StatusPending,
	}

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx, tx.Rebind(
			`SELECT owner_id, name, brand, year, kind, price FROM listings WHERE id = ?`+s.dialect.LockClause), listingID).
			Scan(&req.DealerID, &req.ListingName, &req.ListingBrand, &req.ListingYear, &req.ListingKind, &req.ListingPrice)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("listing %d: %w", listingID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to get listing: %w", err)
		}

		// A listing whose dealer account was deleted is hidden from every
		// reader and has nobody to resolve requests, so it counts as absent.
		found, err := s.exists(ctx, tx, "accounts", req.DealerID, false)
		if err != nil {
			return fmt.Errorf("failed to get dealer: %w", err)
		}
		if !found {
			return fmt.Errorf("listing %d dealer %d: %w", listingID, req.DealerID, ErrNotFound)
		}

		err = tx.QueryRowxContext(ctx, tx.Rebind(
			`SELECT username, payout_identifier FROM accounts WHERE id = ?`), customerID).
			Scan(&req.CustomerName, &req.CustomerPayout)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("customer %d: %w", customerID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to get customer: %w", err)
		}

		var pending int64
		err = tx.GetContext(ctx, &pending, tx.Rebind(
			`SELECT COUNT(*) FROM requests WHERE listing_id = ? AND customer_id = ? AND status = ?`),
			listingID, customerID, model.StatusPending)
		if err != nil {
			return fmt.Errorf("failed to check pending requests: %w", err)
		}
		if pending > 0 {
			return fmt.Errorf("listing %d customer %d: %w", listingID, customerID, ErrPendingExists)
		}

		req.CreatedAt = s.now()
		req.ID, err = s.insert(ctx, tx,
			`INSERT INTO requests (listing_id, customer_id, dealer_id, kind, status, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			listingID, customerID, req.DealerID, kind, model.StatusPending, req.CreatedAt)
		if err != nil {
			if s.dialect.IsUniqueViolation(err) {
				return fmt.Errorf("listing %d customer %d: %w", listingID, customerID, ErrPendingExists)
			}
			return fmt.Errorf("failed to create request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// GetRequest finds a request by id.
func (s *SQLStore) GetRequest(ctx context.Context, id int64) (*model.Request, error) {
	var r model.Request
	err := s.db.GetContext(ctx, &r, s.db.Rebind(requestDetailSelect+` WHERE r.id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("request %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return &r, nil
}

// ResolveRequest applies a conditional update so that only a request still in
// Pending, owned by dealerID, can change. A lost race reports ErrNotPending.
func (s *SQLStore) ResolveRequest(ctx context.Context, id, dealerID int64, status model.RequestStatus) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(
		`UPDATE requests SET status = ? WHERE id = ? AND dealer_id = ? AND status = ?`),
		status, id, dealerID, model.StatusPending)
	if err != nil {
		return fmt.Errorf("failed to resolve request: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to resolve request: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("request %d: %w", id, ErrNotPending)
	}
	return nil
}

// ListRequestsForDealer returns the dealer's requests, newest first.
// An empty status returns every status.
func (s *SQLStore) ListRequestsForDealer(ctx context.Context, dealerID int64, status model.RequestStatus) ([]model.Request, error) {
	query := requestSelect + ` WHERE r.dealer_id = ?`
	args := []interface{}{dealerID}
	if status != "" {
		query += ` AND r.status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY r.created_at DESC, r.id DESC`

	requests := []model.Request{}
	if err := s.db.SelectContext(ctx, &requests, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return requests, nil
}

// ListRequestsForCustomer returns the customer's own requests, newest first.
func (s *SQLStore) ListRequestsForCustomer(ctx context.Context, customerID int64) ([]model.Request, error) {
	requests := []model.Request{}
	err := s.db.SelectContext(ctx, &requests,
		s.db.Rebind(requestSelect+` WHERE r.customer_id = ? ORDER BY r.created_at DESC, r.id DESC`), customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return requests, nil
}

// Ensure SQLStore implements RequestRepository
var _ RequestRepository = (*SQLStore)(nil)
