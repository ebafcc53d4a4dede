package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"automind-api/internal/model"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const listingSelect = `
	SELECT l.id, l.owner_id, l.name, l.brand, l.year, l.kind, l.price,
	       COALESCE(l.photo_reference, '') AS photo_reference,
	       COALESCE(l.description, '') AS description,
	       l.created_at,
	       u.username AS dealer_name, u.payout_identifier AS dealer_payout
	FROM listings l
	JOIN accounts u ON u.id = l.owner_id`

// CreateListing inserts a listing.
func (s *SQLStore) CreateListing(ctx context.Context, listing *model.Listing) (int64, error) {
	listing.CreatedAt = s.now()
	id, err := s.insert(ctx, s.db,
		`INSERT INTO listings (owner_id, name, brand, year, kind, price, photo_reference, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		listing.OwnerID, listing.Name, listing.Brand, listing.Year, listing.Kind, listing.Price,
		nullString(listing.PhotoReference), nullString(listing.Description), listing.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to create listing: %w", err)
	}
	listing.ID = id
	return id, nil
}

// GetListing finds a listing by id.
func (s *SQLStore) GetListing(ctx context.Context, id int64) (*model.Listing, error) {
	var l model.Listing
	err := s.db.GetContext(ctx, &l, s.db.Rebind(listingSelect+` WHERE l.id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("listing %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	return &l, nil
}

// ListListings returns listings most-recent-first, for one owner or for all.
func (s *SQLStore) ListListings(ctx context.Context, ownerID int64) ([]model.Listing, error) {
	query := listingSelect
	var args []interface{}
	if ownerID != 0 {
		query += ` WHERE l.owner_id = ?`
		args = append(args, ownerID)
	}
	query += ` ORDER BY l.created_at DESC, l.id DESC`

	listings := []model.Listing{}
	if err := s.db.SelectContext(ctx, &listings, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	return listings, nil
}

// DeleteListing removes the requests referencing the listing and then the
// listing itself, in one transaction.
func (s *SQLStore) DeleteListing(ctx context.Context, ownerID, listingID int64) (int64, error) {
	var removed int64
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var owner int64
		err := tx.GetContext(ctx, &owner, tx.Rebind(`SELECT owner_id FROM listings WHERE id = ?`+s.dialect.LockClause), listingID)
		if errors.Is(err, sql.ErrNoRows) || (err == nil && owner != ownerID) {
			return fmt.Errorf("listing %d of owner %d: %w", listingID, ownerID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to get listing: %w", err)
		}

		res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM requests WHERE listing_id = ?`), listingID)
		if err != nil {
			return fmt.Errorf("failed to delete requests: %w", err)
		}
		removed, _ = res.RowsAffected()

		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM listings WHERE id = ? AND owner_id = ?`), listingID, ownerID); err != nil {
			return fmt.Errorf("failed to delete listing: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.Info("listing deleted",
		zap.Int64("listing_id", listingID),
		zap.Int64("owner_id", ownerID),
		zap.Int64("requests_removed", removed))
	return removed, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Ensure SQLStore implements ListingRepository
var _ ListingRepository = (*SQLStore)(nil)
