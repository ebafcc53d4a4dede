package service

import (
	"context"
	"errors"

	"automind-api/internal/access"
	"automind-api/internal/model"
	"automind-api/internal/repository"
	"automind-api/pkg/apierror"

	"go.uber.org/zap"
)

// ListingService handles dealer car listings.
type ListingService struct {
	listings repository.ListingRepository
	log      *zap.Logger
}

// NewListingService creates a new listing service.
func NewListingService(listings repository.ListingRepository, logger *zap.Logger) *ListingService {
	return &ListingService{
		listings: listings,
		log:      logger.Named("listings"),
	}
}

// CreateListing adds a listing owned by caller, who must be a dealer.
func (s *ListingService) CreateListing(ctx context.Context, caller *model.Account, in model.NewListing) (*model.Listing, error) {
	if err := access.Authorize(caller, access.CreateListing); err != nil {
		return nil, err
	}

	in.Normalize()
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	listing := &model.Listing{
		OwnerID:        caller.ID,
		Name:           in.Name,
		Brand:          in.Brand,
		Year:           in.Year,
		Kind:           model.ListingKind(in.Kind),
		Price:          *in.Price,
		PhotoReference: in.PhotoReference,
		Description:    in.Description,
		DealerName:     caller.Username,
		DealerPayout:   caller.PayoutIdentifier,
	}

	if _, err := s.listings.CreateListing(ctx, listing); err != nil {
		s.log.Error("failed to create listing", zap.Int64("owner_id", caller.ID), zap.Error(err))
		return nil, apierror.InternalError("")
	}

	s.log.Info("listing created",
		zap.Int64("listing_id", listing.ID),
		zap.Int64("owner_id", caller.ID),
		zap.String("kind", string(listing.Kind)))

	return listing, nil
}

// GetListing returns one listing.
func (s *ListingService) GetListing(ctx context.Context, id int64) (*model.Listing, error) {
	listing, err := s.listings.GetListing(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierror.NotFound("Listing not found")
	}
	if err != nil {
		s.log.Error("failed to get listing", zap.Int64("listing_id", id), zap.Error(err))
		return nil, apierror.InternalError("")
	}
	return listing, nil
}

// ListAll returns every listing, most recent first.
func (s *ListingService) ListAll(ctx context.Context) ([]model.Listing, error) {
	return s.list(ctx, 0)
}

// ListByOwner returns the caller's own listings, most recent first.
// Callers that are not dealers own nothing and get an empty list.
func (s *ListingService) ListByOwner(ctx context.Context, caller *model.Account) ([]model.Listing, error) {
	if caller == nil {
		return nil, apierror.Unauthorized("")
	}
	if caller.Role != model.RoleDealer {
		return []model.Listing{}, nil
	}
	return s.list(ctx, caller.ID)
}

func (s *ListingService) list(ctx context.Context, ownerID int64) ([]model.Listing, error) {
	listings, err := s.listings.ListListings(ctx, ownerID)
	if err != nil {
		s.log.Error("failed to list listings", zap.Int64("owner_id", ownerID), zap.Error(err))
		return nil, apierror.InternalError("")
	}
	if listings == nil {
		listings = []model.Listing{}
	}
	return listings, nil
}

// DeleteListing removes the caller's listing together with every request
// made against it.
func (s *ListingService) DeleteListing(ctx context.Context, caller *model.Account, listingID int64) error {
	if err := access.Authorize(caller, access.DeleteListing); err != nil {
		return err
	}
	if listingID <= 0 {
		return apierror.ValidationError("Invalid listing ID")
	}

	listing, err := s.listings.GetListing(ctx, listingID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apierror.NotFound("Listing not found")
	case err != nil:
		s.log.Error("failed to get listing", zap.Int64("listing_id", listingID), zap.Error(err))
		return apierror.InternalError("")
	case listing.OwnerID != caller.ID:
		return apierror.Forbidden("You can only delete your own listings")
	}

	removed, err := s.listings.DeleteListing(ctx, caller.ID, listingID)
	if errors.Is(err, repository.ErrNotFound) {
		return apierror.NotFound("Listing not found")
	}
	if err != nil {
		s.log.Error("failed to delete listing", zap.Int64("listing_id", listingID), zap.Error(err))
		return apierror.InternalError("")
	}

	s.log.Info("listing deleted",
		zap.Int64("listing_id", listingID),
		zap.Int64("owner_id", caller.ID),
		zap.Int64("requests_removed", removed))
	return nil
}
