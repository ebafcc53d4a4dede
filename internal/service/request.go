package service

import (
	"context"
	"errors"
	"strings"

	"automind-api/internal/access"
	"automind-api/internal/model"
	"automind-api/internal/repository"
	"automind-api/pkg/apierror"

	"go.uber.org/zap"
)

// RequestService drives the buy/rent request workflow between customers and
// the dealers that own the requested listings.
type RequestService struct {
	requests repository.RequestRepository
	log      *zap.Logger
}

// NewRequestService creates a new request service.
func NewRequestService(requests repository.RequestRepository, logger *zap.Logger) *RequestService {
	return &RequestService{
		requests: requests,
		log:      logger.Named("requests"),
	}
}

// CreateRequest opens a Pending request from caller, who must be a customer.
// The listing's current owner is recorded as the request's dealer.
func (s *RequestService) CreateRequest(ctx context.Context, caller *model.Account, listingID int64, kind model.RequestKind) (*model.Request, error) {
	if err := access.Authorize(caller, access.CreateRequest); err != nil {
		return nil, err
	}

	kind = model.RequestKind(strings.TrimSpace(string(kind)))
	var details []apierror.FieldError
	if listingID <= 0 {
		details = append(details, apierror.FieldError{Field: "listing_id", Message: "is required"})
	}
	if !kind.Valid() {
		details = append(details, apierror.FieldError{Field: "kind", Message: "must be one of: Buy, Rent"})
	}
	if len(details) > 0 {
		return nil, apierror.ValidationError("Invalid request", details...)
	}

	req, err := s.requests.CreateRequest(ctx, listingID, caller.ID, kind)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, apierror.NotFound("Car not found")
	case errors.Is(err, repository.ErrPendingExists):
		return nil, apierror.Conflict("You already have a pending request for this car")
	case err != nil:
		s.log.Error("failed to create request",
			zap.Int64("listing_id", listingID),
			zap.Int64("customer_id", caller.ID),
			zap.Error(err))
		return nil, apierror.InternalError("")
	}

	s.log.Info("request created",
		zap.Int64("request_id", req.ID),
		zap.Int64("listing_id", listingID),
		zap.Int64("customer_id", caller.ID),
		zap.Int64("dealer_id", req.DealerID),
		zap.String("kind", string(kind)))

	return req, nil
}

// ResolveRequest accepts or rejects a Pending request. Only the dealer
// recorded on the request may resolve it, and only once.
func (s *RequestService) ResolveRequest(ctx context.Context, caller *model.Account, requestID int64, decision model.Decision) (*model.Request, error) {
	if err := access.Authorize(caller, access.ResolveRequest); err != nil {
		return nil, err
	}

	decision = model.Decision(strings.ToLower(strings.TrimSpace(string(decision))))
	if _, err := decision.Target(); err != nil {
		return nil, apierror.ValidationError("Invalid request",
			apierror.FieldError{Field: "decision", Message: "must be one of: accept, reject"})
	}
	if requestID <= 0 {
		return nil, apierror.ValidationError("Invalid request",
			apierror.FieldError{Field: "request_id", Message: "is required"})
	}

	req, err := s.requests.GetRequest(ctx, requestID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierror.NotFound("Request not found")
	}
	if err != nil {
		s.log.Error("failed to get request", zap.Int64("request_id", requestID), zap.Error(err))
		return nil, apierror.InternalError("")
	}

	if req.DealerID != caller.ID {
		return nil, apierror.Forbidden("Only the listing's dealer can resolve this request")
	}

	to, err := model.Transition(req.Status, decision)
	if err != nil {
		return nil, apierror.InvalidTransition("Request is already " + string(req.Status))
	}

	err = s.requests.ResolveRequest(ctx, requestID, caller.ID, to)
	if errors.Is(err, repository.ErrNotPending) {
		// Resolved concurrently between the read and the update.
		return nil, apierror.InvalidTransition("Request is no longer Pending")
	}
	if err != nil {
		s.log.Error("failed to resolve request", zap.Int64("request_id", requestID), zap.Error(err))
		return nil, apierror.InternalError("")
	}

	s.log.Info("request resolved",
		zap.Int64("request_id", requestID),
		zap.Int64("dealer_id", caller.ID),
		zap.String("status", string(to)))

	req.Status = to
	return req, nil
}

// RequestsForDealer returns the caller's incoming requests, most recent first,
// optionally restricted to one status.
func (s *RequestService) RequestsForDealer(ctx context.Context, caller *model.Account, status model.RequestStatus) ([]model.Request, error) {
	if err := access.Authorize(caller, access.ViewInbox); err != nil {
		return nil, err
	}
	if status != "" && !status.Valid() {
		return nil, apierror.ValidationError("Invalid status filter",
			apierror.FieldError{Field: "status", Message: "must be one of: Pending, Accepted, Rejected"})
	}

	reqs, err := s.requests.ListRequestsForDealer(ctx, caller.ID, status)
	if err != nil {
		s.log.Error("failed to list dealer requests", zap.Int64("dealer_id", caller.ID), zap.Error(err))
		return nil, apierror.InternalError("")
	}
	if reqs == nil {
		reqs = []model.Request{}
	}
	return reqs, nil
}

// AcceptedForDealer is the dealer's accepted-request history.
func (s *RequestService) AcceptedForDealer(ctx context.Context, caller *model.Account) ([]model.Request, error) {
	return s.RequestsForDealer(ctx, caller, model.StatusAccepted)
}

// RequestsForCustomer returns the caller's own requests, most recent first.
func (s *RequestService) RequestsForCustomer(ctx context.Context, caller *model.Account) ([]model.Request, error) {
	if caller == nil {
		return nil, apierror.Unauthorized("")
	}

	reqs, err := s.requests.ListRequestsForCustomer(ctx, caller.ID)
	if err != nil {
		s.log.Error("failed to list customer requests", zap.Int64("customer_id", caller.ID), zap.Error(err))
		return nil, apierror.InternalError("")
	}
	if reqs == nil {
		reqs = []model.Request{}
	}
	return reqs, nil
}
