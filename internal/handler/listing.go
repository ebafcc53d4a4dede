package handler

import (
	"net/http"

	"automind-api/internal/middleware"
	"automind-api/internal/model"
	"automind-api/internal/service"
	"automind-api/pkg/response"
)

// ListingHandler handles car listing requests.
type ListingHandler struct {
	listings *service.ListingService
}

// NewListingHandler creates a new listing handler.
func NewListingHandler(listings *service.ListingService) *ListingHandler {
	return &ListingHandler{listings: listings}
}

// List handles GET /api/v1/listings
func (h *ListingHandler) List(w http.ResponseWriter, r *http.Request) {
	listings, err := h.listings.ListAll(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.List(w, listings, len(listings))
}

// Get handles GET /api/v1/listings/{id}
func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}

	listing, err := h.listings.GetListing(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, listing)
}

// Mine handles GET /api/v1/listings/mine
func (h *ListingHandler) Mine(w http.ResponseWriter, r *http.Request) {
	listings, err := h.listings.ListByOwner(r.Context(), middleware.CallerFromContext(r.Context()))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.List(w, listings, len(listings))
}

// Create handles POST /api/v1/listings
func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.NewListing
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, err)
		return
	}

	listing, err := h.listings.CreateListing(r.Context(), middleware.CallerFromContext(r.Context()), req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Created(w, listing)
}

// Delete handles DELETE /api/v1/listings/{id}
func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}

	if err := h.listings.DeleteListing(r.Context(), middleware.CallerFromContext(r.Context()), id); err != nil {
		response.Error(w, err)
		return
	}
	response.NoContent(w)
}
