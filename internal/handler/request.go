package handler

import (
	"net/http"

	"automind-api/internal/middleware"
	"automind-api/internal/model"
	"automind-api/internal/service"
	"automind-api/pkg/response"
)

// RequestHandler handles buy/rent request workflow requests.
type RequestHandler struct {
	requests *service.RequestService
}

// NewRequestHandler creates a new request handler.
func NewRequestHandler(requests *service.RequestService) *RequestHandler {
	return &RequestHandler{requests: requests}
}

// CreateRequestBody represents the request body for POST /requests.
type CreateRequestBody struct {
	ListingID int64             `json:"listing_id"`
	Kind      model.RequestKind `json:"kind"`
}

// ResolveRequestBody represents the request body for POST /requests/{id}/resolve.
type ResolveRequestBody struct {
	Decision model.Decision `json:"decision"`
}

// Create handles POST /api/v1/requests
func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body CreateRequestBody
	if err := decodeJSON(w, r, &body); err != nil {
		response.Error(w, err)
		return
	}

	req, err := h.requests.CreateRequest(r.Context(), middleware.CallerFromContext(r.Context()), body.ListingID, body.Kind)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Created(w, req)
}

// Resolve handles POST /api/v1/requests/{id}/resolve
func (h *RequestHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}

	var body ResolveRequestBody
	if err := decodeJSON(w, r, &body); err != nil {
		response.Error(w, err)
		return
	}

	req, err := h.requests.ResolveRequest(r.Context(), middleware.CallerFromContext(r.Context()), id, body.Decision)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, req)
}

// Inbox handles GET /api/v1/requests?status=
func (h *RequestHandler) Inbox(w http.ResponseWriter, r *http.Request) {
	status := model.RequestStatus(r.URL.Query().Get("status"))

	reqs, err := h.requests.RequestsForDealer(r.Context(), middleware.CallerFromContext(r.Context()), status)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.List(w, reqs, len(reqs))
}

// Accepted handles GET /api/v1/requests/accepted
func (h *RequestHandler) Accepted(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.requests.AcceptedForDealer(r.Context(), middleware.CallerFromContext(r.Context()))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.List(w, reqs, len(reqs))
}

// Mine handles GET /api/v1/requests/mine
func (h *RequestHandler) Mine(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.requests.RequestsForCustomer(r.Context(), middleware.CallerFromContext(r.Context()))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.List(w, reqs, len(reqs))
}
