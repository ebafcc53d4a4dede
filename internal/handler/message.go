package handler

import (
	"net/http"

	"automind-api/internal/middleware"
	"automind-api/internal/service"
	"automind-api/pkg/response"
)

// MessageHandler handles direct messaging requests.
type MessageHandler struct {
	messaging *service.MessagingService
}

// NewMessageHandler creates a new message handler.
func NewMessageHandler(messaging *service.MessagingService) *MessageHandler {
	return &MessageHandler{messaging: messaging}
}

// SendMessageRequest represents the request body for POST /messages.
type SendMessageRequest struct {
	ReceiverID int64  `json:"receiver_id"`
	Content    string `json:"content"`
}

// Roster handles GET /api/v1/accounts
func (h *MessageHandler) Roster(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.messaging.Roster(r.Context(), middleware.CallerFromContext(r.Context()))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.List(w, accounts, len(accounts))
}

// History handles GET /api/v1/messages?user_id=N
func (h *MessageHandler) History(w http.ResponseWriter, r *http.Request) {
	otherID, err := queryID(r, "user_id")
	if err != nil {
		response.Error(w, err)
		return
	}

	thread, err := h.messaging.History(r.Context(), middleware.CallerFromContext(r.Context()), otherID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.List(w, thread, len(thread))
}

// Send handles POST /api/v1/messages
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, err)
		return
	}

	msg, err := h.messaging.Send(r.Context(), middleware.CallerFromContext(r.Context()), req.ReceiverID, req.Content)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Created(w, msg)
}
