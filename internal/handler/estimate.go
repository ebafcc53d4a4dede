package handler

import (
	"net/http"

	"automind-api/internal/model"
	"automind-api/internal/service"
	"automind-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// EstimateHandler serves the price estimate form and the assistant chat.
type EstimateHandler struct {
	predictions *service.PredictionService
	assistant   *service.AssistantService
}

// NewEstimateHandler creates a new estimate handler.
func NewEstimateHandler(predictions *service.PredictionService, assistant *service.AssistantService) *EstimateHandler {
	return &EstimateHandler{
		predictions: predictions,
		assistant:   assistant,
	}
}

// ChatRequest represents the request body for POST /assistant/chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse carries the assistant reply rendered as HTML.
type ChatResponse struct {
	Response string `json:"response"`
}

// Catalog handles GET /api/v1/catalog
func (h *EstimateHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.predictions.Catalog())
}

// Models handles GET /api/v1/catalog/{company}/models
func (h *EstimateHandler) Models(w http.ResponseWriter, r *http.Request) {
	models := h.predictions.Models(chi.URLParam(r, "company"))
	response.List(w, models, len(models))
}

// Predict handles POST /api/v1/predictions
func (h *EstimateHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var req model.PredictionInput
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, err)
		return
	}

	prediction, err := h.predictions.Predict(r.Context(), req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, prediction)
}

// Chat handles POST /api/v1/assistant/chat
func (h *EstimateHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, err)
		return
	}

	reply, err := h.assistant.Chat(r.Context(), req.Message)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, ChatResponse{Response: reply})
}
