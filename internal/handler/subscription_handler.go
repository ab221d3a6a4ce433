package handler

import (
	"encoding/json"
	"net/http"

	"kongle-express/internal/model"
	"kongle-express/internal/service"

	"github.com/rs/zerolog"
)

// SubscriptionHandler handles subscription HTTP requests.
type SubscriptionHandler struct {
	service service.SubscriptionService
	logger  zerolog.Logger
}

// NewSubscriptionHandler creates a new subscription handler.
func NewSubscriptionHandler(service service.SubscriptionService, logger zerolog.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		service: service,
		logger:  logger.With().Str("handler", "subscription").Logger(),
	}
}

// Handle dispatches /api/subscriptions by method.
func (h *SubscriptionHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.List(w, r)
	case http.MethodPost:
		h.Create(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
	}
}

// Create handles POST /api/subscriptions requests.
func (h *SubscriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.SubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	subscription, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, subscription)
}

// List handles GET /api/subscriptions requests.
func (h *SubscriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	subscriptions, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to retrieve subscriptions", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, subscriptions)
}
