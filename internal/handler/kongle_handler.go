package handler

import (
	"encoding/json"
	"net/http"

	"kongle-express/internal/model"
	"kongle-express/internal/service"

	"github.com/rs/zerolog"
)

// KongleHandler handles kongle order HTTP requests.
type KongleHandler struct {
	service service.KongleService
	logger  zerolog.Logger
}

// NewKongleHandler creates a new kongle handler.
func NewKongleHandler(service service.KongleService, logger zerolog.Logger) *KongleHandler {
	return &KongleHandler{
		service: service,
		logger:  logger.With().Str("handler", "kongle").Logger(),
	}
}

// Handle dispatches /api/kongles by method.
func (h *KongleHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.List(w, r)
	case http.MethodPost:
		h.Create(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
	}
}

// Create handles POST /api/kongles requests.
func (h *KongleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.KongleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	kongle, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, kongle)
}

// List handles GET /api/kongles requests.
func (h *KongleHandler) List(w http.ResponseWriter, r *http.Request) {
	kongles, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to retrieve kongles", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, kongles)
}
