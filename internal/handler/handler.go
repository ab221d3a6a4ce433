package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"kongle-express/internal/model"
	"kongle-express/internal/payment"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string, logger zerolog.Logger) {
	logger.Error().Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: message})
}

// writeServiceError maps service-layer errors onto HTTP status codes.
// Domain validation and signature failures are the client's fault; gateway
// failures are the upstream's fault; everything else is ours.
func writeServiceError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		writeError(w, http.StatusBadRequest, domainErr.Message, logger)
		return
	}

	var sigErr *payment.SignatureError
	if errors.As(err, &sigErr) {
		writeError(w, http.StatusBadRequest, "invalid webhook signature", logger)
		return
	}

	var gatewayErr *payment.GatewayError
	if errors.As(err, &gatewayErr) {
		writeError(w, http.StatusBadGateway, "payment provider error", logger)
		return
	}

	writeError(w, http.StatusInternalServerError, "internal server error", logger)
}
