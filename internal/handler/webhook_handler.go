package handler

import (
	"errors"
	"io"
	"net/http"

	"kongle-express/internal/payment"
	"kongle-express/internal/service"

	"github.com/rs/zerolog"
)

// maxWebhookBodyBytes caps webhook payloads; real gateway events are a few
// kilobytes.
const maxWebhookBodyBytes = 1 << 20

// WebhookHandler receives payment gateway webhook deliveries.
type WebhookHandler struct {
	service service.WebhookService
	logger  zerolog.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(service service.WebhookService, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		service: service,
		logger:  logger.With().Str("handler", "webhook").Logger(),
	}
}

// Handle handles POST /webhook requests. Signature verification needs the
// exact raw body bytes, so the body is read before any decoding.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body", h.logger)
		return
	}

	if err := h.service.ProcessEvent(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		var sigErr *payment.SignatureError
		if errors.As(err, &sigErr) {
			writeError(w, http.StatusBadRequest, "invalid webhook signature", h.logger)
			return
		}
		// Non-signature failures return 500 so the gateway retries the
		// delivery later.
		writeError(w, http.StatusInternalServerError, "failed to process event", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}
