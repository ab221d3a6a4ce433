package service

import (
	"context"

	"kongle-express/internal/model"
)

// KongleService defines operations for kongle order management.
type KongleService interface {
	// Create validates an order payload, prices it from the tier table and
	// persists it with status pending. Payment has not happened yet.
	Create(ctx context.Context, req *model.KongleRequest) (*model.Kongle, error)

	// List retrieves all orders, newest first.
	List(ctx context.Context) ([]model.Kongle, error)
}

// SubscriptionService defines operations for recurring delivery management.
type SubscriptionService interface {
	// Create validates a subscribe payload and persists it with status
	// pending.
	Create(ctx context.Context, req *model.SubscriptionRequest) (*model.Subscription, error)

	// List retrieves all subscriptions, newest first.
	List(ctx context.Context) ([]model.Subscription, error)
}

// CheckoutService drives the hosted checkout flow.
type CheckoutService interface {
	// InitiateCheckout creates a hosted checkout session for a one-time
	// payment or a recurring subscription and returns the redirect URL.
	// Persisted status is never changed here; only a verified webhook
	// event does that, because the customer may abandon checkout.
	InitiateCheckout(ctx context.Context, req *model.CheckoutRequest) (*model.CheckoutResponse, error)

	// VerifySession reports the order or subscription state behind a
	// checkout session for the success page. Returns (nil, nil) when the
	// session is unknown.
	VerifySession(ctx context.Context, sessionID string) (*model.VerifyResponse, error)
}

// WebhookService processes verified payment gateway events.
type WebhookService interface {
	// ProcessEvent verifies the raw payload signature, applies the state
	// transition for the event type exactly once per event id, and records
	// the event as processed.
	ProcessEvent(ctx context.Context, payload []byte, signatureHeader string) error
}
