package repository

import (
	"context"

	"kongle-express/internal/model"

	"github.com/google/uuid"
)

// KongleRepository defines the interface for kongle order data access.
// Orders are append-only; there are no delete operations.
type KongleRepository interface {
	// Create inserts a new kongle order row.
	Create(ctx context.Context, kongle *model.Kongle) error

	// List retrieves all kongle orders, newest first.
	List(ctx context.Context) ([]model.Kongle, error)

	// GetByID retrieves a single order by its ID. Returns (nil, nil) when
	// no row matches.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Kongle, error)

	// GetBySessionID retrieves the order a checkout session was created
	// for. Returns (nil, nil) when no row matches.
	GetBySessionID(ctx context.Context, sessionID string) (*model.Kongle, error)

	// SetCheckoutSession records the checkout session identifier on an
	// order once payment has been initiated. The order status is not
	// touched; only a verified webhook event changes it.
	SetCheckoutSession(ctx context.Context, id uuid.UUID, sessionID string) error

	// MarkPaidBySession transitions the pending order matching the session
	// identifier to paid, recording the amount charged. Reports whether a
	// row was updated; an already-paid order reports false, which makes
	// duplicate webhook delivery a no-op.
	MarkPaidBySession(ctx context.Context, sessionID string, amountPaidCents int64) (bool, error)
}

// SubscriptionRepository defines the interface for subscription data access.
type SubscriptionRepository interface {
	// Create inserts a new subscription row.
	Create(ctx context.Context, subscription *model.Subscription) error

	// List retrieves all subscriptions, newest first.
	List(ctx context.Context) ([]model.Subscription, error)

	// GetBySessionID retrieves the subscription a checkout session was
	// created for. Returns (nil, nil) when no row matches.
	GetBySessionID(ctx context.Context, sessionID string) (*model.Subscription, error)

	// SetCheckoutSession records the checkout session identifier on a
	// subscription once payment has been initiated.
	SetCheckoutSession(ctx context.Context, id uuid.UUID, sessionID string) error

	// ActivateBySession transitions the pending subscription matching the
	// session identifier to active. Reports whether a row was updated.
	ActivateBySession(ctx context.Context, sessionID string) (bool, error)

	// ActivateByEmail transitions the most recent pending subscription for
	// the email to active and stamps the session identifier onto it.
	// Reports whether a row was updated.
	ActivateByEmail(ctx context.Context, email, sessionID string) (bool, error)
}

// WebhookEventRepository is the processed-event ledger that keeps webhook
// handling idempotent across redeliveries.
type WebhookEventRepository interface {
	// Exists reports whether an event has already been processed.
	Exists(ctx context.Context, eventID string) (bool, error)

	// MarkProcessed records an event as processed. Recording the same
	// event twice is a no-op.
	MarkProcessed(ctx context.Context, eventID, eventType string) error
}
