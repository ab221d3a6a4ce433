package repository

import (
	"context"
	"errors"
	"fmt"

	"kongle-express/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const subscriptionColumns = `
	id, email, recipient, address, pinecone_type, billing_interval,
	active, checkout_session_id, status, created_at, updated_at
`

// subscriptionRepository implements the SubscriptionRepository interface
// using PostgreSQL.
type subscriptionRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewSubscriptionRepository creates a new PostgreSQL-backed subscription repository.
func NewSubscriptionRepository(pool *pgxpool.Pool, logger zerolog.Logger) SubscriptionRepository {
	return &subscriptionRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "subscription").Logger(),
	}
}

// Create inserts a new subscription row.
func (r *subscriptionRepository) Create(ctx context.Context, subscription *model.Subscription) error {
	query := `
		INSERT INTO subscriptions (` + subscriptionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		subscription.ID,
		subscription.Email,
		subscription.Recipient,
		subscription.Address,
		subscription.PineconeType,
		subscription.BillingInterval,
		subscription.Active,
		subscription.CheckoutSessionID,
		subscription.Status,
		subscription.CreatedAt,
		subscription.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("subscription_id", subscription.ID.String()).
			Msg("failed to create subscription")
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	r.logger.Debug().
		Str("subscription_id", subscription.ID.String()).
		Str("email", subscription.Email).
		Msg("subscription created successfully")

	return nil
}

// List retrieves all subscriptions, newest first.
func (r *subscriptionRepository) List(ctx context.Context) ([]model.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query subscriptions")
		return nil, fmt.Errorf("failed to query subscriptions: %w", err)
	}
	defer rows.Close()

	subscriptions := []model.Subscription{}
	for rows.Next() {
		subscription, err := scanSubscription(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan subscription row")
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subscriptions = append(subscriptions, *subscription)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating subscription rows")
		return nil, fmt.Errorf("error iterating subscriptions: %w", err)
	}

	return subscriptions, nil
}

// GetBySessionID retrieves the subscription a checkout session was created for.
func (r *subscriptionRepository) GetBySessionID(ctx context.Context, sessionID string) (*model.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE checkout_session_id = $1`

	row := r.pool.QueryRow(ctx, query, sessionID)

	subscription, err := scanSubscription(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to query subscription")
		return nil, fmt.Errorf("failed to query subscription: %w", err)
	}

	return subscription, nil
}

// SetCheckoutSession records the checkout session identifier on a subscription.
func (r *subscriptionRepository) SetCheckoutSession(ctx context.Context, id uuid.UUID, sessionID string) error {
	query := `
		UPDATE subscriptions
		SET checkout_session_id = $2, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, sessionID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("subscription_id", id.String()).
			Msg("failed to set checkout session")
		return fmt.Errorf("failed to set checkout session: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("subscription %s not found", id)
	}

	return nil
}

// ActivateBySession transitions the pending subscription matching the session to active.
func (r *subscriptionRepository) ActivateBySession(ctx context.Context, sessionID string) (bool, error) {
	query := `
		UPDATE subscriptions
		SET status = $2, active = TRUE, updated_at = NOW()
		WHERE checkout_session_id = $1 AND status = $3
	`

	tag, err := r.pool.Exec(ctx, query, sessionID, model.SubscriptionStatusActive, model.SubscriptionStatusPending)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("session_id", sessionID).
			Msg("failed to activate subscription by session")
		return false, fmt.Errorf("failed to activate subscription: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// ActivateByEmail transitions the most recent pending subscription for the
// email to active and stamps the session identifier onto it.
func (r *subscriptionRepository) ActivateByEmail(ctx context.Context, email, sessionID string) (bool, error) {
	query := `
		UPDATE subscriptions
		SET status = $3, active = TRUE, checkout_session_id = $2, updated_at = NOW()
		WHERE id = (
			SELECT id FROM subscriptions
			WHERE email = $1 AND status = $4
			ORDER BY created_at DESC
			LIMIT 1
		)
	`

	tag, err := r.pool.Exec(ctx, query, email, sessionID, model.SubscriptionStatusActive, model.SubscriptionStatusPending)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("email", email).
			Msg("failed to activate subscription by email")
		return false, fmt.Errorf("failed to activate subscription: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// scanSubscription scans a row in subscriptionColumns order.
func scanSubscription(row pgx.Row) (*model.Subscription, error) {
	var subscription model.Subscription
	err := row.Scan(
		&subscription.ID,
		&subscription.Email,
		&subscription.Recipient,
		&subscription.Address,
		&subscription.PineconeType,
		&subscription.BillingInterval,
		&subscription.Active,
		&subscription.CheckoutSessionID,
		&subscription.Status,
		&subscription.CreatedAt,
		&subscription.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &subscription, nil
}
