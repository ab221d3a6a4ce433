package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// webhookEventRepository implements the WebhookEventRepository interface
// using PostgreSQL.
type webhookEventRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewWebhookEventRepository creates a new PostgreSQL-backed webhook event repository.
func NewWebhookEventRepository(pool *pgxpool.Pool, logger zerolog.Logger) WebhookEventRepository {
	return &webhookEventRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "webhook_event").Logger(),
	}
}

// Exists reports whether an event has already been processed.
func (r *webhookEventRepository) Exists(ctx context.Context, eventID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM webhook_events WHERE event_id = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, eventID).Scan(&exists); err != nil {
		r.logger.Error().Err(err).Str("event_id", eventID).Msg("failed to check webhook event")
		return false, fmt.Errorf("failed to check webhook event: %w", err)
	}

	return exists, nil
}

// MarkProcessed records an event as processed. Conflicts are ignored so a
// concurrent redelivery cannot fail the request.
func (r *webhookEventRepository) MarkProcessed(ctx context.Context, eventID, eventType string) error {
	query := `
		INSERT INTO webhook_events (event_id, event_type, processed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (event_id) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query, eventID, eventType, time.Now())
	if err != nil {
		r.logger.Error().Err(err).Str("event_id", eventID).Msg("failed to record webhook event")
		return fmt.Errorf("failed to record webhook event: %w", err)
	}

	return nil
}
