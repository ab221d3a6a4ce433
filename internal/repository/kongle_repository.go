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

const kongleColumns = `
	id, sender, recipient, address, message, quote_type, pinecone_type,
	price_cents, is_subscription, customer_email, checkout_session_id,
	status, amount_paid_cents, created_at, updated_at
`

// kongleRepository implements the KongleRepository interface using PostgreSQL.
type kongleRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewKongleRepository creates a new PostgreSQL-backed kongle repository.
func NewKongleRepository(pool *pgxpool.Pool, logger zerolog.Logger) KongleRepository {
	return &kongleRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "kongle").Logger(),
	}
}

// Create inserts a new kongle order row.
func (r *kongleRepository) Create(ctx context.Context, kongle *model.Kongle) error {
	query := `
		INSERT INTO kongles (` + kongleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.pool.Exec(ctx, query,
		kongle.ID,
		kongle.Sender,
		kongle.Recipient,
		kongle.Address,
		kongle.Message,
		kongle.QuoteType,
		kongle.PineconeType,
		kongle.PriceCents,
		kongle.IsSubscription,
		kongle.CustomerEmail,
		kongle.CheckoutSessionID,
		kongle.Status,
		kongle.AmountPaidCents,
		kongle.CreatedAt,
		kongle.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("kongle_id", kongle.ID.String()).
			Msg("failed to create kongle")
		return fmt.Errorf("failed to create kongle: %w", err)
	}

	r.logger.Debug().
		Str("kongle_id", kongle.ID.String()).
		Str("pinecone_type", kongle.PineconeType).
		Msg("kongle created successfully")

	return nil
}

// List retrieves all kongle orders, newest first.
func (r *kongleRepository) List(ctx context.Context) ([]model.Kongle, error) {
	query := `SELECT ` + kongleColumns + ` FROM kongles ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query kongles")
		return nil, fmt.Errorf("failed to query kongles: %w", err)
	}
	defer rows.Close()

	kongles := []model.Kongle{}
	for rows.Next() {
		kongle, err := scanKongle(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan kongle row")
			return nil, fmt.Errorf("failed to scan kongle: %w", err)
		}
		kongles = append(kongles, *kongle)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating kongle rows")
		return nil, fmt.Errorf("error iterating kongles: %w", err)
	}

	return kongles, nil
}

// GetByID retrieves a single order by its ID.
func (r *kongleRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Kongle, error) {
	query := `SELECT ` + kongleColumns + ` FROM kongles WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetBySessionID retrieves the order a checkout session was created for.
func (r *kongleRepository) GetBySessionID(ctx context.Context, sessionID string) (*model.Kongle, error) {
	query := `SELECT ` + kongleColumns + ` FROM kongles WHERE checkout_session_id = $1`
	return r.getOne(ctx, query, sessionID)
}

// SetCheckoutSession records the checkout session identifier on an order.
func (r *kongleRepository) SetCheckoutSession(ctx context.Context, id uuid.UUID, sessionID string) error {
	query := `
		UPDATE kongles
		SET checkout_session_id = $2, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, sessionID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("kongle_id", id.String()).
			Msg("failed to set checkout session")
		return fmt.Errorf("failed to set checkout session: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("kongle %s not found", id)
	}

	return nil
}

// MarkPaidBySession transitions the pending order matching the session to paid.
func (r *kongleRepository) MarkPaidBySession(ctx context.Context, sessionID string, amountPaidCents int64) (bool, error) {
	query := `
		UPDATE kongles
		SET status = $2, amount_paid_cents = $3, updated_at = NOW()
		WHERE checkout_session_id = $1 AND status = $4
	`

	tag, err := r.pool.Exec(ctx, query, sessionID, model.KongleStatusPaid, amountPaidCents, model.KongleStatusPending)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("session_id", sessionID).
			Msg("failed to mark kongle paid")
		return false, fmt.Errorf("failed to mark kongle paid: %w", err)
	}

	updated := tag.RowsAffected() > 0
	if updated {
		r.logger.Debug().
			Str("session_id", sessionID).
			Int64("amount_paid_cents", amountPaidCents).
			Msg("kongle marked paid")
	}

	return updated, nil
}

// getOne runs a single-row kongle query, mapping no-rows to (nil, nil).
func (r *kongleRepository) getOne(ctx context.Context, query string, arg any) (*model.Kongle, error) {
	row := r.pool.QueryRow(ctx, query, arg)

	kongle, err := scanKongle(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query kongle")
		return nil, fmt.Errorf("failed to query kongle: %w", err)
	}

	return kongle, nil
}

// scanKongle scans a row in kongleColumns order.
func scanKongle(row pgx.Row) (*model.Kongle, error) {
	var kongle model.Kongle
	err := row.Scan(
		&kongle.ID,
		&kongle.Sender,
		&kongle.Recipient,
		&kongle.Address,
		&kongle.Message,
		&kongle.QuoteType,
		&kongle.PineconeType,
		&kongle.PriceCents,
		&kongle.IsSubscription,
		&kongle.CustomerEmail,
		&kongle.CheckoutSessionID,
		&kongle.Status,
		&kongle.AmountPaidCents,
		&kongle.CreatedAt,
		&kongle.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &kongle, nil
}
