package service

import (
	"context"
	"fmt"
	"time"

	"kongle-express/internal/catalog"
	"kongle-express/internal/model"
	"kongle-express/internal/payment"
	"kongle-express/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// webhookService implements WebhookService.
type webhookService struct {
	kongleRepo       repository.KongleRepository
	subscriptionRepo repository.SubscriptionRepository
	eventRepo        repository.WebhookEventRepository
	gateway          payment.Gateway
	logger           zerolog.Logger
}

// NewWebhookService creates a new webhook service.
func NewWebhookService(
	kongleRepo repository.KongleRepository,
	subscriptionRepo repository.SubscriptionRepository,
	eventRepo repository.WebhookEventRepository,
	gateway payment.Gateway,
	logger zerolog.Logger,
) WebhookService {
	return &webhookService{
		kongleRepo:       kongleRepo,
		subscriptionRepo: subscriptionRepo,
		eventRepo:        eventRepo,
		gateway:          gateway,
		logger:           logger.With().Str("service", "webhook").Logger(),
	}
}

// ProcessEvent verifies the raw payload, applies the transition for the
// event type exactly once per event id and records the event as processed.
func (s *webhookService) ProcessEvent(ctx context.Context, payload []byte, signatureHeader string) error {
	event, err := s.gateway.VerifyEvent(payload, signatureHeader)
	if err != nil {
		s.logger.Warn().Err(err).Msg("webhook signature verification failed")
		return err
	}

	processed, err := s.eventRepo.Exists(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("failed to check event ledger: %w", err)
	}
	if processed {
		s.logger.Info().
			Str("event_id", event.ID).
			Str("event_type", event.Type).
			Msg("duplicate webhook event skipped")
		return nil
	}

	switch event.Type {
	case payment.EventCheckoutSessionCompleted:
		if event.Session == nil {
			s.logger.Error().Str("event_id", event.ID).Msg("checkout completion without session payload")
			break
		}
		if event.Session.Mode == payment.ModeSubscription {
			err = s.completeSubscription(ctx, event.Session)
		} else {
			err = s.completeOrder(ctx, event.Session)
		}
		if err != nil {
			return err
		}

	case payment.EventInvoicePaid:
		s.logger.Info().Str("event_id", event.ID).Msg("subscription invoice paid")

	case payment.EventSubscriptionCreated:
		s.logger.Info().Str("event_id", event.ID).Msg("gateway subscription created")

	default:
		s.logger.Debug().
			Str("event_id", event.ID).
			Str("event_type", event.Type).
			Msg("unhandled webhook event type")
	}

	if err := s.eventRepo.MarkProcessed(ctx, event.ID, event.Type); err != nil {
		return fmt.Errorf("failed to record processed event: %w", err)
	}
	return nil
}

// completeOrder marks the pending order behind a completed payment session
// as paid. When no pending row matches, a paid order is created from the
// session data so payment confirmations are never dropped.
func (s *webhookService) completeOrder(ctx context.Context, session *payment.SessionData) error {
	updated, err := s.kongleRepo.MarkPaidBySession(ctx, session.ID, session.AmountTotal)
	if err != nil {
		return fmt.Errorf("failed to mark order paid: %w", err)
	}
	if updated {
		s.logger.Info().
			Str("session_id", session.ID).
			Int64("amount_total", session.AmountTotal).
			Msg("order marked paid")
		return nil
	}

	// The session id never landed on a pending row. Try the order named in
	// the session metadata, then fall back to creating a paid record.
	if raw, ok := session.Metadata[payment.MetadataKongleID]; ok {
		if id, parseErr := uuid.Parse(raw); parseErr == nil {
			if setErr := s.kongleRepo.SetCheckoutSession(ctx, id, session.ID); setErr == nil {
				updated, err = s.kongleRepo.MarkPaidBySession(ctx, session.ID, session.AmountTotal)
				if err != nil {
					return fmt.Errorf("failed to mark order paid: %w", err)
				}
				if updated {
					s.logger.Info().
						Str("kongle_id", id.String()).
						Str("session_id", session.ID).
						Msg("order recovered from session metadata and marked paid")
					return nil
				}
			}
		}
	}

	// Match on the unique session identifier before inserting: a redelivery
	// whose event id missed the ledger still must not create a second row
	// for an order that is already paid.
	existing, err := s.kongleRepo.GetBySessionID(ctx, session.ID)
	if err != nil {
		return fmt.Errorf("failed to look up order by session: %w", err)
	}
	if existing != nil {
		s.logger.Info().
			Str("kongle_id", existing.ID.String()).
			Str("session_id", session.ID).
			Msg("order already settled for session; redelivery acknowledged")
		return nil
	}

	kongle := s.kongleFromSession(session)
	if err := s.kongleRepo.Create(ctx, kongle); err != nil {
		return fmt.Errorf("failed to create paid order from session: %w", err)
	}
	s.logger.Warn().
		Str("kongle_id", kongle.ID.String()).
		Str("session_id", session.ID).
		Msg("no pending order matched session; created paid record")
	return nil
}

// completeSubscription activates the subscription behind a completed
// subscription session, falling back to the customer's most recent pending
// subscription and finally to creating an active record.
func (s *webhookService) completeSubscription(ctx context.Context, session *payment.SessionData) error {
	updated, err := s.subscriptionRepo.ActivateBySession(ctx, session.ID)
	if err != nil {
		return fmt.Errorf("failed to activate subscription: %w", err)
	}
	if updated {
		s.logger.Info().Str("session_id", session.ID).Msg("subscription activated")
		return nil
	}

	if session.CustomerEmail != "" {
		updated, err = s.subscriptionRepo.ActivateByEmail(ctx, session.CustomerEmail, session.ID)
		if err != nil {
			return fmt.Errorf("failed to activate subscription by email: %w", err)
		}
		if updated {
			s.logger.Info().
				Str("session_id", session.ID).
				Str("email", session.CustomerEmail).
				Msg("subscription activated by customer email")
			return nil
		}
	}

	// Same pre-insert session match as the order path; an already-active
	// subscription means this delivery is a replay.
	existing, err := s.subscriptionRepo.GetBySessionID(ctx, session.ID)
	if err != nil {
		return fmt.Errorf("failed to look up subscription by session: %w", err)
	}
	if existing != nil {
		s.logger.Info().
			Str("subscription_id", existing.ID.String()).
			Str("session_id", session.ID).
			Msg("subscription already settled for session; redelivery acknowledged")
		return nil
	}

	subscription := s.subscriptionFromSession(session)
	if err := s.subscriptionRepo.Create(ctx, subscription); err != nil {
		return fmt.Errorf("failed to create active subscription from session: %w", err)
	}
	s.logger.Warn().
		Str("subscription_id", subscription.ID.String()).
		Str("session_id", session.ID).
		Msg("no pending subscription matched session; created active record")
	return nil
}

func (s *webhookService) kongleFromSession(session *payment.SessionData) *model.Kongle {
	pineconeType := session.Metadata[payment.MetadataPineconeType]
	if !catalog.ValidTier(pineconeType) {
		pineconeType = catalog.DefaultTier
	}

	now := time.Now()
	sessionID := session.ID
	amountPaid := session.AmountTotal
	kongle := &model.Kongle{
		ID:                uuid.New(),
		Sender:            "unknown",
		Recipient:         "unknown",
		Address:           "unknown",
		QuoteType:         "funny",
		PineconeType:      pineconeType,
		PriceCents:        session.AmountTotal,
		CheckoutSessionID: &sessionID,
		Status:            model.KongleStatusPaid,
		AmountPaidCents:   &amountPaid,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if session.CustomerEmail != "" {
		email := session.CustomerEmail
		kongle.CustomerEmail = &email
	}
	return kongle
}

func (s *webhookService) subscriptionFromSession(session *payment.SessionData) *model.Subscription {
	pineconeType := session.Metadata[payment.MetadataPineconeType]
	if !catalog.ValidTier(pineconeType) {
		pineconeType = catalog.DefaultTier
	}

	now := time.Now()
	sessionID := session.ID
	return &model.Subscription{
		ID:                uuid.New(),
		Email:             session.CustomerEmail,
		Recipient:         "unknown",
		Address:           "unknown",
		PineconeType:      pineconeType,
		BillingInterval:   "monthly",
		Active:            true,
		CheckoutSessionID: &sessionID,
		Status:            model.SubscriptionStatusActive,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}
