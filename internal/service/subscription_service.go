package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"kongle-express/internal/catalog"
	"kongle-express/internal/model"
	"kongle-express/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// subscriptionService implements SubscriptionService.
type subscriptionService struct {
	subscriptionRepo repository.SubscriptionRepository
	logger           zerolog.Logger
}

// NewSubscriptionService creates a new subscription service.
func NewSubscriptionService(subscriptionRepo repository.SubscriptionRepository, logger zerolog.Logger) SubscriptionService {
	return &subscriptionService{
		subscriptionRepo: subscriptionRepo,
		logger:           logger.With().Str("service", "subscription").Logger(),
	}
}

// Create validates a subscribe payload and persists it with status pending.
func (s *subscriptionService) Create(ctx context.Context, req *model.SubscriptionRequest) (*model.Subscription, error) {
	if err := validateSubscriptionRequest(req); err != nil {
		s.logger.Warn().Err(err).Msg("invalid subscription payload")
		return nil, err
	}

	pineconeType := req.PineconeType
	if pineconeType == "" {
		pineconeType = catalog.DefaultTier
	}

	now := time.Now()
	subscription := &model.Subscription{
		ID:              uuid.New(),
		Email:           strings.TrimSpace(req.Email),
		Recipient:       strings.TrimSpace(req.Recipient),
		Address:         strings.TrimSpace(req.Address),
		PineconeType:    pineconeType,
		BillingInterval: "monthly",
		Active:          false,
		Status:          model.SubscriptionStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.subscriptionRepo.Create(ctx, subscription); err != nil {
		s.logger.Error().Err(err).Str("subscription_id", subscription.ID.String()).Msg("failed to create subscription")
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	s.logger.Info().
		Str("subscription_id", subscription.ID.String()).
		Str("email", subscription.Email).
		Msg("subscription created")

	return subscription, nil
}

// List retrieves all subscriptions, newest first.
func (s *subscriptionService) List(ctx context.Context) ([]model.Subscription, error) {
	subscriptions, err := s.subscriptionRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list subscriptions")
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return subscriptions, nil
}

// validateSubscriptionRequest checks required fields and the email format.
func validateSubscriptionRequest(req *model.SubscriptionRequest) error {
	if req == nil {
		return model.NewMissingFieldError("request body")
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		return model.NewMissingFieldError("email")
	}

	// Reject display-name forms like "Alice <a@example.com>"; the stored
	// value must be a bare address.
	parsed, err := mail.ParseAddress(email)
	if err != nil || parsed.Address != email {
		return model.ErrInvalidEmail
	}

	if strings.TrimSpace(req.Recipient) == "" {
		return model.NewMissingFieldError("recipient")
	}

	if strings.TrimSpace(req.Address) == "" {
		return model.NewMissingFieldError("address")
	}

	if req.PineconeType != "" && !catalog.ValidTier(req.PineconeType) {
		return model.ErrInvalidPineconeType
	}

	return nil
}
