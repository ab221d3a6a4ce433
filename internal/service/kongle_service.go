package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kongle-express/internal/catalog"
	"kongle-express/internal/model"
	"kongle-express/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// kongleService implements KongleService.
type kongleService struct {
	kongleRepo repository.KongleRepository
	logger     zerolog.Logger
}

// NewKongleService creates a new kongle order service.
func NewKongleService(kongleRepo repository.KongleRepository, logger zerolog.Logger) KongleService {
	return &kongleService{
		kongleRepo: kongleRepo,
		logger:     logger.With().Str("service", "kongle").Logger(),
	}
}

// Create validates an order payload and persists it with status pending.
// The price is computed from the tier table; nothing the client sends can
// influence it.
func (s *kongleService) Create(ctx context.Context, req *model.KongleRequest) (*model.Kongle, error) {
	if err := validateKongleRequest(req); err != nil {
		s.logger.Warn().Err(err).Msg("invalid order payload")
		return nil, err
	}

	tier, _ := catalog.LookupTier(req.PineconeType)

	now := time.Now()
	kongle := &model.Kongle{
		ID:             uuid.New(),
		Sender:         strings.TrimSpace(req.Sender),
		Recipient:      strings.TrimSpace(req.Recipient),
		Address:        strings.TrimSpace(req.Address),
		Message:        req.Message,
		QuoteType:      req.QuoteType,
		PineconeType:   req.PineconeType,
		PriceCents:     tier.PriceCents,
		IsSubscription: req.IsSubscription,
		Status:         model.KongleStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.kongleRepo.Create(ctx, kongle); err != nil {
		s.logger.Error().Err(err).Str("kongle_id", kongle.ID.String()).Msg("failed to create kongle")
		return nil, fmt.Errorf("failed to create kongle: %w", err)
	}

	s.logger.Info().
		Str("kongle_id", kongle.ID.String()).
		Str("pinecone_type", kongle.PineconeType).
		Int64("price_cents", kongle.PriceCents).
		Msg("kongle order created")

	return kongle, nil
}

// List retrieves all orders, newest first.
func (s *kongleService) List(ctx context.Context) ([]model.Kongle, error) {
	kongles, err := s.kongleRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list kongles")
		return nil, fmt.Errorf("failed to list kongles: %w", err)
	}
	return kongles, nil
}

// validateKongleRequest checks required fields and enum values before any
// persistence attempt.
func validateKongleRequest(req *model.KongleRequest) error {
	if req == nil {
		return model.NewMissingFieldError("request body")
	}

	for _, field := range []struct {
		name  string
		value string
	}{
		{"sender", req.Sender},
		{"recipient", req.Recipient},
		{"address", req.Address},
	} {
		if strings.TrimSpace(field.value) == "" {
			return model.NewMissingFieldError(field.name)
		}
	}

	if !catalog.ValidQuoteType(req.QuoteType) {
		return model.ErrInvalidQuoteType
	}

	if !catalog.ValidTier(req.PineconeType) {
		return model.ErrInvalidPineconeType
	}

	return nil
}
