package service

import (
	"context"
	"fmt"

	"kongle-express/internal/catalog"
	"kongle-express/internal/model"
	"kongle-express/internal/payment"
	"kongle-express/internal/repository"

	"github.com/rs/zerolog"
)

// checkoutService implements CheckoutService.
type checkoutService struct {
	kongleRepo       repository.KongleRepository
	subscriptionRepo repository.SubscriptionRepository
	gateway          payment.Gateway
	logger           zerolog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	kongleRepo repository.KongleRepository,
	subscriptionRepo repository.SubscriptionRepository,
	gateway payment.Gateway,
	logger zerolog.Logger,
) CheckoutService {
	return &checkoutService{
		kongleRepo:       kongleRepo,
		subscriptionRepo: subscriptionRepo,
		gateway:          gateway,
		logger:           logger.With().Str("service", "checkout").Logger(),
	}
}

// InitiateCheckout creates a hosted checkout session and returns its
// redirect URL. The referenced order or subscription row, when given, gets
// the session identifier stamped onto it so the later webhook can find it.
func (s *checkoutService) InitiateCheckout(ctx context.Context, req *model.CheckoutRequest) (*model.CheckoutResponse, error) {
	if req == nil {
		return nil, model.NewMissingFieldError("request body")
	}

	pineconeType := req.PineconeType
	if pineconeType == "" && req.Subscription {
		pineconeType = catalog.DefaultTier
	}

	tier, ok := catalog.LookupTier(pineconeType)
	if !ok {
		s.logger.Warn().Str("pinecone_type", req.PineconeType).Msg("checkout requested for unknown tier")
		return nil, model.ErrInvalidPineconeType
	}

	mode := payment.ModePayment
	productName := tier.Name
	if req.Subscription {
		mode = payment.ModeSubscription
		productName += " Subscription"
	}

	metadata := map[string]string{
		payment.MetadataPineconeType: pineconeType,
		payment.MetadataProduct:      productName,
	}
	if req.KongleID != nil {
		metadata[payment.MetadataKongleID] = req.KongleID.String()
	}
	if req.SubscriptionID != nil {
		metadata[payment.MetadataSubscriptionID] = req.SubscriptionID.String()
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, payment.CheckoutParams{
		Mode:        mode,
		ProductName: productName,
		UnitAmount:  tier.PriceCents,
		Metadata:    metadata,
	})
	if err != nil {
		return nil, err
	}

	// Recording the session id is best effort: the session already exists
	// and the customer must still get their redirect URL. The webhook can
	// recover via metadata if this write is lost.
	if req.KongleID != nil {
		if err := s.kongleRepo.SetCheckoutSession(ctx, *req.KongleID, session.ID); err != nil {
			s.logger.Warn().
				Err(err).
				Str("kongle_id", req.KongleID.String()).
				Str("session_id", session.ID).
				Msg("failed to record checkout session on order")
		}
	}
	if req.SubscriptionID != nil {
		if err := s.subscriptionRepo.SetCheckoutSession(ctx, *req.SubscriptionID, session.ID); err != nil {
			s.logger.Warn().
				Err(err).
				Str("subscription_id", req.SubscriptionID.String()).
				Str("session_id", session.ID).
				Msg("failed to record checkout session on subscription")
		}
	}

	s.logger.Info().
		Str("session_id", session.ID).
		Str("mode", string(mode)).
		Str("pinecone_type", pineconeType).
		Msg("checkout initiated")

	return &model.CheckoutResponse{URL: session.URL}, nil
}

// VerifySession reports the state behind a checkout session for the success
// page. Orders are checked before subscriptions; returns (nil, nil) when the
// session is unknown.
func (s *checkoutService) VerifySession(ctx context.Context, sessionID string) (*model.VerifyResponse, error) {
	kongle, err := s.kongleRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up order by session: %w", err)
	}
	if kongle != nil {
		status := "pending"
		if kongle.Status == model.KongleStatusPaid {
			status = "success"
		}
		return &model.VerifyResponse{
			Status:         status,
			IsSubscription: false,
			PineconeType:   kongle.PineconeType,
			SessionID:      sessionID,
		}, nil
	}

	subscription, err := s.subscriptionRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up subscription by session: %w", err)
	}
	if subscription != nil {
		status := "pending"
		if subscription.Status == model.SubscriptionStatusActive {
			status = "success"
		}
		return &model.VerifyResponse{
			Status:         status,
			IsSubscription: true,
			PineconeType:   subscription.PineconeType,
			SessionID:      sessionID,
		}, nil
	}

	return nil, nil
}
