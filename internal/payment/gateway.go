package payment

import (
	"context"
	"encoding/json"
	"strings"

	"kongle-express/internal/config"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
)

// Mode selects between a one-time payment and a recurring subscription
// checkout session.
type Mode string

const (
	ModePayment      Mode = "payment"
	ModeSubscription Mode = "subscription"
)

// Webhook event types the application reacts to.
const (
	EventCheckoutSessionCompleted = "checkout.session.completed"
	EventInvoicePaid              = "invoice.paid"
	EventSubscriptionCreated      = "customer.subscription.created"
)

// Metadata keys attached to checkout sessions.
const (
	MetadataKongleID       = "kongleId"
	MetadataSubscriptionID = "subscriptionId"
	MetadataPineconeType   = "pineconeType"
	MetadataProduct        = "product"
)

// CheckoutParams describes a single-line-item hosted checkout session.
// UnitAmount is in integer minor currency units; the conversion from tier to
// cents happens in the catalog, never here.
type CheckoutParams struct {
	Mode        Mode
	ProductName string
	UnitAmount  int64
	Metadata    map[string]string
}

// CheckoutSession is the created hosted checkout session the customer is
// redirected to.
type CheckoutSession struct {
	ID  string
	URL string
}

// Event is a verified webhook event. Session is populated for
// checkout.session.* events and nil otherwise.
type Event struct {
	ID      string
	Type    string
	Session *SessionData
}

// SessionData is the checkout session carried inside a webhook event.
type SessionData struct {
	ID            string
	Mode          Mode
	AmountTotal   int64
	CustomerEmail string
	Metadata      map[string]string
}

// Gateway wraps the hosted-checkout payment provider.
type Gateway interface {
	// CreateCheckoutSession creates a hosted checkout session and returns
	// its redirect URL. Sessions are not idempotent: re-invocation creates
	// a duplicate session.
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)

	// VerifyEvent verifies a webhook payload against the signing secret
	// using the exact raw request bytes. Returns a SignatureError on any
	// verification failure; an unverified event must never be processed.
	VerifyEvent(payload []byte, signatureHeader string) (*Event, error)
}

// stripeGateway implements Gateway against the Stripe API.
type stripeGateway struct {
	client        *client.API
	webhookSecret string
	successURL    string
	cancelURL     string
	logger        zerolog.Logger
}

// NewStripeGateway creates a Stripe-backed payment gateway from injected
// configuration.
func NewStripeGateway(cfg config.StripeConfig, logger zerolog.Logger) Gateway {
	return &stripeGateway{
		client:        client.New(cfg.SecretKey, nil),
		webhookSecret: cfg.WebhookSecret,
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
		logger:        logger.With().Str("gateway", "stripe").Logger(),
	}
}

// CreateCheckoutSession creates a hosted checkout session with one line item.
func (g *stripeGateway) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*CheckoutSession, error) {
	priceData := &stripe.CheckoutSessionLineItemPriceDataParams{
		Currency:   stripe.String("usd"),
		UnitAmount: stripe.Int64(p.UnitAmount),
		ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(p.ProductName),
		},
	}
	if p.Mode == ModeSubscription {
		priceData.Recurring = &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
			Interval: stripe.String("month"),
		}
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(p.Mode)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: priceData,
				Quantity:  stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(g.successURL),
		CancelURL:  stripe.String(g.cancelURL),
	}
	params.Context = ctx
	for key, value := range p.Metadata {
		params.AddMetadata(key, value)
	}

	session, err := g.client.CheckoutSessions.New(params)
	if err != nil {
		g.logger.Error().
			Err(err).
			Str("mode", string(p.Mode)).
			Str("product", p.ProductName).
			Msg("failed to create checkout session")
		return nil, &GatewayError{Err: err}
	}

	g.logger.Info().
		Str("session_id", session.ID).
		Str("mode", string(p.Mode)).
		Int64("unit_amount", p.UnitAmount).
		Msg("checkout session created")

	return &CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

// VerifyEvent verifies and decodes a webhook payload.
func (g *stripeGateway) VerifyEvent(payload []byte, signatureHeader string) (*Event, error) {
	stripeEvent, err := webhook.ConstructEventWithOptions(payload, signatureHeader, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, &SignatureError{Err: err}
	}

	event := &Event{
		ID:   stripeEvent.ID,
		Type: string(stripeEvent.Type),
	}

	if strings.HasPrefix(event.Type, "checkout.session.") {
		var session stripe.CheckoutSession
		if err := json.Unmarshal(stripeEvent.Data.Raw, &session); err != nil {
			// Verified but undecodable; the caller acknowledges it so the
			// gateway stops redelivering.
			g.logger.Error().
				Err(err).
				Str("event_id", event.ID).
				Msg("failed to decode checkout session payload")
			return event, nil
		}

		email := session.CustomerEmail
		if email == "" && session.CustomerDetails != nil {
			email = session.CustomerDetails.Email
		}

		event.Session = &SessionData{
			ID:            session.ID,
			Mode:          Mode(session.Mode),
			AmountTotal:   session.AmountTotal,
			CustomerEmail: email,
			Metadata:      session.Metadata,
		}
	}

	return event, nil
}
