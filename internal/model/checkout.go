package model

import "github.com/google/uuid"

// CheckoutRequest starts a hosted checkout session. KongleID or
// SubscriptionID, when present, is the persisted row the resulting session
// identifier is recorded against.
type CheckoutRequest struct {
	PineconeType   string     `json:"pineconeType"`
	Subscription   bool       `json:"subscription"`
	KongleID       *uuid.UUID `json:"kongleId,omitempty"`
	SubscriptionID *uuid.UUID `json:"subscriptionId,omitempty"`
}

// CheckoutResponse carries the hosted checkout redirect URL.
type CheckoutResponse struct {
	URL string `json:"url"`
}

// VerifyResponse is consumed by the success page after the customer returns
// from the hosted checkout. Status is "success" once the webhook has
// confirmed payment, "pending" while it is still outstanding.
type VerifyResponse struct {
	Status         string `json:"status"`
	IsSubscription bool   `json:"isSubscription"`
	PineconeType   string `json:"pineconeType,omitempty"`
	SessionID      string `json:"sessionId"`
}
