package model

import (
	"time"

	"github.com/google/uuid"
)

// KongleStatus is the payment lifecycle state of a kongle order.
type KongleStatus string

const (
	KongleStatusPending KongleStatus = "pending"
	KongleStatusPaid    KongleStatus = "paid"
	KongleStatusFailed  KongleStatus = "failed"
)

// Kongle represents one physical pinecone shipment. Order history is
// append-only; rows are never deleted.
type Kongle struct {
	ID                uuid.UUID    `json:"id" db:"id"`
	Sender            string       `json:"sender" db:"sender"`
	Recipient         string       `json:"recipient" db:"recipient"`
	Address           string       `json:"address" db:"address"`
	Message           *string      `json:"message,omitempty" db:"message"`
	QuoteType         string       `json:"quoteType" db:"quote_type"`
	PineconeType      string       `json:"pineconeType" db:"pinecone_type"`
	PriceCents        int64        `json:"priceCents" db:"price_cents"`
	IsSubscription    bool         `json:"isSubscription" db:"is_subscription"`
	CustomerEmail     *string      `json:"customerEmail,omitempty" db:"customer_email"`
	CheckoutSessionID *string      `json:"checkoutSessionId,omitempty" db:"checkout_session_id"`
	Status            KongleStatus `json:"status" db:"status"`
	AmountPaidCents   *int64       `json:"amountPaidCents,omitempty" db:"amount_paid_cents"`
	CreatedAt         time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time    `json:"updatedAt" db:"updated_at"`
}

// KongleRequest is the order form payload. There is deliberately no price
// field: the price is always derived server-side from the pinecone type.
type KongleRequest struct {
	Sender         string  `json:"sender"`
	Recipient      string  `json:"recipient"`
	Address        string  `json:"address"`
	Message        *string `json:"message,omitempty"`
	QuoteType      string  `json:"quoteType"`
	PineconeType   string  `json:"pineconeType"`
	IsSubscription bool    `json:"isSubscription"`
}
