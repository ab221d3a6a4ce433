package model

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus is the lifecycle state of a recurring delivery.
type SubscriptionStatus string

const (
	SubscriptionStatusPending   SubscriptionStatus = "pending"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

// Subscription represents a recurring monthly pinecone delivery commitment.
type Subscription struct {
	ID                uuid.UUID          `json:"id" db:"id"`
	Email             string             `json:"email" db:"email"`
	Recipient         string             `json:"recipient" db:"recipient"`
	Address           string             `json:"address" db:"address"`
	PineconeType      string             `json:"pineconeType" db:"pinecone_type"`
	BillingInterval   string             `json:"interval" db:"billing_interval"`
	Active            bool               `json:"active" db:"active"`
	CheckoutSessionID *string            `json:"checkoutSessionId,omitempty" db:"checkout_session_id"`
	Status            SubscriptionStatus `json:"status" db:"status"`
	CreatedAt         time.Time          `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time          `json:"updatedAt" db:"updated_at"`
}

// SubscriptionRequest is the subscribe form payload.
type SubscriptionRequest struct {
	Email        string `json:"email"`
	Recipient    string `json:"recipient"`
	Address      string `json:"address"`
	PineconeType string `json:"pineconeType,omitempty"`
}
