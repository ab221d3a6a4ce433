package service

import (
	"context"

	"kongle-express/internal/model"
	"kongle-express/internal/payment"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockKongleRepository is a mock implementation of KongleRepository.
type MockKongleRepository struct {
	mock.Mock
}

func (m *MockKongleRepository) Create(ctx context.Context, kongle *model.Kongle) error {
	args := m.Called(ctx, kongle)
	return args.Error(0)
}

func (m *MockKongleRepository) List(ctx context.Context) ([]model.Kongle, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Kongle), args.Error(1)
}

func (m *MockKongleRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Kongle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Kongle), args.Error(1)
}

func (m *MockKongleRepository) GetBySessionID(ctx context.Context, sessionID string) (*model.Kongle, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Kongle), args.Error(1)
}

func (m *MockKongleRepository) SetCheckoutSession(ctx context.Context, id uuid.UUID, sessionID string) error {
	args := m.Called(ctx, id, sessionID)
	return args.Error(0)
}

func (m *MockKongleRepository) MarkPaidBySession(ctx context.Context, sessionID string, amountPaidCents int64) (bool, error) {
	args := m.Called(ctx, sessionID, amountPaidCents)
	return args.Bool(0), args.Error(1)
}

// MockSubscriptionRepository is a mock implementation of SubscriptionRepository.
type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) Create(ctx context.Context, subscription *model.Subscription) error {
	args := m.Called(ctx, subscription)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) List(ctx context.Context) ([]model.Subscription, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) GetBySessionID(ctx context.Context, sessionID string) (*model.Subscription, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) SetCheckoutSession(ctx context.Context, id uuid.UUID, sessionID string) error {
	args := m.Called(ctx, id, sessionID)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) ActivateBySession(ctx context.Context, sessionID string) (bool, error) {
	args := m.Called(ctx, sessionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSubscriptionRepository) ActivateByEmail(ctx context.Context, email, sessionID string) (bool, error) {
	args := m.Called(ctx, email, sessionID)
	return args.Bool(0), args.Error(1)
}

// MockWebhookEventRepository is a mock implementation of WebhookEventRepository.
type MockWebhookEventRepository struct {
	mock.Mock
}

func (m *MockWebhookEventRepository) Exists(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *MockWebhookEventRepository) MarkProcessed(ctx context.Context, eventID, eventType string) error {
	args := m.Called(ctx, eventID, eventType)
	return args.Error(0)
}

// MockGateway is a mock implementation of payment.Gateway.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateCheckoutSession(ctx context.Context, params payment.CheckoutParams) (*payment.CheckoutSession, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.CheckoutSession), args.Error(1)
}

func (m *MockGateway) VerifyEvent(payload []byte, signatureHeader string) (*payment.Event, error) {
	args := m.Called(payload, signatureHeader)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Event), args.Error(1)
}
