package service

import (
	"context"
	"errors"
	"testing"

	"kongle-express/internal/model"
	"kongle-express/internal/payment"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newWebhookServiceForTest() (WebhookService, *MockKongleRepository, *MockSubscriptionRepository, *MockWebhookEventRepository, *MockGateway) {
	mockKongleRepo := new(MockKongleRepository)
	mockSubRepo := new(MockSubscriptionRepository)
	mockEventRepo := new(MockWebhookEventRepository)
	mockGateway := new(MockGateway)
	service := NewWebhookService(mockKongleRepo, mockSubRepo, mockEventRepo, mockGateway, zerolog.Nop())
	return service, mockKongleRepo, mockSubRepo, mockEventRepo, mockGateway
}

func TestWebhookService_ProcessEvent_PaymentCompleted(t *testing.T) {
	ctx := context.Background()
	service, mockKongleRepo, _, mockEventRepo, mockGateway := newWebhookServiceForTest()

	payload := []byte(`{"id":"evt_1"}`)
	event := &payment.Event{
		ID:   "evt_1",
		Type: payment.EventCheckoutSessionCompleted,
		Session: &payment.SessionData{
			ID:          "cs_test_123",
			Mode:        payment.ModePayment,
			AmountTotal: 3000,
		},
	}

	mockGateway.On("VerifyEvent", payload, "sig").Return(event, nil)
	mockEventRepo.On("Exists", ctx, "evt_1").Return(false, nil)
	mockKongleRepo.On("MarkPaidBySession", ctx, "cs_test_123", int64(3000)).Return(true, nil)
	mockEventRepo.On("MarkProcessed", ctx, "evt_1", payment.EventCheckoutSessionCompleted).Return(nil)

	err := service.ProcessEvent(ctx, payload, "sig")

	require.NoError(t, err)
	mockGateway.AssertExpectations(t)
	mockKongleRepo.AssertExpectations(t)
	mockEventRepo.AssertExpectations(t)
}

func TestWebhookService_ProcessEvent_DuplicateEventSkipped(t *testing.T) {
	ctx := context.Background()
	service, mockKongleRepo, _, mockEventRepo, mockGateway := newWebhookServiceForTest()

	payload := []byte(`{"id":"evt_1"}`)
	event := &payment.Event{
		ID:   "evt_1",
		Type: payment.EventCheckoutSessionCompleted,
		Session: &payment.SessionData{
			ID:          "cs_test_123",
			Mode:        payment.ModePayment,
			AmountTotal: 3000,
		},
	}

	mockGateway.On("VerifyEvent", payload, "sig").Return(event, nil)
	mockEventRepo.On("Exists", ctx, "evt_1").Return(true, nil)

	err := service.ProcessEvent(ctx, payload, "sig")

	require.NoError(t, err)
	mockKongleRepo.AssertNotCalled(t, "MarkPaidBySession")
	mockEventRepo.AssertNotCalled(t, "MarkProcessed")
}

func TestWebhookService_ProcessEvent_InvalidSignature(t *testing.T) {
	ctx := context.Background()
	service, mockKongleRepo, _, mockEventRepo, mockGateway := newWebhookServiceForTest()

	payload := []byte(`{"id":"evt_1"}`)
	sigErr := &payment.SignatureError{Err: errors.New("no valid signature")}

	mockGateway.On("VerifyEvent", payload, "bad-sig").Return(nil, sigErr)

	err := service.ProcessEvent(ctx, payload, "bad-sig")

	require.Error(t, err)
	var se *payment.SignatureError
	assert.True(t, errors.As(err, &se))
	mockEventRepo.AssertNotCalled(t, "Exists")
	mockKongleRepo.AssertNotCalled(t, "MarkPaidBySession")
}

func TestWebhookService_ProcessEvent_PaymentFallbackToMetadata(t *testing.T) {
	ctx := context.Background()
	service, mockKongleRepo, _, mockEventRepo, mockGateway := newWebhookServiceForTest()

	kongleID := uuid.New()
	payload := []byte(`{"id":"evt_2"}`)
	event := &payment.Event{
		ID:   "evt_2",
		Type: payment.EventCheckoutSessionCompleted,
		Session: &payment.SessionData{
			ID:          "cs_test_456",
			Mode:        payment.ModePayment,
			AmountTotal: 2000,
			Metadata:    map[string]string{payment.MetadataKongleID: kongleID.String()},
		},
	}

	mockGateway.On("VerifyEvent", payload, "sig").Return(event, nil)
	mockEventRepo.On("Exists", ctx, "evt_2").Return(false, nil)
	// The session id never landed on the order; the first update misses.
	mockKongleRepo.On("MarkPaidBySession", ctx, "cs_test_456", int64(2000)).Return(false, nil).Once()
	mockKongleRepo.On("SetCheckoutSession", ctx, kongleID, "cs_test_456").Return(nil)
	mockKongleRepo.On("MarkPaidBySession", ctx, "cs_test_456", int64(2000)).Return(true, nil).Once()
	mockEventRepo.On("MarkProcessed", ctx, "evt_2", payment.EventCheckoutSessionCompleted).Return(nil)

	err := service.ProcessEvent(ctx, payload, "sig")

	require.NoError(t, err)
	mockKongleRepo.AssertExpectations(t)
	mockKongleRepo.AssertNotCalled(t, "Create")
}

func TestWebhookService_ProcessEvent_PaymentFallbackCreatesPaidOrder(t *testing.T) {
	ctx := context.Background()
	service, mockKongleRepo, _, mockEventRepo, mockGateway := newWebhookServiceForTest()

	payload := []byte(`{"id":"evt_3"}`)
	event := &payment.Event{
		ID:   "evt_3",
		Type: payment.EventCheckoutSessionCompleted,
		Session: &payment.SessionData{
			ID:            "cs_test_789",
			Mode:          payment.ModePayment,
			AmountTotal:   100000,
			CustomerEmail: "ola@example.com",
			Metadata:      map[string]string{payment.MetadataPineconeType: "ultra"},
		},
	}

	mockGateway.On("VerifyEvent", payload, "sig").Return(event, nil)
	mockEventRepo.On("Exists", ctx, "evt_3").Return(false, nil)
	mockKongleRepo.On("MarkPaidBySession", ctx, "cs_test_789", int64(100000)).Return(false, nil)
	mockKongleRepo.On("GetBySessionID", ctx, "cs_test_789").Return(nil, nil)
	mockKongleRepo.On("Create", ctx, mock.MatchedBy(func(k *model.Kongle) bool {
		return k.Status == model.KongleStatusPaid &&
			k.PineconeType == "ultra" &&
			k.CheckoutSessionID != nil && *k.CheckoutSessionID == "cs_test_789" &&
			k.AmountPaidCents != nil && *k.AmountPaidCents == 100000 &&
			k.CustomerEmail != nil && *k.CustomerEmail == "ola@example.com"
	})).Return(nil)
	mockEventRepo.On("MarkProcessed", ctx, "evt_3", payment.EventCheckoutSessionCompleted).Return(nil)

	err := service.ProcessEvent(ctx, payload, "sig")

	require.NoError(t, err)
	mockKongleRepo.AssertExpectations(t)
	mockEventRepo.AssertExpectations(t)
}

func TestWebhookService_ProcessEvent_ReplayAfterLedgerMissIsAcknowledged(t *testing.T) {
	ctx := context.Background()
	service, mockKongleRepo, _, mockEventRepo, mockGateway := newWebhookServiceForTest()

	// A redelivery whose event id never reached the ledger: the order is
	// already paid, so the pending-guard update misses. The session match
	// must stop a duplicate insert and let the event be acknowledged.
	sessionID := "cs_test_replayed"
	paid := &model.Kongle{
		ID:                uuid.New(),
		PineconeType:      "deluxe",
		CheckoutSessionID: &sessionID,
		Status:            model.KongleStatusPaid,
	}

	payload := []byte(`{"id":"evt_replay"}`)
	event := &payment.Event{
		ID:   "evt_replay",
		Type: payment.EventCheckoutSessionCompleted,
		Session: &payment.SessionData{
			ID:          sessionID,
			Mode:        payment.ModePayment,
			AmountTotal: 3000,
		},
	}

	mockGateway.On("VerifyEvent", payload, "sig").Return(event, nil)
	mockEventRepo.On("Exists", ctx, "evt_replay").Return(false, nil)
	mockKongleRepo.On("MarkPaidBySession", ctx, sessionID, int64(3000)).Return(false, nil)
	mockKongleRepo.On("GetBySessionID", ctx, sessionID).Return(paid, nil)
	mockEventRepo.On("MarkProcessed", ctx, "evt_replay", payment.EventCheckoutSessionCompleted).Return(nil)

	err := service.ProcessEvent(ctx, payload, "sig")

	require.NoError(t, err)
	mockKongleRepo.AssertNotCalled(t, "Create")
	mockEventRepo.AssertExpectations(t)
}

func TestWebhookService_ProcessEvent_SubscriptionReplayAfterLedgerMiss(t *testing.T) {
	ctx := context.Background()
	service, _, mockSubRepo, mockEventRepo, mockGateway := newWebhookServiceForTest()

	sessionID := "cs_test_sub_replayed"
	active := &model.Subscription{
		ID:                uuid.New(),
		Email:             "kari@example.com",
		CheckoutSessionID: &sessionID,
		Status:            model.SubscriptionStatusActive,
		Active:            true,
	}

	payload := []byte(`{"id":"evt_sub_replay"}`)
	event := &payment.Event{
		ID:   "evt_sub_replay",
		Type: payment.EventCheckoutSessionCompleted,
		Session: &payment.SessionData{
			ID:            sessionID,
			Mode:          payment.ModeSubscription,
			CustomerEmail: "kari@example.com",
		},
	}

	mockGateway.On("VerifyEvent", payload, "sig").Return(event, nil)
	mockEventRepo.On("Exists", ctx, "evt_sub_replay").Return(false, nil)
	mockSubRepo.On("ActivateBySession", ctx, sessionID).Return(false, nil)
	mockSubRepo.On("ActivateByEmail", ctx, "kari@example.com", sessionID).Return(false, nil)
	mockSubRepo.On("GetBySessionID", ctx, sessionID).Return(active, nil)
	mockEventRepo.On("MarkProcessed", ctx, "evt_sub_replay", payment.EventCheckoutSessionCompleted).Return(nil)

	err := service.ProcessEvent(ctx, payload, "sig")

	require.NoError(t, err)
	mockSubRepo.AssertNotCalled(t, "Create")
	mockEventRepo.AssertExpectations(t)
}

func TestWebhookService_ProcessEvent_SubscriptionActivated(t *testing.T) {
	ctx := context.Background()
	service, _, mockSubRepo, mockEventRepo, mockGateway := newWebhookServiceForTest()

	payload := []byte(`{"id":"evt_4"}`)
	event := &payment.Event{
		ID:   "evt_4",
		Type: payment.EventCheckoutSessionCompleted,
		Session: &payment.SessionData{
			ID:   "cs_test_sub",
			Mode: payment.ModeSubscription,
		},
	}

	mockGateway.On("VerifyEvent", payload, "sig").Return(event, nil)
	mockEventRepo.On("Exists", ctx, "evt_4").Return(false, nil)
	mockSubRepo.On("ActivateBySession", ctx, "cs_test_sub").Return(true, nil)
	mockEventRepo.On("MarkProcessed", ctx, "evt_4", payment.EventCheckoutSessionCompleted).Return(nil)

	err := service.ProcessEvent(ctx, payload, "sig")

	require.NoError(t, err)
	mockSubRepo.AssertExpectations(t)
	mockSubRepo.AssertNotCalled(t, "ActivateByEmail")
	mockSubRepo.AssertNotCalled(t, "Create")
}

func TestWebhookService_ProcessEvent_SubscriptionActivatedByEmail(t *testing.T) {
	ctx := context.Background()
	service, _, mockSubRepo, mockEventRepo, mockGateway := newWebhookServiceForTest()

	payload := []byte(`{"id":"evt_5"}`)
	event := &payment.Event{
		ID:   "evt_5",
		Type: payment.EventCheckoutSessionCompleted,
		Session: &payment.SessionData{
			ID:            "cs_test_sub2",
			Mode:          payment.ModeSubscription,
			CustomerEmail: "kari@example.com",
		},
	}

	mockGateway.On("VerifyEvent", payload, "sig").Return(event, nil)
	mockEventRepo.On("Exists", ctx, "evt_5").Return(false, nil)
	mockSubRepo.On("ActivateBySession", ctx, "cs_test_sub2").Return(false, nil)
	mockSubRepo.On("ActivateByEmail", ctx, "kari@example.com", "cs_test_sub2").Return(true, nil)
	mockEventRepo.On("MarkProcessed", ctx, "evt_5", payment.EventCheckoutSessionCompleted).Return(nil)

	err := service.ProcessEvent(ctx, payload, "sig")

	require.NoError(t, err)
	mockSubRepo.AssertExpectations(t)
	mockSubRepo.AssertNotCalled(t, "Create")
}

func TestWebhookService_ProcessEvent_SubscriptionFallbackCreatesActive(t *testing.T) {
	ctx := context.Background()
	service, _, mockSubRepo, mockEventRepo, mockGateway := newWebhookServiceForTest()

	payload := []byte(`{"id":"evt_6"}`)
	event := &payment.Event{
		ID:   "evt_6",
		Type: payment.EventCheckoutSessionCompleted,
		Session: &payment.SessionData{
			ID:            "cs_test_sub3",
			Mode:          payment.ModeSubscription,
			CustomerEmail: "kari@example.com",
			Metadata:      map[string]string{payment.MetadataPineconeType: "deluxe"},
		},
	}

	mockGateway.On("VerifyEvent", payload, "sig").Return(event, nil)
	mockEventRepo.On("Exists", ctx, "evt_6").Return(false, nil)
	mockSubRepo.On("ActivateBySession", ctx, "cs_test_sub3").Return(false, nil)
	mockSubRepo.On("ActivateByEmail", ctx, "kari@example.com", "cs_test_sub3").Return(false, nil)
	mockSubRepo.On("GetBySessionID", ctx, "cs_test_sub3").Return(nil, nil)
	mockSubRepo.On("Create", ctx, mock.MatchedBy(func(s *model.Subscription) bool {
		return s.Status == model.SubscriptionStatusActive &&
			s.Active &&
			s.Email == "kari@example.com" &&
			s.PineconeType == "deluxe" &&
			s.CheckoutSessionID != nil && *s.CheckoutSessionID == "cs_test_sub3"
	})).Return(nil)
	mockEventRepo.On("MarkProcessed", ctx, "evt_6", payment.EventCheckoutSessionCompleted).Return(nil)

	err := service.ProcessEvent(ctx, payload, "sig")

	require.NoError(t, err)
	mockSubRepo.AssertExpectations(t)
}

func TestWebhookService_ProcessEvent_InvoicePaidIsAcknowledged(t *testing.T) {
	ctx := context.Background()
	service, mockKongleRepo, mockSubRepo, mockEventRepo, mockGateway := newWebhookServiceForTest()

	payload := []byte(`{"id":"evt_7"}`)
	event := &payment.Event{ID: "evt_7", Type: payment.EventInvoicePaid}

	mockGateway.On("VerifyEvent", payload, "sig").Return(event, nil)
	mockEventRepo.On("Exists", ctx, "evt_7").Return(false, nil)
	mockEventRepo.On("MarkProcessed", ctx, "evt_7", payment.EventInvoicePaid).Return(nil)

	err := service.ProcessEvent(ctx, payload, "sig")

	require.NoError(t, err)
	mockKongleRepo.AssertNotCalled(t, "MarkPaidBySession")
	mockSubRepo.AssertNotCalled(t, "ActivateBySession")
	mockEventRepo.AssertExpectations(t)
}

func TestWebhookService_ProcessEvent_UnknownEventTypeAcknowledged(t *testing.T) {
	ctx := context.Background()
	service, _, _, mockEventRepo, mockGateway := newWebhookServiceForTest()

	payload := []byte(`{"id":"evt_8"}`)
	event := &payment.Event{ID: "evt_8", Type: "charge.refunded"}

	mockGateway.On("VerifyEvent", payload, "sig").Return(event, nil)
	mockEventRepo.On("Exists", ctx, "evt_8").Return(false, nil)
	mockEventRepo.On("MarkProcessed", ctx, "evt_8", "charge.refunded").Return(nil)

	err := service.ProcessEvent(ctx, payload, "sig")

	require.NoError(t, err)
	mockEventRepo.AssertExpectations(t)
}

func TestWebhookService_ProcessEvent_RepositoryErrorPropagates(t *testing.T) {
	ctx := context.Background()
	service, mockKongleRepo, _, mockEventRepo, mockGateway := newWebhookServiceForTest()

	payload := []byte(`{"id":"evt_9"}`)
	event := &payment.Event{
		ID:   "evt_9",
		Type: payment.EventCheckoutSessionCompleted,
		Session: &payment.SessionData{
			ID:          "cs_test_err",
			Mode:        payment.ModePayment,
			AmountTotal: 2000,
		},
	}

	mockGateway.On("VerifyEvent", payload, "sig").Return(event, nil)
	mockEventRepo.On("Exists", ctx, "evt_9").Return(false, nil)
	mockKongleRepo.On("MarkPaidBySession", ctx, "cs_test_err", int64(2000)).
		Return(false, errors.New("connection refused"))

	err := service.ProcessEvent(ctx, payload, "sig")

	require.Error(t, err)
	mockEventRepo.AssertNotCalled(t, "MarkProcessed")
}
