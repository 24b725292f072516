package usecase_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"

	appErrors "github.com/furukawa1020/furukawalabo1/pkg/errors"

	domainErrors "github.com/furukawa1020/furukawalabo1/internal/domain/errors"
	"github.com/furukawa1020/furukawalabo1/internal/domain/model"
	"github.com/furukawa1020/furukawalabo1/internal/realtime"
	"github.com/furukawa1020/furukawalabo1/internal/usecase"
)

// MockDonationRepository is a mock implementation of DonationRepository
type MockDonationRepository struct {
	mock.Mock
}

func (m *MockDonationRepository) Create(ctx context.Context, donation *model.Donation) error {
	args := m.Called(ctx, donation)
	return args.Error(0)
}

func (m *MockDonationRepository) GetRecent(ctx context.Context, limit int) ([]model.Donation, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Donation), args.Error(1)
}

func (m *MockDonationRepository) GetTop(ctx context.Context, limit int) ([]model.Donation, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Donation), args.Error(1)
}

func (m *MockDonationRepository) GetStats(ctx context.Context) (*model.DonationStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DonationStats), args.Error(1)
}

// MockBroadcaster is a mock implementation of realtime.Broadcaster
type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) Broadcast(ctx context.Context, env realtime.Envelope) error {
	args := m.Called(ctx, env)
	return args.Error(0)
}

const testSecret = "test-webhook-secret"

func sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func newService(repo *MockDonationRepository, broadcaster *MockBroadcaster) *usecase.DonationService {
	return usecase.NewDonationService(repo, broadcaster, zap.NewNop(), testSecret, "JPY", "https://example.com")
}

func TestDonationService_HandleBMCWebhook(t *testing.T) {
	ctx := context.Background()

	t.Run("records a donation and broadcasts it", func(t *testing.T) {
		repo := new(MockDonationRepository)
		broadcaster := new(MockBroadcaster)
		service := newService(repo, broadcaster)

		body := []byte(`{"support_id":"tx-001","supporter_name":"とくめー","support_coffee_price":"5.00","support_coffees":3,"support_note":"応援！"}`)

		repo.On("Create", ctx, mock.AnythingOfType("*model.Donation")).Return(nil)
		broadcaster.On("Broadcast", ctx, mock.AnythingOfType("realtime.Envelope")).Return(nil)

		donation, err := service.HandleBMCWebhook(ctx, body, sign(body))

		assert.NoError(t, err)
		assert.Equal(t, int64(15), donation.Amount)
		assert.Equal(t, "とくめー", donation.DonorName)
		assert.Equal(t, "tx-001", *donation.TransactionID)
		assert.Equal(t, "JPY", donation.Currency)
		assert.Equal(t, model.DonationStatusSucceeded, donation.Status)
		assert.Equal(t, "応援！", *donation.Message)

		broadcastEnv := broadcaster.Calls[0].Arguments.Get(1).(realtime.Envelope)
		assert.Equal(t, realtime.TypeDonation, broadcastEnv.Type)
		assert.Equal(t, int64(15), broadcastEnv.Amount)
		assert.Equal(t, "とくめー", broadcastEnv.DonorName)

		repo.AssertExpectations(t)
		broadcaster.AssertExpectations(t)
	})

	t.Run("truncates the computed amount instead of rounding", func(t *testing.T) {
		repo := new(MockDonationRepository)
		broadcaster := new(MockBroadcaster)
		service := newService(repo, broadcaster)

		// 1.99 x 2 = 3.98, stored as 3
		body := []byte(`{"support_id":"tx-002","supporter_name":"A","support_coffee_price":"1.99","support_coffees":2}`)

		repo.On("Create", ctx, mock.AnythingOfType("*model.Donation")).Return(nil)
		broadcaster.On("Broadcast", ctx, mock.Anything).Return(nil)

		donation, err := service.HandleBMCWebhook(ctx, body, sign(body))

		assert.NoError(t, err)
		assert.Equal(t, int64(3), donation.Amount)
		assert.Nil(t, donation.Message)
	})

	t.Run("honors a provider-declared currency", func(t *testing.T) {
		repo := new(MockDonationRepository)
		broadcaster := new(MockBroadcaster)
		service := newService(repo, broadcaster)

		body := []byte(`{"support_id":"tx-003","support_coffee_price":"1.50","support_coffees":1,"currency":"USD"}`)

		repo.On("Create", ctx, mock.AnythingOfType("*model.Donation")).Return(nil)
		broadcaster.On("Broadcast", ctx, mock.Anything).Return(nil)

		donation, err := service.HandleBMCWebhook(ctx, body, sign(body))

		assert.NoError(t, err)
		assert.Equal(t, "USD", donation.Currency)
		assert.Equal(t, "Anonymous", donation.DonorName)
	})

	t.Run("rejects a missing signature before reading the payload", func(t *testing.T) {
		repo := new(MockDonationRepository)
		broadcaster := new(MockBroadcaster)
		service := newService(repo, broadcaster)

		body := []byte(`{"support_id":"tx-004","support_coffee_price":"5.00","support_coffees":1}`)

		donation, err := service.HandleBMCWebhook(ctx, body, "")

		assert.Nil(t, donation)
		var appErr *appErrors.AppError
		assert.True(t, appErrors.As(err, &appErr))
		assert.Equal(t, appErrors.ErrUnauthenticated, appErr.Code())
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		broadcaster.AssertNotCalled(t, "Broadcast", mock.Anything, mock.Anything)
	})

	t.Run("rejects a signature computed over a different body", func(t *testing.T) {
		repo := new(MockDonationRepository)
		broadcaster := new(MockBroadcaster)
		service := newService(repo, broadcaster)

		original := []byte(`{"support_id":"tx-005","support_coffee_price":"5.00","support_coffees":1}`)
		tampered := []byte(`{"support_id":"tx-005","support_coffee_price":"500.00","support_coffees":1}`)

		donation, err := service.HandleBMCWebhook(ctx, tampered, sign(original))

		assert.Nil(t, donation)
		var appErr *appErrors.AppError
		assert.True(t, appErrors.As(err, &appErr))
		assert.Equal(t, appErrors.ErrUnauthenticated, appErr.Code())
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects a payload without a support id", func(t *testing.T) {
		repo := new(MockDonationRepository)
		broadcaster := new(MockBroadcaster)
		service := newService(repo, broadcaster)

		body := []byte(`{"supporter_name":"A","support_coffee_price":"5.00","support_coffees":1}`)

		donation, err := service.HandleBMCWebhook(ctx, body, sign(body))

		assert.Nil(t, donation)
		var appErr *appErrors.AppError
		assert.True(t, appErrors.As(err, &appErr))
		assert.Equal(t, appErrors.ErrInvalidArgument, appErr.Code())
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("skips a duplicate delivery without broadcasting", func(t *testing.T) {
		repo := new(MockDonationRepository)
		broadcaster := new(MockBroadcaster)
		service := newService(repo, broadcaster)

		body := []byte(`{"support_id":"tx-006","support_coffee_price":"5.00","support_coffees":1}`)

		repo.On("Create", ctx, mock.AnythingOfType("*model.Donation")).Return(domainErrors.ErrDuplicateTransaction)

		donation, err := service.HandleBMCWebhook(ctx, body, sign(body))

		assert.Nil(t, donation)
		assert.ErrorIs(t, err, domainErrors.ErrDuplicateTransaction)
		broadcaster.AssertNotCalled(t, "Broadcast", mock.Anything, mock.Anything)
		repo.AssertExpectations(t)
	})

	t.Run("still succeeds when the broadcast fails", func(t *testing.T) {
		repo := new(MockDonationRepository)
		broadcaster := new(MockBroadcaster)
		service := newService(repo, broadcaster)

		body := []byte(`{"support_id":"tx-007","support_coffee_price":"3.00","support_coffees":2}`)

		repo.On("Create", ctx, mock.AnythingOfType("*model.Donation")).Return(nil)
		broadcaster.On("Broadcast", ctx, mock.Anything).Return(assert.AnError)

		donation, err := service.HandleBMCWebhook(ctx, body, sign(body))

		assert.NoError(t, err)
		assert.Equal(t, int64(6), donation.Amount)
	})
}

func TestDonationService_RecordCheckoutDonation(t *testing.T) {
	ctx := context.Background()

	t.Run("records a paid checkout session and broadcasts it", func(t *testing.T) {
		repo := new(MockDonationRepository)
		broadcaster := new(MockBroadcaster)
		service := newService(repo, broadcaster)

		session := &stripe.CheckoutSession{
			ID:            "cs_test_001",
			PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
			AmountTotal:   1500,
			Currency:      stripe.CurrencyJPY,
			Metadata:      map[string]string{"donor_name": "とくめー", "message": "応援！"},
		}

		repo.On("Create", ctx, mock.AnythingOfType("*model.Donation")).Return(nil)
		broadcaster.On("Broadcast", ctx, mock.AnythingOfType("realtime.Envelope")).Return(nil)

		donation, err := service.RecordCheckoutDonation(ctx, session)

		assert.NoError(t, err)
		assert.Equal(t, int64(1500), donation.Amount)
		assert.Equal(t, "cs_test_001", *donation.TransactionID)
		assert.Equal(t, "とくめー", donation.DonorName)
		assert.Equal(t, model.DonationStatusSucceeded, donation.Status)
		repo.AssertExpectations(t)
		broadcaster.AssertExpectations(t)
	})

	t.Run("acknowledges an unpaid session without recording it", func(t *testing.T) {
		repo := new(MockDonationRepository)
		broadcaster := new(MockBroadcaster)
		service := newService(repo, broadcaster)

		// Delayed payment methods complete the session before the
		// money clears; nothing may be stored or announced yet.
		session := &stripe.CheckoutSession{
			ID:            "cs_test_002",
			PaymentStatus: stripe.CheckoutSessionPaymentStatusUnpaid,
			AmountTotal:   1500,
			Metadata:      map[string]string{"donor_name": "A"},
		}

		donation, err := service.RecordCheckoutDonation(ctx, session)

		assert.NoError(t, err)
		assert.Nil(t, donation)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		broadcaster.AssertNotCalled(t, "Broadcast", mock.Anything, mock.Anything)
	})

	t.Run("skips a redelivered session without broadcasting", func(t *testing.T) {
		repo := new(MockDonationRepository)
		broadcaster := new(MockBroadcaster)
		service := newService(repo, broadcaster)

		session := &stripe.CheckoutSession{
			ID:            "cs_test_003",
			PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
			AmountTotal:   500,
		}

		repo.On("Create", ctx, mock.AnythingOfType("*model.Donation")).Return(domainErrors.ErrDuplicateTransaction)

		donation, err := service.RecordCheckoutDonation(ctx, session)

		assert.Nil(t, donation)
		assert.ErrorIs(t, err, domainErrors.ErrDuplicateTransaction)
		broadcaster.AssertNotCalled(t, "Broadcast", mock.Anything, mock.Anything)
	})
}

func TestDonationService_GetDonationSummary(t *testing.T) {
	ctx := context.Background()

	t.Run("combines recent, top and stats", func(t *testing.T) {
		repo := new(MockDonationRepository)
		broadcaster := new(MockBroadcaster)
		service := newService(repo, broadcaster)

		recent := []model.Donation{{Amount: 500, DonorName: "A"}}
		top := []model.Donation{{Amount: 10000, DonorName: "B"}}
		stats := &model.DonationStats{TotalAmount: 10500, TotalCount: 2}

		repo.On("GetRecent", ctx, 10).Return(recent, nil)
		repo.On("GetTop", ctx, 5).Return(top, nil)
		repo.On("GetStats", ctx).Return(stats, nil)

		summary, err := service.GetDonationSummary(ctx)

		assert.NoError(t, err)
		assert.Equal(t, recent, summary.Recent)
		assert.Equal(t, top, summary.Top)
		assert.Equal(t, int64(10500), summary.Stats.TotalAmount)
		repo.AssertExpectations(t)
	})

	t.Run("propagates repository errors", func(t *testing.T) {
		repo := new(MockDonationRepository)
		broadcaster := new(MockBroadcaster)
		service := newService(repo, broadcaster)

		repo.On("GetRecent", ctx, 10).Return(nil, assert.AnError)

		summary, err := service.GetDonationSummary(ctx)

		assert.Nil(t, summary)
		assert.Error(t, err)
	})
}
