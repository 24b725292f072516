package usecase

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v79"
	checkoutsession "github.com/stripe/stripe-go/v79/checkout/session"
	"go.uber.org/zap"

	appErrors "github.com/furukawa1020/furukawalabo1/pkg/errors"

	domainErrors "github.com/furukawa1020/furukawalabo1/internal/domain/errors"
	"github.com/furukawa1020/furukawalabo1/internal/domain/model"
	domainRepo "github.com/furukawa1020/furukawalabo1/internal/domain/repository"
	"github.com/furukawa1020/furukawalabo1/internal/realtime"
)

// BMCWebhookPayload is the supporter-notification body Buy Me a Coffee
// posts to the webhook endpoint. Prices arrive as decimal strings.
type BMCWebhookPayload struct {
	SupportID     string `json:"support_id" validate:"required"`
	SupporterName string `json:"supporter_name"`
	CoffeePrice   string `json:"support_coffee_price" validate:"required"`
	CoffeeCount   int64  `json:"support_coffees" validate:"required,gt=0"`
	SupportNote   string `json:"support_note"`
	Currency      string `json:"currency"`
}

// DonationService handles donation recording and fan-out business logic
type DonationService struct {
	donationRepo domainRepo.DonationRepository
	broadcaster  realtime.Broadcaster
	validate     *validator.Validate
	logger       *zap.Logger
	bmcSecret    []byte
	currency     string
	clientURL    string
}

// NewDonationService creates a new donation service instance
func NewDonationService(
	donationRepo domainRepo.DonationRepository,
	broadcaster realtime.Broadcaster,
	logger *zap.Logger,
	bmcSecret string,
	currency string,
	clientURL string,
) *DonationService {
	if bmcSecret == "" {
		logger.Error("DonationService initialized without webhook secret")
	}
	return &DonationService{
		donationRepo: donationRepo,
		broadcaster:  broadcaster,
		validate:     validator.New(),
		logger:       logger,
		bmcSecret:    []byte(bmcSecret),
		currency:     currency,
		clientURL:    clientURL,
	}
}

// VerifySignature checks the hex HMAC-SHA256 signature of the raw request
// body. The comparison is constant-time and neither the expected nor the
// provided value is ever logged.
func (s *DonationService) VerifySignature(body []byte, signature string) error {
	if signature == "" {
		return appErrors.NewAppError(appErrors.ErrUnauthenticated, "missing signature header", nil)
	}

	mac := hmac.New(sha256.New, s.bmcSecret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return appErrors.NewAppError(appErrors.ErrUnauthenticated, "invalid signature", nil)
	}
	return nil
}

// HandleBMCWebhook verifies and records a Buy Me a Coffee supporter
// notification. Returns ErrDuplicateTransaction when the same support_id
// was already recorded; no broadcast is published in that case.
func (s *DonationService) HandleBMCWebhook(ctx context.Context, body []byte, signature string) (*model.Donation, error) {
	if err := s.VerifySignature(body, signature); err != nil {
		s.logger.Warn("Rejected webhook with bad signature")
		return nil, err
	}

	var payload BMCWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, appErrors.NewAppError(appErrors.ErrInvalidArgument, "unparsable webhook payload", err)
	}
	if err := s.validate.Struct(&payload); err != nil {
		return nil, appErrors.NewAppError(appErrors.ErrInvalidArgument, "invalid webhook payload", err)
	}

	unitPrice, err := decimal.NewFromString(payload.CoffeePrice)
	if err != nil {
		return nil, appErrors.NewAppError(appErrors.ErrInvalidArgument, "invalid unit price", err)
	}
	// Truncated product, never rounded. 1.99 x 2 stores 3.
	amount := unitPrice.Mul(decimal.NewFromInt(payload.CoffeeCount)).IntPart()

	donorName := payload.SupporterName
	if donorName == "" {
		donorName = "Anonymous"
	}

	currency := payload.Currency
	if currency == "" {
		currency = s.currency
	}

	var raw model.JSONB
	if err := json.Unmarshal(body, &raw); err != nil {
		raw = model.JSONB{}
	}

	var message *string
	if payload.SupportNote != "" {
		message = &payload.SupportNote
	}

	transactionID := payload.SupportID
	donation := &model.Donation{
		ID:            uuid.New(),
		TransactionID: &transactionID,
		Amount:        amount,
		Currency:      currency,
		Status:        model.DonationStatusSucceeded,
		DonorName:     donorName,
		Message:       message,
		Payload:       raw,
		CreatedAt:     time.Now(),
	}

	if err := s.donationRepo.Create(ctx, donation); err != nil {
		if appErrors.Is(err, domainErrors.ErrDuplicateTransaction) {
			s.logger.Info("Skipping already-processed donation",
				zap.String("transaction_id", transactionID))
			return nil, err
		}
		s.logger.Error("Failed to store donation",
			zap.String("transaction_id", transactionID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to store donation: %w", err)
	}

	s.logger.Info("Donation recorded",
		zap.String("transaction_id", transactionID),
		zap.Int64("amount", amount),
		zap.String("currency", currency))

	s.announce(ctx, donation)
	return donation, nil
}

// RecordCheckoutDonation records a donation from a completed checkout
// session. The session ID is the dedupe key, so redelivered events are
// skipped the same way webhook retries are. Sessions completed with a
// delayed payment method arrive unpaid; those are acknowledged and
// ignored, nothing is stored or broadcast until the money is there.
func (s *DonationService) RecordCheckoutDonation(ctx context.Context, session *stripe.CheckoutSession) (*model.Donation, error) {
	if session.ID == "" {
		return nil, appErrors.NewAppError(appErrors.ErrInvalidArgument, "checkout session has no id", nil)
	}

	if session.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		s.logger.Info("Ignoring unpaid checkout session",
			zap.String("session_id", session.ID),
			zap.String("payment_status", string(session.PaymentStatus)))
		return nil, nil
	}

	donorName := session.Metadata["donor_name"]
	if donorName == "" {
		donorName = "Anonymous"
	}

	var message *string
	if note := session.Metadata["message"]; note != "" {
		message = &note
	}

	transactionID := session.ID
	donation := &model.Donation{
		ID:            uuid.New(),
		TransactionID: &transactionID,
		Amount:        session.AmountTotal,
		Currency:      string(session.Currency),
		Status:        model.DonationStatusSucceeded,
		DonorName:     donorName,
		Message:       message,
		Payload:       model.JSONB{"checkout_session_id": session.ID},
		CreatedAt:     time.Now(),
	}

	if err := s.donationRepo.Create(ctx, donation); err != nil {
		if appErrors.Is(err, domainErrors.ErrDuplicateTransaction) {
			s.logger.Info("Skipping already-processed checkout session",
				zap.String("session_id", session.ID))
			return nil, err
		}
		s.logger.Error("Failed to store checkout donation",
			zap.String("session_id", session.ID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to store checkout donation: %w", err)
	}

	s.logger.Info("Checkout donation recorded",
		zap.String("session_id", session.ID),
		zap.Int64("amount", donation.Amount))

	s.announce(ctx, donation)
	return donation, nil
}

// announce publishes the fan-out event. Broadcast failures are logged
// and swallowed; the donation is already durable.
func (s *DonationService) announce(ctx context.Context, donation *model.Donation) {
	message := ""
	if donation.Message != nil {
		message = *donation.Message
	}

	env := realtime.DonationAnnouncement(donation.Amount, donation.DonorName, message, donation.CreatedAt)
	if err := s.broadcaster.Broadcast(ctx, env); err != nil {
		s.logger.Error("Failed to broadcast donation event",
			zap.String("donation_id", donation.ID.String()),
			zap.Error(err))
	}
}

// DonationSummary is the public read model for the donations page
type DonationSummary struct {
	Recent []model.Donation    `json:"recent"`
	Top    []model.Donation    `json:"top"`
	Stats  *model.DonationStats `json:"stats"`
}

const (
	recentDonationLimit = 10
	topDonationLimit    = 5
)

// GetDonationSummary returns the recent list, the top donors and the
// aggregate totals in one call
func (s *DonationService) GetDonationSummary(ctx context.Context) (*DonationSummary, error) {
	recent, err := s.donationRepo.GetRecent(ctx, recentDonationLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to get recent donations")
	}

	top, err := s.donationRepo.GetTop(ctx, topDonationLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to get top donations")
	}

	stats, err := s.donationRepo.GetStats(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to get donation stats")
	}

	return &DonationSummary{
		Recent: recent,
		Top:    top,
		Stats:  stats,
	}, nil
}

// CreateCheckoutRequest is the card-flow donation request
type CreateCheckoutRequest struct {
	Amount    int64  `json:"amount" validate:"required,gt=0"`
	DonorName string `json:"donor_name"`
	Message   string `json:"message"`
}

// CreateCheckout opens a one-time payment session and returns the URL
// the client should redirect to
func (s *DonationService) CreateCheckout(ctx context.Context, req *CreateCheckoutRequest) (string, error) {
	if err := s.validate.Struct(req); err != nil {
		return "", appErrors.NewAppError(appErrors.ErrInvalidArgument, "invalid checkout request", err)
	}

	donorName := req.DonorName
	if donorName == "" {
		donorName = "Anonymous"
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(s.currency),
					UnitAmount: stripe.Int64(req.Amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Donation"),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(s.clientURL + "/donations?status=success"),
		CancelURL:  stripe.String(s.clientURL + "/donations?status=cancel"),
		Metadata: map[string]string{
			"donor_name": donorName,
			"message":    req.Message,
		},
	}
	params.Context = ctx

	sess, err := checkoutsession.New(params)
	if err != nil {
		s.logger.Error("Failed to create checkout session", zap.Error(err))
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	s.logger.Info("Checkout session created",
		zap.String("session_id", sess.ID),
		zap.Int64("amount", req.Amount))
	return sess.URL, nil
}
