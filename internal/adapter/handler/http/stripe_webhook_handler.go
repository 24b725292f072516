package http

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.uber.org/zap"

	appErrors "github.com/furukawa1020/furukawalabo1/pkg/errors"

	domainErrors "github.com/furukawa1020/furukawalabo1/internal/domain/errors"
	"github.com/furukawa1020/furukawalabo1/internal/usecase"
)

// StripeWebhookHandler handles the card-flow provider's signed events
type StripeWebhookHandler struct {
	logger          *zap.Logger
	webhookSecret   string
	donationService *usecase.DonationService
}

// NewStripeWebhookHandler creates a new Stripe webhook handler instance
func NewStripeWebhookHandler(logger *zap.Logger, webhookSecret string, donationService *usecase.DonationService) *StripeWebhookHandler {
	return &StripeWebhookHandler{
		logger:          logger,
		webhookSecret:   webhookSecret,
		donationService: donationService,
	}
}

// HandleWebhook handles POST /api/v1/webhook/stripe. Only completed
// checkout sessions create donations; every other event type is
// acknowledged and ignored.
func (h *StripeWebhookHandler) HandleWebhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		h.logger.Error("Error reading request body", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Error reading request body"})
	}

	sig := c.Request().Header.Get("Stripe-Signature")

	event, err := webhook.ConstructEventWithOptions(
		body,
		sig,
		h.webhookSecret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		},
	)
	if err != nil {
		h.logger.Warn("Webhook signature verification failed", zap.Error(err))
		return c.JSON(http.StatusUnauthorized, echo.Map{
			"error": "Webhook signature verification failed",
		})
	}

	h.logger.Info("Webhook event received",
		zap.String("type", string(event.Type)),
		zap.String("id", event.ID),
		zap.Time("created", time.Unix(event.Created, 0)))

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			h.logger.Error("Error parsing checkout session", zap.Error(err))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Error parsing webhook"})
		}

		if _, err := h.donationService.RecordCheckoutDonation(c.Request().Context(), &session); err != nil {
			if appErrors.Is(err, domainErrors.ErrDuplicateTransaction) {
				return c.JSON(http.StatusOK, echo.Map{
					"status":  "skipped",
					"message": "Checkout session already processed",
				})
			}
			appErrors.LogError(h.logger, err, "Failed to record checkout donation",
				zap.String("session_id", session.ID))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal error"})
		}

	default:
		h.logger.Debug("Ignoring event type", zap.String("type", string(event.Type)))
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "success"})
}
