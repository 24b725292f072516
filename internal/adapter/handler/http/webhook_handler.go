package http

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	appErrors "github.com/furukawa1020/furukawalabo1/pkg/errors"

	domainErrors "github.com/furukawa1020/furukawalabo1/internal/domain/errors"
	"github.com/furukawa1020/furukawalabo1/internal/usecase"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw request body
const SignatureHeader = "X-Signature-Sha256"

// WebhookHandler handles Buy Me a Coffee supporter notifications
type WebhookHandler struct {
	logger          *zap.Logger
	donationService *usecase.DonationService
}

// NewWebhookHandler creates a new webhook handler instance
func NewWebhookHandler(logger *zap.Logger, donationService *usecase.DonationService) *WebhookHandler {
	return &WebhookHandler{
		logger:          logger,
		donationService: donationService,
	}
}

// HandleBMC handles POST /api/v1/webhook/bmc. The signature is checked
// over the exact bytes received, before any parsing.
func (h *WebhookHandler) HandleBMC(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		h.logger.Error("Error reading request body", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Error reading request body"})
	}

	signature := c.Request().Header.Get(SignatureHeader)

	donation, err := h.donationService.HandleBMCWebhook(c.Request().Context(), body, signature)
	if err != nil {
		if appErrors.Is(err, domainErrors.ErrDuplicateTransaction) {
			return c.JSON(http.StatusOK, echo.Map{
				"status":  "skipped",
				"message": "Donation already processed",
			})
		}

		switch code := appErrors.CodeOf(err); code {
		case appErrors.ErrUnauthenticated:
			// A fixed message only. The expected signature stays secret.
			return c.JSON(appErrors.ToHTTPStatus(code), echo.Map{"error": "Invalid signature"})
		case appErrors.ErrInvalidArgument:
			return c.JSON(appErrors.ToHTTPStatus(code), echo.Map{"error": err.Error()})
		}

		appErrors.LogError(h.logger, err, "Webhook processing failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal error"})
	}

	h.logger.Info("Webhook processed",
		zap.String("donation_id", donation.ID.String()))
	return c.JSON(http.StatusOK, echo.Map{"status": "success"})
}
