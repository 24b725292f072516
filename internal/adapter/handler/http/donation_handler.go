package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	appErrors "github.com/furukawa1020/furukawalabo1/pkg/errors"

	"github.com/furukawa1020/furukawalabo1/internal/usecase"
)

// DonationHandler handles the public donations read model and the
// card-flow checkout creation
type DonationHandler struct {
	logger          *zap.Logger
	donationService *usecase.DonationService
}

// NewDonationHandler creates a new donation handler instance
func NewDonationHandler(logger *zap.Logger, donationService *usecase.DonationService) *DonationHandler {
	return &DonationHandler{
		logger:          logger,
		donationService: donationService,
	}
}

// GetDonations handles GET /api/v1/donations
func (h *DonationHandler) GetDonations(c echo.Context) error {
	summary, err := h.donationService.GetDonationSummary(c.Request().Context())
	if err != nil {
		appErrors.LogError(h.logger, err, "Failed to get donation summary")
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "failed to retrieve donations",
		})
	}

	return c.JSON(http.StatusOK, summary)
}

// CreateCheckout handles POST /api/v1/donations
func (h *DonationHandler) CreateCheckout(c echo.Context) error {
	var req usecase.CreateCheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request body",
		})
	}

	url, err := h.donationService.CreateCheckout(c.Request().Context(), &req)
	if err != nil {
		if appErrors.CodeOf(err) == appErrors.ErrInvalidArgument {
			return appErrors.ToHTTPError(err)
		}
		appErrors.LogError(h.logger, err, "Failed to create checkout")
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "failed to create checkout session",
		})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"checkout_url": url,
	})
}
