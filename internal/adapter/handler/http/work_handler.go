package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	appErrors "github.com/furukawa1020/furukawalabo1/pkg/errors"

	domainErrors "github.com/furukawa1020/furukawalabo1/internal/domain/errors"
	"github.com/furukawa1020/furukawalabo1/internal/usecase"
)

// WorkHandler handles the portfolio works endpoints
type WorkHandler struct {
	logger      *zap.Logger
	workService *usecase.WorkService
}

// NewWorkHandler creates a new work handler instance
func NewWorkHandler(logger *zap.Logger, workService *usecase.WorkService) *WorkHandler {
	return &WorkHandler{
		logger:      logger,
		workService: workService,
	}
}

// ListWorks handles GET /api/v1/works
func (h *WorkHandler) ListWorks(c echo.Context) error {
	works, err := h.workService.List(c.Request().Context())
	if err != nil {
		appErrors.LogError(h.logger, err, "Failed to list works")
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "failed to list works",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"works": works})
}

// GetWork handles GET /api/v1/works/:id
func (h *WorkHandler) GetWork(c echo.Context) error {
	work, err := h.workService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if appErrors.Is(err, domainErrors.ErrWorkNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "work not found"})
		}
		appErrors.LogError(h.logger, err, "Failed to get work",
			zap.String("external_id", c.Param("id")))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "failed to get work",
		})
	}

	return c.JSON(http.StatusOK, work)
}
