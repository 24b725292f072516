package http

import (
	"context"
	"net/http"
	"sync/atomic"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	appErrors "github.com/furukawa1020/furukawalabo1/pkg/errors"

	domainErrors "github.com/furukawa1020/furukawalabo1/internal/domain/errors"
	"github.com/furukawa1020/furukawalabo1/internal/usecase"
)

// SyncHandler triggers background Protopedia syncs
type SyncHandler struct {
	logger      *zap.Logger
	syncService *usecase.WorkSyncService
	lastResult  atomic.Value
}

// NewSyncHandler creates a new sync handler instance
func NewSyncHandler(logger *zap.Logger, syncService *usecase.WorkSyncService) *SyncHandler {
	return &SyncHandler{
		logger:      logger,
		syncService: syncService,
	}
}

// TriggerSync handles POST /api/v1/admin/sync/protopedia. The sync runs
// in the background so the scraping never holds the admin request open;
// the caller gets 202 immediately.
func (h *SyncHandler) TriggerSync(c echo.Context) error {
	go func() {
		result, err := h.syncService.Sync(context.Background())
		if err != nil {
			if appErrors.Is(err, domainErrors.ErrSyncInProgress) {
				return
			}
			h.logger.Error("Background sync failed", zap.Error(err))
			return
		}
		h.lastResult.Store(result)
	}()

	return c.JSON(http.StatusAccepted, echo.Map{
		"status":  "accepted",
		"message": "Protopedia sync triggered",
	})
}

// GetLastResult handles GET /api/v1/admin/sync/protopedia
func (h *SyncHandler) GetLastResult(c echo.Context) error {
	result, ok := h.lastResult.Load().(*usecase.SyncResult)
	if !ok {
		return c.JSON(http.StatusOK, echo.Map{"status": "never_run"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status": "finished",
		"result": result,
	})
}
