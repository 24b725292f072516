package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/furukawa1020/furukawalabo1/internal/realtime"
)

// heartbeatInterval keeps proxies from closing quiet streams
const heartbeatInterval = 25 * time.Second

// RealtimeHandler serves the live event stream over SSE
type RealtimeHandler struct {
	logger *zap.Logger
	hub    *realtime.Hub
}

// NewRealtimeHandler creates a new realtime handler instance
func NewRealtimeHandler(logger *zap.Logger, hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{
		logger: logger,
		hub:    hub,
	}
}

// Stream handles GET /api/v1/stream. Each connected client receives
// every visitor-count update and donation announcement until it
// disconnects.
func (h *RealtimeHandler) Stream(c echo.Context) error {
	ctx := c.Request().Context()

	client, err := h.hub.Subscribe(ctx)
	if err != nil {
		h.logger.Error("Failed to subscribe realtime client", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "failed to open stream",
		})
	}
	// The request context is already cancelled when the client goes
	// away, so the unsubscribe runs on a fresh one.
	defer h.hub.Unsubscribe(context.Background(), client)

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case env, ok := <-client.Messages():
			if !ok {
				return nil
			}
			data, err := json.Marshal(env)
			if err != nil {
				h.logger.Error("Failed to encode stream event", zap.Error(err))
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				return nil
			}
			w.Flush()

		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return nil
			}
			w.Flush()
		}
	}
}
