package handler

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cricket-live-scoring/internal/hub"
)

// LiveHandler upgrades /v1/live requests onto the WebSocket hub.  Ctx is
// the server's lifetime; client pumps stop when it is cancelled.
type LiveHandler struct {
	Hub *hub.Hub
	Ctx context.Context
}

func (h *LiveHandler) Serve(c echo.Context) error {
	if err := h.Hub.ServeWS(h.Ctx, c.Response(), c.Request()); err != nil {
		// The upgrader has already written the HTTP error.
		c.Logger().Warnf("live: upgrade failed: %v", err)
	}
	return nil
}
