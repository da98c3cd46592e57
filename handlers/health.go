package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Health is a liveness probe.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "relayapi",
		"time":    time.Now().UTC(),
	})
}
