package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/basehaptic/relayapi/ingest"
)

// CrawlerSnapshot accepts a full game snapshot from the crawler and ingests
// it. Re-posting the same snapshot is a no-op apart from the state upsert.
func (h *Handler) CrawlerSnapshot(c echo.Context) error {
	gameID := c.Param("id")

	var snap ingest.Snapshot
	if err := c.Bind(&snap); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res, err := h.engine.Ingest(c.Request().Context(), gameID, &snap)
	if err != nil {
		if errors.Is(err, ingest.ErrInvalidSnapshot) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if errors.Is(err, ingest.ErrGameNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "game not found")
		}
		h.log.Error("snapshot ingest failed", zap.String("game_id", gameID), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "ingest failed")
	}

	return c.JSON(http.StatusOK, res)
}
