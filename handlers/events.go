package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/basehaptic/relayapi/ingest"
)

// GameEvents returns a cursor page of events for a game. ?after= is the last
// cursor the client has seen; ?limit= caps the page size.
func (h *Handler) GameEvents(c echo.Context) error {
	var after int64
	if raw := c.QueryParam("after"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "after must be a non-negative integer")
		}
		after = n
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = n
	}

	page, err := h.engine.ListEvents(c.Request().Context(), c.Param("id"), after, limit)
	if err != nil {
		if errors.Is(err, ingest.ErrGameNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "game not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, page)
}
