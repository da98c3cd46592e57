package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/basehaptic/relayapi/ingest"
)

// Games returns known games, newest activity first. Optional ?status= filter
// and ?limit= cap.
func (h *Handler) Games(c echo.Context) error {
	status := c.QueryParam("status")

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = n
	}

	games, err := h.engine.ListGames(c.Request().Context(), status, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, games)
}

// Game returns the summary row for a single game.
func (h *Handler) Game(c echo.Context) error {
	game, err := h.engine.GetGame(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ingest.ErrGameNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "game not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, game)
}

// GameState returns the current scoreboard state for a game, including the
// most recent event if one exists.
func (h *Handler) GameState(c echo.Context) error {
	state, err := h.engine.GameState(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ingest.ErrGameNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "game not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, state)
}
