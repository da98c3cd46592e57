package replay

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// Server exposes a replayer over the upstream wire shape so the crawler
// can point at it instead of the live relay API.
type Server struct {
	GameID   string
	Replayer *Replayer
}

// Register mounts the upstream-compatible routes plus the reset control.
func (s *Server) Register(e *echo.Echo) {
	e.GET("/", s.Index)
	e.GET("/control/reset", s.Reset)
	e.GET("/schedule/games/:id", s.Game)
	e.GET("/schedule/games/:id/relay", s.Relay)
}

// Index describes the available endpoints.
func (s *Server) Index(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"service": "replay-relay-server",
		"gameId":  s.GameID,
		"usage": []string{
			"/schedule/games/" + s.GameID,
			"/schedule/games/" + s.GameID + "/relay?inning=1",
			"/control/reset",
		},
	})
}

// Reset rebases the reveal to now.
func (s *Server) Reset(c echo.Context) error {
	s.Replayer.Reset()
	return c.JSON(http.StatusOK, map[string]any{"ok": true, "message": "replay reset"})
}

// Game serves the game metadata envelope with synthesized status.
func (s *Server) Game(c echo.Context) error {
	if c.Param("id") != s.GameID {
		return echo.NewHTTPError(http.StatusNotFound, "unknown game id")
	}
	return c.JSON(http.StatusOK, s.Replayer.GamePayload())
}

// Relay serves one inning's relay envelope filtered to visible fragments.
func (s *Server) Relay(c echo.Context) error {
	if c.Param("id") != s.GameID {
		return echo.NewHTTPError(http.StatusNotFound, "unknown game id")
	}
	inning := 1
	if raw := c.QueryParam("inning"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 9 {
			return echo.NewHTTPError(http.StatusBadRequest, "inning must be 1-9")
		}
		inning = n
	}
	return c.JSON(http.StatusOK, s.Replayer.RelayPayload(inning))
}
