package handlers

import (
	"errors"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/net/websocket"

	"github.com/basehaptic/relayapi/bus"
	"github.com/basehaptic/relayapi/ingest"
)

// wsSubscriber adapts a websocket connection to the bus. Broadcasts and the
// resync burst can race, so sends are serialized with a mutex.
type wsSubscriber struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *wsSubscriber) Send(msg bus.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return websocket.JSON.Send(s.conn, msg)
}

// GameStream upgrades to a websocket and pushes live state and event frames
// for one game. On connect the client gets the current state plus a burst of
// recent events, then live broadcasts until it disconnects.
func (h *Handler) GameStream(c echo.Context) error {
	gameID := c.Param("id")

	if _, err := h.engine.GetGame(c.Request().Context(), gameID); err != nil {
		if errors.Is(err, ingest.ErrGameNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "game not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	websocket.Handler(func(conn *websocket.Conn) {
		defer conn.Close()

		sub := &wsSubscriber{conn: conn}
		h.bus.Subscribe(gameID, sub)
		defer h.bus.Unsubscribe(gameID, sub)

		if err := h.resync(c, gameID, sub); err != nil {
			h.log.Debug("ws resync failed", zap.String("game_id", gameID), zap.Error(err))
			return
		}

		// Read loop: any text from the client is a liveness check and gets
		// a pong back; exit when the client goes away.
		for {
			var msg string
			if err := websocket.Message.Receive(conn, &msg); err != nil {
				return
			}
			if err := sub.Send(bus.Message{Type: "pong"}); err != nil {
				return
			}
		}
	}).ServeHTTP(c.Response(), c.Request())

	return nil
}

// resync sends the current state and the latest events so a reconnecting
// client catches up before live frames arrive.
func (h *Handler) resync(c echo.Context, gameID string, sub *wsSubscriber) error {
	ctx := c.Request().Context()

	state, err := h.engine.GameState(ctx, gameID)
	if err != nil {
		return err
	}
	if err := sub.Send(bus.Message{Type: "state", Payload: state}); err != nil {
		return err
	}

	recent, err := h.engine.RecentEvents(ctx, gameID, h.resyncK)
	if err != nil {
		return err
	}
	if len(recent) == 0 {
		return nil
	}
	return sub.Send(bus.Message{Type: "events", Payload: ingest.EventsPage{Items: recent}})
}
