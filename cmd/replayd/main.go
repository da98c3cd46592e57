// Command replayd serves a recorded game back through the upstream API
// shape, revealing relay fragments over time so the crawler can be exercised
// without a live game.
package main

import (
	"flag"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	applog "github.com/basehaptic/relayapi/logger"
	"github.com/basehaptic/relayapi/relay"
	"github.com/basehaptic/relayapi/replay"
)

func main() {
	var (
		gameID       = flag.String("game-id", replay.SampleGameID, "game id to serve")
		dataDir      = flag.String("data-dir", "", "directory with game.json and relay_inning_N.json (default: embedded sample)")
		port         = flag.String("port", ":8400", "listen address")
		stepInterval = flag.Duration("step-interval", 10*time.Second, "how often more fragments become visible")
		stepSize     = flag.Int("step-size", 25, "fragments revealed per step")
		debug        = flag.Bool("debug", false, "debug logging")
	)
	flag.Parse()

	logger, err := applog.New(*debug)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	game, relays, err := loadGame(*dataDir, *gameID)
	if err != nil {
		logger.Fatal("load replay data failed", zap.Error(err))
	}

	r := replay.New(game, relays, *stepInterval, *stepSize)
	srv := &replay.Server{GameID: *gameID, Replayer: r}

	e := echo.New()
	e.Use(echomw.Recover())
	srv.Register(e)

	logger.Info("replay server starting",
		zap.String("addr", *port),
		zap.String("game_id", *gameID),
		zap.Int("timeline", r.TimelineLen()),
		zap.Duration("step_interval", *stepInterval),
		zap.Int("step_size", *stepSize),
	)
	if err := e.Start(*port); err != nil {
		logger.Fatal("replay server exited", zap.Error(err))
	}
}

func loadGame(dataDir, gameID string) (map[string]any, map[int]*relay.RelayData, error) {
	if dataDir != "" {
		return replay.LoadDir(dataDir, gameID)
	}
	return replay.LoadSample()
}
