// Command crawlerd polls the upstream relay source for one game, converts
// each poll into a snapshot and posts it to the backend ingest endpoint.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/basehaptic/relayapi/config"
	"github.com/basehaptic/relayapi/ingest"
	applog "github.com/basehaptic/relayapi/logger"
	"github.com/basehaptic/relayapi/models"
	"github.com/basehaptic/relayapi/relay"
	"github.com/basehaptic/relayapi/upstream"
)

func main() {
	var (
		gameID   = flag.String("game-id", "", "upstream game id to crawl (required)")
		interval = flag.Duration("interval", 10*time.Second, "poll interval")
		watch    = flag.Bool("watch", false, "keep polling until the game finishes")
		debug    = flag.Bool("debug", false, "debug logging")
	)
	flag.Parse()

	logger, err := applog.New(*debug)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if *gameID == "" {
		logger.Fatal("missing -game-id")
	}

	cfg := config.LoadCrawler()
	c := &crawler{
		source:  upstream.New(cfg.SourceBaseURL),
		backend: cfg.BackendBaseURL,
		apiKey:  cfg.CrawlerAPIKey,
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     logger,
	}

	ctx := context.Background()
	for {
		status, err := c.crawlOnce(ctx, *gameID)
		if err != nil {
			logger.Error("crawl failed", zap.String("game_id", *gameID), zap.Error(err))
		}
		if !*watch || status.IsFinal() {
			return
		}
		time.Sleep(*interval)
	}
}

type crawler struct {
	source  *upstream.Client
	backend string
	apiKey  string
	http    *http.Client
	log     *zap.Logger
}

// crawlOnce fetches the game header plus every inning played so far, builds
// a snapshot and posts it to the backend.
func (c *crawler) crawlOnce(ctx context.Context, gameID string) (models.GameStatus, error) {
	game, err := c.source.FetchGame(ctx, gameID)
	if err != nil {
		return models.StatusScheduled, err
	}

	relays := make(map[int]*relay.RelayData)
	for inning := 1; inning <= 9; inning++ {
		data, err := c.source.FetchRelay(ctx, gameID, inning)
		if err != nil {
			// Innings not yet played come back empty or erroring; stop there.
			c.log.Debug("relay fetch stopped", zap.Int("inning", inning), zap.Error(err))
			break
		}
		if len(data.TextRelays) == 0 {
			break
		}
		relays[inning] = data
	}

	c.logAnalysis(game, relays)

	snap := relay.BuildSnapshot(game, relays, time.Now().UTC(), relay.DefaultRules)
	res, err := c.post(ctx, gameID, snap)
	if err != nil {
		return models.NormalizeStatus(game.StatusCode), err
	}

	c.log.Info("snapshot posted",
		zap.String("game_id", gameID),
		zap.String("status", string(res.Status)),
		zap.Int("received", res.ReceivedEvents),
		zap.Int("inserted", res.InsertedEvents),
		zap.Int("duplicates", res.DuplicateEvents),
	)
	return models.NormalizeStatus(game.StatusCode), nil
}

// logAnalysis runs the at-bat stitcher over every fetched inning and logs a
// short digest. Purely informational.
func (c *crawler) logAnalysis(game *relay.GameInfo, relays map[int]*relay.RelayData) {
	teams := game.Teams()
	merged := &relay.ParseResult{}
	for _, data := range relays {
		merged.Merge(relay.ParseRelay(data, teams, relay.DefaultRules))
	}
	c.log.Info("relay analysis",
		zap.String("game_id", game.GameID),
		zap.Int("innings", len(relays)),
		zap.Int("at_bats", len(merged.AtBats)),
		zap.Int("pinch_hitters", len(merged.PinchHitters)),
		zap.Int("pitcher_changes", len(merged.PitcherChanges)),
	)
}

func (c *crawler) post(ctx context.Context, gameID string, snap *ingest.Snapshot) (*ingest.Result, error) {
	body, err := json.Marshal(snap)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/internal/crawler/games/%s/snapshot", c.backend, gameID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("backend: POST %s: status %d", url, resp.StatusCode)
	}

	var res ingest.Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, err
	}
	return &res, nil
}
