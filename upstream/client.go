// Package upstream fetches live game data from the relay source API.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/basehaptic/relayapi/relay"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// Client talks to the upstream schedule/relay endpoints.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for the given base URL, e.g. "https://api-gw.sports.naver.com".
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 20 * time.Second},
	}
}

type gameEnvelope struct {
	Result struct {
		Game *relay.GameInfo `json:"game"`
	} `json:"result"`
}

type relayEnvelope struct {
	Result struct {
		TextRelayData *relay.RelayData `json:"textRelayData"`
	} `json:"result"`
}

// FetchGame returns the game header for one game.
func (c *Client) FetchGame(ctx context.Context, gameID string) (*relay.GameInfo, error) {
	var env gameEnvelope
	url := fmt.Sprintf("%s/schedule/games/%s", c.baseURL, gameID)
	if err := c.getJSON(ctx, url, &env); err != nil {
		return nil, err
	}
	if env.Result.Game == nil {
		return nil, fmt.Errorf("upstream: no game in response for %s", gameID)
	}
	return env.Result.Game, nil
}

// FetchRelay returns the text relay data for one inning of a game.
func (c *Client) FetchRelay(ctx context.Context, gameID string, inning int) (*relay.RelayData, error) {
	var env relayEnvelope
	url := fmt.Sprintf("%s/schedule/games/%s/relay?inning=%d", c.baseURL, gameID, inning)
	if err := c.getJSON(ctx, url, &env); err != nil {
		return nil, err
	}
	if env.Result.TextRelayData == nil {
		return nil, fmt.Errorf("upstream: no relay data for %s inning %d", gameID, inning)
	}
	return env.Result.TextRelayData, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upstream: GET %s: status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
