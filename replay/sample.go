package replay

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/basehaptic/relayapi/relay"
)

//go:embed sampledata
var sampleFS embed.FS

// SampleGameID identifies the embedded recorded game.
const SampleGameID = "20250902WOSK02025"

type gameEnvelope struct {
	Result struct {
		Game map[string]any `json:"game"`
	} `json:"result"`
}

type relayEnvelope struct {
	Result struct {
		TextRelayData *relay.RelayData `json:"textRelayData"`
	} `json:"result"`
}

// LoadDir reads a recorded game from <dataDir>/<gameID>/game.json plus
// relay_inning_N.json files. Missing inning files are skipped.
func LoadDir(dataDir, gameID string) (map[string]any, map[int]*relay.RelayData, error) {
	return load(os.DirFS(dataDir), gameID)
}

// LoadSample returns the embedded recorded game, so the replay server runs
// with zero setup.
func LoadSample() (map[string]any, map[int]*relay.RelayData, error) {
	sub, err := fs.Sub(sampleFS, "sampledata")
	if err != nil {
		return nil, nil, err
	}
	return load(sub, ".")
}

func load(fsys fs.FS, root string) (map[string]any, map[int]*relay.RelayData, error) {
	raw, err := fs.ReadFile(fsys, path(root, "game.json"))
	if err != nil {
		return nil, nil, fmt.Errorf("read game file: %w", err)
	}
	var gameEnv gameEnvelope
	if err := json.Unmarshal(raw, &gameEnv); err != nil {
		return nil, nil, fmt.Errorf("decode game file: %w", err)
	}
	if gameEnv.Result.Game == nil {
		return nil, nil, fmt.Errorf("game file has no result.game")
	}

	relays := make(map[int]*relay.RelayData)
	for inning := 1; inning <= 9; inning++ {
		raw, err := fs.ReadFile(fsys, path(root, fmt.Sprintf("relay_inning_%d.json", inning)))
		if err != nil {
			continue
		}
		var env relayEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, nil, fmt.Errorf("decode relay inning %d: %w", inning, err)
		}
		if env.Result.TextRelayData != nil {
			relays[inning] = env.Result.TextRelayData
		}
	}
	return gameEnv.Result.Game, relays, nil
}

func path(root, name string) string {
	if root == "." || root == "" {
		return name
	}
	return filepath.ToSlash(filepath.Join(root, name))
}
