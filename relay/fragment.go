// Package relay parses the upstream text-relay feed: it decodes raw feed
// fragments tolerantly, classifies them into canonical event categories,
// stitches at-bats out of fragment runs, and assembles ingestion snapshots.
package relay

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Fragment type codes used by the upstream feed.
const (
	OptionPitch        = 1
	OptionPlayerChange = 2
	OptionBatter       = 8
	OptionResult       = 13
)

// Structured pitch result codes.
const (
	PitchBall           = "B"
	PitchStrikeLooking  = "T"
	PitchStrikeSwinging = "S"
	PitchFoul           = "F"
	PitchInPlay         = "H"
)

// FlexString decodes a JSON string, number, bool or null into a string.
// The upstream feed is not consistent about scalar types.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(strings.TrimSpace(s))
		return nil
	}
	*f = FlexString(string(data))
	return nil
}

func (f FlexString) String() string { return string(f) }

// FlexInt decodes a JSON number, numeric string or null into an int.
// Anything unparsable degrades to zero.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		f64, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil {
			*f = 0
			return nil
		}
		n = int(f64)
	}
	*f = FlexInt(n)
	return nil
}

func (f FlexInt) Int() int { return int(f) }

// GameInfo is the upstream game metadata shape.
type GameInfo struct {
	GameID                 string  `json:"gameId"`
	HomeTeamName           string  `json:"homeTeamName"`
	HomeTeamShortName      string  `json:"homeTeamShortName"`
	AwayTeamName           string  `json:"awayTeamName"`
	AwayTeamShortName      string  `json:"awayTeamShortName"`
	StatusCode             string  `json:"statusCode"`
	StatusInfo             string  `json:"statusInfo,omitempty"`
	CurrentInning          string  `json:"currentInning,omitempty"`
	HomeTeamScore          FlexInt `json:"homeTeamScore"`
	AwayTeamScore          FlexInt `json:"awayTeamScore"`
	HomeCurrentPitcherName string  `json:"homeCurrentPitcherName,omitempty"`
	AwayCurrentPitcherName string  `json:"awayCurrentPitcherName,omitempty"`
}

// Teams holds resolved team names for one game.
type Teams struct {
	Home string
	Away string
}

// Teams resolves the team names, preferring full names over short names.
func (g *GameInfo) Teams() Teams {
	home := strings.TrimSpace(g.HomeTeamName)
	if home == "" {
		home = strings.TrimSpace(g.HomeTeamShortName)
	}
	away := strings.TrimSpace(g.AwayTeamName)
	if away == "" {
		away = strings.TrimSpace(g.AwayTeamShortName)
	}
	return Teams{Home: home, Away: away}
}

// RelayData is one inning's worth of upstream relay fragments plus rosters.
type RelayData struct {
	TextRelays []TextRelay `json:"textRelays"`
	HomeEntry  Entry       `json:"homeEntry,omitempty"`
	AwayEntry  Entry       `json:"awayEntry,omitempty"`
	HomeLineup Entry       `json:"homeLineup,omitempty"`
	AwayLineup Entry       `json:"awayLineup,omitempty"`
}

// Entry is a roster block listing batters and pitchers.
type Entry struct {
	Batter  []Player `json:"batter,omitempty"`
	Pitcher []Player `json:"pitcher,omitempty"`
}

// Player is a roster or substitution participant. The feed uses several id
// and name keys interchangeably.
type Player struct {
	PCode       FlexString `json:"pcode,omitempty"`
	PlayerID    FlexString `json:"playerId,omitempty"`
	PlayerIDAlt FlexString `json:"player_id,omitempty"`
	Name        string     `json:"name,omitempty"`
	PlayerName  string     `json:"playerName,omitempty"`
	PlayerPos   string     `json:"playerPos,omitempty"`
	PosName     string     `json:"posName,omitempty"`
}

// ID returns the first non-empty player id key.
func (p *Player) ID() string {
	for _, id := range []string{p.PCode.String(), p.PlayerID.String(), p.PlayerIDAlt.String()} {
		if id = strings.TrimSpace(id); id != "" {
			return id
		}
	}
	return ""
}

// DisplayName returns the first non-empty name key.
func (p *Player) DisplayName() string {
	if n := strings.TrimSpace(p.Name); n != "" {
		return n
	}
	return strings.TrimSpace(p.PlayerName)
}

// TextRelay is one relay group: an inning half with its ordered fragments.
type TextRelay struct {
	No          FlexInt      `json:"no"`
	Inning      FlexInt      `json:"inn"`
	HomeOrAway  FlexString   `json:"homeOrAway"`
	TextOptions []TextOption `json:"textOptions"`
}

// Half normalizes homeOrAway: "0" means the top half (away team batting).
func (r *TextRelay) Half() string {
	if r.HomeOrAway.String() == "0" {
		return "top"
	}
	return "bottom"
}

// TextOption is one raw feed fragment: a typed, free-text annotated event
// candidate with optional embedded game state.
type TextOption struct {
	SeqNo            FlexInt       `json:"seqno"`
	Type             FlexInt       `json:"type"`
	Text             string        `json:"text,omitempty"`
	PitchResult      FlexString    `json:"pitchResult,omitempty"`
	CurrentGameState *GameState    `json:"currentGameState,omitempty"`
	BatterRecord     *BatterRecord `json:"batterRecord,omitempty"`
	PlayerChange     *PlayerChange `json:"playerChange,omitempty"`
}

// PitchCode returns the structured pitch result, upper-cased and trimmed.
func (o *TextOption) PitchCode() string {
	return strings.ToUpper(strings.TrimSpace(o.PitchResult.String()))
}

// GameState is the in-fragment embedded game state.
type GameState struct {
	Pitcher   FlexString `json:"pitcher,omitempty"`
	Batter    FlexString `json:"batter,omitempty"`
	HomeScore FlexInt    `json:"homeScore"`
	AwayScore FlexInt    `json:"awayScore"`
	Ball      FlexInt    `json:"ball"`
	Strike    FlexInt    `json:"strike"`
	Out       FlexInt    `json:"out"`
	Base1     FlexString `json:"base1,omitempty"`
	Base2     FlexString `json:"base2,omitempty"`
	Base3     FlexString `json:"base3,omitempty"`
}

// Occupied interprets a loose base-occupancy value. Empty, zero, false and
// null-ish strings mean an empty base; anything else means a runner.
func Occupied(v FlexString) bool {
	raw := strings.ToLower(strings.TrimSpace(v.String()))
	switch raw {
	case "", "0", "false", "none", "null":
		return false
	}
	return true
}

// BatterRecord announces a batter stepping up.
type BatterRecord struct {
	PCode   FlexString `json:"pcode,omitempty"`
	Name    string     `json:"name,omitempty"`
	PosName string     `json:"posName,omitempty"`
}

// PlayerChange is an in-line roster substitution fragment.
type PlayerChange struct {
	LiveText  string  `json:"liveText,omitempty"`
	InPlayer  *Player `json:"inPlayer,omitempty"`
	OutPlayer *Player `json:"outPlayer,omitempty"`
}
