package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Game holds the latest accepted snapshot of one tracked game. There is at
// most one row per external game id; mutable fields are overwritten wholesale
// by each accepted snapshot.
type Game struct {
	bun.BaseModel `bun:"table:games,alias:g"`

	ID       string `bun:"id,pk" json:"id"`
	HomeTeam string `bun:"home_team,notnull" json:"homeTeam"`
	AwayTeam string `bun:"away_team,notnull" json:"awayTeam"`
	Status   string `bun:"status,notnull,default:'SCHEDULED'" json:"status"`
	Inning   string `bun:"inning,notnull,default:'-'" json:"inning"`

	HomeScore   int `bun:"home_score,notnull,default:0" json:"homeScore"`
	AwayScore   int `bun:"away_score,notnull,default:0" json:"awayScore"`
	BallCount   int `bun:"ball_count,notnull,default:0" json:"ball"`
	StrikeCount int `bun:"strike_count,notnull,default:0" json:"strike"`
	OutCount    int `bun:"out_count,notnull,default:0" json:"out"`

	BaseFirst  bool `bun:"base_first,notnull,default:false" json:"baseFirst"`
	BaseSecond bool `bun:"base_second,notnull,default:false" json:"baseSecond"`
	BaseThird  bool `bun:"base_third,notnull,default:false" json:"baseThird"`

	Pitcher *string `bun:"pitcher" json:"pitcher,omitempty"`
	Batter  *string `bun:"batter" json:"batter,omitempty"`

	CreatedAt time.Time `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"updatedAt"`

	Events []*GameEvent `bun:"rel:has-many,join:id=game_id" json:"-"`
}
