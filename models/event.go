package models

import (
	"time"

	"github.com/uptrace/bun"
)

// GameEvent is one append-only row of a game's event log. The cursor is
// assigned by the store and strictly increases within a game; the
// (game_id, source_event_id) pair is the producer-facing idempotency key.
// Rows are never updated or deleted except by cascade with their game.
type GameEvent struct {
	bun.BaseModel `bun:"table:game_events,alias:ge"`

	Cursor        int64     `bun:"cursor,pk,autoincrement" json:"cursor"`
	GameID        string    `bun:"game_id,notnull" json:"gameID"`
	SourceEventID string    `bun:"source_event_id,notnull" json:"sourceEventID"`
	EventType     string    `bun:"event_type,notnull" json:"type"`
	Description   string    `bun:"description,notnull,default:''" json:"description"`
	EventTime     time.Time `bun:"event_time,notnull" json:"time"`
	HapticPattern *string   `bun:"haptic_pattern" json:"hapticPattern,omitempty"`
	PayloadJSON   *string   `bun:"payload_json" json:"-"`
	CreatedAt     time.Time `bun:"created_at,notnull" json:"createdAt"`

	Game *Game `bun:"rel:belongs-to,join:game_id=id" json:"-"`
}
