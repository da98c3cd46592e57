// Package ingest merges producer snapshots into durable state and serves
// the event log and live-state projections built from it.
package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/basehaptic/relayapi/models"
)

// Bases flags base occupancy.
type Bases struct {
	First  bool `json:"first"`
	Second bool `json:"second"`
	Third  bool `json:"third"`
}

// EventIn is one producer-submitted event. SourceEventID is the idempotency
// key, unique per (game, source id).
type EventIn struct {
	SourceEventID string         `json:"sourceEventId"`
	Type          string         `json:"type"`
	Description   string         `json:"description"`
	OccurredAt    time.Time      `json:"occurredAt"`
	HapticPattern *string        `json:"hapticPattern,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// Snapshot is one full game-state plus event-batch payload submitted by the
// producer.
type Snapshot struct {
	HomeTeam   string     `json:"homeTeam"`
	AwayTeam   string     `json:"awayTeam"`
	Status     string     `json:"status"`
	Inning     string     `json:"inning"`
	HomeScore  int        `json:"homeScore"`
	AwayScore  int        `json:"awayScore"`
	Ball       int        `json:"ball"`
	Strike     int        `json:"strike"`
	Out        int        `json:"out"`
	Bases      Bases      `json:"bases"`
	Pitcher    *string    `json:"pitcher,omitempty"`
	Batter     *string    `json:"batter,omitempty"`
	ObservedAt *time.Time `json:"observedAt,omitempty"`
	Events     []EventIn  `json:"events"`
}

// Validate checks structural and range constraints and applies documented
// defaults to malformed optional fields. Required-field and range failures
// reject the whole batch before any merge happens; optional fields degrade
// instead of failing.
func (s *Snapshot) Validate() error {
	s.HomeTeam = strings.TrimSpace(s.HomeTeam)
	s.AwayTeam = strings.TrimSpace(s.AwayTeam)
	if s.HomeTeam == "" || s.AwayTeam == "" {
		return fmt.Errorf("homeTeam and awayTeam are required")
	}
	if s.HomeScore < 0 || s.HomeScore > 99 || s.AwayScore < 0 || s.AwayScore > 99 {
		return fmt.Errorf("scores must be within 0-99")
	}
	if s.Ball < 0 || s.Ball > 4 {
		return fmt.Errorf("ball count must be within 0-4")
	}
	if s.Strike < 0 || s.Strike > 3 {
		return fmt.Errorf("strike count must be within 0-3")
	}
	if s.Out < 0 || s.Out > 3 {
		return fmt.Errorf("out count must be within 0-3")
	}
	if strings.TrimSpace(s.Inning) == "" {
		s.Inning = "-"
	}
	if s.Pitcher != nil && strings.TrimSpace(*s.Pitcher) == "" {
		s.Pitcher = nil
	}
	if s.Batter != nil && strings.TrimSpace(*s.Batter) == "" {
		s.Batter = nil
	}
	for i := range s.Events {
		ev := &s.Events[i]
		ev.SourceEventID = strings.TrimSpace(ev.SourceEventID)
		if ev.SourceEventID == "" {
			return fmt.Errorf("events[%d]: sourceEventId is required", i)
		}
		if len(ev.SourceEventID) > 80 {
			return fmt.Errorf("events[%d]: sourceEventId too long", i)
		}
		if ev.OccurredAt.IsZero() {
			return fmt.Errorf("events[%d]: occurredAt is required", i)
		}
	}
	return nil
}

// Result reports the outcome of one ingestion merge.
type Result struct {
	GameID          string            `json:"gameId"`
	ReceivedEvents  int               `json:"receivedEvents"`
	InsertedEvents  int               `json:"insertedEvents"`
	DuplicateEvents int               `json:"duplicateEvents"`
	Status          models.GameStatus `json:"status"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// EventOut is the client-facing event log entry.
type EventOut struct {
	Cursor        int64            `json:"cursor"`
	ID            string           `json:"id"`
	Type          models.EventType `json:"type"`
	Description   string           `json:"description"`
	Time          time.Time        `json:"time"`
	HapticPattern *string          `json:"hapticPattern,omitempty"`
}

// EventsPage is one page of the event log. NextCursor is present only when
// strictly more rows exist beyond this page.
type EventsPage struct {
	Items      []EventOut `json:"items"`
	NextCursor *int64     `json:"nextCursor,omitempty"`
}

// Summary is the listing view of a game.
type Summary struct {
	ID        string            `json:"id"`
	HomeTeam  string            `json:"homeTeam"`
	AwayTeam  string            `json:"awayTeam"`
	HomeScore int               `json:"homeScore"`
	AwayScore int               `json:"awayScore"`
	Inning    string            `json:"inning"`
	Status    models.GameStatus `json:"status"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// State is the derived live-state projection of a game.
type State struct {
	GameID        string            `json:"gameId"`
	HomeTeam      string            `json:"homeTeam"`
	AwayTeam      string            `json:"awayTeam"`
	HomeScore     int               `json:"homeScore"`
	AwayScore     int               `json:"awayScore"`
	Inning        string            `json:"inning"`
	Status        models.GameStatus `json:"status"`
	Ball          int               `json:"ball"`
	Strike        int               `json:"strike"`
	Out           int               `json:"out"`
	Bases         Bases             `json:"bases"`
	Pitcher       *string           `json:"pitcher,omitempty"`
	Batter        *string           `json:"batter,omitempty"`
	LastEventType *models.EventType `json:"lastEventType,omitempty"`
	LastEventAt   *time.Time        `json:"lastEventAt,omitempty"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

func toEventOut(ev *models.GameEvent) EventOut {
	return EventOut{
		Cursor:        ev.Cursor,
		ID:            ev.SourceEventID,
		Type:          models.NormalizeEventType(ev.EventType),
		Description:   ev.Description,
		Time:          ev.EventTime,
		HapticPattern: ev.HapticPattern,
	}
}

func toSummary(g *models.Game) Summary {
	return Summary{
		ID:        g.ID,
		HomeTeam:  g.HomeTeam,
		AwayTeam:  g.AwayTeam,
		HomeScore: g.HomeScore,
		AwayScore: g.AwayScore,
		Inning:    g.Inning,
		Status:    models.NormalizeStatus(g.Status),
		UpdatedAt: g.UpdatedAt,
	}
}
