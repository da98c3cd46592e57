package ingest

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/basehaptic/relayapi/bus"
	"github.com/basehaptic/relayapi/models"
)

// ErrGameNotFound marks queries for an unknown game id.
var ErrGameNotFound = errors.New("game not found")

// ErrInvalidSnapshot marks payloads that fail structural or range
// constraints; nothing is merged when it is returned.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Engine merges producer snapshots into durable state and notifies the
// fan-out bus after each successful commit.
type Engine struct {
	db  *bun.DB
	bus *bus.Bus
	log *zap.Logger
}

// NewEngine wires the engine to its store and bus.
func NewEngine(db *bun.DB, b *bus.Bus, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{db: db, bus: b, log: log}
}

// Ingest merges one snapshot as a single atomic unit of work: the game
// upsert and all novel event inserts commit together or not at all.
// Duplicate events (already stored, or repeated within the batch) are
// counted and skipped, never an error. Survivors are inserted in ascending
// event-time order so store-assigned cursors approximate chronological
// order even for internally out-of-order batches.
func (e *Engine) Ingest(ctx context.Context, gameID string, snap *Snapshot) (*Result, error) {
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	updatedAt := time.Now().UTC()
	if snap.ObservedAt != nil {
		updatedAt = snap.ObservedAt.UTC()
	}
	status := models.NormalizeStatus(snap.Status)

	var inserted []*models.GameEvent
	duplicates := 0

	err := e.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		game := &models.Game{
			ID:          gameID,
			HomeTeam:    snap.HomeTeam,
			AwayTeam:    snap.AwayTeam,
			Status:      string(status),
			Inning:      snap.Inning,
			HomeScore:   snap.HomeScore,
			AwayScore:   snap.AwayScore,
			BallCount:   snap.Ball,
			StrikeCount: snap.Strike,
			OutCount:    snap.Out,
			BaseFirst:   snap.Bases.First,
			BaseSecond:  snap.Bases.Second,
			BaseThird:   snap.Bases.Third,
			Pitcher:     snap.Pitcher,
			Batter:      snap.Batter,
			CreatedAt:   time.Now().UTC(),
			UpdatedAt:   updatedAt,
		}
		if _, err := tx.NewInsert().Model(game).
			On("CONFLICT (id) DO UPDATE").
			Set(`home_team = EXCLUDED.home_team, away_team = EXCLUDED.away_team,
				status = EXCLUDED.status, inning = EXCLUDED.inning,
				home_score = EXCLUDED.home_score, away_score = EXCLUDED.away_score,
				ball_count = EXCLUDED.ball_count, strike_count = EXCLUDED.strike_count,
				out_count = EXCLUDED.out_count,
				base_first = EXCLUDED.base_first, base_second = EXCLUDED.base_second,
				base_third = EXCLUDED.base_third,
				pitcher = EXCLUDED.pitcher, batter = EXCLUDED.batter,
				updated_at = EXCLUDED.updated_at`).
			Exec(ctx); err != nil {
			return fmt.Errorf("upsert game: %w", err)
		}

		if len(snap.Events) == 0 {
			return nil
		}

		sourceIDs := make([]string, len(snap.Events))
		for i, ev := range snap.Events {
			sourceIDs[i] = ev.SourceEventID
		}
		var known []string
		if err := tx.NewSelect().Model((*models.GameEvent)(nil)).
			Column("source_event_id").
			Where("game_id = ?", gameID).
			Where("source_event_id IN (?)", bun.In(sourceIDs)).
			Scan(ctx, &known); err != nil {
			return fmt.Errorf("select existing events: %w", err)
		}
		seen := make(map[string]struct{}, len(known))
		for _, id := range known {
			seen[id] = struct{}{}
		}

		ordered := make([]EventIn, len(snap.Events))
		copy(ordered, snap.Events)
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].OccurredAt.Before(ordered[j].OccurredAt)
		})

		for _, in := range ordered {
			if _, dup := seen[in.SourceEventID]; dup {
				duplicates++
				continue
			}
			seen[in.SourceEventID] = struct{}{}

			var payload *string
			if in.Metadata != nil {
				raw, err := json.Marshal(in.Metadata)
				if err != nil {
					return fmt.Errorf("encode event metadata: %w", err)
				}
				s := string(raw)
				payload = &s
			}
			event := &models.GameEvent{
				GameID:        gameID,
				SourceEventID: in.SourceEventID,
				EventType:     string(models.NormalizeEventType(in.Type)),
				Description:   in.Description,
				EventTime:     in.OccurredAt.UTC(),
				HapticPattern: in.HapticPattern,
				PayloadJSON:   payload,
				CreatedAt:     time.Now().UTC(),
			}
			if _, err := tx.NewInsert().Model(event).Exec(ctx); err != nil {
				return fmt.Errorf("insert event %s: %w", in.SourceEventID, err)
			}
			inserted = append(inserted, event)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("snapshot ingested",
		zap.String("game_id", gameID),
		zap.Int("received", len(snap.Events)),
		zap.Int("inserted", len(inserted)),
		zap.Int("duplicates", duplicates),
		zap.String("status", string(status)),
	)

	e.notify(ctx, gameID, inserted)

	return &Result{
		GameID:          gameID,
		ReceivedEvents:  len(snap.Events),
		InsertedEvents:  len(inserted),
		DuplicateEvents: duplicates,
		Status:          status,
		UpdatedAt:       updatedAt,
	}, nil
}

// notify broadcasts the committed events, then the fresh state, preserving
// cursor order. Runs outside the transaction so a slow subscriber cannot
// hold the store.
func (e *Engine) notify(ctx context.Context, gameID string, inserted []*models.GameEvent) {
	if e.bus == nil {
		return
	}
	if len(inserted) > 0 {
		items := make([]EventOut, len(inserted))
		for i, ev := range inserted {
			items[i] = toEventOut(ev)
		}
		e.bus.Broadcast(gameID, bus.Message{Type: "events", Payload: EventsPage{Items: items}})
	}
	state, err := e.GameState(ctx, gameID)
	if err != nil {
		e.log.Warn("state broadcast skipped", zap.String("game_id", gameID), zap.Error(err))
		return
	}
	e.bus.Broadcast(gameID, bus.Message{Type: "state", Payload: state})
}

// ListGames returns recently updated games, optionally filtered by
// canonical status.
func (e *Engine) ListGames(ctx context.Context, status string, limit int) ([]Summary, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	var games []models.Game
	q := e.db.NewSelect().Model(&games).
		OrderExpr("updated_at DESC").
		Limit(limit)
	if status != "" {
		q = q.Where("status = ?", string(models.NormalizeStatus(status)))
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	out := make([]Summary, len(games))
	for i := range games {
		out[i] = toSummary(&games[i])
	}
	return out, nil
}

// GetGame returns one game summary, or ErrGameNotFound.
func (e *Engine) GetGame(ctx context.Context, gameID string) (*Summary, error) {
	game, err := e.fetchGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	s := toSummary(game)
	return &s, nil
}

// GameState builds the derived live-state projection for one game.
func (e *Engine) GameState(ctx context.Context, gameID string) (*State, error) {
	game, err := e.fetchGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	state := &State{
		GameID:    game.ID,
		HomeTeam:  game.HomeTeam,
		AwayTeam:  game.AwayTeam,
		HomeScore: game.HomeScore,
		AwayScore: game.AwayScore,
		Inning:    game.Inning,
		Status:    models.NormalizeStatus(game.Status),
		Ball:      game.BallCount,
		Strike:    game.StrikeCount,
		Out:       game.OutCount,
		Bases:     Bases{First: game.BaseFirst, Second: game.BaseSecond, Third: game.BaseThird},
		Pitcher:   game.Pitcher,
		Batter:    game.Batter,
		UpdatedAt: game.UpdatedAt,
	}

	latest := new(models.GameEvent)
	err = e.db.NewSelect().Model(latest).
		Where("game_id = ?", gameID).
		OrderExpr("cursor DESC").
		Limit(1).
		Scan(ctx)
	switch {
	case err == nil:
		t := models.NormalizeEventType(latest.EventType)
		state.LastEventType = &t
		state.LastEventAt = &latest.EventTime
	case errors.Is(err, sql.ErrNoRows):
		// no events yet
	default:
		return nil, fmt.Errorf("latest event: %w", err)
	}
	return state, nil
}

// ListEvents returns events with cursor strictly greater than after, in
// ascending cursor order, capped at limit. NextCursor is set only when more
// matching rows exist beyond the returned page.
func (e *Engine) ListEvents(ctx context.Context, gameID string, after int64, limit int) (*EventsPage, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	if _, err := e.fetchGame(ctx, gameID); err != nil {
		return nil, err
	}

	var rows []models.GameEvent
	err := e.db.NewSelect().Model(&rows).
		Where("game_id = ?", gameID).
		Where("cursor > ?", after).
		OrderExpr("cursor ASC").
		Limit(limit + 1).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	page := &EventsPage{Items: []EventOut{}}
	chunk := rows
	if len(rows) > limit {
		chunk = rows[:limit]
		last := chunk[len(chunk)-1].Cursor
		page.NextCursor = &last
	}
	for i := range chunk {
		page.Items = append(page.Items, toEventOut(&chunk[i]))
	}
	return page, nil
}

// RecentEvents returns the k most recent events, oldest-first, for the
// resync burst sent to a freshly connected subscriber.
func (e *Engine) RecentEvents(ctx context.Context, gameID string, k int) ([]EventOut, error) {
	if k < 1 {
		k = 20
	}
	var rows []models.GameEvent
	err := e.db.NewSelect().Model(&rows).
		Where("game_id = ?", gameID).
		OrderExpr("cursor DESC").
		Limit(k).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("recent events: %w", err)
	}
	out := make([]EventOut, len(rows))
	for i := range rows {
		out[len(rows)-1-i] = toEventOut(&rows[i])
	}
	return out, nil
}

func (e *Engine) fetchGame(ctx context.Context, gameID string) (*models.Game, error) {
	game := new(models.Game)
	err := e.db.NewSelect().Model(game).Where("g.id = ?", gameID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch game: %w", err)
	}
	return game, nil
}
