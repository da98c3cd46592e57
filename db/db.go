package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
	_ "modernc.org/sqlite"

	"github.com/basehaptic/relayapi/config"
	"github.com/basehaptic/relayapi/models"
)

// Setup opens a database connection for the configured driver.
func Setup(cfg *config.Config) *bun.DB {
	var db *bun.DB
	switch cfg.DBDriver {
	case "sqlite":
		sqldb, err := sql.Open("sqlite", cfg.SQLitePath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
		if err != nil {
			log.Fatal("failed to open sqlite database:", err)
		}
		// modernc sqlite serializes writes; one connection avoids SQLITE_BUSY.
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	default:
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.PostgresDSN())))
		db = bun.NewDB(sqldb, pgdialect.New())
	}

	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	if err := db.PingContext(context.Background()); err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	return db
}

// SetupSQLite opens an in-memory SQLite database. Used by tests and local demos.
func SetupSQLite() *bun.DB {
	sqldb, err := sql.Open("sqlite", "file::memory:?cache=shared")
	if err != nil {
		log.Fatal("failed to open sqlite database:", err)
	}
	sqldb.SetMaxOpenConns(1)
	return bun.NewDB(sqldb, sqlitedialect.New())
}

// CreateTables creates all tables in dependency order.
func CreateTables(ctx context.Context, db *bun.DB) error {
	tables := []interface{}{
		(*models.Game)(nil),
		(*models.GameEvent)(nil),
	}

	for _, model := range tables {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("creating table for %T: %w", model, err)
		}
	}

	// Dedup key for snapshot re-ingestion, plus the per-game cursor scan path.
	indexes := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS game_events_no_dupes ON game_events (game_id, source_event_id)`,
		`CREATE INDEX IF NOT EXISTS game_events_cursor ON game_events (game_id, cursor)`,
	}
	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating index: %w", err)
		}
	}

	return nil
}
