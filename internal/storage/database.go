// Package storage persists finished analysis runs and their classified
// items through sqlx, on sqlite by default or postgres by configuration.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // postgres driver
	_ "github.com/mattn/go-sqlite3" // sqlite driver

	"github.com/ytlens/sponsorlens/internal/config"
	"github.com/ytlens/sponsorlens/internal/logger"
)

const (
	maxOpenConns    = 25
	maxIdleConns    = 5
	connMaxLifetime = 5 * time.Minute
	pingTimeout     = 5 * time.Second
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id               TEXT PRIMARY KEY,
	source_ref       TEXT NOT NULL,
	mode             TEXT NOT NULL,
	status           TEXT NOT NULL,
	items_total      INTEGER NOT NULL,
	items_completed  INTEGER NOT NULL,
	started_at       TIMESTAMP NOT NULL,
	finished_at      TIMESTAMP
);

CREATE TABLE IF NOT EXISTS run_items (
	run_id             TEXT NOT NULL,
	item_id            TEXT NOT NULL,
	position           INTEGER NOT NULL DEFAULT 0,
	kind               TEXT NOT NULL,
	title              TEXT NOT NULL,
	text               TEXT NOT NULL,
	author_ref         TEXT NOT NULL,
	published_at       TIMESTAMP,
	classified         INTEGER NOT NULL,
	sponsored          INTEGER NOT NULL,
	advertiser_name    TEXT NOT NULL,
	product_or_service TEXT NOT NULL,
	detected_keywords  TEXT NOT NULL,
	country_guess      TEXT NOT NULL,
	analysis_error     TEXT NOT NULL,
	method             TEXT NOT NULL,
	classified_at      TIMESTAMP,
	PRIMARY KEY (run_id, item_id)
);

CREATE INDEX IF NOT EXISTS idx_run_items_run_id ON run_items(run_id);
`

// Open connects to the configured database and ensures the schema exists.
func Open(cfg config.StorageConfig, log logger.Logger) (*sqlx.DB, error) {
	var (
		db  *sqlx.DB
		err error
	)

	switch cfg.Driver {
	case "postgres":
		dsn := fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
		)
		db, err = sqlx.Connect("postgres", dsn)
	case "sqlite", "":
		db, err = sqlx.Connect("sqlite3", cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if pingErr := db.PingContext(ctx); pingErr != nil {
		return nil, fmt.Errorf("failed to ping database: %w", pingErr)
	}

	if _, execErr := db.Exec(schema); execErr != nil {
		return nil, fmt.Errorf("failed to ensure schema: %w", execErr)
	}

	log.Info("storage ready",
		logger.String("driver", db.DriverName()),
	)
	return db, nil
}
