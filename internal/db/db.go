package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

var Pool *pgxpool.Pool

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	username TEXT UNIQUE NOT NULL,
	password_hash TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS groups (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS group_members (
	group_id TEXT NOT NULL REFERENCES groups(id),
	user_id TEXT NOT NULL,
	PRIMARY KEY (group_id, user_id)
);

CREATE TABLE IF NOT EXISTS messages (
	id BIGSERIAL PRIMARY KEY,
	kind TEXT NOT NULL,
	group_id TEXT,
	sender_id TEXT NOT NULL,
	receiver_id TEXT,
	body TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	CHECK ((kind = 'group' AND group_id IS NOT NULL AND receiver_id IS NULL)
	    OR (kind = 'direct' AND receiver_id IS NOT NULL AND group_id IS NULL))
);

CREATE INDEX IF NOT EXISTS idx_messages_group ON messages (group_id, id) WHERE kind = 'group';
CREATE INDEX IF NOT EXISTS idx_messages_direct ON messages (sender_id, receiver_id, id) WHERE kind = 'direct';
`

// Init initializes the PostgreSQL connection pool and ensures the schema.
func Init(ctx context.Context, connString string) error {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return fmt.Errorf("unable to parse connection string: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	Pool, err = pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := Pool.Ping(ctx); err != nil {
		return fmt.Errorf("unable to ping database: %w", err)
	}

	if _, err := Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("unable to ensure schema: %w", err)
	}

	log.Info().Msg("connected to PostgreSQL")
	return nil
}

// Close closes the database connection pool.
func Close() {
	if Pool != nil {
		Pool.Close()
	}
}
