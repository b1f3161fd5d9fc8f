package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS calls (
	id                UUID PRIMARY KEY,
	source_name       TEXT NOT NULL,
	call_datetime_raw TEXT,
	call_datetime     TIMESTAMPTZ,
	line_number       TEXT,
	caller            TEXT,
	callee            TEXT,
	duration_raw      TEXT,
	duration_seconds  INTEGER,
	conversation      TEXT NOT NULL DEFAULT '',
	extra             JSONB NOT NULL DEFAULT '{}',
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS call_turns (
	call_id         UUID NOT NULL REFERENCES calls(id) ON DELETE CASCADE,
	turn_index      INTEGER NOT NULL,
	role_ru         TEXT NOT NULL,
	role_en         TEXT NOT NULL,
	timestamp_local TEXT NOT NULL,
	text            TEXT NOT NULL,
	PRIMARY KEY (call_id, turn_index)
);`

// EnsureSchema creates the calls tables when they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
