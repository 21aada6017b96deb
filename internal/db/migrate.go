package db

import (
	"database/sql"
	"fmt"
)

// Migrate runs all schema migrations. Every statement is idempotent.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS chat_sessions (
		id                 TEXT PRIMARY KEY,
		name               TEXT NOT NULL,
		name_is_auto       INTEGER NOT NULL DEFAULT 1,
		mode               TEXT NOT NULL DEFAULT 'refinement'
		                   CHECK(mode IN ('refinement','general')),
		turn_count         INTEGER NOT NULL DEFAULT 0 CHECK(turn_count >= 0),
		facts_json         TEXT NOT NULL DEFAULT '[]',
		summary_finalized  INTEGER NOT NULL DEFAULT 0,
		show_summary       INTEGER NOT NULL DEFAULT 0,
		profile_json       TEXT,
		founder_background TEXT,
		clarity_score      INTEGER NOT NULL DEFAULT 0
		                   CHECK(clarity_score BETWEEN 0 AND 100),
		favorite           INTEGER NOT NULL DEFAULT 0,
		archived           INTEGER NOT NULL DEFAULT 0,
		origin             TEXT NOT NULL DEFAULT 'normal'
		                   CHECK(origin IN ('normal','bootstrapped','continued')),
		created_at         TEXT NOT NULL,
		updated_at         TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS chat_messages (
		id         TEXT PRIMARY KEY,
		session_id TEXT NOT NULL REFERENCES chat_sessions(id) ON DELETE CASCADE,
		seq        INTEGER NOT NULL,
		sender     TEXT NOT NULL CHECK(sender IN ('user','assistant')),
		kind       TEXT NOT NULL DEFAULT 'normal'
		           CHECK(kind IN ('normal','directive','error')),
		text       TEXT NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE(session_id, seq)
	)`,

	`CREATE TABLE IF NOT EXISTS app_state (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_chat_messages_session ON chat_messages(session_id, seq)`,
	`CREATE INDEX IF NOT EXISTS idx_chat_sessions_updated ON chat_sessions(updated_at)`,
}
