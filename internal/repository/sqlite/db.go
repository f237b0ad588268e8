package sqlite

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

// Open opens the local cache database and applies the schema
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
    user_id TEXT PRIMARY KEY,
    is_pro INTEGER NOT NULL DEFAULT 0,
    plan_selected INTEGER NOT NULL DEFAULT 0,
    cloud_sync_enabled INTEGER NOT NULL DEFAULT 0,
    auto_cloud_sync INTEGER NOT NULL DEFAULT 0,
    subscription_ends_at INTEGER,
    pro_trial_ends_at INTEGER,
    pro_trial_used INTEGER NOT NULL DEFAULT 0,
    ai_credits INTEGER NOT NULL DEFAULT 0,
    monthly_credits_last_updated INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS recordings (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    name TEXT NOT NULL,
    transcript TEXT NOT NULL DEFAULT '',
    audio_path TEXT NOT NULL,
    size_bytes INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_recordings_user_created
    ON recordings (user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_recordings_created
    ON recordings (created_at);
`)
	return err
}
