package postgres

import (
	"database/sql"

	_ "github.com/lib/pq"
)

// Open connects to the remote mirror database and applies the schema
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
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
CREATE TABLE IF NOT EXISTS settings (
    user_id TEXT PRIMARY KEY,
    is_pro BOOLEAN NOT NULL DEFAULT FALSE,
    plan_selected BOOLEAN NOT NULL DEFAULT FALSE,
    cloud_sync_enabled BOOLEAN NOT NULL DEFAULT FALSE,
    auto_cloud_sync BOOLEAN NOT NULL DEFAULT FALSE,
    subscription_ends_at BIGINT,
    pro_trial_ends_at BIGINT,
    pro_trial_used BOOLEAN NOT NULL DEFAULT FALSE,
    ai_credits INTEGER NOT NULL DEFAULT 0,
    monthly_credits_last_updated BIGINT NOT NULL,
    updated_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS recordings (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    name TEXT NOT NULL,
    transcript TEXT NOT NULL DEFAULT '',
    audio_path TEXT NOT NULL,
    size_bytes BIGINT NOT NULL DEFAULT 0,
    created_at BIGINT NOT NULL,
    updated_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_recordings_user_created
    ON recordings (user_id, created_at DESC);
`)
	return err
}
