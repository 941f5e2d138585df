package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'user')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS items (
    id                  TEXT PRIMARY KEY,
    user_id             INTEGER NOT NULL REFERENCES users(id),
    item_name           TEXT NOT NULL,
    description         TEXT NOT NULL DEFAULT '',
    category            TEXT NOT NULL DEFAULT '',
    subcategory         TEXT NOT NULL DEFAULT '',
    origin              TEXT NOT NULL DEFAULT '',
    secondhand          TEXT NOT NULL DEFAULT ''
                        CHECK (secondhand IN ('', 'new', 'secondhand', 'handmade', 'unknown')),
    gifted              INTEGER NOT NULL DEFAULT 0,
    private             INTEGER NOT NULL DEFAULT 0,
    private_photos      INTEGER NOT NULL DEFAULT 0,
    private_description INTEGER NOT NULL DEFAULT 0,
    private_origin      INTEGER NOT NULL DEFAULT 0,
    photo               BLOB,
    photo_mime          TEXT NOT NULL DEFAULT '',
    created_at          TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now')),
    updated_at          TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now')),
    deleted_at          TEXT
);

CREATE INDEX IF NOT EXISTS idx_items_user ON items(user_id) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS item_materials (
    item_id    TEXT NOT NULL REFERENCES items(id),
    position   INTEGER NOT NULL,
    material   TEXT NOT NULL,
    percentage INTEGER CHECK (percentage IS NULL OR (percentage >= 0 AND percentage <= 100)),
    PRIMARY KEY (item_id, position)
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at TEXT NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
