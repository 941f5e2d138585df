package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
)

const settingJWTSecret = "jwt_secret"

// GetSetting returns a stored setting. The boolean is false when the key is unset.
func GetSetting(ctx context.Context, db *sql.DB, key string) (string, bool, error) {
	var value string
	err := db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("getting setting %s: %w", key, err)
	}
	return value, true, nil
}

// SetSetting stores a setting, replacing any previous value.
func SetSetting(ctx context.Context, db *sql.DB, key, value string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("storing setting %s: %w", key, err)
	}
	return nil
}

// GetJWTSecret returns the token signing secret, generating it on first use.
// Concurrent first calls agree on one value.
func GetJWTSecret(ctx context.Context, db *sql.DB) (string, error) {
	candidate, err := newSecret()
	if err != nil {
		return "", err
	}

	_, err = db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`,
		settingJWTSecret, candidate,
	)
	if err != nil {
		return "", fmt.Errorf("storing jwt secret: %w", err)
	}

	secret, _, err := GetSetting(ctx, db, settingJWTSecret)
	return secret, err
}

// RotateJWTSecret replaces the signing secret, invalidating every issued token.
func RotateJWTSecret(ctx context.Context, db *sql.DB) (string, error) {
	secret, err := newSecret()
	if err != nil {
		return "", err
	}
	if err := SetSetting(ctx, db, settingJWTSecret, secret); err != nil {
		return "", err
	}
	return secret, nil
}

func newSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
