package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/erazemk/stvari/internal/auth"
	"github.com/erazemk/stvari/internal/cache"
	"github.com/erazemk/stvari/internal/model"
	"github.com/erazemk/stvari/internal/store"
	"github.com/erazemk/stvari/internal/vocab"
)

// ensureAdmin creates an admin account named username when the database has
// no active admin, which is the case on first run. It returns the generated
// password, or "" when an admin already exists.
func ensureAdmin(ctx context.Context, database *sql.DB, username string) (string, error) {
	n, err := store.CountAdmins(ctx, database)
	if err != nil {
		return "", err
	}
	if n > 0 {
		return "", nil
	}

	password, err := generatePassword(16)
	if err != nil {
		return "", fmt.Errorf("generating password: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", err
	}

	if _, err := store.CreateUser(ctx, database, username, hash, model.RoleAdmin); err != nil {
		if errors.Is(err, store.ErrUsernameTaken) {
			return "", fmt.Errorf("no admin account and %q is taken, pick another name with -user", username)
		}
		return "", fmt.Errorf("creating admin user: %w", err)
	}

	return password, nil
}

// printAdminCreated prints the generated admin credentials to stdout.
func printAdminCreated(dbPath, username, password string) {
	fmt.Printf("Database: %s\n", dbPath)
	fmt.Println()
	fmt.Println("Admin account created:")
	fmt.Printf("  Username: %s\n", username)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password, it cannot be recovered.")
	fmt.Println("The admin can change it after logging in.")
	fmt.Println()
}

// purgeRevokedTokens removes expired revocations every interval until ctx is done.
func purgeRevokedTokens(ctx context.Context, database *sql.DB, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		n, err := store.PurgeRevokedTokens(ctx, database, time.Now())
		switch {
		case err != nil && ctx.Err() == nil:
			slog.Warn("failed to purge revoked tokens", "error", err)
		case n > 0:
			slog.Info("purged revoked tokens", "count", n)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}

// loadVocabulary returns the vocabulary at path, or the built-in one.
func loadVocabulary(path string) (*vocab.Vocabulary, error) {
	if path == "" {
		return vocab.Default(), nil
	}
	v, err := vocab.LoadFile(path)
	if err != nil {
		return nil, err
	}
	slog.Info("vocabulary loaded", "path", path, "categories", len(v.Categories))
	return v, nil
}

// openCache connects to Redis when an address is given and falls back to an
// in-process cache otherwise.
func openCache(ctx context.Context, addr, password string) (cache.Cache, error) {
	if addr == "" {
		return cache.NewMemory(), nil
	}
	r, err := cache.NewRedis(ctx, addr, password, 0)
	if err != nil {
		return nil, err
	}
	slog.Info("facet cache ready", "backend", "redis", "addr", addr)
	return r, nil
}
