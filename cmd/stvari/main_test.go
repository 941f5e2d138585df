package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/language"

	"github.com/erazemk/stvari/internal/auth"
	"github.com/erazemk/stvari/internal/db"
	"github.com/erazemk/stvari/internal/model"
	"github.com/erazemk/stvari/internal/store"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		args      []string
		wantDB    string
		wantAddr  string
		wantRedis string
		wantLang  language.Tag
	}{
		{nil, "stvari.sqlite3", ":8080", "", language.Slovenian},
		{[]string{"-d", "x.db", "-a", ":9000", "-r", "localhost:6379", "-lang", "en"}, "x.db", ":9000", "localhost:6379", language.English},
		{[]string{"-db", "y.db", "-addr", "127.0.0.1:1", "-redis", "r:1"}, "y.db", "127.0.0.1:1", "r:1", language.Slovenian},
	}

	for _, tt := range tests {
		cfg, err := parseFlags(tt.args, io.Discard)
		if err != nil {
			t.Fatalf("parseFlags(%v): %v", tt.args, err)
		}
		if cfg.dbPath != tt.wantDB || cfg.addr != tt.wantAddr || cfg.redisAddr != tt.wantRedis || cfg.lang != tt.wantLang {
			t.Errorf("parseFlags(%v) = %+v", tt.args, cfg)
		}
	}
}

func TestParseFlagsErrors(t *testing.T) {
	var out bytes.Buffer
	if _, err := parseFlags([]string{"-h"}, &out); !errors.Is(err, flag.ErrHelp) {
		t.Errorf("expected ErrHelp, got %v", err)
	}
	if !strings.Contains(out.String(), "-vocab") {
		t.Error("usage should list -vocab")
	}

	if _, err := parseFlags([]string{"extra"}, io.Discard); err == nil {
		t.Error("expected error for positional argument")
	}
	if _, err := parseFlags([]string{"-lang", "!!"}, io.Discard); err == nil {
		t.Error("expected error for invalid language")
	}
}

func TestLevelRouter(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := slog.New(newLevelRouter(&stdout, &stderr)).With("app", "stvari")

	logger.Info("hello")
	logger.Warn("careful")
	logger.Error("broken")
	logger.Debug("hidden")

	if s := stdout.String(); !strings.Contains(s, "hello") || !strings.Contains(s, "careful") || strings.Contains(s, "broken") {
		t.Errorf("unexpected stdout: %s", s)
	}
	if s := stderr.String(); !strings.Contains(s, "broken") || !strings.Contains(s, "app=stvari") {
		t.Errorf("unexpected stderr: %s", s)
	}
	if strings.Contains(stdout.String()+stderr.String(), "hidden") {
		t.Error("debug records should be dropped")
	}
}

func TestEnsureAdmin(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	password, err := ensureAdmin(ctx, database, "Admin")
	if err != nil {
		t.Fatalf("ensureAdmin: %v", err)
	}
	if len(password) != 16 {
		t.Errorf("expected 16 character password, got %d", len(password))
	}
	admin, err := store.GetUserByUsername(ctx, database, "Admin")
	if err != nil || admin == nil {
		t.Fatalf("admin missing: %v", err)
	}
	if err := auth.CheckPassword(admin.PasswordHash, password); err != nil {
		t.Errorf("printed password does not match: %v", err)
	}

	// An existing admin is left alone.
	if again, err := ensureAdmin(ctx, database, "Other"); err != nil || again != "" {
		t.Errorf("expected no new admin, got %q, %v", again, err)
	}
}

func TestEnsureAdminNameTaken(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	store.CreateUser(ctx, database, "Admin", "hash", model.RoleUser)
	if _, err := ensureAdmin(ctx, database, "Admin"); err == nil || !strings.Contains(err.Error(), "-user") {
		t.Errorf("expected hint to use -user, got %v", err)
	}
}

func TestPurgeRevokedTokensStops(t *testing.T) {
	database := db.NewTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())

	store.RevokeToken(ctx, database, "old", time.Now().Add(-time.Hour))

	done := make(chan struct{})
	go func() {
		purgeRevokedTokens(ctx, database, time.Hour)
		close(done)
	}()

	// The first purge runs immediately.
	deadline := time.Now().Add(5 * time.Second)
	for {
		revoked, _ := store.IsTokenRevoked(context.Background(), database, "old")
		if !revoked {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("expired revocation was not purged")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("purge loop did not stop")
	}
}

func TestLoadVocabularyDefault(t *testing.T) {
	v, err := loadVocabulary("")
	if err != nil {
		t.Fatalf("loadVocabulary: %v", err)
	}
	if len(v.Categories) == 0 {
		t.Error("expected built-in categories")
	}
	if _, err := loadVocabulary(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
