package store

import (
	"context"
	"testing"
	"time"

	"github.com/erazemk/stvari/internal/db"
)

func TestRevokeAndCheckToken(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if revoked, err := IsTokenRevoked(ctx, database, "jti-1"); err != nil || revoked {
		t.Fatalf("expected fresh token, got revoked=%v err=%v", revoked, err)
	}

	// Revoking twice is not an error.
	for range 2 {
		if err := RevokeToken(ctx, database, "jti-1", time.Now().Add(time.Hour)); err != nil {
			t.Fatalf("RevokeToken: %v", err)
		}
	}

	if revoked, _ := IsTokenRevoked(ctx, database, "jti-1"); !revoked {
		t.Error("expected jti-1 to be revoked")
	}
	if revoked, _ := IsTokenRevoked(ctx, database, "jti-2"); revoked {
		t.Error("expected jti-2 not to be revoked")
	}
}

func TestPurgeRevokedTokens(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	RevokeToken(ctx, database, "expired", now.Add(-time.Minute))
	RevokeToken(ctx, database, "live", now.Add(time.Hour))
	// Non-UTC zones are normalized before comparison.
	RevokeToken(ctx, database, "live-local", now.Add(time.Hour).In(time.FixedZone("CET", 3600)))

	n, err := PurgeRevokedTokens(ctx, database, now)
	if err != nil {
		t.Fatalf("PurgeRevokedTokens: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 purged, got %d", n)
	}

	for jti, want := range map[string]bool{"expired": false, "live": true, "live-local": true} {
		if revoked, _ := IsTokenRevoked(ctx, database, jti); revoked != want {
			t.Errorf("%s: revoked = %v, want %v", jti, revoked, want)
		}
	}
}
