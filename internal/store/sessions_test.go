package store

import (
	"context"
	"testing"
	"time"

	"github.com/erazemk/najdeno/internal/db"
)

func TestGetJWTSecretIsStable(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	first, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatalf("GetJWTSecret: %v", err)
	}
	if len(first) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(first))
	}

	second, _ := GetJWTSecret(ctx, database)
	if first != second {
		t.Error("expected the stored secret to be reused")
	}
}

func TestRevokeToken(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	revoked, _ := IsTokenRevoked(ctx, database, "jti-1")
	if revoked {
		t.Error("expected fresh token to be valid")
	}

	if err := RevokeToken(ctx, database, "jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("RevokeToken: %v", err)
	}
	revoked, _ = IsTokenRevoked(ctx, database, "jti-1")
	if !revoked {
		t.Error("expected token to be revoked")
	}

	// Revoking twice is harmless.
	if err := RevokeToken(ctx, database, "jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("RevokeToken again: %v", err)
	}
}
