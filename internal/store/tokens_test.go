package store

import (
	"context"
	"testing"
	"time"

	"github.com/erazemk/traceback/internal/db"
)

func TestRevokeAndCheckToken(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	// Token should not be revoked initially.
	revoked, err := IsTokenRevoked(ctx, database, "test-jti-1")
	if err != nil {
		t.Fatalf("IsTokenRevoked: %v", err)
	}
	if revoked {
		t.Error("expected token not to be revoked")
	}

	// Revoke the token.
	err = RevokeToken(ctx, database, "test-jti-1", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("RevokeToken: %v", err)
	}

	// Now it should be revoked.
	revoked, err = IsTokenRevoked(ctx, database, "test-jti-1")
	if err != nil {
		t.Fatalf("IsTokenRevoked: %v", err)
	}
	if !revoked {
		t.Error("expected token to be revoked")
	}

	// Different JTI should not be revoked.
	revoked, err = IsTokenRevoked(ctx, database, "test-jti-2")
	if err != nil {
		t.Fatalf("IsTokenRevoked: %v", err)
	}
	if revoked {
		t.Error("expected different token not to be revoked")
	}
}

func TestRevokeTokenIdempotent(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	// Revoking the same token twice should not error (INSERT OR IGNORE).
	err := RevokeToken(ctx, database, "test-jti-1", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("first RevokeToken: %v", err)
	}

	err = RevokeToken(ctx, database, "test-jti-1", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("second RevokeToken: %v", err)
	}
}

func TestRevokeTokenPrunesExpired(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if err := RevokeToken(ctx, database, "old-jti", time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("RevokeToken old: %v", err)
	}
	// The next revocation prunes entries whose tokens expired on their own.
	if err := RevokeToken(ctx, database, "new-jti", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("RevokeToken new: %v", err)
	}

	if revoked, _ := IsTokenRevoked(ctx, database, "old-jti"); revoked {
		t.Error("expected expired revocation to be pruned")
	}
	if revoked, _ := IsTokenRevoked(ctx, database, "new-jti"); !revoked {
		t.Error("expected new revocation to remain")
	}
}
