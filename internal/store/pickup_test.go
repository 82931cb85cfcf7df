package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erazemk/traceback/internal/db"
	"github.com/erazemk/traceback/internal/model"
)

func TestPickupTokenLifecycle(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	seedMatch(t, database)
	CreateClaim(ctx, database, newClaim("c1", "m1"))

	token := &model.PickupToken{ID: "tok-1", ClaimID: "c1", CreatedAt: testNow, ExpiresAt: testNow.Add(time.Hour)}
	if err := CreatePickupToken(ctx, database, token); err != nil {
		t.Fatalf("CreatePickupToken: %v", err)
	}

	dup := &model.PickupToken{ID: "tok-2", ClaimID: "c1", CreatedAt: testNow, ExpiresAt: testNow.Add(time.Hour)}
	if err := CreatePickupToken(ctx, database, dup); !errors.Is(err, model.ErrConflict) {
		t.Errorf("expected ErrConflict for second token, got %v", err)
	}

	got, err := GetPickupTokenByClaim(ctx, database, "c1")
	if err != nil || got == nil {
		t.Fatalf("GetPickupTokenByClaim: %v %v", got, err)
	}
	if !got.ExpiresAt.Equal(testNow.Add(time.Hour)) {
		t.Errorf("unexpected expiry %v", got.ExpiresAt)
	}

	if err := RedeemPickupToken(ctx, database, "tok-1", "guard", testNow.Add(time.Minute)); err != nil {
		t.Fatalf("RedeemPickupToken: %v", err)
	}
	if err := RedeemPickupToken(ctx, database, "tok-1", "guard", testNow.Add(2*time.Minute)); !errors.Is(err, model.ErrConflict) {
		t.Errorf("expected ErrConflict on second redemption, got %v", err)
	}

	got, _ = GetPickupToken(ctx, database, "tok-1")
	if got.RedeemedAt == nil || got.RedeemedBy != "guard" {
		t.Errorf("expected redeemed token, got %+v", got)
	}

	missing, _ := GetPickupToken(ctx, database, "nope")
	if missing != nil {
		t.Error("expected nil for unknown token")
	}
}
