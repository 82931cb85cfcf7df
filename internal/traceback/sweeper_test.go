package traceback

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erazemk/traceback/internal/model"
)

const day = 24 * time.Hour

func TestSweepExpiresStaleReports(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	seedItem(t, svc, "lost", model.KindLost, model.CategoryOther, "green umbrella", "Lobby", "2024-01-01")
	seedItem(t, svc, "found", model.KindFound, model.CategoryClothing, "wool hat", "Gym", "2024-01-01")
	seedItem(t, svc, "locked", model.KindFound, model.CategoryKeys, "car key", "Gym", "2024-01-01")
	setStatus(t, svc, "locked", model.ItemStatusUnderReview)

	clock.Advance(60 * day)
	if n, err := svc.Sweep(ctx); err != nil || n != 0 {
		t.Fatalf("sweep at exactly 60 days: expired %d, err %v", n, err)
	}

	clock.Advance(day)
	n, err := svc.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 expired item, got %d", n)
	}
	if got := itemStatus(t, svc, "lost"); got != model.ItemStatusExpired {
		t.Errorf("expected lost item expired after 61 days, got %s", got)
	}
	if got := itemStatus(t, svc, "found"); got != model.ItemStatusReported {
		t.Errorf("found items live 90 days, got %s", got)
	}

	// Idempotent: nothing changes and no audit entry is added.
	if n, err := svc.Sweep(ctx); err != nil || n != 0 {
		t.Errorf("second sweep: expired %d, err %v", n, err)
	}
	if n := auditCount(t, svc, model.ActionItemExpired); n != 1 {
		t.Errorf("expected 1 item_expired entry, got %d", n)
	}

	clock.Advance(30 * day)
	if n, err := svc.Sweep(ctx); err != nil || n != 1 {
		t.Errorf("sweep at 91 days: expired %d, err %v", n, err)
	}
	if got := itemStatus(t, svc, "locked"); got != model.ItemStatusUnderReview {
		t.Errorf("items under review are never expired, got %s", got)
	}
}

func TestSweepExpiresMatchedItems(t *testing.T) {
	svc, clock := newTestService(t)
	seedKeysMatch(t, svc)

	clock.Advance(61 * day)
	if _, err := svc.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if got := itemStatus(t, svc, "lost-keys"); got != model.ItemStatusExpired {
		t.Errorf("expected matched lost item expired, got %s", got)
	}
	if got := itemStatus(t, svc, "found-keys"); got != model.ItemStatusMatched {
		t.Errorf("expected found item still matched, got %s", got)
	}
}

func TestReadsSweepFirst(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()
	seedItem(t, svc, "lost", model.KindLost, model.CategoryOther, "green umbrella", "Lobby", "2024-01-01")

	clock.Advance(61 * day)
	detail, err := svc.GetItem(ctx, "lost")
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if detail.Item.Status != model.ItemStatusExpired {
		t.Errorf("expected read to observe expiry, got %s", detail.Item.Status)
	}

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Lost != 0 || stats.Expired != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestRunSweeperStopsOnCancel(t *testing.T) {
	svc, _ := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- svc.RunSweeper(ctx, 5*time.Millisecond) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("RunSweeper returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("RunSweeper did not stop")
	}
}

func TestStats(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	m := seedKeysMatch(t, svc)
	seedItem(t, svc, "lost-2", model.KindLost, model.CategoryOther, "green umbrella", "Lobby", "2024-01-01")
	seedItem(t, svc, "found-2", model.KindFound, model.CategoryElectronics, "laptop charger", "Gym", "2024-01-01")
	if _, err := svc.ArchiveItem(ctx, "found-2", "admin"); err != nil {
		t.Fatalf("ArchiveItem: %v", err)
	}
	submitKeysClaim(t, svc, m.ID)

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	want := model.Stats{Lost: 2, Found: 1, PendingClaims: 1, Archived: 1}
	if *stats != want {
		t.Errorf("expected %+v, got %+v", want, *stats)
	}
}

func TestArchiveItem(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	seedItem(t, svc, "lost", model.KindLost, model.CategoryOther, "green umbrella", "Lobby", "2024-01-01")

	item, err := svc.ArchiveItem(ctx, "lost", "admin")
	if err != nil {
		t.Fatalf("ArchiveItem: %v", err)
	}
	if item.Status != model.ItemStatusArchived {
		t.Errorf("expected archived, got %s", item.Status)
	}
	if _, err := svc.ArchiveItem(ctx, "lost", "admin"); !errors.Is(err, model.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState on second archive, got %v", err)
	}
	if _, err := svc.ArchiveItem(ctx, "missing", "admin"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	entries, err := svc.AuditLog(ctx, "lost")
	if err != nil {
		t.Fatalf("AuditLog: %v", err)
	}
	if len(entries) != 1 || entries[0].Action != model.ActionItemArchived || entries[0].Actor != "admin" {
		t.Errorf("unexpected audit entries %+v", entries)
	}
}

func TestQuestions(t *testing.T) {
	svc, _ := newTestService(t)

	qs, err := svc.Questions(model.CategoryKeys)
	if err != nil {
		t.Fatalf("Questions: %v", err)
	}
	if len(qs) != model.QuestionsPerClaim {
		t.Errorf("expected %d questions, got %d", model.QuestionsPerClaim, len(qs))
	}
	if _, err := svc.Questions("furniture"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSweepSparesItemsUnderClaim(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()
	m := seedKeysMatch(t, svc)

	clock.Advance(59 * day)
	claim := submitKeysClaim(t, svc, m.ID)

	clock.Advance(2 * day)
	if n, err := svc.Sweep(ctx); err != nil || n != 0 {
		t.Fatalf("sweep with pending claim: expired %d, err %v", n, err)
	}
	if got := itemStatus(t, svc, "lost-keys"); got != model.ItemStatusMatched {
		t.Errorf("claimed lost item must not expire, got %s", got)
	}

	res, err := svc.DecideClaim(ctx, claim.ID, DecisionInput{Decision: model.DecisionApprove}, "admin")
	if err != nil {
		t.Fatalf("approving after the expiry window: %v", err)
	}
	if res.Token == nil {
		t.Error("expected a pickup token")
	}
	for _, id := range []string{"lost-keys", "found-keys"} {
		if got := itemStatus(t, svc, id); got != model.ItemStatusReturned {
			t.Errorf("%s: expected returned, got %s", id, got)
		}
	}
}

func TestSweepResumesAfterRejection(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()
	seedItem(t, svc, "lost", model.KindLost, model.CategoryOther, "green umbrella", "Lobby", "2024-01-01")
	claim, err := svc.SubmitClaim(ctx, ClaimInput{LostID: "lost", ClaimantName: "Alice", SecurityAnswers: validAnswers()}, "alice")
	if err != nil {
		t.Fatalf("SubmitClaim: %v", err)
	}

	clock.Advance(61 * day)
	if n, _ := svc.Sweep(ctx); n != 0 {
		t.Errorf("expected lost-only claim to hold the item, expired %d", n)
	}

	if _, err := svc.DecideClaim(ctx, claim.ID, DecisionInput{Decision: model.DecisionReject, Reason: "wrong umbrella"}, "admin"); err != nil {
		t.Fatalf("DecideClaim: %v", err)
	}
	if n, err := svc.Sweep(ctx); err != nil || n != 1 {
		t.Errorf("expected item to expire once the claim is decided, expired %d, err %v", n, err)
	}
}

func TestListMatchesSweepsFirst(t *testing.T) {
	svc, clock := newTestService(t)
	seedKeysMatch(t, svc)

	clock.Advance(61 * day)
	matches, err := svc.ListMatches(context.Background(), "lost-keys")
	if err != nil {
		t.Fatalf("ListMatches: %v", err)
	}
	if len(matches) != 1 {
		t.Errorf("expected 1 match, got %d", len(matches))
	}
	if got := itemStatus(t, svc, "lost-keys"); got != model.ItemStatusExpired {
		t.Errorf("expected ListMatches to sweep stale items, got %s", got)
	}
}
