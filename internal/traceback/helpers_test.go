package traceback

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/erazemk/traceback/internal/db"
	"github.com/erazemk/traceback/internal/model"
	"github.com/erazemk/traceback/internal/store"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestService(t *testing.T) (*Service, *testClock) {
	t.Helper()
	clock := &testClock{now: time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)}
	svc := New(db.NewTestDB(t), DefaultPolicy())
	svc.Now = clock.Now

	n := 0
	svc.NewID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return svc, clock
}

// seedItem stores an item directly, bypassing intake validation and matching.
func seedItem(t *testing.T, svc *Service, id string, kind model.ItemKind, category model.Category, description, location, eventDate string) *model.Item {
	t.Helper()
	d, err := model.ParseEventDate(eventDate)
	if err != nil {
		t.Fatal(err)
	}
	now := svc.Now()
	item := &model.Item{
		ID:          id,
		Kind:        kind,
		Category:    category,
		Description: description,
		Location:    location,
		EventDate:   d,
		Images:      []string{},
		ReporterID:  "seed",
		Status:      model.ItemStatusReported,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := store.CreateItem(context.Background(), svc.DB, item); err != nil {
		t.Fatalf("seeding item %s: %v", id, err)
	}
	return item
}

func setStatus(t *testing.T, svc *Service, id string, status model.ItemStatus) {
	t.Helper()
	if err := store.SetItemStatus(context.Background(), svc.DB, id, status, svc.Now()); err != nil {
		t.Fatalf("setting status of %s: %v", id, err)
	}
}

func itemStatus(t *testing.T, svc *Service, id string) model.ItemStatus {
	t.Helper()
	item, err := store.GetItem(context.Background(), svc.DB, id)
	if err != nil || item == nil {
		t.Fatalf("loading item %s: %v", id, err)
	}
	return item.Status
}

func auditCount(t *testing.T, svc *Service, action string) int {
	t.Helper()
	entries, err := store.ListAudit(context.Background(), svc.DB, "")
	if err != nil {
		t.Fatalf("ListAudit: %v", err)
	}
	n := 0
	for _, e := range entries {
		if e.Action == action {
			n++
		}
	}
	return n
}

// seedKeysMatch creates the lobby keys pair and runs matching, returning the
// resulting match.
func seedKeysMatch(t *testing.T, svc *Service) *model.Match {
	t.Helper()
	ctx := context.Background()
	seedItem(t, svc, "lost-keys", model.KindLost, model.CategoryKeys, "silver house key with red tag", "Lobby", "2024-01-01")
	seedItem(t, svc, "found-keys", model.KindFound, model.CategoryKeys, "red tag silver key", "Lobby", "2024-01-03")

	if n, err := svc.RunMatching(ctx, "found-keys"); err != nil || n != 1 {
		t.Fatalf("RunMatching: created %d, err %v", n, err)
	}
	m, err := store.GetMatchByPair(ctx, svc.DB, "lost-keys", "found-keys")
	if err != nil || m == nil {
		t.Fatalf("loading match: %v %v", m, err)
	}
	return m
}

func validAnswers() []string {
	return []string{"two keys", "red plastic tag", "front door and mailbox"}
}
