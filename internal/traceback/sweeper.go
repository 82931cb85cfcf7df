package traceback

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/erazemk/traceback/internal/db"
	"github.com/erazemk/traceback/internal/model"
	"github.com/erazemk/traceback/internal/store"
)

// Sweep expires reported and matched items older than the policy's expiry
// for their kind. Items under review, returned or already expired or
// archived are never touched, and neither is an item referenced by a claim
// awaiting a decision, so the claim can still be approved. Running Sweep
// again on an unchanged store does nothing. It returns the number of items
// expired.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	var expired []string

	err := s.inTx(ctx, func(q db.Querier) error {
		expired = expired[:0]

		items, err := store.ListItems(ctx, q, store.ItemFilter{
			Statuses: []model.ItemStatus{model.ItemStatusReported, model.ItemStatusMatched},
		})
		if err != nil {
			return err
		}

		claimed, err := store.PendingClaimItems(ctx, q)
		if err != nil {
			return err
		}

		now := s.Now()
		for i := range items {
			item := &items[i]
			if claimed[item.ID] {
				continue
			}
			maxAge := s.Policy.LostExpiry
			if item.Kind == model.KindFound {
				maxAge = s.Policy.FoundExpiry
			}
			age := now.Sub(item.CreatedAt)
			if age <= maxAge {
				continue
			}

			if err := moveItem(ctx, q, item, model.ItemStatusExpired, now); err != nil {
				return err
			}
			detail := fmt.Sprintf("age=%dd", int(age.Hours()/24))
			if err := store.AppendAudit(ctx, q, model.ActionItemExpired, item.ID, detail, model.ActorSystem, now); err != nil {
				return err
			}
			expired = append(expired, item.ID)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if len(expired) > 0 {
		slog.Info("expired stale items", "count", len(expired), "items", expired)
	}
	return len(expired), nil
}

// RunSweeper calls Sweep every interval until ctx is cancelled.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
				slog.Error("sweep failed", "error", err)
			}
		}
	}
}

// sweepBeforeRead keeps reads consistent with the expiry rules. A failed
// sweep is logged and the read proceeds.
func (s *Service) sweepBeforeRead(ctx context.Context) {
	if _, err := s.Sweep(ctx); err != nil {
		slog.Error("sweep before read failed", "error", err)
	}
}
