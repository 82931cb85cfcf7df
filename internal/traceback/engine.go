package traceback

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/erazemk/traceback/internal/db"
	"github.com/erazemk/traceback/internal/matching"
	"github.com/erazemk/traceback/internal/model"
	"github.com/erazemk/traceback/internal/store"
)

// Candidate exclusion sets. They differ by trigger: a new lost report is
// still compared with expired found items, a new found report is not compared
// with expired lost ones. "collected" is a status older clients may still
// send; no item in this store carries it.
var (
	excludedLostForFound = map[model.ItemStatus]bool{
		model.ItemStatusExpired:  true,
		model.ItemStatusArchived: true,
		model.ItemStatusReturned: true,
		"collected":              true,
	}
	excludedFoundForLost = map[model.ItemStatus]bool{
		model.ItemStatusReturned: true,
		model.ItemStatusArchived: true,
		"collected":              true,
	}
)

// RunMatching compares an item with every eligible report of the opposite
// kind in the same category and creates a match for each pair scoring at
// least the candidate threshold. Pairs at or above the promotion threshold
// move both items from reported to matched. It returns the number of matches
// created; pairs that already have a match are skipped.
func (s *Service) RunMatching(ctx context.Context, itemID string) (int, error) {
	var created []model.Match

	err := s.inTx(ctx, func(q db.Querier) error {
		created = created[:0]

		item, err := store.GetItem(ctx, q, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("%w: item %s", model.ErrNotFound, itemID)
		}

		excluded := excludedFoundForLost
		if item.Kind == model.KindFound {
			excluded = excludedLostForFound
		}

		pool, err := store.ListItems(ctx, q, store.ItemFilter{Kind: item.Kind.Opposite(), Category: item.Category})
		if err != nil {
			return err
		}

		now := s.Now()
		for i := range pool {
			candidate := &pool[i]
			if excluded[candidate.Status] {
				continue
			}

			lost, found := item, candidate
			if item.Kind == model.KindFound {
				lost, found = candidate, item
			}

			existing, err := store.GetMatchByPair(ctx, q, lost.ID, found.ID)
			if err != nil {
				return err
			}
			if existing != nil {
				continue
			}

			score := matching.Score(lost, found)
			if score < s.Policy.CandidateThreshold {
				continue
			}

			m := model.Match{
				ID:        s.NewID(),
				LostID:    lost.ID,
				FoundID:   found.ID,
				Score:     score,
				CreatedBy: model.ActorSystem,
				CreatedAt: now,
			}
			ok, err := store.CreateMatch(ctx, q, &m)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}

			if score >= s.Policy.PromotionThreshold {
				if err := promote(ctx, q, lost, now); err != nil {
					return err
				}
				if err := promote(ctx, q, found, now); err != nil {
					return err
				}
			}

			detail := fmt.Sprintf("lost=%s found=%s score=%d", lost.ID, found.ID, score)
			if err := store.AppendAudit(ctx, q, model.ActionMatchCreated, m.ID, detail, model.ActorSystem, now); err != nil {
				return err
			}
			created = append(created, m)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, m := range created {
		slog.Info("match created", "match", m.ID, "lost", m.LostID, "found", m.FoundID, "score", m.Score)
	}
	return len(created), nil
}

// RecordMatch lets an admin pair a lost and a found item by hand. The pair
// is scored like any other but created regardless of the candidate
// threshold, and both items are promoted to matched.
func (s *Service) RecordMatch(ctx context.Context, lostID, foundID, actor string) (*model.Match, error) {
	var m *model.Match

	err := s.inTx(ctx, func(q db.Querier) error {
		lost, err := getItem(ctx, q, lostID)
		if err != nil {
			return err
		}
		found, err := getItem(ctx, q, foundID)
		if err != nil {
			return err
		}
		if lost.Kind != model.KindLost {
			return model.FieldError("lost_id", "must reference a lost item")
		}
		if found.Kind != model.KindFound {
			return model.FieldError("found_id", "must reference a found item")
		}
		for _, it := range []*model.Item{lost, found} {
			if it.Status.Terminal() {
				return fmt.Errorf("%w: item %s is %s", model.ErrInvalidState, it.ID, it.Status)
			}
		}

		now := s.Now()
		m = &model.Match{
			ID:        s.NewID(),
			LostID:    lost.ID,
			FoundID:   found.ID,
			Score:     matching.Score(lost, found),
			CreatedBy: actor,
			CreatedAt: now,
		}
		ok, err := store.CreateMatch(ctx, q, m)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: lost %s and found %s are already matched", model.ErrConflict, lost.ID, found.ID)
		}

		if err := promote(ctx, q, lost, now); err != nil {
			return err
		}
		if err := promote(ctx, q, found, now); err != nil {
			return err
		}

		detail := fmt.Sprintf("lost=%s found=%s score=%d", lost.ID, found.ID, m.Score)
		return store.AppendAudit(ctx, q, model.ActionMatchRecorded, m.ID, detail, actor, now)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("match recorded", "match", m.ID, "lost", lostID, "found", foundID, "score", m.Score, "actor", actor)
	return m, nil
}

// getItem loads an item or fails with model.ErrNotFound.
func getItem(ctx context.Context, q db.Querier, id string) (*model.Item, error) {
	item, err := store.GetItem(ctx, q, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: item %s", model.ErrNotFound, id)
	}
	return item, nil
}
