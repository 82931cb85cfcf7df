package traceback

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/erazemk/traceback/internal/db"
	"github.com/erazemk/traceback/internal/model"
	"github.com/erazemk/traceback/internal/store"
)

// ItemQuery selects items for listing.
type ItemQuery struct {
	Kind   model.ItemKind
	Status model.ItemStatus
	Text   string
}

// ItemDetail is an item with the matches that reference it.
type ItemDetail struct {
	Item    *model.Item   `json:"item"`
	Matches []model.Match `json:"matches"`
}

// ClaimDetail is a claim with its pickup token, if one was minted.
type ClaimDetail struct {
	Claim *model.Claim       `json:"claim"`
	Token *model.PickupToken `json:"token,omitempty"`
}

// ListItems returns items by kind and status, filtered by free text over
// description, category and location.
func (s *Service) ListItems(ctx context.Context, iq ItemQuery) ([]model.Item, error) {
	if iq.Kind != "" && !iq.Kind.Valid() {
		return nil, model.FieldError("kind", "oneof=lost found")
	}
	if iq.Status != "" && !iq.Status.Valid() {
		return nil, model.FieldError("status", "unknown status")
	}
	s.sweepBeforeRead(ctx)

	f := store.ItemFilter{Kind: iq.Kind, Query: iq.Text}
	if iq.Status != "" {
		f.Statuses = []model.ItemStatus{iq.Status}
	}
	return store.ListItems(ctx, s.DB, f)
}

// GetItem returns an item and its matches.
func (s *Service) GetItem(ctx context.Context, id string) (*ItemDetail, error) {
	s.sweepBeforeRead(ctx)

	item, err := getItem(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}
	matches, err := s.matchesFor(ctx, s.DB, item)
	if err != nil {
		return nil, err
	}
	return &ItemDetail{Item: item, Matches: matches}, nil
}

// ListMatches returns the matches of an item, best score first.
func (s *Service) ListMatches(ctx context.Context, itemID string) ([]model.Match, error) {
	s.sweepBeforeRead(ctx)

	item, err := getItem(ctx, s.DB, itemID)
	if err != nil {
		return nil, err
	}
	return s.matchesFor(ctx, s.DB, item)
}

func (s *Service) matchesFor(ctx context.Context, q db.Querier, item *model.Item) ([]model.Match, error) {
	f := store.MatchFilter{LostID: item.ID}
	if item.Kind == model.KindFound {
		f = store.MatchFilter{FoundID: item.ID}
	}
	return store.ListMatches(ctx, q, f)
}

// ListClaims returns claims, optionally only those in one status.
func (s *Service) ListClaims(ctx context.Context, status model.ClaimStatus) ([]model.Claim, error) {
	if status != "" && !status.Valid() {
		return nil, model.FieldError("status", "unknown status")
	}
	return store.ListClaims(ctx, s.DB, store.ClaimFilter{Status: status})
}

// GetClaim returns a claim and its pickup token.
func (s *Service) GetClaim(ctx context.Context, id string) (*ClaimDetail, error) {
	claim, err := getClaim(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}
	token, err := store.GetPickupTokenByClaim(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}
	return &ClaimDetail{Claim: claim, Token: token}, nil
}

// Stats returns the dashboard counters. Lost and Found count open reports
// (reported, matched or under review); the remaining counters cover both
// kinds.
func (s *Service) Stats(ctx context.Context) (*model.Stats, error) {
	s.sweepBeforeRead(ctx)

	counts, err := store.CountItems(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	pending, err := store.CountPendingClaims(ctx, s.DB)
	if err != nil {
		return nil, err
	}

	open := func(kind model.ItemKind) int {
		c := counts[kind]
		return c[model.ItemStatusReported] + c[model.ItemStatusMatched] + c[model.ItemStatusUnderReview]
	}
	total := func(status model.ItemStatus) int {
		return counts[model.KindLost][status] + counts[model.KindFound][status]
	}

	return &model.Stats{
		Lost:          open(model.KindLost),
		Found:         open(model.KindFound),
		PendingClaims: pending,
		Returned:      total(model.ItemStatusReturned),
		Expired:       total(model.ItemStatusExpired),
		Archived:      total(model.ItemStatusArchived),
	}, nil
}

// AuditLog returns audit entries, optionally for one subject.
func (s *Service) AuditLog(ctx context.Context, subjectID string) ([]model.AuditEntry, error) {
	return store.ListAudit(ctx, s.DB, subjectID)
}

// Questions returns the verification questions a claimant answers for an
// item of the given category.
func (s *Service) Questions(category model.Category) ([]string, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: category %q", model.ErrNotFound, category)
	}
	return model.VerificationQuestions(category), nil
}

// ArchiveItem lets an admin close a report that will not be resolved.
func (s *Service) ArchiveItem(ctx context.Context, id, actor string) (*model.Item, error) {
	var item *model.Item
	err := s.inTx(ctx, func(q db.Querier) error {
		var err error
		item, err = getItem(ctx, q, id)
		if err != nil {
			return err
		}
		if item.Status == model.ItemStatusArchived {
			return fmt.Errorf("%w: item %s is already archived", model.ErrInvalidState, item.ID)
		}
		now := s.Now()
		if err := moveItem(ctx, q, item, model.ItemStatusArchived, now); err != nil {
			return err
		}
		item.UpdatedAt = now
		return store.AppendAudit(ctx, q, model.ActionItemArchived, item.ID, "", actor, now)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("item archived", "item", id, "actor", actor)
	return item, nil
}
