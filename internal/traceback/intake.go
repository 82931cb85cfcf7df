package traceback

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/erazemk/traceback/internal/db"
	"github.com/erazemk/traceback/internal/model"
	"github.com/erazemk/traceback/internal/store"
)

// ItemInput is a lost or found report as submitted by a resident or guard.
type ItemInput struct {
	Kind        model.ItemKind `json:"kind" validate:"required,oneof=lost found"`
	Category    model.Category `json:"category" validate:"required,oneof=electronics documents accessories keys clothing other"`
	Color       string         `json:"color" validate:"max=50"`
	Description string         `json:"description" validate:"required,min=20,max=2000"`
	Location    string         `json:"location" validate:"required,max=200"`
	EventDate   string         `json:"event_date" validate:"required,datetime=2006-01-02"`
	Images      []string       `json:"images" validate:"max=10,dive,required"`
	Contact     string         `json:"contact" validate:"max=200"`
}

// IntakeResult is the outcome of CreateItem.
type IntakeResult struct {
	Item *model.Item `json:"item"`
	// MatchesFound is true when the report produced at least one new match.
	MatchesFound bool `json:"matches_found"`
}

// CreateItem persists a report and then runs the match engine for it.
//
// The report is committed before matching starts. A matching failure is
// logged and leaves MatchesFound false; it never removes the report.
func (s *Service) CreateItem(ctx context.Context, in ItemInput, reporter string) (*IntakeResult, error) {
	in.Color = strings.TrimSpace(in.Color)
	in.Location = strings.TrimSpace(in.Location)
	if err := s.check(in); err != nil {
		return nil, err
	}

	eventDate, err := model.ParseEventDate(in.EventDate)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	if eventDate.After(now) {
		return nil, model.FieldError("event_date", "not in the future")
	}

	item := &model.Item{
		ID:          s.NewID(),
		Kind:        in.Kind,
		Category:    in.Category,
		Color:       in.Color,
		Description: in.Description,
		Location:    in.Location,
		EventDate:   eventDate,
		Images:      append([]string{}, in.Images...),
		Contact:     in.Contact,
		ReporterID:  reporter,
		Status:      model.ItemStatusReported,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.inTx(ctx, func(q db.Querier) error {
		ok, err := store.ImagesExist(ctx, q, item.Images)
		if err != nil {
			return err
		}
		if !ok {
			return model.FieldError("images", "unknown image reference")
		}
		if err := store.CreateItem(ctx, q, item); err != nil {
			return err
		}
		return store.AppendAudit(ctx, q, model.ActionItemCreated, item.ID,
			fmt.Sprintf("kind=%s category=%s", item.Kind, item.Category), reporter, now)
	})
	if err != nil {
		return nil, err
	}
	slog.Info("item reported", "item", item.ID, "kind", item.Kind, "category", item.Category, "reporter", reporter)

	created, err := s.RunMatching(ctx, item.ID)
	if err != nil {
		slog.Error("matching failed", "item", item.ID, "error", err)
		return &IntakeResult{Item: item}, nil
	}

	if created > 0 {
		if fresh, err := store.GetItem(ctx, s.DB, item.ID); err != nil {
			slog.Error("failed to reload item after matching", "item", item.ID, "error", err)
		} else if fresh != nil {
			item = fresh
		}
	}

	return &IntakeResult{Item: item, MatchesFound: created > 0}, nil
}
