// Package traceback implements the lost-and-found workflow: report intake,
// candidate matching, claim verification, pickup tokens and expiry.
//
// Every operation that mutates items, matches, claims or tokens runs as a
// single transaction on the store, so the four collections and the audit log
// change together or not at all.
package traceback

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/erazemk/traceback/internal/db"
	"github.com/erazemk/traceback/internal/model"
	"github.com/erazemk/traceback/internal/store"
)

// Policy holds the thresholds and windows of the workflow.
type Policy struct {
	// CandidateThreshold is the lowest score that creates a match.
	CandidateThreshold int `yaml:"candidate_threshold"`
	// PromotionThreshold is the lowest score that moves both items to matched.
	PromotionThreshold int `yaml:"promotion_threshold"`
	// LostExpiry and FoundExpiry are the report ages after which the sweeper
	// expires reported or matched items.
	LostExpiry  time.Duration `yaml:"lost_expiry"`
	FoundExpiry time.Duration `yaml:"found_expiry"`
	// TokenValidity is how long a pickup token stays usable after approval.
	TokenValidity time.Duration `yaml:"token_validity"`
}

// DefaultPolicy returns the standard Traceback policy.
func DefaultPolicy() Policy {
	return Policy{
		CandidateThreshold: 35,
		PromotionThreshold: 50,
		LostExpiry:         60 * 24 * time.Hour,
		FoundExpiry:        90 * 24 * time.Hour,
		TokenValidity:      60 * time.Minute,
	}
}

// Service runs Traceback operations against a SQLite store.
type Service struct {
	DB     *sql.DB
	Policy Policy

	// Now and NewID are replaceable for tests.
	Now   func() time.Time
	NewID func() string

	validate *validator.Validate
}

// New creates a Service with the given policy.
func New(database *sql.DB, policy Policy) *Service {
	return &Service{
		DB:       database,
		Policy:   policy,
		Now:      func() time.Time { return time.Now().UTC() },
		NewID:    uuid.NewString,
		validate: newValidator(),
	}
}

// inTx runs fn in one transaction on the aggregate.
func (s *Service) inTx(ctx context.Context, fn func(q db.Querier) error) error {
	return db.WithTx(ctx, s.DB, fn)
}

// moveItem applies a single state machine transition and records it on item.
func moveItem(ctx context.Context, q db.Querier, item *model.Item, to model.ItemStatus, at time.Time) error {
	if item.Status == to {
		return nil
	}
	if !model.CanTransition(item.Status, to) {
		return fmt.Errorf("%w: item %s cannot move from %s to %s", model.ErrInvalidState, item.ID, item.Status, to)
	}
	if err := store.SetItemStatus(ctx, q, item.ID, to, at); err != nil {
		return err
	}
	item.Status = to
	return nil
}

// promote moves a reported item to matched. Items in any other status are
// left alone.
func promote(ctx context.Context, q db.Querier, item *model.Item, at time.Time) error {
	if item.Status != model.ItemStatusReported {
		return nil
	}
	return moveItem(ctx, q, item, model.ItemStatusMatched, at)
}
