package traceback

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/erazemk/traceback/internal/db"
	"github.com/erazemk/traceback/internal/model"
	"github.com/erazemk/traceback/internal/store"
)

// ValidateToken reports whether a pickup token may be used right now.
// Expiry is evaluated lazily against the current time.
func (s *Service) ValidateToken(ctx context.Context, tokenID string) (*model.TokenValidation, error) {
	token, err := store.GetPickupToken(ctx, s.DB, tokenID)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return &model.TokenValidation{State: model.TokenNotFound}, nil
	}

	expires := token.ExpiresAt
	return &model.TokenValidation{
		State:     token.StateAt(s.Now()),
		ClaimID:   token.ClaimID,
		ExpiresAt: &expires,
	}, nil
}

// RedeemToken consumes a valid pickup token at the handover desk.
func (s *Service) RedeemToken(ctx context.Context, tokenID, actor string) (*model.PickupToken, error) {
	var token *model.PickupToken
	err := s.inTx(ctx, func(q db.Querier) error {
		var err error
		token, err = store.GetPickupToken(ctx, q, tokenID)
		if err != nil {
			return err
		}
		if token == nil {
			return fmt.Errorf("%w: pickup token %s", model.ErrNotFound, tokenID)
		}

		now := s.Now()
		switch token.StateAt(now) {
		case model.TokenRedeemed:
			return fmt.Errorf("%w: pickup token %s already redeemed", model.ErrConflict, tokenID)
		case model.TokenExpired:
			return fmt.Errorf("%w: pickup token %s expired", model.ErrInvalidState, tokenID)
		}

		if err := store.RedeemPickupToken(ctx, q, token.ID, actor, now); err != nil {
			return err
		}
		token.RedeemedAt = &now
		token.RedeemedBy = actor
		return store.AppendAudit(ctx, q, model.ActionTokenRedeemed, token.ID, "claim="+token.ClaimID, actor, now)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("pickup token redeemed", "token", tokenID, "claim", token.ClaimID, "actor", actor)
	return token, nil
}
