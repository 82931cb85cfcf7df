package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/traceback/internal/db"
	"github.com/erazemk/traceback/internal/model"
)

const pickupColumns = `id, claim_id, created_at, expires_at, redeemed_at, redeemed_by`

// CreatePickupToken stores a token minted for an approved claim. Each claim
// gets at most one token.
func CreatePickupToken(ctx context.Context, q db.Querier, t *model.PickupToken) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO pickup_tokens (id, claim_id, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		t.ID, t.ClaimID, t.CreatedAt.UTC(), t.ExpiresAt.UTC(),
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("%w: claim %s already has a pickup token", model.ErrConflict, t.ClaimID)
		}
		return fmt.Errorf("creating pickup token: %w", err)
	}
	return nil
}

// GetPickupToken returns a token by ID, or nil if there is none.
func GetPickupToken(ctx context.Context, q db.Querier, id string) (*model.PickupToken, error) {
	return getPickupToken(ctx, q, `SELECT `+pickupColumns+` FROM pickup_tokens WHERE id = ?`, id)
}

// GetPickupTokenByClaim returns the token minted for a claim, or nil.
func GetPickupTokenByClaim(ctx context.Context, q db.Querier, claimID string) (*model.PickupToken, error) {
	return getPickupToken(ctx, q, `SELECT `+pickupColumns+` FROM pickup_tokens WHERE claim_id = ?`, claimID)
}

// RedeemPickupToken marks a token as used. It fails with model.ErrConflict if
// the token was already redeemed.
func RedeemPickupToken(ctx context.Context, q db.Querier, id, by string, at time.Time) error {
	res, err := q.ExecContext(ctx,
		`UPDATE pickup_tokens SET redeemed_at = ?, redeemed_by = ? WHERE id = ? AND redeemed_at IS NULL`,
		at.UTC(), by, id,
	)
	if err != nil {
		return fmt.Errorf("redeeming pickup token: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: pickup token %s already redeemed", model.ErrConflict, id)
	}
	return nil
}

func getPickupToken(ctx context.Context, q db.Querier, query string, arg string) (*model.PickupToken, error) {
	t := &model.PickupToken{}
	var redeemedBy sql.NullString
	err := q.QueryRowContext(ctx, query, arg).Scan(
		&t.ID, &t.ClaimID, &t.CreatedAt, &t.ExpiresAt, &t.RedeemedAt, &redeemedBy,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting pickup token: %w", err)
	}
	t.RedeemedBy = redeemedBy.String
	return t, nil
}
