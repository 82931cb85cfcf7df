package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/erazemk/traceback/internal/db"
	"github.com/erazemk/traceback/internal/model"
)

const claimColumns = `id, match_id, lost_id, found_id, claimant_id, claimant_name, security_answers,
	proof_image, claimant_note, confidence_score, status, admin_comment, reject_reason, decided_by,
	created_at, updated_at, approved_at, rejected_at`

// ClaimFilter narrows ListClaims. Zero fields match everything.
type ClaimFilter struct {
	Status     model.ClaimStatus
	MatchID    string
	LostID     string
	ClaimantID string
}

// CreateClaim inserts a new claim. A second pending claim for the same match
// violates idx_claims_match_pending and is reported as model.ErrConflict.
func CreateClaim(ctx context.Context, q db.Querier, c *model.Claim) error {
	answers, err := json.Marshal(c.SecurityAnswers)
	if err != nil {
		return fmt.Errorf("encoding security answers: %w", err)
	}

	_, err = q.ExecContext(ctx,
		`INSERT INTO claims (id, match_id, lost_id, found_id, claimant_id, claimant_name, security_answers,
		                     proof_image, claimant_note, confidence_score, status, admin_comment, reject_reason,
		                     decided_by, created_at, updated_at, approved_at, rejected_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, nullString(c.MatchID), c.LostID, nullString(c.FoundID), c.ClaimantID, c.ClaimantName,
		string(answers), nullString(c.ProofImage), nullString(c.ClaimantNote), c.ConfidenceScore, c.Status,
		nullString(c.AdminComment), nullString(c.RejectReason), nullString(c.DecidedBy),
		c.CreatedAt.UTC(), c.UpdatedAt.UTC(), nullTime(c.ApprovedAt), nullTime(c.RejectedAt),
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("%w: match %s already has a claim under review", model.ErrConflict, c.MatchID)
		}
		return fmt.Errorf("creating claim: %w", err)
	}
	return nil
}

// GetClaim returns a claim by ID, or nil if there is none.
func GetClaim(ctx context.Context, q db.Querier, id string) (*model.Claim, error) {
	c, err := scanClaim(q.QueryRowContext(ctx,
		`SELECT `+claimColumns+` FROM claims WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting claim: %w", err)
	}
	return c, nil
}

// GetPendingClaimForMatch returns the claim awaiting a decision on a match, or nil.
func GetPendingClaimForMatch(ctx context.Context, q db.Querier, matchID string) (*model.Claim, error) {
	c, err := scanClaim(q.QueryRowContext(ctx,
		`SELECT `+claimColumns+` FROM claims
		 WHERE match_id = ? AND status IN ('under_review', 'info_requested')`, matchID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting pending claim: %w", err)
	}
	return c, nil
}

// ListClaims returns claims matching the filter, newest first.
func ListClaims(ctx context.Context, q db.Querier, f ClaimFilter) ([]model.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE 1=1`
	var args []any

	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, f.Status)
	}
	if f.MatchID != "" {
		query += ` AND match_id = ?`
		args = append(args, f.MatchID)
	}
	if f.LostID != "" {
		query += ` AND lost_id = ?`
		args = append(args, f.LostID)
	}
	if f.ClaimantID != "" {
		query += ` AND claimant_id = ?`
		args = append(args, f.ClaimantID)
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing claims: %w", err)
	}
	defer rows.Close()

	var claims []model.Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning claim: %w", err)
		}
		claims = append(claims, *c)
	}
	return claims, rows.Err()
}

// UpdateClaim writes the mutable review fields of a claim.
func UpdateClaim(ctx context.Context, q db.Querier, c *model.Claim) error {
	res, err := q.ExecContext(ctx,
		`UPDATE claims SET status = ?, proof_image = ?, claimant_note = ?, admin_comment = ?,
		                   reject_reason = ?, decided_by = ?, updated_at = ?, approved_at = ?, rejected_at = ?
		 WHERE id = ?`,
		c.Status, nullString(c.ProofImage), nullString(c.ClaimantNote), nullString(c.AdminComment),
		nullString(c.RejectReason), nullString(c.DecidedBy), c.UpdatedAt.UTC(),
		nullTime(c.ApprovedAt), nullTime(c.RejectedAt), c.ID,
	)
	if err != nil {
		return fmt.Errorf("updating claim: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: claim %s", model.ErrNotFound, c.ID)
	}
	return nil
}

// CountPendingClaims returns the number of claims awaiting a decision.
func CountPendingClaims(ctx context.Context, q db.Querier) (int, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM claims WHERE status IN ('under_review', 'info_requested')`,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting pending claims: %w", err)
	}
	return n, nil
}

// PendingClaimItems returns the ids of the lost and found items referenced
// by claims awaiting a decision.
func PendingClaimItems(ctx context.Context, q db.Querier) (map[string]bool, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT lost_id, found_id FROM claims WHERE status IN ('under_review', 'info_requested')`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing pending claim items: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var lostID string
		var foundID sql.NullString
		if err := rows.Scan(&lostID, &foundID); err != nil {
			return nil, fmt.Errorf("scanning pending claim items: %w", err)
		}
		ids[lostID] = true
		if foundID.Valid {
			ids[foundID.String] = true
		}
	}
	return ids, rows.Err()
}

// GetPendingClaimForLost returns a claim on the lost item that awaits a
// decision, or nil if there is none.
func GetPendingClaimForLost(ctx context.Context, q db.Querier, lostID string) (*model.Claim, error) {
	c, err := scanClaim(q.QueryRowContext(ctx,
		`SELECT `+claimColumns+` FROM claims
		 WHERE lost_id = ? AND status IN ('under_review', 'info_requested')
		 ORDER BY created_at LIMIT 1`, lostID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting pending claim for lost item: %w", err)
	}
	return c, nil
}

func scanClaim(s scanner) (*model.Claim, error) {
	c := &model.Claim{}
	var matchID, foundID, proof, note, comment, reason, decidedBy sql.NullString
	var answers string
	err := s.Scan(&c.ID, &matchID, &c.LostID, &foundID, &c.ClaimantID, &c.ClaimantName, &answers,
		&proof, &note, &c.ConfidenceScore, &c.Status, &comment, &reason, &decidedBy,
		&c.CreatedAt, &c.UpdatedAt, &c.ApprovedAt, &c.RejectedAt)
	if err != nil {
		return nil, err
	}
	c.MatchID = matchID.String
	c.FoundID = foundID.String
	c.ProofImage = proof.String
	c.ClaimantNote = note.String
	c.AdminComment = comment.String
	c.RejectReason = reason.String
	c.DecidedBy = decidedBy.String
	if err := json.Unmarshal([]byte(answers), &c.SecurityAnswers); err != nil {
		return nil, fmt.Errorf("decoding security answers: %w", err)
	}
	return c, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
