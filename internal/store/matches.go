package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/traceback/internal/db"
	"github.com/erazemk/traceback/internal/model"
)

const matchColumns = `id, lost_id, found_id, score, claim_status, claim_token, created_by, created_at`

// MatchFilter narrows ListMatches. Zero fields match everything.
type MatchFilter struct {
	LostID  string
	FoundID string
}

// CreateMatch inserts a match unless the (lost, found) pair already has one.
// It reports whether a row was inserted.
func CreateMatch(ctx context.Context, q db.Querier, m *model.Match) (bool, error) {
	res, err := q.ExecContext(ctx,
		`INSERT INTO matches (id, lost_id, found_id, score, claim_status, claim_token, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (lost_id, found_id) DO NOTHING`,
		m.ID, m.LostID, m.FoundID, m.Score, nullString(string(m.ClaimStatus)), nullString(m.ClaimToken),
		m.CreatedBy, m.CreatedAt.UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("creating match: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking match insert: %w", err)
	}
	return n == 1, nil
}

// GetMatch returns a match by ID, or nil if there is none.
func GetMatch(ctx context.Context, q db.Querier, id string) (*model.Match, error) {
	m, err := scanMatch(q.QueryRowContext(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting match: %w", err)
	}
	return m, nil
}

// GetMatchByPair returns the match for a lost/found pair, or nil.
func GetMatchByPair(ctx context.Context, q db.Querier, lostID, foundID string) (*model.Match, error) {
	m, err := scanMatch(q.QueryRowContext(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE lost_id = ? AND found_id = ?`, lostID, foundID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting match by pair: %w", err)
	}
	return m, nil
}

// ListMatches returns matches, best score first.
func ListMatches(ctx context.Context, q db.Querier, f MatchFilter) ([]model.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE 1=1`
	var args []any

	if f.LostID != "" {
		query += ` AND lost_id = ?`
		args = append(args, f.LostID)
	}
	if f.FoundID != "" {
		query += ` AND found_id = ?`
		args = append(args, f.FoundID)
	}
	query += ` ORDER BY score DESC, created_at`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing matches: %w", err)
	}
	defer rows.Close()

	var matches []model.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

// SetMatchClaim records the claim state and pickup token of a match.
// An empty status clears the claim so a new one can be submitted.
func SetMatchClaim(ctx context.Context, q db.Querier, id string, status model.MatchClaimStatus, token string) error {
	res, err := q.ExecContext(ctx,
		`UPDATE matches SET claim_status = ?, claim_token = ? WHERE id = ?`,
		nullString(string(status)), nullString(token), id,
	)
	if err != nil {
		return fmt.Errorf("setting match claim: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: match %s", model.ErrNotFound, id)
	}
	return nil
}

func scanMatch(s scanner) (*model.Match, error) {
	m := &model.Match{}
	var claimStatus, claimToken sql.NullString
	err := s.Scan(&m.ID, &m.LostID, &m.FoundID, &m.Score, &claimStatus, &claimToken, &m.CreatedBy, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	m.ClaimStatus = model.MatchClaimStatus(claimStatus.String)
	m.ClaimToken = claimToken.String
	return m, nil
}
