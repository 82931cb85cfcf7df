package store

import (
	"context"
	"fmt"
	"time"

	"github.com/erazemk/traceback/internal/db"
	"github.com/erazemk/traceback/internal/model"
)

// AppendAudit adds an entry to the audit log. Entries are never updated or
// deleted.
func AppendAudit(ctx context.Context, q db.Querier, action, subjectID, detail, actor string, at time.Time) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO audit_log (action, subject_id, detail, actor, created_at) VALUES (?, ?, ?, ?, ?)`,
		action, subjectID, nullString(detail), actor, at.UTC(),
	)
	if err != nil {
		return fmt.Errorf("appending audit entry: %w", err)
	}
	return nil
}

// ListAudit returns audit entries in insertion order, optionally for one subject.
func ListAudit(ctx context.Context, q db.Querier, subjectID string) ([]model.AuditEntry, error) {
	query := `SELECT id, action, subject_id, COALESCE(detail, ''), actor, created_at FROM audit_log`
	var args []any
	if subjectID != "" {
		query += ` WHERE subject_id = ?`
		args = append(args, subjectID)
	}
	query += ` ORDER BY id`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing audit log: %w", err)
	}
	defer rows.Close()

	var entries []model.AuditEntry
	for rows.Next() {
		var e model.AuditEntry
		if err := rows.Scan(&e.ID, &e.Action, &e.SubjectID, &e.Detail, &e.Actor, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
