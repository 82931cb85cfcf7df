package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/erazemk/traceback/internal/db"
	"github.com/erazemk/traceback/internal/model"
)

const itemColumns = `id, kind, category, color, description, location, event_date, images,
	contact, reporter_id, status, created_at, updated_at`

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// ItemFilter narrows ListItems. Zero fields match everything.
type ItemFilter struct {
	Kind     model.ItemKind
	Category model.Category
	Statuses []model.ItemStatus
	// Query is a case-insensitive substring of description, category or location.
	Query string
}

// CreateItem inserts a new item report. The caller assigns ID and timestamps.
func CreateItem(ctx context.Context, q db.Querier, item *model.Item) error {
	images := item.Images
	if images == nil {
		images = []string{}
	}
	encoded, err := json.Marshal(images)
	if err != nil {
		return fmt.Errorf("encoding item images: %w", err)
	}

	_, err = q.ExecContext(ctx,
		`INSERT INTO items (id, kind, category, color, description, location, event_date, images,
		                    contact, reporter_id, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.Kind, item.Category, nullString(item.Color), item.Description, item.Location,
		item.EventDate.UTC(), string(encoded), nullString(item.Contact), item.ReporterID,
		item.Status, item.CreatedAt.UTC(), item.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("creating item: %w", err)
	}
	return nil
}

// GetItem returns an item by ID, or nil if there is none.
func GetItem(ctx context.Context, q db.Querier, id string) (*model.Item, error) {
	item, err := scanItem(q.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns items matching the filter, newest first.
func ListItems(ctx context.Context, q db.Querier, f ItemFilter) ([]model.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE 1=1`
	var args []any

	if f.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, f.Kind)
	}
	if f.Category != "" {
		query += ` AND category = ?`
		args = append(args, f.Category)
	}
	if len(f.Statuses) > 0 {
		query += ` AND status IN (` + placeholders(len(f.Statuses)) + `)`
		for _, s := range f.Statuses {
			args = append(args, s)
		}
	}
	if f.Query != "" {
		query += ` AND (instr(lower(description), ?) > 0 OR instr(lower(category), ?) > 0 OR instr(lower(location), ?) > 0)`
		needle := strings.ToLower(f.Query)
		args = append(args, needle, needle, needle)
	}

	query += ` ORDER BY created_at DESC, id`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// SetItemStatus moves an item to a new status.
func SetItemStatus(ctx context.Context, q db.Querier, id string, status model.ItemStatus, at time.Time) error {
	res, err := q.ExecContext(ctx,
		`UPDATE items SET status = ?, updated_at = ? WHERE id = ?`,
		status, at.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("setting item status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: item %s", model.ErrNotFound, id)
	}
	return nil
}

// CountItems returns item counts keyed by kind and status.
func CountItems(ctx context.Context, q db.Querier) (map[model.ItemKind]map[model.ItemStatus]int, error) {
	rows, err := q.QueryContext(ctx, `SELECT kind, status, COUNT(*) FROM items GROUP BY kind, status`)
	if err != nil {
		return nil, fmt.Errorf("counting items: %w", err)
	}
	defer rows.Close()

	counts := map[model.ItemKind]map[model.ItemStatus]int{
		model.KindLost:  {},
		model.KindFound: {},
	}
	for rows.Next() {
		var kind model.ItemKind
		var status model.ItemStatus
		var n int
		if err := rows.Scan(&kind, &status, &n); err != nil {
			return nil, fmt.Errorf("scanning item count: %w", err)
		}
		if counts[kind] == nil {
			counts[kind] = map[model.ItemStatus]int{}
		}
		counts[kind][status] = n
	}
	return counts, rows.Err()
}

func scanItem(s scanner) (*model.Item, error) {
	item := &model.Item{}
	var color, contact sql.NullString
	var images string
	err := s.Scan(&item.ID, &item.Kind, &item.Category, &color, &item.Description, &item.Location,
		&item.EventDate, &images, &contact, &item.ReporterID, &item.Status, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	item.Color = color.String
	item.Contact = contact.String
	if err := json.Unmarshal([]byte(images), &item.Images); err != nil {
		return nil, fmt.Errorf("decoding item images: %w", err)
	}
	return item, nil
}

// nullString stores empty strings as NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
