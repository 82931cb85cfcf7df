package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/traceback/internal/db"
)

// CreateImage stores an uploaded image blob under an opaque reference.
func CreateImage(ctx context.Context, q db.Querier, id string, data []byte, mime, uploadedBy string, at time.Time) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO images (id, data, mime, uploaded_by, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, data, mime, uploadedBy, at.UTC(),
	)
	if err != nil {
		return fmt.Errorf("creating image: %w", err)
	}
	return nil
}

// GetImage returns an image's data and MIME type. Data is nil if the
// reference is unknown.
func GetImage(ctx context.Context, q db.Querier, id string) ([]byte, string, error) {
	var data []byte
	var mime string
	err := q.QueryRowContext(ctx,
		`SELECT data, mime FROM images WHERE id = ?`, id,
	).Scan(&data, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting image: %w", err)
	}
	return data, mime, nil
}

// ImagesExist reports whether every reference names a stored image.
func ImagesExist(ctx context.Context, q db.Querier, ids []string) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}
	args := make([]any, len(ids))
	seen := make(map[string]bool, len(ids))
	for i, id := range ids {
		args[i] = id
		seen[id] = true
	}

	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM images WHERE id IN (`+placeholders(len(ids))+`)`, args...,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking images: %w", err)
	}
	return n == len(seen), nil
}
