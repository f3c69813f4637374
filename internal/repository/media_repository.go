package repository

import (
	"context"
	"database/sql"
	"errors"
)

// ErrMediaNotFound indicates a referenced media asset does not exist.
var ErrMediaNotFound = errors.New("media asset not found")

// MediaRepo validates attachment references.  The assets themselves
// (videos, brochures, logos, wrapper and og images) live in an external
// file store; this table only records their ids and kinds so an edition
// can reference assets that actually exist.
type MediaRepo struct {
	db *sql.DB
}

// NewMediaRepo constructs a MediaRepo with the given DB handle.
func NewMediaRepo(db *sql.DB) *MediaRepo {
	return &MediaRepo{db: db}
}

// Exists checks that a media asset of the given kind exists.
func (r *MediaRepo) Exists(ctx context.Context, id uint64, kind string) (bool, error) {
	const q = `SELECT 1 FROM media_assets WHERE id = ? AND kind = ? LIMIT 1`
	var one int
	err := r.db.QueryRowContext(ctx, q, id, kind).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
