package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fairgrid/fairgrid/internal/model"
)

// ErrAttributeNotFound indicates the requested attribute row is absent.
var ErrAttributeNotFound = errors.New("attribute not found")

// AttributeRepo manages the generic key/value extension rows scoped to an
// event+edition pair.  The (event_id, edition_id, name) key is unique, so
// writes are idempotent upserts: applying the same value twice leaves one
// row holding the latest value.
type AttributeRepo struct {
	db *sql.DB
}

// NewAttributeRepo constructs an AttributeRepo with the given DB handle.
func NewAttributeRepo(db *sql.DB) *AttributeRepo {
	return &AttributeRepo{db: db}
}

const attrUpsert = `INSERT INTO edition_attributes (event_id, edition_id, name, value)
                    VALUES (?, ?, ?, ?)
                    ON DUPLICATE KEY UPDATE value = VALUES(value), updated_at = CURRENT_TIMESTAMP`

// UpsertTx writes one attribute inside the caller's transaction.  The core
// lifecycle transaction uses this for description/short_description/timing.
func (r *AttributeRepo) UpsertTx(ctx context.Context, tx *sql.Tx, eventID, editionID uint64, name, value string) error {
	_, err := tx.ExecContext(ctx, attrUpsert, eventID, editionID, name, value)
	return err
}

// Upsert writes one attribute outside any transaction.  The enrichment
// pipeline uses this for the non-core attributes after commit.
func (r *AttributeRepo) Upsert(ctx context.Context, eventID, editionID uint64, name, value string) error {
	_, err := r.db.ExecContext(ctx, attrUpsert, eventID, editionID, name, value)
	return err
}

// GetValue returns the value of one attribute, or ErrAttributeNotFound.
func (r *AttributeRepo) GetValue(ctx context.Context, eventID, editionID uint64, name string) (string, error) {
	const q = `SELECT value FROM edition_attributes WHERE event_id = ? AND edition_id = ? AND name = ?`
	var v string
	err := r.db.QueryRowContext(ctx, q, eventID, editionID, name).Scan(&v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrAttributeNotFound
		}
		return "", err
	}
	return v, nil
}

// ListByEdition returns all attributes of an edition keyed by name.  The
// search document builder uses this to flatten the aggregate.
func (r *AttributeRepo) ListByEdition(ctx context.Context, eventID, editionID uint64) (map[string]model.EditionAttribute, error) {
	const q = `SELECT id, event_id, edition_id, name, value, created_at, updated_at
               FROM edition_attributes WHERE event_id = ? AND edition_id = ?`
	rows, err := r.db.QueryContext(ctx, q, eventID, editionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]model.EditionAttribute)
	for rows.Next() {
		var a model.EditionAttribute
		if err := rows.Scan(&a.ID, &a.EventID, &a.EditionID, &a.Name, &a.Value, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out[a.Name] = a
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
