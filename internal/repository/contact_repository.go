package repository

import (
	"context"
	"database/sql"

	"github.com/fairgrid/fairgrid/internal/model"
)

// ContactRepo manages person-to-event contact links.
type ContactRepo struct {
	db *sql.DB
}

// NewContactRepo constructs a ContactRepo with the given DB handle.
func NewContactRepo(db *sql.DB) *ContactRepo {
	return &ContactRepo{db: db}
}

// InsertBatch inserts all contacts in one transaction.  The blocklist
// policy is all-or-nothing: the enrichment unit validates every email
// before calling this, and any insert failure rolls the whole batch back
// so no partial contact list is ever visible.
func (r *ContactRepo) InsertBatch(ctx context.Context, contacts []model.Contact) error {
	if len(contacts) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()
	const q = `INSERT INTO event_contacts (event_id, name, email, role, notify)
               VALUES (?, ?, ?, ?, ?)
               ON DUPLICATE KEY UPDATE name = VALUES(name), role = VALUES(role), notify = VALUES(notify)`
	for i := range contacts {
		c := &contacts[i]
		var res sql.Result
		res, err = tx.ExecContext(ctx, q, c.EventID, c.Name, c.Email, c.Role, c.Notify)
		if err != nil {
			return err
		}
		if id, idErr := res.LastInsertId(); idErr == nil && id > 0 {
			c.ID = uint64(id)
		}
	}
	return nil
}

// ListByEvent returns all contacts of an event ordered by creation.
func (r *ContactRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.Contact, error) {
	const q = `SELECT id, event_id, name, email, role, notify, created_at
               FROM event_contacts WHERE event_id = ? ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Contact
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(&c.ID, &c.EventID, &c.Name, &c.Email, &c.Role, &c.Notify, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
