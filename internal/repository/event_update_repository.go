package repository

import (
	"context"
	"database/sql"
	"time"
)

// EventUpdateRepo writes the secondary sales-workflow record.  Every sales
// action applied to an edition is mirrored here so the sales team has an
// append-only trail independent of the edition row's latest values.
type EventUpdateRepo struct {
	db *sql.DB
}

// NewEventUpdateRepo constructs an EventUpdateRepo with the given DB handle.
func NewEventUpdateRepo(db *sql.DB) *EventUpdateRepo {
	return &EventUpdateRepo{db: db}
}

// Insert appends one sales-workflow record.
func (r *EventUpdateRepo) Insert(ctx context.Context, eventID, editionID uint64, actionOn *time.Time, actorID *uint64, status, remark string) error {
	const q = `INSERT INTO event_updates (event_id, edition_id, action_on, actor_id, status, remark)
               VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, eventID, editionID, nullTime(actionOn), nullID(actorID), status, remark)
	return err
}
