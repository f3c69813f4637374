// Package repository contains data access logic for the event domain.
// Repositories own their SQL and expose plain methods plus ...Tx variants
// that participate in a caller-managed transaction. The lifecycle
// transaction spans the event, edition and attribute repositories, so each
// repository exposes its DB handle for callers that need to begin a
// transaction covering several of them.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fairgrid/fairgrid/internal/model"
)

// ErrEventNotFound indicates that an event was not located in the DB.
var ErrEventNotFound = errors.New("event not found")

// EventRepo manages persistence for events.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo constructs an EventRepo with the given DB handle.
func NewEventRepo(db *sql.DB) *EventRepo {
	return &EventRepo{db: db}
}

// DB exposes the underlying sql.DB.  It allows callers to begin
// transactions spanning multiple repositories.  The edition lifecycle
// transaction uses this to cover event, edition and attribute writes in
// one all-or-nothing unit.
func (r *EventRepo) DB() *sql.DB {
	return r.db
}

const eventColumns = `id, name, city, country, starts_on, ends_on, event_type, audience, visibility,
       current_edition_id, contact_user_id, company_id, created_at, updated_at`

// scanEvent reads one event row from the given scanner.
func scanEvent(row interface{ Scan(...any) error }) (*model.Event, error) {
	var (
		ev      model.Event
		starts  sql.NullTime
		ends    sql.NullTime
		current sql.NullInt64
		contact sql.NullInt64
		company sql.NullInt64
	)
	err := row.Scan(&ev.ID, &ev.Name, &ev.City, &ev.Country, &starts, &ends,
		&ev.EventType, &ev.Audience, &ev.Visibility, &current, &contact, &company,
		&ev.CreatedAt, &ev.UpdatedAt)
	if err != nil {
		return nil, err
	}
	ev.StartsOn = timePtr(starts)
	ev.EndsOn = timePtr(ends)
	ev.CurrentEditionID = idPtr(current)
	ev.ContactUserID = idPtr(contact)
	ev.CompanyID = idPtr(company)
	return &ev, nil
}

// GetByID retrieves an event by its ID.  It returns ErrEventNotFound if
// there is no matching row.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE id = ?`
	ev, err := scanEvent(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return ev, nil
}

// GetByIDTx is GetByID inside a caller-managed transaction.  The lifecycle
// transaction re-reads the event under the transaction so the scenario it
// classified against cannot change underneath the write.
func (r *EventRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE id = ? FOR UPDATE`
	ev, err := scanEvent(tx.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return ev, nil
}

// CreateTx inserts a new event using the provided transaction.  The caller
// must commit or roll back.  On success the generated ID and DB-default
// timestamps are populated on the given Event.
func (r *EventRepo) CreateTx(ctx context.Context, tx *sql.Tx, ev *model.Event) error {
	const q = `INSERT INTO events (name, city, country, starts_on, ends_on, event_type, audience, visibility, contact_user_id, company_id)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, ev.Name, ev.City, ev.Country,
		nullTime(ev.StartsOn), nullTime(ev.EndsOn), ev.EventType, ev.Audience, ev.Visibility,
		nullID(ev.ContactUserID), nullID(ev.CompanyID))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	ev.ID = uint64(id)
	// Re-select to obtain DB-default fields (timestamps).
	const sel = `SELECT ` + eventColumns + ` FROM events WHERE id = ?`
	fresh, err := scanEvent(tx.QueryRowContext(ctx, sel, ev.ID))
	if err != nil {
		return err
	}
	*ev = *fresh
	return nil
}

// RepointCurrentEditionTx updates the event's current-edition pointer
// inside the given transaction.  This is the only way the pointer moves;
// it happens on create, on rehost, never on a future-edition insert.
func (r *EventRepo) RepointCurrentEditionTx(ctx context.Context, tx *sql.Tx, eventID, editionID uint64) error {
	const q = `UPDATE events SET current_edition_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, editionID, eventID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrEventNotFound
	}
	return nil
}

// UpdateMirrorTx refreshes the event's denormalized mirror fields from its
// current edition.  Called when the current edition itself changed (regular
// update of the current edition, or a rehost repointing to new dates).
func (r *EventRepo) UpdateMirrorTx(ctx context.Context, tx *sql.Tx, ev *model.Event) error {
	const q = `UPDATE events
               SET name = ?, city = ?, country = ?, starts_on = ?, ends_on = ?, event_type = ?, visibility = ?, updated_at = CURRENT_TIMESTAMP
               WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, ev.Name, ev.City, ev.Country,
		nullTime(ev.StartsOn), nullTime(ev.EndsOn), ev.EventType, ev.Visibility, ev.ID)
	return err
}
