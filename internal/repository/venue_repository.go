package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fairgrid/fairgrid/internal/model"
)

// ErrVenueNotFound indicates that a venue was not located in the DB.
var ErrVenueNotFound = errors.New("venue not found")

// VenueRepo manages venues and their sub-venues.
type VenueRepo struct {
	db *sql.DB
}

// NewVenueRepo constructs a VenueRepo with the given DB handle.
func NewVenueRepo(db *sql.DB) *VenueRepo {
	return &VenueRepo{db: db}
}

// GetByID retrieves a venue by its numeric identifier.
func (r *VenueRepo) GetByID(ctx context.Context, id uint64) (*model.Venue, error) {
	const q = `SELECT id, name, slug, city, country FROM venues WHERE id = ?`
	var v model.Venue
	err := r.db.QueryRowContext(ctx, q, id).Scan(&v.ID, &v.Name, &v.Slug, &v.City, &v.Country)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVenueNotFound
		}
		return nil, err
	}
	return &v, nil
}

// GetBySlug retrieves a venue by its slug (the trailing path segment of a
// venue URL is accepted as a slug as well).
func (r *VenueRepo) GetBySlug(ctx context.Context, slug string) (*model.Venue, error) {
	const q = `SELECT id, name, slug, city, country FROM venues WHERE slug = ?`
	var v model.Venue
	err := r.db.QueryRowContext(ctx, q, slug).Scan(&v.ID, &v.Name, &v.Slug, &v.City, &v.Country)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVenueNotFound
		}
		return nil, err
	}
	return &v, nil
}

// FindOrCreateSubVenue resolves a sub-venue by name within a venue,
// creating it when absent.  The unique (venue_id, name) key makes the
// create race-safe: a concurrent insert surfaces as a duplicate key and
// the loser re-reads the winner's row.
func (r *VenueRepo) FindOrCreateSubVenue(ctx context.Context, venueID uint64, name string) (*model.SubVenue, error) {
	const sel = `SELECT id, venue_id, name, created_at FROM sub_venues WHERE venue_id = ? AND name = ?`
	var sv model.SubVenue
	err := r.db.QueryRowContext(ctx, sel, venueID, name).Scan(&sv.ID, &sv.VenueID, &sv.Name, &sv.CreatedAt)
	if err == nil {
		return &sv, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	const ins = `INSERT INTO sub_venues (venue_id, name) VALUES (?, ?)
                 ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id)`
	res, err := r.db.ExecContext(ctx, ins, venueID, name)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	err = r.db.QueryRowContext(ctx, `SELECT id, venue_id, name, created_at FROM sub_venues WHERE id = ?`, id).
		Scan(&sv.ID, &sv.VenueID, &sv.Name, &sv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &sv, nil
}
