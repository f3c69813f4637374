package model

import "time"

// Event represents a durable recurring show such as a trade fair or a
// conference.  The event row carries denormalized mirrors of its current
// edition (name, dates, location) so that listing queries never need a
// join.  At most one edition is designated current at a time; the pointer
// is repointed on rehost and left alone when a future edition is added.
//
// Fields:
//  ID               – primary key identifier.
//  Name             – display name of the show.
//  City, Country    – primary location, mirrored from the current edition.
//  StartsOn, EndsOn – primary date range, mirrored from the current edition.
//  EventType        – classification of the show (TRADE_SHOW, CONFERENCE, ...).
//  Audience         – audience code (B2B, B2C, ...); some codes relax date rules.
//  Visibility       – publication flag (PUBLISHED, DRAFT, HIDDEN).
//  CurrentEditionID – edition the event currently points to (nullable).
//  ContactUserID    – point-of-contact user allowed to edit the event.
//  CompanyID        – owning organizer company (nullable).
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type Event struct {
	ID               uint64     // events.id
	Name             string     // events.name
	City             string     // events.city
	Country          string     // events.country
	StartsOn         *time.Time // events.starts_on (nullable)
	EndsOn           *time.Time // events.ends_on (nullable)
	EventType        string     // events.event_type
	Audience         string     // events.audience
	Visibility       string     // events.visibility
	CurrentEditionID *uint64    // events.current_edition_id (nullable)
	ContactUserID    *uint64    // events.contact_user_id (nullable)
	CompanyID        *uint64    // events.company_id (nullable)
	CreatedAt        time.Time  // events.created_at
	UpdatedAt        time.Time  // events.updated_at
}
