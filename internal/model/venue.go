package model

import "time"

// Venue is a location an edition can resolve to, addressed either by its
// numeric identifier or by its slug.  Resolution must derive both city and
// country; a venue whose country cannot be resolved fails validation.
//
// Fields:
//  ID      – primary key identifier.
//  Name    – venue display name.
//  Slug    – URL-safe identifier.
//  City    – city the venue is located in.
//  Country – ISO country code; may be empty for unresolved legacy rows.
type Venue struct {
	ID      uint64 // venues.id
	Name    string // venues.name
	Slug    string // venues.slug
	City    string // venues.city
	Country string // venues.country
}

// SubVenue is a named hall or area within a venue.  Sub-venues are
// find-or-create by name during enrichment; the resolved id list is stored
// in the edition's "subvenues" attribute.
//
// Fields:
//  ID        – primary key identifier.
//  VenueID   – owning venue.
//  Name      – hall/area name, unique per venue.
//  CreatedAt – creation timestamp.
type SubVenue struct {
	ID        uint64    // sub_venues.id
	VenueID   uint64    // sub_venues.venue_id
	Name      string    // sub_venues.name
	CreatedAt time.Time // sub_venues.created_at
}
