package model

import "time"

// Attribute names stored in edition_attributes.  Each name is unique per
// (event, edition) pair and upserted in place.  The first three are the
// "core" attributes written inside the atomic edition transaction; the
// rest are populated by the enrichment pipeline.
const (
	AttrDescription      = "description"
	AttrShortDescription = "short_description"
	AttrTiming           = "timing"
	AttrHighlights       = "highlights"
	AttrStats            = "stats"
	AttrSubVenues        = "subvenues"
	AttrCustomization    = "customization"
	AttrAttachments      = "attachments"
)

// EditionAttribute is a generic key/value extension row scoped to an
// event+edition pair.  Values are stored as text; structured attributes
// (stats, subvenues, attachments) hold serialized JSON.
//
// Fields:
//  ID        – primary key identifier.
//  EventID   – owning event.
//  EditionID – owning edition.
//  Name      – attribute key, unique per (event, edition).
//  Value     – attribute payload.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type EditionAttribute struct {
	ID        uint64    // edition_attributes.id
	EventID   uint64    // edition_attributes.event_id
	EditionID uint64    // edition_attributes.edition_id
	Name      string    // edition_attributes.name
	Value     string    // edition_attributes.value
	CreatedAt time.Time // edition_attributes.created_at
	UpdatedAt time.Time // edition_attributes.updated_at
}
