package search

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fairgrid/fairgrid/internal/model"
)

// Document is the flat search representation of an event+edition
// aggregate.  Nested attribute blobs are flattened into top-level fields
// so every configured index version receives the same shape.
type Document struct {
	EventID          uint64   `json:"event_id"`
	EditionID        uint64   `json:"edition_id"`
	EditionNumber    uint32   `json:"edition_number"`
	Name             string   `json:"name"`
	City             string   `json:"city"`
	Country          string   `json:"country"`
	StartsOn         string   `json:"starts_on,omitempty"`
	EndsOn           string   `json:"ends_on,omitempty"`
	EventType        string   `json:"event_type"`
	Audience         string   `json:"audience"`
	Visibility       string   `json:"visibility"`
	Website          string   `json:"website,omitempty"`
	Description      string   `json:"description,omitempty"`
	ShortDescription string   `json:"short_description,omitempty"`
	Timing           string   `json:"timing,omitempty"`
	Highlights       string   `json:"highlights,omitempty"`
	SubVenueIDs      []uint64 `json:"sub_venue_ids,omitempty"`
	ExhibitorTotal   *int64   `json:"exhibitor_total,omitempty"`
	VisitorTotal     *int64   `json:"visitor_total,omitempty"`
	AreaTotal        *int64   `json:"area_total,omitempty"`
	IndexedAt        string   `json:"indexed_at"`
}

// ID is the document id used across every index version, stable per
// edition so re-indexing overwrites in place.
func (d Document) ID() string {
	return fmt.Sprintf("%d-%d", d.EventID, d.EditionID)
}

// BuildDocument flattens the aggregate into a Document.
func BuildDocument(ev *model.Event, ed *model.Edition, attrs map[string]model.EditionAttribute) Document {
	doc := Document{
		EventID:        ev.ID,
		EditionID:      ed.ID,
		EditionNumber:  ed.EditionNumber,
		Name:           ev.Name,
		City:           ed.City,
		Country:        ed.Country,
		EventType:      ev.EventType,
		Audience:       ev.Audience,
		Visibility:     ev.Visibility,
		Website:        ed.Website,
		ExhibitorTotal: ed.ExhibitorTotal,
		VisitorTotal:   ed.VisitorTotal,
		AreaTotal:      ed.AreaTotal,
		IndexedAt:      time.Now().UTC().Format(time.RFC3339),
	}
	if doc.City == "" {
		doc.City = ev.City
	}
	if doc.Country == "" {
		doc.Country = ev.Country
	}
	if ed.StartsOn != nil {
		doc.StartsOn = ed.StartsOn.Format("2006-01-02")
	}
	if ed.EndsOn != nil {
		doc.EndsOn = ed.EndsOn.Format("2006-01-02")
	}
	if a, ok := attrs[model.AttrDescription]; ok {
		doc.Description = a.Value
	}
	if a, ok := attrs[model.AttrShortDescription]; ok {
		doc.ShortDescription = a.Value
	}
	if a, ok := attrs[model.AttrTiming]; ok {
		doc.Timing = a.Value
	}
	if a, ok := attrs[model.AttrHighlights]; ok {
		doc.Highlights = a.Value
	}
	if a, ok := attrs[model.AttrSubVenues]; ok {
		// Stored as a JSON id list by the sub-venue enrichment unit.
		var ids []uint64
		if err := json.Unmarshal([]byte(a.Value), &ids); err == nil {
			doc.SubVenueIDs = ids
		}
	}
	return doc
}
