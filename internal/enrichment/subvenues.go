package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fairgrid/fairgrid/internal/model"
)

// resolveSubVenues finds or creates each named sub-venue within the
// request's venue and persists the resolved id list as the edition's
// subvenues attribute.
func (o *Orchestrator) resolveSubVenues(ctx context.Context, eventID, editionID uint64, req *model.UpsertRequest) error {
	venue, err := o.resolveVenue(ctx, req)
	if err != nil {
		return err
	}
	ids := make([]uint64, 0, len(req.SubVenues))
	for _, name := range req.SubVenues {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		sv, err := o.Venues.FindOrCreateSubVenue(ctx, venue.ID, name)
		if err != nil {
			return fmt.Errorf("sub-venue %q: %w", name, err)
		}
		ids = append(ids, sv.ID)
	}
	blob, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return o.Attributes.Upsert(ctx, eventID, editionID, model.AttrSubVenues, string(blob))
}

// resolveVenue re-resolves the request's venue reference; sub-venues only
// make sense within a venue.
func (o *Orchestrator) resolveVenue(ctx context.Context, req *model.UpsertRequest) (*model.Venue, error) {
	switch {
	case req.VenueID != nil:
		return o.Venues.ResolveByID(ctx, *req.VenueID)
	case req.VenueSlug != nil && *req.VenueSlug != "":
		slug := strings.TrimRight(*req.VenueSlug, "/")
		if i := strings.LastIndex(slug, "/"); i >= 0 {
			slug = slug[i+1:]
		}
		return o.Venues.ResolveBySlug(ctx, slug)
	}
	return nil, fmt.Errorf("sub-venues given without a venue reference")
}
