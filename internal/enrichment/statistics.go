package enrichment

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/fairgrid/fairgrid/internal/model"
	"github.com/fairgrid/fairgrid/internal/repository"
)

// mergeStatistics loads the existing statistics blob, applies only the
// figures present in the request, writes the blob back and mirrors the
// numeric totals onto the edition row for fast querying.
func (o *Orchestrator) mergeStatistics(ctx context.Context, eventID, editionID uint64, incoming model.Statistics) error {
	var stats model.Statistics
	raw, err := o.Attributes.GetValue(ctx, eventID, editionID, model.AttrStats)
	switch {
	case err == nil:
		if err := json.Unmarshal([]byte(raw), &stats); err != nil {
			// A corrupt blob is replaced rather than poisoning every
			// subsequent statistics update.
			stats = model.Statistics{}
		}
	case errors.Is(err, repository.ErrAttributeNotFound):
		// first statistics write for this edition
	default:
		return err
	}

	stats.Merge(incoming)

	blob, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	if err := o.Attributes.Upsert(ctx, eventID, editionID, model.AttrStats, string(blob)); err != nil {
		return err
	}
	return o.Editions.UpdateTotals(ctx, editionID,
		stats.Exhibitors.Total, stats.Visitors.Total, stats.Area.Total)
}
