package enrichment

import (
	"context"

	"github.com/fairgrid/fairgrid/internal/model"
)

// reconcileCategories diffs the event's category links against the
// requested set and replaces the product links.  Product-implied
// categories are computed first and merged into the desired set; they are
// exempt from the user-facing cap.  Verified links (vendor workflow) are
// preserved regardless of the diff.
func (o *Orchestrator) reconcileCategories(ctx context.Context, eventID uint64, req *model.UpsertRequest) error {
	// Product-implied categories must be known before the final set is
	// diffed, so this happens inside the unit, ahead of everything else.
	fromProduct := make(map[uint64]bool)
	if len(req.ProductIDs) > 0 {
		products, err := o.Categories.GetProducts(ctx, req.ProductIDs)
		if err != nil {
			return err
		}
		for _, p := range products {
			if p.CategoryID != nil {
				fromProduct[*p.CategoryID] = true
			}
		}
	}

	// Desired final set: the (already validated, capped) user categories
	// plus the product-implied ones, deduplicated.
	desired := make(map[uint64]bool, len(req.CategoryIDs)+len(fromProduct))
	for _, id := range req.CategoryIDs {
		desired[id] = true
	}
	for id := range fromProduct {
		desired[id] = true
	}

	existing, err := o.Categories.ListLinks(ctx, eventID)
	if err != nil {
		return err
	}

	var toDelete []uint64
	have := make(map[uint64]bool, len(existing))
	for _, l := range existing {
		have[l.CategoryID] = true
		if desired[l.CategoryID] {
			continue
		}
		if l.Verified {
			continue // vendor-verified links survive the diff
		}
		toDelete = append(toDelete, l.CategoryID)
	}
	if len(toDelete) > 0 {
		if err := o.Categories.DeleteLinks(ctx, eventID, toDelete); err != nil {
			return err
		}
	}
	for id := range desired {
		if have[id] {
			continue
		}
		link := model.CategoryLink{
			EventID:     eventID,
			CategoryID:  id,
			Published:   true,
			FromProduct: fromProduct[id] && !containsID(req.CategoryIDs, id),
		}
		if err := o.Categories.InsertLink(ctx, link); err != nil {
			return err
		}
	}

	if len(req.ProductIDs) > 0 {
		if err := o.Categories.ReplaceProductLinks(ctx, eventID, req.ProductIDs); err != nil {
			return err
		}
	}
	return nil
}

func containsID(ids []uint64, id uint64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
