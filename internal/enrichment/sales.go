package enrichment

import (
	"context"
	"fmt"
	"time"

	"github.com/fairgrid/fairgrid/internal/model"
	"github.com/fairgrid/fairgrid/internal/validation"
)

// applySales writes the sales-workflow fields onto the edition and mirrors
// the action onto the append-only event_updates trail.  The sales actor is
// re-validated here: the job may be processed long after the request was
// validated.
func (o *Orchestrator) applySales(ctx context.Context, eventID, editionID uint64, req *model.UpsertRequest) error {
	var actionOn *time.Time
	if req.SalesActionOn != nil {
		t, err := validation.ParseFlexibleDate(*req.SalesActionOn)
		if err != nil {
			return fmt.Errorf("sales_action_on %q: %w", *req.SalesActionOn, err)
		}
		actionOn = &t
	}
	if req.SalesActorID != nil {
		actor, err := o.Actors.GetActor(ctx, *req.SalesActorID)
		if err != nil {
			return fmt.Errorf("sales actor %d: %w", *req.SalesActorID, err)
		}
		if !actor.Active {
			return fmt.Errorf("sales actor %d is not active", actor.ID)
		}
	}
	status := ""
	if req.SalesStatus != nil {
		status = *req.SalesStatus
	}
	remark := ""
	if req.SalesRemark != nil {
		remark = *req.SalesRemark
	}
	if err := o.Editions.UpdateSales(ctx, editionID, actionOn, req.SalesActorID, status, remark); err != nil {
		return err
	}
	return o.SalesLog.Insert(ctx, eventID, editionID, actionOn, req.SalesActorID, status, remark)
}
