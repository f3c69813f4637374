package lifecycle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fairgrid/fairgrid/internal/model"
	"github.com/fairgrid/fairgrid/internal/repository"
	"github.com/fairgrid/fairgrid/internal/validation"
)

// ErrTxBudgetExceeded marks a transaction that ran over its wall-clock
// budget.  The operation failed as a whole; the caller may retry, the
// service does not.
var ErrTxBudgetExceeded = errors.New("edition transaction exceeded its time budget")

// TxResult describes the durable outcome of the atomic core write.  The
// change flags feed the conditional secondary notifications in
// post-processing.
type TxResult struct {
	Event   *model.Event
	Edition *model.Edition

	DatesChanged      bool
	LocationChanged   bool
	VisibilityChanged bool
	TypeChanged       bool
}

// Transactor performs the atomic core write: the edition row plus the
// minimal set of core attribute rows (description, short description,
// timing, highlights), all inside one all-or-nothing transaction bounded
// by a wall-clock budget.
type Transactor struct {
	Events     *repository.EventRepo
	Editions   *repository.EditionRepo
	Attributes *repository.AttributeRepo
	Budget     time.Duration
}

// NewTransactor constructs a Transactor.  A non-positive budget falls back
// to 5 seconds.
func NewTransactor(events *repository.EventRepo, editions *repository.EditionRepo, attributes *repository.AttributeRepo, budget time.Duration) *Transactor {
	if budget <= 0 {
		budget = 5 * time.Second
	}
	return &Transactor{Events: events, Editions: editions, Attributes: attributes, Budget: budget}
}

// Execute runs the core write for the classified scenario.  target is the
// edition being updated in place (nil for create/rehost/future-edition).
// If any step fails the whole transaction is rolled back and no partial
// state remains visible: no orphan edition, no repointed current-edition
// without its edition row.
func (t *Transactor) Execute(ctx context.Context, scenario Scenario, req *model.UpsertRequest, res *validation.Resolved, target *model.Edition) (result *TxResult, err error) {
	ctx, cancel := context.WithTimeout(ctx, t.Budget)
	defer cancel()

	tx, err := t.Events.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
				err = ErrTxBudgetExceeded
			}
			result = nil
			return
		}
		if err = tx.Commit(); err != nil {
			result = nil
		}
	}()

	switch scenario {
	case ScenarioCreate:
		result, err = t.create(ctx, tx, req, res)
	case ScenarioUpdate:
		result, err = t.update(ctx, tx, req, res, target)
	case ScenarioRehost:
		result, err = t.rehost(ctx, tx, req, res)
	case ScenarioFutureEdition:
		result, err = t.futureEdition(ctx, tx, req, res)
	default:
		err = fmt.Errorf("unknown scenario %d", scenario)
	}
	return result, err
}

// create inserts the event row, its first edition, repoints the event's
// current-edition pointer and writes the supplied core attributes.
func (t *Transactor) create(ctx context.Context, tx *sql.Tx, req *model.UpsertRequest, res *validation.Resolved) (*TxResult, error) {
	ev := &model.Event{
		Name:       strOr(req.Name, ""),
		EventType:  strOr(req.EventType, "TRADE_SHOW"),
		Audience:   strOr(req.Audience, "B2B"),
		Visibility: strOr(req.Visibility, "DRAFT"),
		StartsOn:   res.StartsOn,
		EndsOn:     res.EndsOn,
	}
	if res.Venue != nil {
		ev.City = res.Venue.City
		ev.Country = res.Venue.Country
	}
	if res.Company != nil {
		id := res.Company.ID
		ev.CompanyID = &id
	}
	if res.Actor != nil {
		id := res.Actor.ID
		ev.ContactUserID = &id
	}
	if err := t.Events.CreateTx(ctx, tx, ev); err != nil {
		return nil, err
	}

	ed := buildEdition(ev.ID, 1, nil, req, res)
	if err := t.Editions.CreateTx(ctx, tx, ed); err != nil {
		return nil, err
	}
	if err := t.Events.RepointCurrentEditionTx(ctx, tx, ev.ID, ed.ID); err != nil {
		return nil, err
	}
	if err := t.upsertCoreAttributes(ctx, tx, ev.ID, ed.ID, req); err != nil {
		return nil, err
	}
	ev.CurrentEditionID = &ed.ID
	return &TxResult{Event: ev, Edition: ed}, nil
}

// update applies a partial patch to the target edition.  When the target
// is the event's current edition the event's denormalized mirror fields
// are refreshed as well.
func (t *Transactor) update(ctx context.Context, tx *sql.Tx, req *model.UpsertRequest, res *validation.Resolved, target *model.Edition) (*TxResult, error) {
	if target == nil {
		return nil, repository.ErrEditionNotFound
	}
	before := *target

	patch := patchFromRequest(req, res)
	if !patch.Empty() {
		if err := t.Editions.UpdateTx(ctx, tx, target.ID, patch); err != nil && !errors.Is(err, repository.ErrNoChange) {
			return nil, err
		}
	}
	fresh, err := t.Editions.GetByIDTx(ctx, tx, target.ID)
	if err != nil {
		return nil, err
	}

	ev := res.Event
	isCurrent := ev != nil && ev.CurrentEditionID != nil && *ev.CurrentEditionID == target.ID
	result := &TxResult{
		Event:           ev,
		Edition:         fresh,
		DatesChanged:    !sameDate(before.StartsOn, fresh.StartsOn) || !sameDate(before.EndsOn, fresh.EndsOn),
		LocationChanged: before.City != fresh.City || before.Country != fresh.Country,
	}
	if isCurrent {
		if req.Name != nil {
			ev.Name = *req.Name
		}
		if req.EventType != nil {
			result.TypeChanged = ev.EventType != *req.EventType
			ev.EventType = *req.EventType
		}
		if req.Visibility != nil {
			result.VisibilityChanged = ev.Visibility != *req.Visibility
			ev.Visibility = *req.Visibility
		}
		ev.StartsOn = fresh.StartsOn
		ev.EndsOn = fresh.EndsOn
		if fresh.City != "" {
			ev.City = fresh.City
		}
		if fresh.Country != "" {
			ev.Country = fresh.Country
		}
		if err := t.Events.UpdateMirrorTx(ctx, tx, ev); err != nil {
			return nil, err
		}
	}
	if err := t.upsertCoreAttributes(ctx, tx, fresh.EventID, fresh.ID, req); err != nil {
		return nil, err
	}
	return result, nil
}

// rehost inserts a new edition carrying forward unset fields from the
// prior current edition, repoints the event and refreshes its mirror.
func (t *Transactor) rehost(ctx context.Context, tx *sql.Tx, req *model.UpsertRequest, res *validation.Resolved) (*TxResult, error) {
	ev := res.Event
	if ev == nil || ev.CurrentEditionID == nil {
		return nil, repository.ErrEditionNotFound
	}
	prior, err := t.Editions.GetByIDTx(ctx, tx, *ev.CurrentEditionID)
	if err != nil {
		return nil, err
	}
	number, err := t.Editions.NextEditionNumberTx(ctx, tx, ev.ID)
	if err != nil {
		return nil, err
	}

	ed := buildEdition(ev.ID, number, prior, req, res)
	if err := t.Editions.CreateTx(ctx, tx, ed); err != nil {
		return nil, err
	}
	if err := t.Events.RepointCurrentEditionTx(ctx, tx, ev.ID, ed.ID); err != nil {
		return nil, err
	}

	result := &TxResult{
		Event:           ev,
		Edition:         ed,
		DatesChanged:    true,
		LocationChanged: prior.City != ed.City || prior.Country != ed.Country,
	}
	if req.Name != nil {
		ev.Name = *req.Name
	}
	if req.EventType != nil {
		result.TypeChanged = ev.EventType != *req.EventType
		ev.EventType = *req.EventType
	}
	if req.Visibility != nil {
		result.VisibilityChanged = ev.Visibility != *req.Visibility
		ev.Visibility = *req.Visibility
	}
	ev.StartsOn = ed.StartsOn
	ev.EndsOn = ed.EndsOn
	if ed.City != "" {
		ev.City = ed.City
	}
	if ed.Country != "" {
		ev.Country = ed.Country
	}
	if err := t.Events.UpdateMirrorTx(ctx, tx, ev); err != nil {
		return nil, err
	}
	if err := t.upsertCoreAttributes(ctx, tx, ev.ID, ed.ID, req); err != nil {
		return nil, err
	}
	ev.CurrentEditionID = &ed.ID
	return result, nil
}

// futureEdition inserts a forward-dated edition next to the still-active
// current one.  The event's current-edition pointer and mirror fields are
// deliberately left alone.
func (t *Transactor) futureEdition(ctx context.Context, tx *sql.Tx, req *model.UpsertRequest, res *validation.Resolved) (*TxResult, error) {
	ev := res.Event
	if ev == nil {
		return nil, repository.ErrEventNotFound
	}
	number, err := t.Editions.NextEditionNumberTx(ctx, tx, ev.ID)
	if err != nil {
		return nil, err
	}
	ed := buildEdition(ev.ID, number, nil, req, res)
	if err := t.Editions.CreateTx(ctx, tx, ed); err != nil {
		return nil, err
	}
	if err := t.upsertCoreAttributes(ctx, tx, ev.ID, ed.ID, req); err != nil {
		return nil, err
	}
	return &TxResult{Event: ev, Edition: ed}, nil
}

// upsertCoreAttributes writes the attribute rows that belong inside the
// atomic boundary.  Only supplied fields are written.
func (t *Transactor) upsertCoreAttributes(ctx context.Context, tx *sql.Tx, eventID, editionID uint64, req *model.UpsertRequest) error {
	core := []struct {
		name  string
		value *string
	}{
		{model.AttrDescription, req.Description},
		{model.AttrShortDescription, req.ShortDescription},
		{model.AttrTiming, req.Timing},
		{model.AttrHighlights, req.Highlights},
	}
	for _, a := range core {
		if a.value == nil {
			continue
		}
		if err := t.Attributes.UpsertTx(ctx, tx, eventID, editionID, a.name, *a.value); err != nil {
			return err
		}
	}
	return nil
}

// buildEdition assembles a new edition from the request, falling back to
// the prior edition's values for omitted fields (rehost carry-forward).
func buildEdition(eventID uint64, number uint32, prior *model.Edition, req *model.UpsertRequest, res *validation.Resolved) *model.Edition {
	ed := &model.Edition{
		EventID:       eventID,
		EditionNumber: number,
		StartsOn:      res.StartsOn,
		EndsOn:        res.EndsOn,
	}
	if res.Venue != nil {
		ed.City = res.Venue.City
		ed.Country = res.Venue.Country
	}
	if res.Company != nil {
		id := res.Company.ID
		ed.CompanyID = &id
	}
	ed.Website = strOr(req.Website, "")
	ed.Facebook = strOr(req.Facebook, "")
	ed.Twitter = strOr(req.Twitter, "")
	ed.Linkedin = strOr(req.Linkedin, "")
	if res.SalesActionOn != nil {
		ed.SalesActionOn = res.SalesActionOn
	}
	if req.SalesActorID != nil {
		id := *req.SalesActorID
		ed.SalesActorID = &id
	}
	ed.SalesStatus = strOr(req.SalesStatus, "")
	ed.SalesRemark = strOr(req.SalesRemark, "")

	if prior != nil {
		if ed.City == "" {
			ed.City = prior.City
		}
		if ed.Country == "" {
			ed.Country = prior.Country
		}
		if ed.CompanyID == nil {
			ed.CompanyID = prior.CompanyID
		}
		if ed.Website == "" {
			ed.Website = prior.Website
		}
		if ed.Facebook == "" {
			ed.Facebook = prior.Facebook
		}
		if ed.Twitter == "" {
			ed.Twitter = prior.Twitter
		}
		if ed.Linkedin == "" {
			ed.Linkedin = prior.Linkedin
		}
	}
	return ed
}

// patchFromRequest translates supplied request fields into an explicit
// partial patch.
func patchFromRequest(req *model.UpsertRequest, res *validation.Resolved) *repository.EditionPatch {
	p := &repository.EditionPatch{
		StartsOn:      res.StartsOn,
		EndsOn:        res.EndsOn,
		Website:       req.Website,
		Facebook:      req.Facebook,
		Twitter:       req.Twitter,
		Linkedin:      req.Linkedin,
		SalesActionOn: res.SalesActionOn,
		SalesActorID:  req.SalesActorID,
		SalesStatus:   req.SalesStatus,
		SalesRemark:   req.SalesRemark,
	}
	if res.Venue != nil {
		city := res.Venue.City
		country := res.Venue.Country
		p.City = &city
		p.Country = &country
	}
	if res.Company != nil {
		id := res.Company.ID
		p.CompanyID = &id
	}
	return p
}

func strOr(s *string, fallback string) string {
	if s != nil {
		return *s
	}
	return fallback
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
