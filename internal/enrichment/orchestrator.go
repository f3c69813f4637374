// Package enrichment runs the best-effort secondary processing that
// follows the atomic core write: categories/products, statistics,
// sub-venues, sales workflow, contacts and attachments.  Every unit is
// independent; a failing unit is logged and counted but never aborts its
// siblings, never rolls back the committed core write and never surfaces
// to the original caller.
package enrichment

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/fairgrid/fairgrid/internal/model"
	"github.com/fairgrid/fairgrid/internal/queue"
)

// CategoryStore is the slice of the category repository the category unit
// consumes.
type CategoryStore interface {
	GetProducts(ctx context.Context, ids []uint64) (map[uint64]model.Product, error)
	ListLinks(ctx context.Context, eventID uint64) ([]model.CategoryLink, error)
	InsertLink(ctx context.Context, l model.CategoryLink) error
	DeleteLinks(ctx context.Context, eventID uint64, categoryIDs []uint64) error
	ReplaceProductLinks(ctx context.Context, eventID uint64, productIDs []uint64) error
}

// AttributeStore writes and reads the per-edition key/value rows.
type AttributeStore interface {
	Upsert(ctx context.Context, eventID, editionID uint64, name, value string) error
	GetValue(ctx context.Context, eventID, editionID uint64, name string) (string, error)
}

// EditionStore is the slice of the edition repository the statistics and
// sales units consume.
type EditionStore interface {
	UpdateSales(ctx context.Context, id uint64, actionOn *time.Time, actorID *uint64, status, remark string) error
	UpdateTotals(ctx context.Context, id uint64, exhibitors, visitors, area *int64) error
}

// SalesLogStore appends to the secondary sales-workflow trail.
type SalesLogStore interface {
	Insert(ctx context.Context, eventID, editionID uint64, actionOn *time.Time, actorID *uint64, status, remark string) error
}

// VenueSource resolves venues and sub-venues for the sub-venue unit.
type VenueSource interface {
	ResolveByID(ctx context.Context, id uint64) (*model.Venue, error)
	ResolveBySlug(ctx context.Context, slug string) (*model.Venue, error)
	FindOrCreateSubVenue(ctx context.Context, venueID uint64, name string) (*model.SubVenue, error)
}

// ActorSource validates sales actors.
type ActorSource interface {
	GetActor(ctx context.Context, id uint64) (*model.User, error)
}

// ContactStore persists contact batches.
type ContactStore interface {
	InsertBatch(ctx context.Context, contacts []model.Contact) error
}

// DomainBlocklist answers whether an email domain is blocklisted.
type DomainBlocklist interface {
	IsBlocklisted(ctx context.Context, domain string) bool
}

// MediaSource validates attachment references.
type MediaSource interface {
	Exists(ctx context.Context, id uint64, kind string) (bool, error)
}

// OutcomeRecorder receives per-unit outcomes for metrics.  A nil recorder
// is allowed.
type OutcomeRecorder interface {
	RecordEnrichment(unit string, err error)
}

// UnitOutcome is the settled result of one enrichment unit.
type UnitOutcome struct {
	Unit string
	Err  error
}

// Report aggregates the outcomes of one enrichment run.
type Report []UnitOutcome

// Failed returns the names of the units that failed.
func (r Report) Failed() []string {
	var out []string
	for _, o := range r {
		if o.Err != nil {
			out = append(out, o.Unit)
		}
	}
	return out
}

// Orchestrator wires the enrichment units to their stores.
type Orchestrator struct {
	Categories CategoryStore
	Attributes AttributeStore
	Editions   EditionStore
	SalesLog   SalesLogStore
	Venues     VenueSource
	Actors     ActorSource
	Contacts   ContactStore
	Blocklist  DomainBlocklist
	Media      MediaSource
	Metrics    OutcomeRecorder
}

// Process runs every applicable unit concurrently and returns once all of
// them have settled.  Failures are isolated per unit: they are logged at
// warning level, reported to the metrics recorder and collected into the
// report, nothing more.
func (o *Orchestrator) Process(ctx context.Context, job queue.EnrichmentJob) Report {
	req := &job.Request

	type unit struct {
		name string
		skip bool
		run  func(context.Context) error
	}
	units := []unit{
		{
			name: "categories",
			skip: len(req.CategoryIDs) == 0 && len(req.ProductIDs) == 0,
			run:  func(ctx context.Context) error { return o.reconcileCategories(ctx, job.EventID, req) },
		},
		{
			name: "statistics",
			skip: req.Stats == nil,
			run:  func(ctx context.Context) error { return o.mergeStatistics(ctx, job.EventID, job.EditionID, *req.Stats) },
		},
		{
			name: "subvenues",
			skip: len(req.SubVenues) == 0,
			run:  func(ctx context.Context) error { return o.resolveSubVenues(ctx, job.EventID, job.EditionID, req) },
		},
		{
			name: "sales",
			skip: req.SalesActionOn == nil && req.SalesStatus == nil,
			run:  func(ctx context.Context) error { return o.applySales(ctx, job.EventID, job.EditionID, req) },
		},
		{
			name: "contacts",
			skip: len(req.Contacts) == 0,
			run:  func(ctx context.Context) error { return o.insertContacts(ctx, job.EventID, req.Contacts) },
		},
		{
			name: "attachments",
			skip: req.Attachments == nil,
			run:  func(ctx context.Context) error { return o.referenceAttachments(ctx, job.EventID, job.EditionID, req.Attachments) },
		},
		{
			name: "customization",
			skip: req.Customization == nil,
			run: func(ctx context.Context) error {
				return o.Attributes.Upsert(ctx, job.EventID, job.EditionID, model.AttrCustomization, *req.Customization)
			},
		},
	}

	outcomes := make([]UnitOutcome, 0, len(units))
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, u := range units {
		if u.skip {
			continue
		}
		wg.Add(1)
		go func(u unit) {
			defer wg.Done()
			err := runIsolated(ctx, u.run)
			if err != nil {
				log.Printf("enrichment: unit %s failed for event=%d edition=%d: %v", u.name, job.EventID, job.EditionID, err)
			}
			if o.Metrics != nil {
				o.Metrics.RecordEnrichment(u.name, err)
			}
			mu.Lock()
			outcomes = append(outcomes, UnitOutcome{Unit: u.name, Err: err})
			mu.Unlock()
		}(u)
	}
	wg.Wait()
	return outcomes
}

// runIsolated executes one unit, converting a panic into an error so a
// broken unit cannot take its siblings down with it.
func runIsolated(ctx context.Context, run func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return run(ctx)
}
