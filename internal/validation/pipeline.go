// Package validation implements the pre-write validation pipeline.  All
// checks are independent and side-effect free; every check runs even after
// an earlier one has failed, so the caller receives every problem in one
// round trip.  On success the pipeline returns a bag of resolved objects
// (actor, event, location, company, categories, sales actor, parsed dates)
// so later phases never re-resolve raw request fields.
package validation

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/fairgrid/fairgrid/internal/model"
)

// ActorProvider looks up actors for existence/authorization checks.
type ActorProvider interface {
	GetActor(ctx context.Context, id uint64) (*model.User, error)
}

// EventSource looks up the event an update targets.
type EventSource interface {
	GetEvent(ctx context.Context, id uint64) (*model.Event, error)
}

// LocationResolver resolves a venue reference into a location carrying
// both city and country.
type LocationResolver interface {
	ResolveByID(ctx context.Context, id uint64) (*model.Venue, error)
	ResolveBySlug(ctx context.Context, slug string) (*model.Venue, error)
}

// CompanyResolver resolves an organizer company reference.
type CompanyResolver interface {
	ResolveCompany(ctx context.Context, id uint64) (*model.Company, error)
}

// CategoryResolver loads catalog categories for the requested ids.
type CategoryResolver interface {
	ResolveCategories(ctx context.Context, ids []uint64) (map[uint64]model.Category, error)
}

// Resolved is the bag of objects the pipeline hands to the lifecycle
// manager when every check passed.
type Resolved struct {
	Actor         *model.User
	Event         *model.Event // nil on create
	StartsOn      *time.Time
	EndsOn        *time.Time
	Venue         *model.Venue
	Company       *model.Company
	Categories    map[uint64]model.Category
	SalesActor    *model.User
	SalesActionOn *time.Time
}

// Audience codes with relaxed date rules.  Archive-style audiences import
// historical shows, so reversed ranges and past dates are tolerated for
// them.
var (
	reversedRangeAudiences = map[string]bool{"ARCHIVE": true}
	pastDateAudiences      = map[string]bool{"ARCHIVE": true, "LEGACY": true}
)

// Pipeline bundles the collaborator boundaries the checks consult.
type Pipeline struct {
	Actors       ActorProvider
	Events       EventSource
	Locations    LocationResolver
	Companies    CompanyResolver
	Categories   CategoryResolver
	InternalRole string // role claim that marks internal operator accounts
	Now          func() time.Time
}

// NewPipeline constructs a Pipeline.  Now defaults to time.Now (UTC).
func NewPipeline(actors ActorProvider, events EventSource, locations LocationResolver, companies CompanyResolver, categories CategoryResolver, internalRole string) *Pipeline {
	return &Pipeline{
		Actors:       actors,
		Events:       events,
		Locations:    locations,
		Companies:    companies,
		Categories:   categories,
		InternalRole: internalRole,
		Now:          func() time.Time { return time.Now().UTC() },
	}
}

// Run executes every check and returns either a non-empty ordered failure
// list or the resolved bag.  A non-nil Resolved is only returned when the
// failure list is empty.
func (p *Pipeline) Run(ctx context.Context, req *model.UpsertRequest, actorID uint64) (*Resolved, []string) {
	var failures []string
	res := &Resolved{}
	fail := func(format string, args ...any) {
		failures = append(failures, fmt.Sprintf(format, args...))
	}

	p.checkActor(ctx, actorID, res, fail)
	p.checkEventAuth(ctx, req, res, fail)
	p.checkDates(req, res, fail)
	p.checkWebsite(req, fail)
	p.checkLocation(ctx, req, res, fail)
	p.checkCompany(ctx, req, res, fail)
	p.checkCategories(ctx, req, res, fail)
	p.checkSales(ctx, req, res, fail)

	if len(failures) > 0 {
		return nil, failures
	}
	return res, nil
}

// checkActor verifies the acting user exists and is active.
func (p *Pipeline) checkActor(ctx context.Context, actorID uint64, res *Resolved, fail func(string, ...any)) {
	actor, err := p.Actors.GetActor(ctx, actorID)
	if err != nil {
		fail("actor %d does not exist", actorID)
		return
	}
	if !actor.Active {
		fail("actor %d is not active", actorID)
		return
	}
	res.Actor = actor
}

// checkEventAuth verifies, for updates, that the event exists and that the
// actor is authorized to modify it: the event's point of contact, the
// owning company's point of contact, or a designated internal account.
func (p *Pipeline) checkEventAuth(ctx context.Context, req *model.UpsertRequest, res *Resolved, fail func(string, ...any)) {
	if req.EventID == nil {
		return
	}
	ev, err := p.Events.GetEvent(ctx, *req.EventID)
	if err != nil {
		fail("event %d does not exist", *req.EventID)
		return
	}
	res.Event = ev
	if res.Actor == nil {
		return // actor check already failed; authorization is moot
	}
	if p.InternalRole != "" && res.Actor.Role == p.InternalRole {
		return
	}
	if ev.ContactUserID != nil && *ev.ContactUserID == res.Actor.ID {
		return
	}
	if ev.CompanyID != nil {
		company, err := p.Companies.ResolveCompany(ctx, *ev.CompanyID)
		if err == nil && company.ContactUserID != nil && *company.ContactUserID == res.Actor.ID {
			return
		}
	}
	fail("actor %d is not authorized to modify event %d", res.Actor.ID, ev.ID)
}

// checkDates parses and sanity-checks the proposed date range.  Full dates
// ("2006-01-02") and year-months ("2006-01") are accepted; a year-month
// resolves to the first day of the month.  End before start is rejected
// unless the audience code permits reversed ranges; past dates are
// rejected only when a brand-new event is being created, and only for
// audiences without the past-date exemption.
func (p *Pipeline) checkDates(req *model.UpsertRequest, res *Resolved, fail func(string, ...any)) {
	audience := ""
	if req.Audience != nil {
		audience = *req.Audience
	} else if res.Event != nil {
		audience = res.Event.Audience
	}

	if req.StartsOn != nil {
		t, err := ParseFlexibleDate(*req.StartsOn)
		if err != nil {
			fail("starts_on %q is not a valid date (want YYYY-MM-DD or YYYY-MM)", *req.StartsOn)
		} else {
			res.StartsOn = &t
		}
	}
	if req.EndsOn != nil {
		t, err := ParseFlexibleDate(*req.EndsOn)
		if err != nil {
			fail("ends_on %q is not a valid date (want YYYY-MM-DD or YYYY-MM)", *req.EndsOn)
		} else {
			res.EndsOn = &t
		}
	}
	if res.StartsOn != nil && res.EndsOn != nil && res.EndsOn.Before(*res.StartsOn) && !reversedRangeAudiences[audience] {
		fail("ends_on must not be before starts_on")
	}
	if req.EventID == nil && !pastDateAudiences[audience] {
		today := truncateToDay(p.Now())
		if res.StartsOn != nil && res.StartsOn.Before(today) {
			fail("starts_on must not be in the past")
		}
		if res.EndsOn != nil && res.EndsOn.Before(today) {
			fail("ends_on must not be in the past")
		}
	}
}

// checkWebsite verifies the website is an absolute http(s) URL.
func (p *Pipeline) checkWebsite(req *model.UpsertRequest, fail func(string, ...any)) {
	if req.Website == nil || *req.Website == "" {
		return
	}
	u, err := url.Parse(*req.Website)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		fail("website %q is not a valid http(s) URL", *req.Website)
	}
}

// checkLocation resolves the venue by numeric id or slug/URL and requires
// that both city and country come out of the resolution.
func (p *Pipeline) checkLocation(ctx context.Context, req *model.UpsertRequest, res *Resolved, fail func(string, ...any)) {
	var (
		venue *model.Venue
		err   error
	)
	switch {
	case req.VenueID != nil:
		venue, err = p.Locations.ResolveByID(ctx, *req.VenueID)
		if err != nil {
			fail("venue %d could not be resolved", *req.VenueID)
			return
		}
	case req.VenueSlug != nil && *req.VenueSlug != "":
		slug := *req.VenueSlug
		// A full venue URL is accepted; its trailing path segment is the slug.
		if i := strings.LastIndex(strings.TrimRight(slug, "/"), "/"); i >= 0 {
			slug = strings.TrimRight(slug, "/")[i+1:]
		}
		venue, err = p.Locations.ResolveBySlug(ctx, slug)
		if err != nil {
			fail("venue %q could not be resolved", *req.VenueSlug)
			return
		}
	default:
		return
	}
	if venue.Country == "" {
		fail("venue %q has no resolvable country", venue.Name)
		return
	}
	res.Venue = venue
}

// checkCompany resolves the organizer company when one is referenced.
func (p *Pipeline) checkCompany(ctx context.Context, req *model.UpsertRequest, res *Resolved, fail func(string, ...any)) {
	if req.CompanyID == nil {
		return
	}
	company, err := p.Companies.ResolveCompany(ctx, *req.CompanyID)
	if err != nil {
		fail("company %d could not be resolved", *req.CompanyID)
		return
	}
	res.Company = company
}

// checkCategories enforces the user-facing category cap and that every
// requested category is a group category.
func (p *Pipeline) checkCategories(ctx context.Context, req *model.UpsertRequest, res *Resolved, fail func(string, ...any)) {
	if len(req.CategoryIDs) == 0 {
		return
	}
	if len(req.CategoryIDs) > model.MaxUserCategories {
		fail("at most %d categories may be assigned, got %d", model.MaxUserCategories, len(req.CategoryIDs))
	}
	cats, err := p.Categories.ResolveCategories(ctx, req.CategoryIDs)
	if err != nil {
		fail("categories could not be resolved")
		return
	}
	for _, id := range req.CategoryIDs {
		c, ok := cats[id]
		if !ok {
			fail("category %d does not exist", id)
			continue
		}
		if !c.IsGroup {
			fail("category %d (%s) is not a group category", id, c.Name)
		}
	}
	res.Categories = cats
}

// checkSales enforces sales-workflow consistency: an action date requires
// an actor and vice versa, and the sales actor must exist.
func (p *Pipeline) checkSales(ctx context.Context, req *model.UpsertRequest, res *Resolved, fail func(string, ...any)) {
	if req.SalesActionOn == nil && req.SalesActorID == nil {
		return
	}
	if req.SalesActionOn == nil {
		fail("sales_actor_id requires sales_action_on")
	} else {
		t, err := ParseFlexibleDate(*req.SalesActionOn)
		if err != nil {
			fail("sales_action_on %q is not a valid date", *req.SalesActionOn)
		} else {
			res.SalesActionOn = &t
		}
	}
	if req.SalesActorID == nil {
		fail("sales_action_on requires sales_actor_id")
		return
	}
	actor, err := p.Actors.GetActor(ctx, *req.SalesActorID)
	if err != nil {
		fail("sales actor %d does not exist", *req.SalesActorID)
		return
	}
	res.SalesActor = actor
}

// ParseFlexibleDate accepts a full date or a year-month.  Times are UTC
// midnight; the service treats all dates as day-granular.
func ParseFlexibleDate(s string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, time.UTC); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01", s, time.UTC)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
