package validation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairgrid/fairgrid/internal/model"
)

// fakeWorld implements every provider interface over in-memory maps.
type fakeWorld struct {
	users     map[uint64]*model.User
	events    map[uint64]*model.Event
	venues    map[uint64]*model.Venue
	slugs     map[string]*model.Venue
	companies map[uint64]*model.Company
	cats      map[uint64]model.Category
}

func (w *fakeWorld) GetActor(ctx context.Context, id uint64) (*model.User, error) {
	if u, ok := w.users[id]; ok {
		return u, nil
	}
	return nil, errors.New("no such user")
}

func (w *fakeWorld) GetEvent(ctx context.Context, id uint64) (*model.Event, error) {
	if e, ok := w.events[id]; ok {
		return e, nil
	}
	return nil, errors.New("no such event")
}

func (w *fakeWorld) ResolveByID(ctx context.Context, id uint64) (*model.Venue, error) {
	if v, ok := w.venues[id]; ok {
		return v, nil
	}
	return nil, errors.New("no such venue")
}

func (w *fakeWorld) ResolveBySlug(ctx context.Context, slug string) (*model.Venue, error) {
	if v, ok := w.slugs[slug]; ok {
		return v, nil
	}
	return nil, errors.New("no such venue")
}

func (w *fakeWorld) ResolveCompany(ctx context.Context, id uint64) (*model.Company, error) {
	if c, ok := w.companies[id]; ok {
		return c, nil
	}
	return nil, errors.New("no such company")
}

func (w *fakeWorld) ResolveCategories(ctx context.Context, ids []uint64) (map[uint64]model.Category, error) {
	out := make(map[uint64]model.Category)
	for _, id := range ids {
		if c, ok := w.cats[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

func strp(s string) *string { return &s }
func u64p(v uint64) *uint64 { return &v }

func newTestWorld() *fakeWorld {
	contact := uint64(5)
	return &fakeWorld{
		users: map[uint64]*model.User{
			1: {ID: 1, Role: "EDITOR", Active: true},
			2: {ID: 2, Role: "EDITOR", Active: false},
			5: {ID: 5, Role: "EDITOR", Active: true},
			9: {ID: 9, Role: "ADMIN", Active: true},
		},
		events: map[uint64]*model.Event{
			100: {ID: 100, Audience: "B2B", ContactUserID: &contact},
		},
		venues: map[uint64]*model.Venue{
			30: {ID: 30, Name: "Messe Nord", Slug: "messe-nord", City: "Hamburg", Country: "DE"},
			31: {ID: 31, Name: "Legacy Hall", Slug: "legacy-hall", City: "Lyon"},
		},
		slugs: map[string]*model.Venue{
			"messe-nord": {ID: 30, Name: "Messe Nord", Slug: "messe-nord", City: "Hamburg", Country: "DE"},
		},
		companies: map[uint64]*model.Company{
			70: {ID: 70, Name: "Orga GmbH"},
		},
		cats: map[uint64]model.Category{
			1: {ID: 1, Name: "Industry", IsGroup: true},
			2: {ID: 2, Name: "Tech", IsGroup: true},
			3: {ID: 3, Name: "Robotics", IsGroup: true},
			4: {ID: 4, Name: "Machinery (parent)", IsGroup: false},
		},
	}
}

func newTestPipeline(w *fakeWorld) *Pipeline {
	p := NewPipeline(w, w, w, w, w, "ADMIN")
	p.Now = func() time.Time { return time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC) }
	return p
}

func hasFailure(failures []string, substr string) bool {
	for _, f := range failures {
		if strings.Contains(f, substr) {
			return true
		}
	}
	return false
}

func TestPipelineValidCreate(t *testing.T) {
	p := newTestPipeline(newTestWorld())
	req := &model.UpsertRequest{
		Name:        strp("Hanseatic Fair"),
		StartsOn:    strp("2026-09-01"),
		EndsOn:      strp("2026-09-04"),
		VenueID:     u64p(30),
		CompanyID:   u64p(70),
		CategoryIDs: []uint64{1, 2},
		Website:     strp("https://hanseatic.example.com"),
	}

	res, failures := p.Run(context.Background(), req, 1)
	require.Empty(t, failures)
	require.NotNil(t, res)
	assert.Equal(t, uint64(1), res.Actor.ID)
	assert.Nil(t, res.Event)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), *res.StartsOn)
	assert.Equal(t, "DE", res.Venue.Country)
	assert.Equal(t, "Orga GmbH", res.Company.Name)
	assert.Len(t, res.Categories, 2)
}

func TestPipelineAggregatesAllFailures(t *testing.T) {
	p := newTestPipeline(newTestWorld())
	req := &model.UpsertRequest{
		StartsOn:    strp("not-a-date"),
		Website:     strp("ftp://nope"),
		VenueID:     u64p(999),
		CategoryIDs: []uint64{1, 2, 3}, // over the cap
	}

	res, failures := p.Run(context.Background(), req, 999) // unknown actor too
	assert.Nil(t, res)
	assert.True(t, hasFailure(failures, "actor 999"))
	assert.True(t, hasFailure(failures, "not a valid date"))
	assert.True(t, hasFailure(failures, "http(s)"))
	assert.True(t, hasFailure(failures, "venue 999"))
	assert.True(t, hasFailure(failures, "at most 2 categories"))
	assert.GreaterOrEqual(t, len(failures), 5)
}

func TestPipelineRejectsInactiveActor(t *testing.T) {
	p := newTestPipeline(newTestWorld())
	_, failures := p.Run(context.Background(), &model.UpsertRequest{}, 2)
	assert.True(t, hasFailure(failures, "not active"))
}

func TestPipelineEventAuthorization(t *testing.T) {
	w := newTestWorld()
	p := newTestPipeline(w)
	req := &model.UpsertRequest{EventID: u64p(100)}

	// The event's point of contact may edit.
	_, failures := p.Run(context.Background(), req, 5)
	assert.Empty(t, failures)

	// The internal role may edit anything.
	_, failures = p.Run(context.Background(), req, 9)
	assert.Empty(t, failures)

	// An unrelated active editor may not.
	_, failures = p.Run(context.Background(), req, 1)
	assert.True(t, hasFailure(failures, "not authorized"))
}

func TestPipelineCompanyContactMayEdit(t *testing.T) {
	w := newTestWorld()
	companyContact := uint64(1)
	companyID := uint64(70)
	w.companies[70].ContactUserID = &companyContact
	w.events[100].ContactUserID = nil
	w.events[100].CompanyID = &companyID
	p := newTestPipeline(w)

	_, failures := p.Run(context.Background(), &model.UpsertRequest{EventID: u64p(100)}, 1)
	assert.Empty(t, failures)
}

func TestPipelineDateRules(t *testing.T) {
	p := newTestPipeline(newTestWorld())

	// Reversed range on a normal audience fails.
	_, failures := p.Run(context.Background(), &model.UpsertRequest{
		StartsOn: strp("2026-09-04"),
		EndsOn:   strp("2026-09-01"),
	}, 1)
	assert.True(t, hasFailure(failures, "must not be before"))

	// The archive audience tolerates reversed ranges and past dates.
	_, failures = p.Run(context.Background(), &model.UpsertRequest{
		Audience: strp("ARCHIVE"),
		StartsOn: strp("1998-09-04"),
		EndsOn:   strp("1998-09-01"),
	}, 1)
	assert.Empty(t, failures)

	// Past dates on a create fail for normal audiences.
	_, failures = p.Run(context.Background(), &model.UpsertRequest{
		StartsOn: strp("2020-09-01"),
		EndsOn:   strp("2020-09-04"),
	}, 1)
	assert.True(t, hasFailure(failures, "in the past"))

	// The same past dates on an update of an existing event pass; the
	// lifecycle layer decides what they mean.
	_, failures = p.Run(context.Background(), &model.UpsertRequest{
		EventID:  u64p(100),
		StartsOn: strp("2020-09-01"),
		EndsOn:   strp("2020-09-04"),
	}, 5)
	assert.Empty(t, failures)
}

func TestPipelineYearMonthDates(t *testing.T) {
	p := newTestPipeline(newTestWorld())
	res, failures := p.Run(context.Background(), &model.UpsertRequest{
		StartsOn: strp("2026-09"),
		EndsOn:   strp("2026-10"),
	}, 1)
	require.Empty(t, failures)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), *res.StartsOn)
}

func TestPipelineVenueBySlugAndURL(t *testing.T) {
	p := newTestPipeline(newTestWorld())

	res, failures := p.Run(context.Background(), &model.UpsertRequest{
		VenueSlug: strp("messe-nord"),
	}, 1)
	require.Empty(t, failures)
	assert.Equal(t, uint64(30), res.Venue.ID)

	// A full venue URL resolves via its trailing path segment.
	res, failures = p.Run(context.Background(), &model.UpsertRequest{
		VenueSlug: strp("https://venues.example.com/de/messe-nord/"),
	}, 1)
	require.Empty(t, failures)
	assert.Equal(t, uint64(30), res.Venue.ID)
}

func TestPipelineVenueWithoutCountryFails(t *testing.T) {
	p := newTestPipeline(newTestWorld())
	_, failures := p.Run(context.Background(), &model.UpsertRequest{VenueID: u64p(31)}, 1)
	assert.True(t, hasFailure(failures, "no resolvable country"))
}

func TestPipelineNonGroupCategoryFails(t *testing.T) {
	p := newTestPipeline(newTestWorld())
	_, failures := p.Run(context.Background(), &model.UpsertRequest{CategoryIDs: []uint64{4}}, 1)
	assert.True(t, hasFailure(failures, "not a group category"))
}

func TestPipelineSalesConsistency(t *testing.T) {
	p := newTestPipeline(newTestWorld())

	_, failures := p.Run(context.Background(), &model.UpsertRequest{
		SalesActionOn: strp("2026-07-01"),
	}, 1)
	assert.True(t, hasFailure(failures, "requires sales_actor_id"))

	_, failures = p.Run(context.Background(), &model.UpsertRequest{
		SalesActorID: u64p(5),
	}, 1)
	assert.True(t, hasFailure(failures, "requires sales_action_on"))

	res, failures := p.Run(context.Background(), &model.UpsertRequest{
		SalesActionOn: strp("2026-07-01"),
		SalesActorID:  u64p(5),
	}, 1)
	require.Empty(t, failures)
	assert.Equal(t, uint64(5), res.SalesActor.ID)
	assert.Equal(t, time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), *res.SalesActionOn)
}

func TestParseFlexibleDate(t *testing.T) {
	got, err := ParseFlexibleDate("2026-09-04")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseFlexibleDate("2026-09")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseFlexibleDate("September 2026")
	assert.Error(t, err)
}
