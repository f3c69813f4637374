package enrichment

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairgrid/fairgrid/internal/model"
)

func TestCategoriesDiffedAgainstExistingLinks(t *testing.T) {
	o, cats, _, _, _, _ := newTestOrchestrator()
	cats.links = []model.CategoryLink{
		{EventID: 100, CategoryID: 1},                 // stays (still desired)
		{EventID: 100, CategoryID: 3},                 // removed
		{EventID: 100, CategoryID: 8, Verified: true}, // verified, survives
	}

	report := o.Process(context.Background(), job(model.UpsertRequest{
		CategoryIDs: []uint64{1, 2},
	}))
	require.Empty(t, report.Failed())

	assert.Equal(t, []uint64{3}, cats.deleted)
	require.Len(t, cats.inserted, 1)
	assert.Equal(t, uint64(2), cats.inserted[0].CategoryID)
	assert.True(t, cats.inserted[0].Published)
	assert.False(t, cats.inserted[0].FromProduct)
}

func TestProductImpliedCategoriesBypassTheCap(t *testing.T) {
	o, cats, _, _, _, _ := newTestOrchestrator()
	seven := uint64(7)
	nine := uint64(9)
	cats.products = map[uint64]model.Product{
		40: {ID: 40, CategoryID: &seven},
		41: {ID: 41, CategoryID: &nine},
		42: {ID: 42}, // product without an implied category
	}

	// Two user categories (the cap) plus two product-implied ones: all
	// four links come out, the implied ones flagged FromProduct.
	report := o.Process(context.Background(), job(model.UpsertRequest{
		CategoryIDs: []uint64{1, 2},
		ProductIDs:  []uint64{40, 41, 42},
	}))
	require.Empty(t, report.Failed())

	require.Len(t, cats.inserted, 4)
	byID := make(map[uint64]model.CategoryLink)
	for _, l := range cats.inserted {
		byID[l.CategoryID] = l
	}
	assert.False(t, byID[1].FromProduct)
	assert.False(t, byID[2].FromProduct)
	assert.True(t, byID[7].FromProduct)
	assert.True(t, byID[9].FromProduct)
	assert.Equal(t, []uint64{40, 41, 42}, cats.replaced)
}

func TestProductImpliedDuplicateOfUserCategory(t *testing.T) {
	o, cats, _, _, _, _ := newTestOrchestrator()
	one := uint64(1)
	cats.products = map[uint64]model.Product{40: {ID: 40, CategoryID: &one}}

	// Category 1 is both user-chosen and product-implied; it is inserted
	// once and counts as a user choice.
	report := o.Process(context.Background(), job(model.UpsertRequest{
		CategoryIDs: []uint64{1},
		ProductIDs:  []uint64{40},
	}))
	require.Empty(t, report.Failed())

	require.Len(t, cats.inserted, 1)
	assert.Equal(t, uint64(1), cats.inserted[0].CategoryID)
	assert.False(t, cats.inserted[0].FromProduct)
}

func TestContactsBlocklistedDomainRejectsWholeBatch(t *testing.T) {
	o, _, _, _, contacts, _ := newTestOrchestrator()

	report := o.Process(context.Background(), job(model.UpsertRequest{
		Contacts: []model.ContactInput{
			{Name: "Ada", Email: "ada@fair.example"},
			{Name: "Eve", Email: "Eve@Spam.Example"},
			{Name: "Bob", Email: "bob@fair.example"},
		},
	}))

	assert.Equal(t, []string{"contacts"}, report.Failed())
	assert.Empty(t, contacts.batches) // nothing written, not even the clean entries
	for _, outcome := range report {
		if outcome.Unit == "contacts" {
			// The rejection names the offending (normalized) address.
			assert.ErrorContains(t, outcome.Err, "eve@spam.example")
		}
	}
}

func TestContactsNormalizedBeforeInsert(t *testing.T) {
	o, _, _, _, contacts, _ := newTestOrchestrator()

	report := o.Process(context.Background(), job(model.UpsertRequest{
		Contacts: []model.ContactInput{
			{Name: "  Ada Lovelace ", Email: " Ada@Fair.Example ", Role: "PRESS", Notify: true},
		},
	}))
	require.Empty(t, report.Failed())

	require.Len(t, contacts.batches, 1)
	got := contacts.batches[0][0]
	assert.Equal(t, "Ada Lovelace", got.Name)
	assert.Equal(t, "ada@fair.example", got.Email)
	assert.Equal(t, uint64(100), got.EventID)
	assert.True(t, got.Notify)
}

func TestContactsMalformedEmailFails(t *testing.T) {
	o, _, _, _, contacts, _ := newTestOrchestrator()

	report := o.Process(context.Background(), job(model.UpsertRequest{
		Contacts: []model.ContactInput{{Name: "X", Email: "not-an-email"}},
	}))
	assert.Equal(t, []string{"contacts"}, report.Failed())
	assert.Empty(t, contacts.batches)
}

func TestStatisticsFirstWrite(t *testing.T) {
	o, _, attrs, eds, _, _ := newTestOrchestrator()

	report := o.Process(context.Background(), job(model.UpsertRequest{
		Stats: &model.Statistics{
			Exhibitors: model.StatBreakdown{Total: i64p(350), International: i64p(120)},
		},
	}))
	require.Empty(t, report.Failed())

	blob, ok := attrs.get(model.AttrStats)
	require.True(t, ok)
	var stats model.Statistics
	require.NoError(t, json.Unmarshal([]byte(blob), &stats))
	assert.Equal(t, int64(350), *stats.Exhibitors.Total)
	assert.Equal(t, int64(120), *stats.Exhibitors.International)

	assert.Equal(t, 1, eds.totalsCalls)
	assert.Equal(t, int64(350), *eds.exhibitors)
	assert.Nil(t, eds.visitors)
}

func TestStatisticsPartialMergePreservesOtherFigures(t *testing.T) {
	o, _, attrs, eds, _, _ := newTestOrchestrator()
	attrs.values[model.AttrStats] = `{"exhibitors":{"total":350},"visitors":{"total":9000,"domestic":6000}}`

	// Only the visitor total changes; exhibitors and the domestic split
	// must survive untouched.
	report := o.Process(context.Background(), job(model.UpsertRequest{
		Stats: &model.Statistics{Visitors: model.StatBreakdown{Total: i64p(9500)}},
	}))
	require.Empty(t, report.Failed())

	blob, _ := attrs.get(model.AttrStats)
	var stats model.Statistics
	require.NoError(t, json.Unmarshal([]byte(blob), &stats))
	assert.Equal(t, int64(350), *stats.Exhibitors.Total)
	assert.Equal(t, int64(9500), *stats.Visitors.Total)
	assert.Equal(t, int64(6000), *stats.Visitors.Domestic)

	assert.Equal(t, int64(350), *eds.exhibitors)
	assert.Equal(t, int64(9500), *eds.visitors)
}

func TestStatisticsCorruptBlobIsReplaced(t *testing.T) {
	o, _, attrs, _, _, _ := newTestOrchestrator()
	attrs.values[model.AttrStats] = `{{{not json`

	report := o.Process(context.Background(), job(model.UpsertRequest{
		Stats: &model.Statistics{Area: model.StatBreakdown{Total: i64p(12000)}},
	}))
	require.Empty(t, report.Failed())

	blob, _ := attrs.get(model.AttrStats)
	var stats model.Statistics
	require.NoError(t, json.Unmarshal([]byte(blob), &stats))
	assert.Equal(t, int64(12000), *stats.Area.Total)
	assert.Nil(t, stats.Exhibitors.Total)
}
