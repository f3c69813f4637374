// Package identity adapts the relational store to the collaborator
// boundaries the validation and enrichment pipelines consume.  Account
// management lives in an external service; these adapters read, except
// for sub-venue resolution which creates missing rows on first sight.
package identity

import (
	"context"

	"github.com/fairgrid/fairgrid/internal/model"
	"github.com/fairgrid/fairgrid/internal/repository"
)

// Provider implements the validation pipeline's provider interfaces plus
// the enrichment pipeline's venue and actor sources over the
// repositories.
type Provider struct {
	Users      *repository.UserRepo
	Events     *repository.EventRepo
	Venues     *repository.VenueRepo
	Companies  *repository.CompanyRepo
	Categories *repository.CategoryRepo
}

// NewProvider constructs a Provider and panics if any dependency is nil.
func NewProvider(users *repository.UserRepo, events *repository.EventRepo, venues *repository.VenueRepo, companies *repository.CompanyRepo, categories *repository.CategoryRepo) *Provider {
	if users == nil || events == nil || venues == nil || companies == nil || categories == nil {
		panic("nil repository passed to NewProvider")
	}
	return &Provider{Users: users, Events: events, Venues: venues, Companies: companies, Categories: categories}
}

// GetActor returns the user for the given id.
func (p *Provider) GetActor(ctx context.Context, id uint64) (*model.User, error) {
	return p.Users.GetByID(ctx, id)
}

// GetEvent returns the event for the given id.
func (p *Provider) GetEvent(ctx context.Context, id uint64) (*model.Event, error) {
	return p.Events.GetByID(ctx, id)
}

// ResolveByID resolves a venue by numeric identifier.
func (p *Provider) ResolveByID(ctx context.Context, id uint64) (*model.Venue, error) {
	return p.Venues.GetByID(ctx, id)
}

// ResolveBySlug resolves a venue by slug.
func (p *Provider) ResolveBySlug(ctx context.Context, slug string) (*model.Venue, error) {
	return p.Venues.GetBySlug(ctx, slug)
}

// FindOrCreateSubVenue resolves a named hall within a venue, creating the
// row on first sight.
func (p *Provider) FindOrCreateSubVenue(ctx context.Context, venueID uint64, name string) (*model.SubVenue, error) {
	return p.Venues.FindOrCreateSubVenue(ctx, venueID, name)
}

// ResolveCompany resolves an organizer company.
func (p *Provider) ResolveCompany(ctx context.Context, id uint64) (*model.Company, error) {
	return p.Companies.GetByID(ctx, id)
}

// ResolveCategories loads catalog categories for the given ids.
func (p *Provider) ResolveCategories(ctx context.Context, ids []uint64) (map[uint64]model.Category, error) {
	return p.Categories.GetCategories(ctx, ids)
}
