// Package catalog merges the reference catalog with admin-managed services
// stored in the services slot, and exposes the filtered views the rest of
// the application reads.
//
// Merge rule: seed services come first in catalog order, then stored
// services in storage order; when two entries share an id the first one
// wins, so seed entries always shadow stored copies.
//
// Reads never fail. If the services slot cannot be read or decoded the
// views fall back to seed data only.
package catalog

import (
	"context"
	"log/slog"

	"github.com/roach88/easybook/internal/model"
	"github.com/roach88/easybook/internal/seed"
	"github.com/roach88/easybook/internal/store"
	"github.com/roach88/easybook/internal/writer"
)

// Catalog is the merged service view plus the admin CRUD on stored services.
type Catalog struct {
	store  store.Backend
	writer writer.Submitter
	log    *slog.Logger
}

// New creates a Catalog over the services slot of st.
func New(st store.Backend, w writer.Submitter, log *slog.Logger) *Catalog {
	if log == nil {
		log = slog.Default()
	}
	return &Catalog{store: st, writer: w, log: log}
}

// AllServices returns the de-duplicated union of seed and stored services.
func (c *Catalog) AllServices(ctx context.Context) []model.Service {
	return Merge(seed.AllServices(), c.stored(ctx))
}

// ServicesByCategory returns merged services whose category equals
// category, ignoring case.
func (c *Catalog) ServicesByCategory(ctx context.Context, category string) []model.Service {
	var out []model.Service
	for _, svc := range c.AllServices(ctx) {
		if model.EqualFold(svc.Category, category) {
			out = append(out, svc)
		}
	}
	return out
}

// FeaturedServices returns merged services rated at least model.FeaturedRating.
func (c *Catalog) FeaturedServices(ctx context.Context) []model.Service {
	var out []model.Service
	for _, svc := range c.AllServices(ctx) {
		if svc.IsFeatured() {
			out = append(out, svc)
		}
	}
	return out
}

// AllCategories returns the distinct categories of the merged services.
// The order is unspecified.
func (c *Catalog) AllCategories(ctx context.Context) []string {
	set := make(map[string]struct{})
	for _, svc := range c.AllServices(ctx) {
		set[svc.Category] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	return out
}

// ServiceCategories pairs every merged category with its description.
func (c *Catalog) ServiceCategories(ctx context.Context) []model.Category {
	names := c.AllCategories(ctx)
	out := make([]model.Category, len(names))
	for i, name := range names {
		out[i] = model.Category{Name: name, Description: seed.CategoryDescription(name)}
	}
	return out
}

// Search filters merged services by query and category. An empty query
// or category matches everything; both filters must hold.
func (c *Catalog) Search(ctx context.Context, query, category string) []model.Service {
	var out []model.Service
	for _, svc := range c.AllServices(ctx) {
		if svc.MatchesQuery(query) && svc.InCategory(category) {
			out = append(out, svc)
		}
	}
	return out
}

// Service looks up one merged service by id.
func (c *Catalog) Service(ctx context.Context, id string) (model.Service, bool) {
	for _, svc := range c.AllServices(ctx) {
		if svc.ID == id {
			return svc, true
		}
	}
	return model.Service{}, false
}

// stored reads the services slot, degrading to nothing on backend errors.
func (c *Catalog) stored(ctx context.Context) []model.Service {
	services, err := store.LoadList[model.Service](ctx, c.store, store.SlotServices)
	if err != nil {
		c.log.Warn("stored services unavailable, using seed catalog only", "error", err)
		return nil
	}
	return services
}

// Merge concatenates lists and drops every entry whose id was already seen.
func Merge(lists ...[]model.Service) []model.Service {
	seen := make(map[string]struct{})
	var out []model.Service
	for _, list := range lists {
		for _, svc := range list {
			if _, dup := seen[svc.ID]; dup {
				continue
			}
			seen[svc.ID] = struct{}{}
			out = append(out, svc)
		}
	}
	return out
}
