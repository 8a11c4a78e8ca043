// Package seed is the reference catalog: the services, categories and
// providers that ship with the application.
//
// The catalog is an embedded CUE document whose schema rejects negative
// prices, out-of-range ratings and empty ids. It is compiled once; every
// accessor then builds fresh slices, so callers may modify results freely
// and must not rely on identity across calls.
package seed

import (
	_ "embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/easybook/internal/model"
)

//go:embed catalog.cue
var catalogSource string

// defaultCategoryDescription is used for categories the catalog does not describe.
const defaultCategoryDescription = "Professional services"

type document struct {
	Services   []model.Service  `json:"services"`
	Categories []model.Category `json:"categories"`
	Providers  []model.User     `json:"providers"`
}

var (
	loadOnce sync.Once
	loaded   document
	loadErr  error
)

// catalog returns the compiled embedded document.
// An invalid embedded catalog is a build defect, so it panics.
func catalog() document {
	loadOnce.Do(func() {
		loaded, loadErr = compile(catalogSource)
	})
	if loadErr != nil {
		panic(fmt.Sprintf("seed: embedded catalog is invalid: %v", loadErr))
	}
	return loaded
}

// compile parses, validates and decodes a catalog document.
func compile(src string) (document, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src, cue.Filename("catalog.cue"))
	if err := v.Err(); err != nil {
		return document{}, fmt.Errorf("compile catalog: %w", err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return document{}, fmt.Errorf("validate catalog: %w", err)
	}

	var doc document
	if err := v.Decode(&doc); err != nil {
		return document{}, fmt.Errorf("decode catalog: %w", err)
	}
	return doc, nil
}

// AllServices returns every seed service in catalog order.
func AllServices() []model.Service {
	return cloneServices(catalog().Services)
}

// AllCategories returns the seed category names in catalog order.
func AllCategories() []string {
	cats := catalog().Categories
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.Name
	}
	return names
}

// Categories returns the seed categories with their descriptions.
func Categories() []model.Category {
	cats := catalog().Categories
	out := make([]model.Category, len(cats))
	copy(out, cats)
	return out
}

// CategoryDescription returns the display description of a category,
// matched without regard to case.
func CategoryDescription(category string) string {
	for _, c := range catalog().Categories {
		if model.EqualFold(c.Name, category) {
			return c.Description
		}
	}
	return defaultCategoryDescription
}

// Providers returns the seed providers in catalog order.
func Providers() []model.User {
	ps := catalog().Providers
	out := make([]model.User, len(ps))
	copy(out, ps)
	return out
}

// ServicesByCategory returns seed services whose category equals
// category, ignoring case.
func ServicesByCategory(category string) []model.Service {
	var out []model.Service
	for _, svc := range AllServices() {
		if model.EqualFold(svc.Category, category) {
			out = append(out, svc)
		}
	}
	return out
}

// FeaturedServices returns seed services rated at least model.FeaturedRating.
func FeaturedServices() []model.Service {
	var out []model.Service
	for _, svc := range AllServices() {
		if svc.IsFeatured() {
			out = append(out, svc)
		}
	}
	return out
}

// Search returns seed services whose name, description or category
// contains query, ignoring case.
func Search(query string) []model.Service {
	var out []model.Service
	for _, svc := range AllServices() {
		if svc.MatchesQuery(query) {
			out = append(out, svc)
		}
	}
	return out
}

func cloneServices(in []model.Service) []model.Service {
	out := make([]model.Service, len(in))
	for i, svc := range in {
		if svc.Tags != nil {
			svc.Tags = append([]string(nil), svc.Tags...)
		}
		out[i] = svc
	}
	return out
}
